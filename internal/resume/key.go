package resume

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const maxKeyLength = 128

// NormalizeKey turns a user supplied display name into a filesystem-safe key.
// Spaces become underscores and a trailing .pdf or .xml extension is dropped, so
// "My Resume", "My_Resume" and "My_Resume.pdf" all address the same résumé.
func NormalizeKey(displayName string) (string, error) {
	key := strings.TrimSpace(displayName)
	lower := strings.ToLower(key)
	switch {
	case strings.HasSuffix(lower, ".pdf"), strings.HasSuffix(lower, ".xml"):
		key = key[:len(key)-4]
	}
	key = strings.ReplaceAll(key, " ", "_")

	if key == "" {
		return "", fmt.Errorf("%w: name is empty", ErrInvalidKey)
	}
	if !utf8.ValidString(key) {
		return "", fmt.Errorf("%w: name is not valid utf-8", ErrInvalidKey)
	}
	if len(key) > maxKeyLength {
		return "", fmt.Errorf("%w: name longer than %d bytes", ErrInvalidKey, maxKeyLength)
	}
	if strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("%w: name must not start with a dot", ErrInvalidKey)
	}
	if strings.Contains(key, "..") || strings.ContainsAny(key, "/\\\x00") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, displayName)
	}
	return key, nil
}
