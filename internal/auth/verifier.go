package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sheasmith19/ezapp/internal/config"
)

// ErrAuthentication covers every rejected bearer token.
var ErrAuthentication = errors.New("authentication failed")

const clockSkew = 30 * time.Second

// Claims is the subset of the identity provider's token the service reads.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks ES256 bearer tokens issued by an external identity provider.
type Verifier struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
}

// NewVerifier fetches the provider's JWKS and keeps it refreshed in the background.
func NewVerifier(cfg config.AuthConfig) (*Verifier, error) {
	if strings.TrimSpace(cfg.JWKSURL) == "" {
		return nil, errors.New("jwks url is required")
	}
	k, err := keyfunc.NewDefault([]string{cfg.JWKSURL})
	if err != nil {
		return nil, fmt.Errorf("load jwks from %q: %w", cfg.JWKSURL, err)
	}
	return NewVerifierWithKeyfunc(k.Keyfunc, cfg.Issuer, cfg.Audience), nil
}

// NewVerifierWithKeyfunc builds a Verifier around any key source. Empty issuer or audience skips that check.
func NewVerifierWithKeyfunc(kf jwt.Keyfunc, issuer, audience string) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkew),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return &Verifier{keyfunc: kf, parser: jwt.NewParser(opts...)}
}

// Verify parses and validates a raw token and returns its claims. The subject must be set.
func (v *Verifier) Verify(raw string) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: token string is empty", ErrAuthentication)
	}

	token, err := v.parser.ParseWithClaims(raw, &Claims{}, v.keyfunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", ErrAuthentication)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("%w: subject claim is missing", ErrAuthentication)
	}
	return claims, nil
}
