package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Kind selects one of the per-user artifact directories.
type Kind string

const (
	KindXML Kind = "xml"
	KindPDF Kind = "pdf"
)

// Ext returns the file extension, dot included.
func (k Kind) Ext() string {
	return "." + string(k)
}

// FileInfo describes one stored artifact.
type FileInfo struct {
	Key     string
	Name    string
	Size    int64
	ModTime time.Time
}

// Store is the primary persistence layer: <root>/<userID>/<kind>/<key>.<kind>.
type Store interface {
	UserRoot(userID string) (string, error)
	Path(userID string, kind Kind, key string) (string, error)
	Write(ctx context.Context, userID string, kind Kind, key string, data []byte) (string, error)
	Read(ctx context.Context, userID string, kind Kind, key string) ([]byte, error)
	Open(ctx context.Context, userID string, kind Kind, key string) (io.ReadCloser, FileInfo, error)
	Remove(ctx context.Context, userID string, kind Kind, key string) (bool, error)
	List(ctx context.Context, userID string, kind Kind) ([]FileInfo, error)
}

// FileStore keeps artifacts as plain files under a root directory.
type FileStore struct {
	root string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates the root directory when missing.
func NewFileStore(root string) (*FileStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("storage root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve root %q: %v", ErrStorageIO, root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create root %q: %v", ErrStorageIO, abs, err)
	}
	return &FileStore{root: abs}, nil
}

// Root returns the absolute storage root.
func (s *FileStore) Root() string {
	return s.root
}

func validSegment(v string) bool {
	if v == "" || v == "." || v == ".." {
		return false
	}
	return !strings.ContainsAny(v, "/\\\x00")
}

// UserRoot returns the directory that holds every artifact of one user.
func (s *FileStore) UserRoot(userID string) (string, error) {
	if !validSegment(userID) {
		return "", fmt.Errorf("%w: %q", ErrInvalidUser, userID)
	}
	return filepath.Join(s.root, userID), nil
}

// Path returns the canonical location of one artifact.
func (s *FileStore) Path(userID string, kind Kind, key string) (string, error) {
	dir, err := s.dir(userID, kind)
	if err != nil {
		return "", err
	}
	if !validSegment(key) || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, key)
	}
	return filepath.Join(dir, key+kind.Ext()), nil
}

func (s *FileStore) dir(userID string, kind Kind) (string, error) {
	userRoot, err := s.UserRoot(userID)
	if err != nil {
		return "", err
	}
	switch kind {
	case KindXML, KindPDF:
	default:
		return "", fmt.Errorf("unknown artifact kind %q", kind)
	}
	return filepath.Join(userRoot, string(kind)), nil
}

// Write replaces the artifact by writing a temp file in the same directory and renaming it.
// A failed write leaves any previous file untouched.
func (s *FileStore) Write(ctx context.Context, userID string, kind Kind, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	target, err := s.Path(userID, kind, key)
	if err != nil {
		return "", err
	}
	if err := WriteFileAtomic(target, data); err != nil {
		return "", err
	}
	return target, nil
}

// WriteFileAtomic replaces target with data through a temp file in the same directory,
// so readers see either the old file or the new one.
func WriteFileAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %q: %v", ErrStorageIO, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file in %q: %v", ErrStorageIO, dir, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write %q: %v", ErrStorageIO, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: sync %q: %v", ErrStorageIO, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %q: %v", ErrStorageIO, tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("%w: chmod %q: %v", ErrStorageIO, tmpName, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("%w: rename to %q: %v", ErrStorageIO, target, err)
	}
	committed = true
	return nil
}

// Read returns the whole artifact, or ErrNotExist.
func (s *FileStore) Read(ctx context.Context, userID string, kind Kind, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.Path(userID, kind, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, wrapFSError(p, err)
	}
	return data, nil
}

// Open returns a reader for the artifact. The caller closes it.
func (s *FileStore) Open(ctx context.Context, userID string, kind Kind, key string) (io.ReadCloser, FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, FileInfo{}, err
	}
	p, err := s.Path(userID, kind, key)
	if err != nil {
		return nil, FileInfo{}, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, FileInfo{}, wrapFSError(p, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, FileInfo{}, wrapFSError(p, err)
	}
	return f, FileInfo{Key: key, Name: st.Name(), Size: st.Size(), ModTime: st.ModTime()}, nil
}

// Remove deletes the artifact and reports whether it existed.
func (s *FileStore) Remove(ctx context.Context, userID string, kind Kind, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p, err := s.Path(userID, kind, key)
	if err != nil {
		return false, err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: remove %q: %v", ErrStorageIO, p, err)
	}
	return true, nil
}

// List returns the user's artifacts of one kind sorted by file name.
// A user without a directory has no artifacts.
func (s *FileStore) List(ctx context.Context, userID string, kind Kind) ([]FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := s.dir(userID, kind)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []FileInfo{}, nil
		}
		return nil, fmt.Errorf("%w: read dir %q: %v", ErrStorageIO, dir, err)
	}

	out := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || isTempName(name) || !strings.HasSuffix(name, kind.Ext()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("%w: stat %q: %v", ErrStorageIO, name, err)
		}
		out = append(out, FileInfo{
			Key:     strings.TrimSuffix(name, kind.Ext()),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return out, nil
}

// isTempName matches the in-flight files created by WriteFileAtomic.
func isTempName(name string) bool {
	return strings.HasPrefix(name, ".") && strings.Contains(name, ".tmp-")
}

func wrapFSError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotExist, filepath.Base(path))
	}
	return fmt.Errorf("%w: %v", ErrStorageIO, err)
}
