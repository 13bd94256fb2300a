package versioning

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
)

var (
	// ErrNotRepository means no git repository contains the requested root.
	ErrNotRepository = errors.New("not a git repository")
	// ErrNothingToCommit means the staged paths match HEAD.
	ErrNothingToCommit = errors.New("nothing to commit")
)

// Committer records a set of changed files as one commit.
type Committer interface {
	Commit(ctx context.Context, root string, paths []string, message string) (string, error)
}

// NopCommitter is used when versioning is disabled.
type NopCommitter struct{}

func (NopCommitter) Commit(context.Context, string, []string, string) (string, error) {
	return "", ErrNotRepository
}

// GitCommitter commits through go-git into the repository that contains root.
type GitCommitter struct {
	AuthorName  string
	AuthorEmail string
	Now         func() time.Time
}

// NewGitCommitter builds a committer with the given author identity.
func NewGitCommitter(name, email string) *GitCommitter {
	return &GitCommitter{AuthorName: name, AuthorEmail: email, Now: time.Now}
}

// Commit stages every path (removed files are staged as removals) and commits them.
// Paths are absolute or relative to root and must lie inside the repository worktree.
func (c *GitCommitter) Commit(ctx context.Context, root string, paths []string, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", fmt.Errorf("%w: %s", ErrNotRepository, root)
		}
		return "", fmt.Errorf("open repository at %q: %w", root, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("open worktree: %w", err)
	}
	wtRoot := wt.Filesystem.Root()

	staged := make([]string, 0, len(paths))
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		rel, err := filepath.Rel(wtRoot, p)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("path %q is outside worktree %q", p, wtRoot)
		}
		rel = filepath.ToSlash(rel)

		if _, err := os.Lstat(p); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("stat %q: %w", p, err)
			}
			if _, err := wt.Remove(rel); err != nil && !errors.Is(err, index.ErrEntryNotFound) {
				return "", fmt.Errorf("stage removal of %q: %w", rel, err)
			}
			staged = append(staged, rel)
			continue
		}
		if _, err := wt.Add(rel); err != nil {
			return "", fmt.Errorf("stage %q: %w", rel, err)
		}
		staged = append(staged, rel)
	}

	changed, err := hasStagedChanges(wt, staged)
	if err != nil {
		return "", err
	}
	if !changed {
		return "", ErrNothingToCommit
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: c.AuthorName, Email: c.AuthorEmail, When: now()},
	})
	if err != nil {
		if errors.Is(err, git.ErrEmptyCommit) {
			return "", ErrNothingToCommit
		}
		return "", fmt.Errorf("commit: %w", err)
	}
	return hash.String(), nil
}

func hasStagedChanges(wt *git.Worktree, paths []string) (bool, error) {
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("worktree status: %w", err)
	}
	for _, p := range paths {
		// unmodified files are absent from the status map
		st, ok := status[p]
		if !ok {
			continue
		}
		if st.Staging != git.Unmodified && st.Staging != git.Untracked {
			return true, nil
		}
	}
	return false, nil
}

// InitRepository creates a repository at root, or opens the one already there.
func InitRepository(root string) (*git.Repository, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create %q: %w", root, err)
	}
	repo, err := git.PlainInit(root, false)
	if errors.Is(err, git.ErrRepositoryAlreadyExists) {
		return git.PlainOpen(root)
	}
	if err != nil {
		return nil, fmt.Errorf("init repository at %q: %w", root, err)
	}
	return repo, nil
}
