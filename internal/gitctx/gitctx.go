package gitctx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Backend names how the remote is reached.
const (
	BackendGoGit = "go-git"
	BackendCLI   = "cli"
)

// ErrNotRepository is returned when no git repository encloses the directory.
var ErrNotRepository = errors.New("not a git repository")

// Options selects the upstream branch and backend.
type Options struct {
	Remote  string
	Branch  string
	Backend string
	Logger  *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Remote == "" {
		o.Remote = "origin"
	}
	if o.Branch == "" {
		o.Branch = "main"
	}
	if o.Backend == "" {
		o.Backend = BackendCLI
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Source returns a file's content on the upstream branch.
type Source interface {
	// Content returns the upstream content of path and true, or false when
	// the path does not exist upstream or the remote could not be reached.
	Content(ctx context.Context, path string) (string, bool)
}

// New opens the repository enclosing dir with the configured backend.
func New(dir string, opts Options) (Source, error) {
	opts = opts.withDefaults()
	switch opts.Backend {
	case BackendGoGit:
		return OpenGoGit(dir, opts)
	case BackendCLI:
		return OpenCLI(dir, opts)
	default:
		return nil, fmt.Errorf("unknown git backend: %s (use %s or %s)", opts.Backend, BackendGoGit, BackendCLI)
	}
}

// syncOnce runs the fetch the first time any file asks for content. Every
// file in a run shares the outcome.
type syncOnce struct {
	once sync.Once
	err  error
}

func (s *syncOnce) do(fn func() error) error {
	s.once.Do(func() { s.err = fn() })
	return s.err
}

// relativePath converts path to a slash-separated path relative to root.
func relativePath(root, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the repository", path)
	}
	return filepath.ToSlash(rel), nil
}

func canonicalRoot(root string) string {
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		return resolved
	}
	return root
}

// RepoRoot returns the top-level directory of the current repository.
func RepoRoot() (string, error) {
	root, err := gitOutput("", "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotRepository, err)
	}
	return strings.TrimSpace(root), nil
}

// GitDir returns the .git directory of the current repository.
func GitDir() (string, error) {
	out, err := gitOutput("", "rev-parse", "--git-dir")
	if err != nil {
		return "", fmt.Errorf("%w (git rev-parse --git-dir failed)", ErrNotRepository)
	}
	return strings.TrimSpace(out), nil
}

// Stage adds paths to the index of the current repository. Paths are staged
// whole, so any unstaged hunks in them are staged too.
func Stage(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, paths...)
	if _, err := gitOutputContext(ctx, "", args...); err != nil {
		return fmt.Errorf("staging merged files: %w", err)
	}
	return nil
}

func gitOutput(dir string, args ...string) (string, error) {
	return gitOutputContext(context.Background(), dir, args...)
}

func gitOutputContext(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	// Never block a hook on a credential prompt.
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), fmt.Errorf("%s: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}
