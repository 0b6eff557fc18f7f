package gitctx

import (
	"context"
	"errors"
	"fmt"
	"sync"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"
)

// GoGitRemote reads upstream content through go-git.
type GoGitRemote struct {
	mu     sync.Mutex
	repo   *git.Repository
	root   string
	opts   Options
	synced syncOnce
}

// OpenGoGit opens the repository enclosing dir.
func OpenGoGit(dir string, opts Options) (*GoGitRemote, error) {
	opts = opts.withDefaults()
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, ErrNotRepository
	} else if err != nil {
		return nil, fmt.Errorf("git: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("git worktree: %w", err)
	}
	return &GoGitRemote{
		repo: repo,
		root: canonicalRoot(wt.Filesystem.Root()),
		opts: opts,
	}, nil
}

// Content implements Source.
func (r *GoGitRemote) Content(ctx context.Context, path string) (string, bool) {
	log := r.opts.Logger.With(zap.String("path", path))

	err := r.synced.do(func() error {
		err := r.fetch(ctx)
		if err != nil {
			r.opts.Logger.Warn("fetching remote failed; treating files as absent upstream",
				zap.String("remote", r.opts.Remote), zap.String("branch", r.opts.Branch), zap.Error(err))
		}
		return err
	})
	if err != nil {
		log.Debug("remote unavailable", zap.Error(err))
		return "", false
	}

	rel, err := relativePath(r.root, path)
	if err != nil {
		log.Debug("resolving path", zap.Error(err))
		return "", false
	}

	// go-git repositories are not safe for concurrent object reads.
	r.mu.Lock()
	defer r.mu.Unlock()

	ref, err := r.repo.Reference(plumbing.NewRemoteReferenceName(r.opts.Remote, r.opts.Branch), true)
	if err != nil {
		log.Debug("remote branch not found", zap.Error(err))
		return "", false
	}
	commit, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		log.Debug("reading remote commit", zap.Error(err))
		return "", false
	}
	file, err := commit.File(rel)
	if err != nil {
		if !errors.Is(err, object.ErrFileNotFound) {
			log.Debug("reading remote tree", zap.Error(err))
		}
		return "", false
	}
	content, err := file.Contents()
	if err != nil {
		log.Debug("reading remote blob", zap.Error(err))
		return "", false
	}
	return content, true
}

func (r *GoGitRemote) fetch(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	refSpec := config.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/%s/%s", r.opts.Branch, r.opts.Remote, r.opts.Branch))
	err := r.repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: r.opts.Remote,
		RefSpecs:   []config.RefSpec{refSpec},
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("fetching %s/%s: %w", r.opts.Remote, r.opts.Branch, err)
	}
	return nil
}
