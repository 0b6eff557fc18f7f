package gitctx

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// CLIRemote reads upstream content by shelling out to git, so the user's
// credential helpers and SSH configuration apply.
type CLIRemote struct {
	root   string
	opts   Options
	synced syncOnce
}

// OpenCLI opens the repository enclosing dir.
func OpenCLI(dir string, opts Options) (*CLIRemote, error) {
	opts = opts.withDefaults()
	root, err := gitOutput(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRepository, err)
	}
	return &CLIRemote{
		root: canonicalRoot(strings.TrimSpace(root)),
		opts: opts,
	}, nil
}

// Content implements Source.
func (r *CLIRemote) Content(ctx context.Context, path string) (string, bool) {
	log := r.opts.Logger.With(zap.String("path", path))

	err := r.synced.do(func() error {
		_, err := gitOutputContext(ctx, r.root, "fetch", "--quiet", r.opts.Remote, r.opts.Branch)
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

	spec := fmt.Sprintf("%s/%s:%s", r.opts.Remote, r.opts.Branch, rel)
	out, err := gitOutputContext(ctx, r.root, "show", spec)
	if err != nil {
		log.Debug("path not on remote branch", zap.Error(err))
		return "", false
	}
	return out, true
}
