// Package gitctx fetches the upstream version of a file.
//
// A [Source] synchronizes with the configured remote (default origin/main)
// the first time content is requested, then reads files from the
// remote-tracking branch. Lookups never fail: a path missing upstream, an
// unreachable remote, or a read error all report the file as absent.
//
// Two backends are available. [CLIRemote], the default, shells out to git and
// honours the user's credential helpers. [GoGitRemote] uses go-git and needs
// no git binary, but fetches without credentials. [GitDir] and [RepoRoot]
// locate the current repository for hook management, and [Stage] re-adds
// merged files to the index.
package gitctx
