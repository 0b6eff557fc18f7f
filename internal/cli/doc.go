// Package cli wires together the Cobra command tree for the sem-merge binary.
//
// The root command merges the documentation files named on the command line
// with their upstream versions. Subcommands manage the cache, configuration
// and the pre-commit hook. Startup problems map to exit codes; individual
// merge failures never do, so the hook cannot block a commit.
package cli
