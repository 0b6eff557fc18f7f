// Sem-merge is a git pre-commit hook that semantically merges documentation
// files with their versions on the remote main branch using an
// OpenAI-compatible model.
//
// Usage:
//
//	sem-merge README.md docs/guide.md    # merge the given files
//	sem-merge --ai-provider deepseek ... # choose a provider explicitly
//	sem-merge hook install               # run on every commit
//	sem-merge cache show                 # inspect certified merges
package main
