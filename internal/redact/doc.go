// Package redact detects secrets so they never reach a text-generation
// provider or the log.
//
// Detection uses regex heuristics covering common secret shapes: API keys,
// JWTs, private keys, AWS credentials, bearer tokens, and provider-specific
// tokens (OpenAI, DeepSeek, Anthropic, GitHub, Slack). A document cannot be
// redacted before merging, since the merged text is written back to disk, so
// callers use [ContainsSecret] to skip such files and [Secrets] to scrub error
// text before logging it.
package redact
