// Package cache certifies merge results so the hook does not merge its own
// output again.
//
// Entries are keyed by a SHA-256 fingerprint of the file path, the merged
// content the hook wrote, and the remote content it merged against. When the
// hook fires again and the working copy equals a previously written merge
// result for the same remote version, the lookup hits and no merge call is
// made. Certifications expire after [Expiration].
//
// The whole store lives in a single JSON document ($DIR/processed.json) that
// is rewritten after every mutation. Persistence is best effort: a corrupt
// file reads as an empty store, and a failed write leaves the store running
// in memory for the rest of the process.
package cache
