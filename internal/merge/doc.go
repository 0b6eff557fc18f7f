// Package merge reconciles local documentation files with their upstream
// versions.
//
// An [Engine] walks each file through a fixed sequence: read the local copy,
// fetch the upstream copy, skip when upstream has no such file or both copies
// are identical, skip files that look like they hold credentials, then ask
// the store whether the local copy is already a settled merge output. Only
// when all of that fails is the [Service] asked for a new merge, whose output
// is recorded in the store and written back over the file.
//
// Files are processed concurrently. A failure is confined to its file and
// reported in the [Result].
package merge
