// Package output formats run summaries.
//
// Two formats are supported:
//   - text: the "Semantically merged N/M files" line, optionally preceded by
//     one line per file
//   - json: totals plus every file's outcome, duration and error
//
// Error text is scrubbed of credentials before it is written.
package output
