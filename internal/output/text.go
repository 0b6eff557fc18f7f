package output

import (
	"fmt"
	"io"
	"time"

	"github.com/dshills/sem-merge/internal/merge"
	"github.com/dshills/sem-merge/internal/redact"
)

// TextWriter outputs a human-readable summary.
type TextWriter struct {
	Detailed bool
}

func (t *TextWriter) Write(w io.Writer, result merge.Result) error {
	ew := &errWriter{w: w}

	if t.Detailed {
		for _, f := range result.Files {
			ew.printf("  %-18s %s (%s)\n", f.Outcome, f.Path, f.Duration.Round(time.Millisecond))
			if f.Err != nil {
				ew.printf("    %s\n", redact.Secrets(f.Err.Error()))
			}
		}
	}
	ew.printf("Semantically merged %d/%d files\n", result.Successes, result.Total)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
