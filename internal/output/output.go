package output

import (
	"fmt"
	"io"

	"github.com/dshills/sem-merge/internal/merge"
)

// Writer writes a run summary in a specific format.
type Writer interface {
	Write(w io.Writer, result merge.Result) error
}

// GetWriter returns a writer for the specified format. Detailed text output
// lists every file, not just the totals.
func GetWriter(format string, detailed bool) (Writer, error) {
	switch format {
	case "", "text":
		return &TextWriter{Detailed: detailed}, nil
	case "json":
		return &JSONWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
