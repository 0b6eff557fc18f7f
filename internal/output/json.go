package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/sem-merge/internal/merge"
	"github.com/dshills/sem-merge/internal/redact"
)

// JSONWriter outputs the run summary as JSON.
type JSONWriter struct{}

type jsonSummary struct {
	Merged int        `json:"merged"`
	Total  int        `json:"total"`
	Files  []jsonFile `json:"files"`
}

type jsonFile struct {
	Path       string `json:"path"`
	Outcome    string `json:"outcome"`
	DurationMs int64  `json:"durationMs"`
	Error      string `json:"error,omitempty"`
}

func (j *JSONWriter) Write(w io.Writer, result merge.Result) error {
	summary := jsonSummary{
		Merged: result.Successes,
		Total:  result.Total,
		Files:  make([]jsonFile, 0, len(result.Files)),
	}
	for _, f := range result.Files {
		jf := jsonFile{
			Path:       f.Path,
			Outcome:    string(f.Outcome),
			DurationMs: f.Duration.Milliseconds(),
		}
		if f.Err != nil {
			jf.Error = redact.Secrets(f.Err.Error())
		}
		summary.Files = append(summary.Files, jf)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
