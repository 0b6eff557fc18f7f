package merge

import "time"

// Outcome is what happened to one file during a run.
type Outcome string

const (
	OutcomeMerged          Outcome = "merged"
	OutcomeCertified       Outcome = "certified"
	OutcomeSkippedAbsent   Outcome = "skipped-absent"
	OutcomeSkippedNoChange Outcome = "skipped-unchanged"
	OutcomeSkippedSecret   Outcome = "skipped-secret"
	OutcomeFailed          Outcome = "failed"
)

// Succeeded reports whether the outcome counts towards the merged total.
// A certified file is already a settled merge, so it counts.
func (o Outcome) Succeeded() bool {
	return o == OutcomeMerged || o == OutcomeCertified
}

// FileResult is the outcome for one path.
type FileResult struct {
	Path     string
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// Result summarizes a run over several files.
type Result struct {
	Files     []FileResult
	Successes int
	Total     int
	// Err aggregates every per-file failure, or is nil.
	Err error
}

// Count returns how many files ended with the given outcome.
func (r Result) Count(o Outcome) int {
	n := 0
	for _, f := range r.Files {
		if f.Outcome == o {
			n++
		}
	}
	return n
}
