package domain

import "errors"

// IngestionOutcome is the result of ingesting one file.
// Exactly one of Document and Failure is set.
type IngestionOutcome struct {
	Path     string
	Document *Document
	Failure  *IngestionFailure
}

// IngestionReport summarises an ingestDirectory run.
type IngestionReport struct {
	Directory string
	Outcomes  []IngestionOutcome
}

// Succeeded returns the number of documents ingested.
func (r *IngestionReport) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Failure == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of files that could not be ingested.
func (r *IngestionReport) Failed() int {
	return len(r.Outcomes) - r.Succeeded()
}

// Failures returns the failure records in file order.
func (r *IngestionReport) Failures() []*IngestionFailure {
	var out []*IngestionFailure
	for _, o := range r.Outcomes {
		if o.Failure != nil {
			out = append(out, o.Failure)
		}
	}
	return out
}

// StoreStats is returned by the status tool.
type StoreStats struct {
	Documents         int `json:"documents"`
	Chunks            int `json:"chunks"`
	PendingCandidates int `json:"pending_candidates"`
}

// FailureView is the serialisable form of an IngestionFailure.
type FailureView struct {
	Path    string      `json:"path"`
	Stage   IngestStage `json:"stage"`
	Message string      `json:"message"`
	Hint    string      `json:"hint,omitempty"`
}

// ReportView is the upload tool's rendering of an IngestionReport.
type ReportView struct {
	Directory string        `json:"directory"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Documents []string      `json:"documents"`
	Failures  []FailureView `json:"failures,omitempty"`
}

// View renders the report for tool output.
func (r *IngestionReport) View() ReportView {
	v := ReportView{
		Directory: r.Directory,
		Succeeded: r.Succeeded(),
		Failed:    r.Failed(),
		Documents: []string{},
	}
	for _, o := range r.Outcomes {
		if o.Failure == nil {
			if o.Document != nil {
				v.Documents = append(v.Documents, o.Document.ID)
			}
			continue
		}
		fv := FailureView{Path: o.Path, Stage: o.Failure.Stage, Message: o.Failure.Error()}
		var extraction *ExtractionError
		if errors.As(o.Failure, &extraction) {
			fv.Hint = extraction.Hint
		}
		v.Failures = append(v.Failures, fv)
	}
	return v
}
