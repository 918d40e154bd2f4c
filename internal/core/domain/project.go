package domain

import "time"

// CandidateState tracks a ProjectCandidate through confirmation.
type CandidateState string

// Candidate states.
const (
	CandidateDiscovered          CandidateState = "discovered"
	CandidatePendingConfirmation CandidateState = "pending_confirmation"
	CandidateAccepted            CandidateState = "accepted"
	CandidateRejected            CandidateState = "rejected"
)

// ProjectCandidate is a folder the watcher found with a marker file.
type ProjectCandidate struct {
	// Path is the candidate folder.
	Path string

	// Root is the watched root the folder was found under.
	Root string

	// Markers are the marker files present in Path.
	Markers []string

	// Preview lists up to ten supported files in Path.
	Preview []string

	// FileCount is the number of supported files in Path.
	FileCount int

	DiscoveredAt time.Time
	State        CandidateState
}

// RootState is the scan state of one watched root.
type RootState string

// Root states.
const (
	RootIdle                 RootState = "idle"
	RootScanning             RootState = "scanning"
	RootAwaitingConfirmation RootState = "awaiting_confirmation"
)

// ProjectLocation is the result of the find tool.
type ProjectLocation struct {
	// Path is the nearest folder containing the marker file.
	Path string `json:"path"`

	// Marker is the file name that was searched for.
	Marker string `json:"marker"`

	// SupportedFiles lists the ingestible files directly in Path.
	SupportedFiles []string `json:"supported_files"`
}
