package domain

import "time"

// FileInfo describes one path in the working directory.
type FileInfo struct {
	Path        string    `json:"path"`
	Size        int64     `json:"size"`
	ModifiedAt  time.Time `json:"modified_at"`
	IsFile      bool      `json:"is_file"`
	IsDirectory bool      `json:"is_directory"`
	MimeClass   MimeClass `json:"mime_class,omitempty"`
}

// FileMatch is a file that contains a searched pattern, with the 1-based
// line of every match.
type FileMatch struct {
	File    string `json:"file"`
	Matches int    `json:"matches"`
	Lines   []int  `json:"lines"`
}
