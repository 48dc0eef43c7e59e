package models

// StagedUpload is a file held in temporary storage until its form is
// saved or cancelled.
type StagedUpload struct {
	URL         string `json:"url"`
	SessionID   string `json:"sessionId"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

type FinalizeResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	FinalURL    string `json:"finalUrl,omitempty"`
	FallbackURL string `json:"fallbackUrl,omitempty"`
	Deleted     int    `json:"deleted,omitempty"`
}

type CleanupResult struct {
	Path    string `json:"path"`
	Deleted bool   `json:"deleted"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}
