package models

import (
	"encoding/json"
	"time"
)

// UploadState tracks an upload job through its lifecycle.
type UploadState string

const (
	UploadQueued    UploadState = "QUEUED"
	UploadUploading UploadState = "UPLOADING"
	UploadSucceeded UploadState = "SUCCEEDED"
	UploadFailed    UploadState = "FAILED"
	UploadCancelled UploadState = "CANCELLED"
)

// Terminal reports whether the job can no longer change state.
func (s UploadState) Terminal() bool {
	return s == UploadSucceeded || s == UploadFailed || s == UploadCancelled
}

// UploadJob is a snapshot of an upload's progress.
type UploadJob struct {
	ID           string          `json:"id"`
	OwnerID      string          `json:"-"`
	Task         string          `json:"task"`
	Filename     string          `json:"filename"`
	ContentType  string          `json:"content_type"`
	OriginalSize int64           `json:"original_size"`
	Size         int64           `json:"size"`
	Recompressed bool            `json:"recompressed"`
	State        UploadState     `json:"state"`
	BytesSent    int64           `json:"bytes_sent"`
	Progress     float64         `json:"progress"`
	Error        string          `json:"error,omitempty"`
	Result       json.RawMessage `json:"result,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
