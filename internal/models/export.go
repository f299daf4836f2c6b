package models

import "time"

// ExportKind names a generated document type.
type ExportKind string

const (
	ExportReceipt    ExportKind = "receipt"
	ExportExamReport ExportKind = "exam_report"
	ExportAttendance ExportKind = "attendance"
	ExportDues       ExportKind = "dues"
)

// ExportFile points at a generated file and its signed download link.
type ExportFile struct {
	ID          string     `json:"id"`
	Kind        ExportKind `json:"kind"`
	Filename    string     `json:"filename"`
	ContentType string     `json:"content_type"`
	Size        int        `json:"size"`
	URL         string     `json:"url"`
	ExpiresAt   time.Time  `json:"expires_at"`
}
