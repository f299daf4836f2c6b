package dto

// AttendanceSheetQuery selects a marking grid.
type AttendanceSheetQuery struct {
	Class   string `form:"class" validate:"required"`
	Section string `form:"section" validate:"required"`
	Date    string `form:"date" validate:"required"`
	Status  string `form:"status"`
	Query   string `form:"q"`
}

// MarkAttendanceRequest submits a class's marks keyed by student id. Values must be P or A.
type MarkAttendanceRequest struct {
	Class   string            `json:"class" validate:"required"`
	Section string            `json:"section" validate:"required"`
	Date    string            `json:"date" validate:"required"`
	Marks   map[string]string `json:"marks" validate:"required,min=1"`
}

// AttendanceSummaryQuery selects one student's range.
type AttendanceSummaryQuery struct {
	StudentID string `form:"student_id"`
	From      string `form:"from" validate:"required"`
	To        string `form:"to" validate:"required"`
}
