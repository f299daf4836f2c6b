package dto

// ApplyLeaveRequest submits a leave application. Staff must name the student; students apply for themselves.
type ApplyLeaveRequest struct {
	StudentID   string `json:"student_id" validate:"omitempty,max=50"`
	StudentName string `json:"student_name" validate:"omitempty,max=150"`
	FromDate    string `json:"from_date" validate:"required"`
	ToDate      string `json:"to_date" validate:"required"`
	Cause       string `json:"cause" validate:"required,max=1000"`
}

// UpdateLeaveStatusRequest approves or rejects an application.
type UpdateLeaveStatusRequest struct {
	Status  string `json:"status" validate:"required"`
	Remarks string `json:"remarks" validate:"max=500"`
}
