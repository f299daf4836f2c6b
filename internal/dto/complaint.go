package dto

// CreateComplaintRequest files a complaint.
type CreateComplaintRequest struct {
	StudentID   string `json:"student_id" validate:"omitempty,max=50"`
	StudentName string `json:"student_name" validate:"omitempty,max=150"`
	StudentRoll string `json:"student_roll" validate:"omitempty,max=20"`
	ComplaintTo string `json:"complaint_to" validate:"omitempty,max=150"`
	Complaint   string `json:"complaint" validate:"required,max=2000"`
}

// UpdateComplaintStatusRequest resolves or closes a complaint.
type UpdateComplaintStatusRequest struct {
	Status   string `json:"status" validate:"required"`
	Response string `json:"response" validate:"max=1000"`
}
