package repository

import (
	"context"

	"github.com/noah-isme/school-gateway/internal/models"
	"github.com/noah-isme/school-gateway/pkg/binex"
)

// CreateComplaintParams is the form sent by add_complaint.
type CreateComplaintParams struct {
	StudentID      string
	StudentName    string
	StudentClass   string
	StudentSection string
	StudentRoll    string
	ComplaintTo    string
	Complaint      string
}

// ComplaintRepository maps complaint operations onto backend tasks.
type ComplaintRepository struct {
	*RemoteRepository
}

// NewComplaintRepository constructs the repository.
func NewComplaintRepository(remote *RemoteRepository) *ComplaintRepository {
	return &ComplaintRepository{RemoteRepository: remote}
}

// ListQuery reads complaints, narrowed to one student when studentID is set.
func (r *ComplaintRepository) ListQuery(studentID string) TaskQuery {
	return TaskQuery{Task: binex.TaskComplaints, Params: params("student_id", studentID)}
}

// Create files a complaint.
func (r *ComplaintRepository) Create(ctx context.Context, p CreateComplaintParams) error {
	_, err := r.PostForm(ctx, binex.TaskAddComplaint, params(
		"student_id", p.StudentID,
		"student_name", p.StudentName,
		"student_class", p.StudentClass,
		"student_section", p.StudentSection,
		"student_roll", p.StudentRoll,
		"complaint_to", p.ComplaintTo,
		"complaint", p.Complaint,
	))
	return err
}

// UpdateStatus resolves or closes a complaint with an optional response.
func (r *ComplaintRepository) UpdateStatus(ctx context.Context, id, status, response string) error {
	_, err := r.PostForm(ctx, binex.TaskUpdateComplaintStatus, params("id", id, "status", status, "response", response))
	return err
}

// DecodeComplaints decodes a complaint listing.
func DecodeComplaints(raw []byte) ([]models.Complaint, error) {
	return binex.DecodeList[models.Complaint](raw, "data", "complaints")
}
