package repository

import (
	"context"
	"strconv"

	"github.com/noah-isme/school-gateway/internal/models"
	"github.com/noah-isme/school-gateway/pkg/binex"
)

// ApplyLeaveParams is the form sent by apply_leave.
type ApplyLeaveParams struct {
	StudentID   string
	StudentName string
	Class       string
	Section     string
	FromDate    string
	ToDate      string
	Cause       string
	Days        int
}

// LeaveRepository maps leave operations onto backend tasks.
type LeaveRepository struct {
	*RemoteRepository
}

// NewLeaveRepository constructs the repository.
func NewLeaveRepository(remote *RemoteRepository) *LeaveRepository {
	return &LeaveRepository{RemoteRepository: remote}
}

// ListQuery reads one student's applications, or every application when studentID is empty.
func (r *LeaveRepository) ListQuery(studentID string) TaskQuery {
	if studentID == "" {
		return TaskQuery{Task: binex.TaskAllLeaves, Params: params()}
	}
	return TaskQuery{Task: binex.TaskStudentLeaves, Params: params("student_id", studentID)}
}

// Apply submits a new application.
func (r *LeaveRepository) Apply(ctx context.Context, p ApplyLeaveParams) error {
	form := params(
		"student_id", p.StudentID,
		"student_name", p.StudentName,
		"class", p.Class,
		"section", p.Section,
		"from_date", p.FromDate,
		"to_date", p.ToDate,
		"cause", p.Cause,
		"days", strconv.Itoa(p.Days),
	)
	_, err := r.PostForm(ctx, binex.TaskApplyLeave, form)
	return err
}

// UpdateStatus asks the backend to approve or reject an application.
func (r *LeaveRepository) UpdateStatus(ctx context.Context, id, status, remarks string) error {
	_, err := r.PostForm(ctx, binex.TaskUpdateLeaveStatus, params("id", id, "status", status, "remarks", remarks))
	return err
}

// DecodeLeaves decodes a leave listing and fills the day counts.
func DecodeLeaves(raw []byte) ([]models.LeaveApplication, error) {
	items, err := binex.DecodeList[models.LeaveApplication](raw, "data", "leaves")
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i] = items[i].WithDays()
	}
	return items, nil
}
