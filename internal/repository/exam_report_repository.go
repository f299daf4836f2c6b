package repository

import (
	"github.com/noah-isme/school-gateway/internal/models"
	"github.com/noah-isme/school-gateway/pkg/binex"
)

// ExamReportRepository maps report card reads onto the backend.
type ExamReportRepository struct {
	*RemoteRepository
}

// NewExamReportRepository constructs the repository.
func NewExamReportRepository(remote *RemoteRepository) *ExamReportRepository {
	return &ExamReportRepository{RemoteRepository: remote}
}

// ReportQuery reads a student's report for an exam; an empty exam lets the backend pick the latest.
func (r *ExamReportRepository) ReportQuery(studentID, exam string) TaskQuery {
	return TaskQuery{Task: binex.TaskExamReport, Params: params("student_id", studentID, "exam", exam)}
}

// DecodeExamReport decodes a report card.
func DecodeExamReport(raw []byte) (models.ExamReport, error) {
	return binex.DecodeObject[models.ExamReport](raw, "data", "report")
}
