package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/noah-isme/school-gateway/internal/models"
	"github.com/noah-isme/school-gateway/pkg/binex"
	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
)

// AttendanceRepository maps roster and attendance operations onto backend tasks.
type AttendanceRepository struct {
	*RemoteRepository
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(remote *RemoteRepository) *AttendanceRepository {
	return &AttendanceRepository{RemoteRepository: remote}
}

// StudentsQuery reads the roster of a class and section.
func (r *AttendanceRepository) StudentsQuery(class, section string) TaskQuery {
	return TaskQuery{Task: binex.TaskStudents, Params: params("class", class, "section", section)}
}

// SheetQuery reads the marks recorded for a class, section and date.
func (r *AttendanceRepository) SheetQuery(class, section, date string) TaskQuery {
	return TaskQuery{Task: binex.TaskAttendance, Params: params("class", class, "section", section, "date", date)}
}

// StudentQuery reads one student's marks over a date range.
func (r *AttendanceRepository) StudentQuery(studentID, from, to string) TaskQuery {
	return TaskQuery{Task: binex.TaskStudentAttend, Params: params("student_id", studentID, "from", from, "to", to)}
}

// Mark submits a full set of marks as a student_id to P/A object.
func (r *AttendanceRepository) Mark(ctx context.Context, class, section, date string, marks map[string]string) error {
	body := map[string]interface{}{
		"class":      class,
		"section":    section,
		"date":       date,
		"attendance": marks,
	}
	_, err := r.PostJSON(ctx, binex.TaskMarkAttendance, params("class", class, "section", section, "date", date), body)
	return err
}

// DecodeStudents decodes a roster.
func DecodeStudents(raw []byte) ([]models.Student, error) {
	return binex.DecodeList[models.Student](raw, "data", "students")
}

// DecodeAttendance accepts either a list of records or a student_id to mark object.
func DecodeAttendance(raw []byte) ([]models.AttendanceRecord, error) {
	records, err := binex.DecodeList[models.AttendanceRecord](raw, "data", "attendance")
	if err == nil || !errors.Is(err, appErrors.ErrMalformedResponse) {
		return records, err
	}
	marks, mapErr := binex.DecodeObject[map[string]binex.Text](raw, "data", "attendance")
	if mapErr != nil {
		return nil, err
	}
	ids := make([]string, 0, len(marks))
	for id := range marks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	records = make([]models.AttendanceRecord, 0, len(ids))
	for _, id := range ids {
		records = append(records, models.AttendanceRecord{StudentID: binex.Text(id), Status: marks[id]})
	}
	return records, nil
}
