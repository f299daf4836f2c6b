package models

import "github.com/noah-isme/school-gateway/pkg/binex"

const (
	ComplaintStatusActive   = "ACTIVE"
	ComplaintStatusResolved = "RESOLVED"
	ComplaintStatusClosed   = "CLOSED"
)

// Complaint is a grievance raised by or about a student.
type Complaint struct {
	ID             binex.Text `json:"id"`
	StudentID      binex.Text `json:"student_id,omitempty"`
	StudentName    binex.Text `json:"student_name"`
	StudentClass   binex.Text `json:"student_class"`
	StudentSection binex.Text `json:"student_section"`
	StudentRoll    binex.Text `json:"student_roll"`
	ComplaintTo    binex.Text `json:"complaint_to"`
	Complaint      binex.Text `json:"complaint"`
	Status         binex.Text `json:"status"`
	Response       binex.Text `json:"response"`
	Date           binex.Text `json:"date,omitempty"`
}

// FilterStatus implements filter.Filterable.
func (c Complaint) FilterStatus() string { return c.Status.String() }

// SearchFields implements filter.Filterable.
func (c Complaint) SearchFields() []string {
	return []string{c.StudentName.String(), c.ID.String(), c.Complaint.String(), c.ComplaintTo.String(), c.StudentRoll.String()}
}
