package models

import "github.com/noah-isme/school-gateway/pkg/binex"

// Homework is an assignment posted for a class and section.
type Homework struct {
	ID          binex.Text `json:"id"`
	Class       binex.Text `json:"class"`
	Section     binex.Text `json:"section"`
	Subject     binex.Text `json:"subject"`
	Title       binex.Text `json:"title"`
	Description binex.Text `json:"description"`
	AssignedOn  binex.Text `json:"assigned_on"`
	DueDate     binex.Text `json:"due_date"`
	Attachment  binex.Text `json:"attachment,omitempty"`
	Teacher     binex.Text `json:"teacher,omitempty"`
}

// FilterStatus implements filter.Filterable; homework carries no status.
func (h Homework) FilterStatus() string { return "" }

// SearchFields implements filter.Filterable.
func (h Homework) SearchFields() []string {
	return []string{h.Subject.String(), h.Title.String(), h.Description.String()}
}
