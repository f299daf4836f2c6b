package models

import "github.com/noah-isme/school-gateway/pkg/binex"

// Student is a roster entry as returned by the class listing task.
type Student struct {
	ID      binex.Text `json:"student_id"`
	Name    binex.Text `json:"student_name"`
	Roll    binex.Text `json:"roll"`
	Class   binex.Text `json:"class"`
	Section binex.Text `json:"section"`
}

// SearchFields implements filter.Filterable.
func (s Student) SearchFields() []string {
	return []string{s.Name.String(), s.ID.String(), s.Roll.String()}
}

// FilterStatus implements filter.Filterable; students carry no status.
func (s Student) FilterStatus() string { return "" }
