package models

import (
	"github.com/noah-isme/school-gateway/pkg/binex"
	"github.com/noah-isme/school-gateway/pkg/dates"
)

const (
	LeaveStatusPending  = "PENDING"
	LeaveStatusApproved = "APPROVED"
	LeaveStatusRejected = "REJECTED"
)

// LeaveApplication is a student's request for leave.
type LeaveApplication struct {
	ID          binex.Text `json:"id"`
	StudentID   binex.Text `json:"student_id"`
	StudentName binex.Text `json:"student_name"`
	Class       binex.Text `json:"class,omitempty"`
	Section     binex.Text `json:"section,omitempty"`
	FromDate    binex.Text `json:"from_date"`
	ToDate      binex.Text `json:"to_date"`
	Cause       binex.Text `json:"cause"`
	Status      binex.Text `json:"status"`
	Remarks     binex.Text `json:"remarks"`
	AppliedOn   binex.Text `json:"applied_on,omitempty"`
	Days        int        `json:"days"`
}

// FilterStatus implements filter.Filterable.
func (l LeaveApplication) FilterStatus() string { return l.Status.String() }

// SearchFields implements filter.Filterable.
func (l LeaveApplication) SearchFields() []string {
	return []string{l.StudentName.String(), l.StudentID.String(), l.ID.String(), l.Cause.String()}
}

// WithDays fills Days from the inclusive date span; unparseable dates leave it at zero.
func (l LeaveApplication) WithDays() LeaveApplication {
	if days, err := dates.CalculateDaysBetween(l.FromDate.String(), l.ToDate.String()); err == nil {
		l.Days = days
	}
	return l
}
