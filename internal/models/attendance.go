package models

import (
	"strings"

	"github.com/noah-isme/school-gateway/pkg/binex"
)

// Attendance marks accepted by the backend.
const (
	AttendancePresent = "P"
	AttendanceAbsent  = "A"
)

// NormalizeMark maps the spellings seen on the wire to P or A. The bool is false for anything else.
func NormalizeMark(raw string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "P", "PRESENT", "1":
		return AttendancePresent, true
	case "A", "ABSENT", "0":
		return AttendanceAbsent, true
	default:
		return "", false
	}
}

// AttendanceRecord is one stored mark for a class, section and date.
type AttendanceRecord struct {
	StudentID binex.Text `json:"student_id"`
	Status    binex.Text `json:"status"`
	Date      binex.Text `json:"date,omitempty"`
}

// AttendanceEntry is a roster line merged with its mark, if any.
type AttendanceEntry struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	Roll        string `json:"roll,omitempty"`
	Status      string `json:"status"`
}

// FilterStatus implements filter.Filterable.
func (e AttendanceEntry) FilterStatus() string { return e.Status }

// SearchFields implements filter.Filterable.
func (e AttendanceEntry) SearchFields() []string {
	return []string{e.StudentName, e.StudentID, e.Roll}
}

// AttendanceSheet is the marking grid for one class, section and date.
type AttendanceSheet struct {
	Class    string            `json:"class"`
	Section  string            `json:"section"`
	Date     string            `json:"date"`
	Entries  []AttendanceEntry `json:"entries"`
	Present  int               `json:"present"`
	Absent   int               `json:"absent"`
	Unmarked int               `json:"unmarked"`
}

// Tally recounts Present, Absent and Unmarked from Entries.
func (s *AttendanceSheet) Tally() {
	s.Present, s.Absent, s.Unmarked = 0, 0, 0
	for _, e := range s.Entries {
		switch e.Status {
		case AttendancePresent:
			s.Present++
		case AttendanceAbsent:
			s.Absent++
		default:
			s.Unmarked++
		}
	}
}

// AttendanceSummary aggregates one student's marks over a date range.
type AttendanceSummary struct {
	StudentID  string             `json:"student_id"`
	From       string             `json:"from"`
	To         string             `json:"to"`
	SpanDays   int                `json:"span_days"`
	Present    int                `json:"present"`
	Absent     int                `json:"absent"`
	Total      int                `json:"total"`
	Percentage float64            `json:"percentage"`
	Display    string             `json:"percentage_display"`
	Records    []AttendanceRecord `json:"records"`
}
