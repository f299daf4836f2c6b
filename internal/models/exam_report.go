package models

import "github.com/noah-isme/school-gateway/pkg/binex"

// DefaultSubjectMax is assumed when the backend omits a subject's maximum marks.
const DefaultSubjectMax = 100

// SubjectMark holds one subject's components: notebook (nb), subject enrichment (se) and
// marks obtained in the written paper (mo).
type SubjectMark struct {
	Subject binex.Text   `json:"subject"`
	NB      binex.Number `json:"nb"`
	SE      binex.Number `json:"se"`
	MO      binex.Number `json:"mo"`
	Total   binex.Number `json:"total"`
	Max     binex.Number `json:"max_marks"`
	Grade   binex.Text   `json:"grade"`
}

// Obtained returns the reported total, or the component sum when the total is missing.
func (s SubjectMark) Obtained() float64 {
	if s.Total != 0 {
		return s.Total.Float()
	}
	return s.NB.Float() + s.SE.Float() + s.MO.Float()
}

// MaxMarks returns the subject maximum, defaulting to DefaultSubjectMax.
func (s SubjectMark) MaxMarks() float64 {
	if s.Max > 0 {
		return s.Max.Float()
	}
	return DefaultSubjectMax
}

// CoScholasticGrade is a graded non-academic area such as art or discipline.
type CoScholasticGrade struct {
	Area  binex.Text `json:"area"`
	Grade binex.Text `json:"grade"`
}

// ExamReport is a student's report card for one exam.
type ExamReport struct {
	StudentID    binex.Text          `json:"student_id"`
	StudentName  binex.Text          `json:"student_name"`
	Class        binex.Text          `json:"class"`
	Section      binex.Text          `json:"section"`
	Roll         binex.Text          `json:"roll"`
	Exam         binex.Text          `json:"exam"`
	Subjects     []SubjectMark       `json:"subjects"`
	GrandTotal   binex.Number        `json:"grand_total"`
	CoScholastic []CoScholasticGrade `json:"co_scholastic"`
	Attendance   binex.Text          `json:"attendance,omitempty"`
	Remarks      binex.Text          `json:"remarks,omitempty"`

	MaxTotal          float64 `json:"max_total"`
	Percentage        float64 `json:"percentage"`
	PercentageDisplay string  `json:"percentage_display"`
	OverallGrade      string  `json:"overall_grade"`
}
