package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/school-gateway/internal/models"
	"github.com/noah-isme/school-gateway/internal/repository"
	"github.com/noah-isme/school-gateway/pkg/binex"
	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
	"github.com/noah-isme/school-gateway/pkg/format"
)

type examReportStore interface {
	ReportQuery(studentID, exam string) repository.TaskQuery
	Fetch(ctx context.Context, q repository.TaskQuery) ([]byte, error)
}

// ExamReportService serves report cards with computed totals.
type ExamReportService struct {
	repo   examReportStore
	cache  *CacheService
	logger *zap.Logger
}

// NewExamReportService constructs the service.
func NewExamReportService(repo examReportStore, cache *CacheService, logger *zap.Logger) *ExamReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamReportService{repo: repo, cache: cache, logger: logger}
}

// Get returns the report card of a student for an exam.
func (s *ExamReportService) Get(ctx context.Context, actor *models.JWTClaims, studentID, exam string) (Result[models.ExamReport], error) {
	var zero Result[models.ExamReport]
	sid, err := studentFilter(actor, studentID)
	if err != nil {
		return zero, err
	}
	if sid == "" {
		return zero, appErrors.Clone(appErrors.ErrValidation, "student_id is required")
	}
	res, err := Read(ctx, s.cache, scopeOf(actor), s.repo.ReportQuery(sid, strings.TrimSpace(exam)), s.repo.Fetch, decodeScoredReport)
	if err != nil {
		return zero, err
	}
	if res.Value.StudentID == "" {
		res.Value.StudentID = binex.Text(sid)
	}
	return res, nil
}

func decodeScoredReport(raw []byte) (models.ExamReport, error) {
	report, err := repository.DecodeExamReport(raw)
	if err != nil {
		return report, err
	}
	ScoreReport(&report)
	return report, nil
}

// ScoreReport fills the computed totals. A backend grand total wins over the subject sum.
func ScoreReport(r *models.ExamReport) {
	var obtained float64
	r.MaxTotal = 0
	for _, subject := range r.Subjects {
		obtained += subject.Obtained()
		r.MaxTotal += subject.MaxMarks()
	}
	if r.GrandTotal == 0 {
		r.GrandTotal = binex.Number(obtained)
	}
	r.Percentage = format.Ratio(r.GrandTotal.Float(), r.MaxTotal)
	r.PercentageDisplay = format.Percent(r.Percentage)
	r.OverallGrade = Grade(r.Percentage)
}

// Grade maps a percentage onto the nine-point scale used on report cards.
func Grade(percentage float64) string {
	switch {
	case percentage >= 91:
		return "A1"
	case percentage >= 81:
		return "A2"
	case percentage >= 71:
		return "B1"
	case percentage >= 61:
		return "B2"
	case percentage >= 51:
		return "C1"
	case percentage >= 41:
		return "C2"
	case percentage >= 33:
		return "D"
	default:
		return "E"
	}
}
