package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-gateway/internal/models"
	"github.com/noah-isme/school-gateway/internal/repository"
	"github.com/noah-isme/school-gateway/pkg/binex"
	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
)

type stubExamReportStore struct {
	*repository.ExamReportRepository
	taskStore
}

func (s *stubExamReportStore) Fetch(ctx context.Context, q repository.TaskQuery) ([]byte, error) {
	return s.taskStore.Fetch(ctx, q)
}

const reportCard = `{"status":"success","data":{
	"student_id":"S-7","student_name":"Ravi","class":"10","section":"A","exam":"Half Yearly",
	"subjects":[
		{"subject":"Maths","nb":"5","se":"4","mo":"78"},
		{"subject":"Science","nb":5,"se":5,"mo":60,"total":"70"},
		{"subject":"Art","total":45,"max_marks":50}
	],
	"co_scholastic":[{"area":"Discipline","grade":"A"}]
}}`

func newTestExamReportService(body string) (*ExamReportService, *stubExamReportStore) {
	store := &stubExamReportStore{
		ExamReportRepository: repository.NewExamReportRepository(nil),
		taskStore:            taskStore{bodies: map[string]string{binex.TaskExamReport: body}},
	}
	cache, _ := newTestCache(0)
	return NewExamReportService(store, cache, nil), store
}

func TestExamReportComputesTotals(t *testing.T) {
	svc, store := newTestExamReportService(reportCard)

	res, err := svc.Get(context.Background(), studentActor, "S-1", " Half Yearly ")
	require.NoError(t, err)
	report := res.Value
	assert.Equal(t, 87.0, report.Subjects[0].Obtained())
	assert.Equal(t, 202.0, report.GrandTotal.Float())
	assert.Equal(t, 250.0, report.MaxTotal)
	assert.Equal(t, 80.8, report.Percentage)
	assert.Equal(t, "80.80%", report.PercentageDisplay)
	assert.Equal(t, "B1", report.OverallGrade)
	assert.Equal(t, "S-7", store.queries[0].Params.Get("student_id"))
	assert.Equal(t, "Half Yearly", store.queries[0].Params.Get("exam"))
}

func TestExamReportKeepsBackendGrandTotal(t *testing.T) {
	report := models.ExamReport{
		GrandTotal: 190,
		Subjects:   []models.SubjectMark{{Total: 95}, {Total: 90}},
	}
	ScoreReport(&report)
	assert.Equal(t, 190.0, report.GrandTotal.Float())
	assert.Equal(t, 95.0, report.Percentage)
	assert.Equal(t, "A1", report.OverallGrade)
}

func TestExamReportNotFound(t *testing.T) {
	svc, _ := newTestExamReportService(`{"status":"success","data":null}`)
	_, err := svc.Get(context.Background(), adminActor, "S-7", "")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Get(context.Background(), adminActor, "", "")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestGradeBoundaries(t *testing.T) {
	cases := map[float64]string{100: "A1", 91: "A1", 90.99: "A2", 81: "A2", 71: "B1", 61: "B2", 51: "C1", 41: "C2", 33: "D", 32.99: "E", 0: "E"}
	for pct, want := range cases {
		assert.Equal(t, want, Grade(pct), "percentage %v", pct)
	}
}
