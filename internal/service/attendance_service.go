package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-gateway/internal/dto"
	"github.com/noah-isme/school-gateway/internal/filter"
	"github.com/noah-isme/school-gateway/internal/models"
	"github.com/noah-isme/school-gateway/internal/repository"
	"github.com/noah-isme/school-gateway/pkg/dates"
	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
	"github.com/noah-isme/school-gateway/pkg/format"
)

type attendanceStore interface {
	StudentsQuery(class, section string) repository.TaskQuery
	SheetQuery(class, section, date string) repository.TaskQuery
	StudentQuery(studentID, from, to string) repository.TaskQuery
	Fetch(ctx context.Context, q repository.TaskQuery) ([]byte, error)
	Mark(ctx context.Context, class, section, date string, marks map[string]string) error
}

// AttendanceService builds marking sheets and summaries.
type AttendanceService struct {
	repo      attendanceStore
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the service.
func NewAttendanceService(repo attendanceStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AttendanceService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Sheet merges the class roster with the marks recorded for the date. Students only see their
// own line of their own class.
func (s *AttendanceService) Sheet(ctx context.Context, actor *models.JWTClaims, q dto.AttendanceSheetQuery) (Result[models.AttendanceSheet], error) {
	var zero Result[models.AttendanceSheet]
	if actor == nil {
		return zero, appErrors.ErrUnauthorized
	}
	if !actor.Role.IsStaff() {
		q.Class, q.Section = actor.Class, actor.Section
	}
	if err := validate(s.validator, q, "class, section and date are required"); err != nil {
		return zero, err
	}
	day, err := dates.Parse(q.Date)
	if err != nil {
		return zero, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}
	date := dates.Format(day)
	scope := scopeOf(actor)

	roster, err := Read(ctx, s.cache, scope, s.repo.StudentsQuery(q.Class, q.Section), s.repo.Fetch, repository.DecodeStudents)
	if err != nil {
		return zero, err
	}
	marks, err := Read(ctx, s.cache, scope, s.repo.SheetQuery(q.Class, q.Section, date), s.repo.Fetch, repository.DecodeAttendance)
	if err != nil {
		return zero, err
	}

	sheet := models.AttendanceSheet{Class: q.Class, Section: q.Section, Date: date, Entries: mergeRoster(roster.Value, marks.Value)}
	if !actor.Role.IsStaff() {
		own := sheet.Entries[:0]
		for _, e := range sheet.Entries {
			if e.StudentID == actor.StudentID {
				own = append(own, e)
			}
		}
		sheet.Entries = own
	}
	sheet.Tally()

	total := len(sheet.Entries)
	sheet.Entries = filter.Apply(sheet.Entries, filter.Criteria{Status: q.Status, Query: q.Query})
	count := len(sheet.Entries)

	res := Result[models.AttendanceSheet]{Value: sheet, Meta: roster.Meta, Cause: roster.Cause}
	if marks.Degraded() {
		res.Meta, res.Cause = marks.Meta, marks.Cause
	}
	res.Meta.Total = &total
	res.Meta.Count = &count
	return res, nil
}

// Mark submits a full set of P/A marks and returns the refreshed sheet.
func (s *AttendanceService) Mark(ctx context.Context, actor *models.JWTClaims, req dto.MarkAttendanceRequest) (Result[models.AttendanceSheet], error) {
	var zero Result[models.AttendanceSheet]
	if err := validate(s.validator, req, "invalid attendance payload"); err != nil {
		return zero, err
	}
	day, err := dates.Parse(req.Date)
	if err != nil {
		return zero, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}

	marks := make(map[string]string, len(req.Marks))
	for id, raw := range req.Marks {
		id = strings.TrimSpace(id)
		if id == "" {
			return zero, appErrors.Clone(appErrors.ErrValidation, "student id is required for every mark")
		}
		mark, ok := models.NormalizeMark(raw)
		if !ok {
			return zero, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("mark for %s must be P or A", id))
		}
		marks[id] = mark
	}

	date := dates.Format(day)
	writeErr := s.repo.Mark(ctx, req.Class, req.Section, date, marks)
	if writeErr != nil {
		s.logger.Warn("attendance submission failed", zap.String("class", req.Class), zap.String("section", req.Section), zap.String("date", date), zap.Error(writeErr))
	} else {
		s.logger.Info("attendance marked", zap.String("class", req.Class), zap.String("section", req.Section), zap.String("date", date), zap.Int("marks", len(marks)))
	}

	res, err := s.Sheet(ctx, actor, dto.AttendanceSheetQuery{Class: req.Class, Section: req.Section, Date: date})
	if err != nil {
		s.logger.Warn("attendance refresh failed", zap.Error(err))
	}
	return written(res, err, writeErr)
}

// Summary counts one student's marks over an inclusive date range.
func (s *AttendanceService) Summary(ctx context.Context, actor *models.JWTClaims, q dto.AttendanceSummaryQuery) (Result[models.AttendanceSummary], error) {
	var zero Result[models.AttendanceSummary]
	if err := validate(s.validator, q, "from and to are required"); err != nil {
		return zero, err
	}
	sid, err := studentFilter(actor, q.StudentID)
	if err != nil {
		return zero, err
	}
	if sid == "" {
		return zero, appErrors.Clone(appErrors.ErrValidation, "student_id is required")
	}
	from, err := dates.Parse(q.From)
	if err != nil {
		return zero, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid from date")
	}
	to, err := dates.Parse(q.To)
	if err != nil {
		return zero, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid to date")
	}
	if to.Before(from) {
		return zero, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}

	records, err := Read(ctx, s.cache, scopeOf(actor), s.repo.StudentQuery(sid, dates.Format(from), dates.Format(to)), s.repo.Fetch, repository.DecodeAttendance)
	if err != nil {
		return zero, err
	}

	summary := models.AttendanceSummary{
		StudentID: sid,
		From:      dates.Format(from),
		To:        dates.Format(to),
		SpanDays:  dates.CalculateDays(from, to),
		Records:   make([]models.AttendanceRecord, 0, len(records.Value)),
	}
	for _, rec := range records.Value {
		if raw := rec.Date.String(); raw != "" {
			if day, err := dates.Parse(raw); err == nil && (day.Before(from) || day.After(to)) {
				continue
			}
		}
		mark, ok := models.NormalizeMark(rec.Status.String())
		if !ok {
			continue
		}
		switch mark {
		case models.AttendancePresent:
			summary.Present++
		case models.AttendanceAbsent:
			summary.Absent++
		}
		summary.Records = append(summary.Records, rec)
	}
	summary.Total = summary.Present + summary.Absent
	summary.Percentage = format.Ratio(float64(summary.Present), float64(summary.Total))
	summary.Display = format.Percent(summary.Percentage)

	return Result[models.AttendanceSummary]{Value: summary, Meta: records.Meta, Cause: records.Cause}, nil
}

// mergeRoster keeps roster order and appends marks for students missing from the roster.
func mergeRoster(roster []models.Student, marks []models.AttendanceRecord) []models.AttendanceEntry {
	byID := make(map[string]string, len(marks))
	for _, m := range marks {
		if mark, ok := models.NormalizeMark(m.Status.String()); ok {
			byID[m.StudentID.String()] = mark
		}
	}

	entries := make([]models.AttendanceEntry, 0, len(roster))
	seen := make(map[string]struct{}, len(roster))
	for _, st := range roster {
		id := st.ID.String()
		seen[id] = struct{}{}
		entries = append(entries, models.AttendanceEntry{StudentID: id, StudentName: st.Name.String(), Roll: st.Roll.String(), Status: byID[id]})
	}

	var extra []string
	for id := range byID {
		if _, ok := seen[id]; !ok {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	for _, id := range extra {
		entries = append(entries, models.AttendanceEntry{StudentID: id, Status: byID[id]})
	}
	return entries
}
