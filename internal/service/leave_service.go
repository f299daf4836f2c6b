package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-gateway/internal/dto"
	"github.com/noah-isme/school-gateway/internal/filter"
	"github.com/noah-isme/school-gateway/internal/models"
	"github.com/noah-isme/school-gateway/internal/repository"
	"github.com/noah-isme/school-gateway/internal/workflow"
	"github.com/noah-isme/school-gateway/pkg/dates"
	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
)

type leaveStore interface {
	ListQuery(studentID string) repository.TaskQuery
	Fetch(ctx context.Context, q repository.TaskQuery) ([]byte, error)
	Apply(ctx context.Context, p repository.ApplyLeaveParams) error
	UpdateStatus(ctx context.Context, id, status, remarks string) error
}

// LeaveService lists and moves leave applications.
type LeaveService struct {
	repo      leaveStore
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLeaveService constructs the service.
func NewLeaveService(repo leaveStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *LeaveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &LeaveService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns the caller's applications. Staff see everything unless they name a student.
func (s *LeaveService) List(ctx context.Context, actor *models.JWTClaims, studentID string, c filter.Criteria) (Result[[]models.LeaveApplication], error) {
	sid, err := studentFilter(actor, studentID)
	if err != nil {
		return Result[[]models.LeaveApplication]{}, err
	}
	res, err := Read(ctx, s.cache, scopeOf(actor), s.repo.ListQuery(sid), s.repo.Fetch, repository.DecodeLeaves)
	if err != nil {
		return res, err
	}
	return listResult(res, c), nil
}

// Apply submits an application and returns the refreshed list.
func (s *LeaveService) Apply(ctx context.Context, actor *models.JWTClaims, req dto.ApplyLeaveRequest) (Result[[]models.LeaveApplication], error) {
	var zero Result[[]models.LeaveApplication]
	if err := validate(s.validator, req, "invalid leave application"); err != nil {
		return zero, err
	}
	if strings.TrimSpace(req.Cause) == "" {
		return zero, appErrors.Clone(appErrors.ErrValidation, "cause is required")
	}
	sid, err := studentFilter(actor, req.StudentID)
	if err != nil {
		return zero, err
	}
	if sid == "" {
		return zero, appErrors.Clone(appErrors.ErrValidation, "student_id is required")
	}

	from, err := dates.Parse(req.FromDate)
	if err != nil {
		return zero, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid from_date")
	}
	to, err := dates.Parse(req.ToDate)
	if err != nil {
		return zero, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid to_date")
	}
	if dates.Day(to).Before(dates.Day(from)) {
		return zero, appErrors.Clone(appErrors.ErrValidation, "to_date must not be before from_date")
	}

	params := repository.ApplyLeaveParams{
		StudentID:   sid,
		StudentName: req.StudentName,
		FromDate:    dates.Format(from),
		ToDate:      dates.Format(to),
		Cause:       strings.TrimSpace(req.Cause),
		Days:        dates.CalculateDays(from, to),
	}
	if !actor.Role.IsStaff() {
		params.StudentName = actor.Name
		params.Class = actor.Class
		params.Section = actor.Section
	}

	writeErr := s.repo.Apply(ctx, params)
	if writeErr != nil {
		s.logger.Warn("leave application failed", zap.String("student_id", sid), zap.Error(writeErr))
	}
	return s.refresh(ctx, actor, req.StudentID, writeErr)
}

// UpdateStatus approves or rejects an application. The move is checked against the last known
// status when one is cached; the backend decides either way.
func (s *LeaveService) UpdateStatus(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateLeaveStatusRequest) (Result[[]models.LeaveApplication], error) {
	var zero Result[[]models.LeaveApplication]
	if actor == nil {
		return zero, appErrors.ErrUnauthorized
	}
	if err := validate(s.validator, req, "invalid status update"); err != nil {
		return zero, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return zero, appErrors.Clone(appErrors.ErrValidation, "leave id is required")
	}

	target := workflow.Normalize(req.Status)
	if err := workflow.Leave.Validate(s.lastKnownStatus(ctx, actor, id), target); err != nil {
		return zero, err
	}

	writeErr := s.repo.UpdateStatus(ctx, id, target, strings.TrimSpace(req.Remarks))
	if writeErr != nil {
		s.logger.Warn("leave status update failed", zap.String("id", id), zap.String("status", target), zap.Error(writeErr))
	} else {
		s.logger.Info("leave status updated", zap.String("id", id), zap.String("status", target), zap.String("by", actor.UserID))
	}
	return s.refresh(ctx, actor, "", writeErr)
}

func (s *LeaveService) lastKnownStatus(ctx context.Context, actor *models.JWTClaims, id string) string {
	items, ok := Peek(ctx, s.cache, scopeOf(actor), s.repo.ListQuery(""), repository.DecodeLeaves)
	if !ok {
		return ""
	}
	for _, item := range items {
		if item.ID.String() == id {
			return item.Status.String()
		}
	}
	return ""
}

// refresh re-reads the list after a write so the caller always sees the server's state.
func (s *LeaveService) refresh(ctx context.Context, actor *models.JWTClaims, studentID string, writeErr error) (Result[[]models.LeaveApplication], error) {
	res, err := s.List(ctx, actor, studentID, filter.Criteria{})
	if err != nil {
		s.logger.Warn("leave list refresh failed", zap.Error(err))
	}
	return written(res, err, writeErr)
}
