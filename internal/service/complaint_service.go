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
	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
)

type complaintStore interface {
	ListQuery(studentID string) repository.TaskQuery
	Fetch(ctx context.Context, q repository.TaskQuery) ([]byte, error)
	Create(ctx context.Context, p repository.CreateComplaintParams) error
	UpdateStatus(ctx context.Context, id, status, response string) error
}

// ComplaintService lists, files and resolves complaints.
type ComplaintService struct {
	repo      complaintStore
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewComplaintService constructs the service.
func NewComplaintService(repo complaintStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ComplaintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ComplaintService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns complaints visible to the caller.
func (s *ComplaintService) List(ctx context.Context, actor *models.JWTClaims, studentID string, c filter.Criteria) (Result[[]models.Complaint], error) {
	sid, err := studentFilter(actor, studentID)
	if err != nil {
		return Result[[]models.Complaint]{}, err
	}
	res, err := Read(ctx, s.cache, scopeOf(actor), s.repo.ListQuery(sid), s.repo.Fetch, repository.DecodeComplaints)
	if err != nil {
		return res, err
	}
	return listResult(res, c), nil
}

// Create files a complaint. Students file under their own identity.
func (s *ComplaintService) Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateComplaintRequest) (Result[[]models.Complaint], error) {
	var zero Result[[]models.Complaint]
	if err := validate(s.validator, req, "invalid complaint"); err != nil {
		return zero, err
	}
	text := strings.TrimSpace(req.Complaint)
	if text == "" {
		return zero, appErrors.Clone(appErrors.ErrValidation, "complaint text is required")
	}
	sid, err := studentFilter(actor, req.StudentID)
	if err != nil {
		return zero, err
	}

	params := repository.CreateComplaintParams{
		StudentID:   sid,
		StudentName: req.StudentName,
		StudentRoll: req.StudentRoll,
		ComplaintTo: strings.TrimSpace(req.ComplaintTo),
		Complaint:   text,
	}
	if !actor.Role.IsStaff() {
		params.StudentName = actor.Name
		params.StudentClass = actor.Class
		params.StudentSection = actor.Section
	}

	writeErr := s.repo.Create(ctx, params)
	if writeErr != nil {
		s.logger.Warn("complaint submission failed", zap.String("student_id", sid), zap.Error(writeErr))
	}
	return s.refresh(ctx, actor, req.StudentID, writeErr)
}

// UpdateStatus resolves or closes a complaint.
func (s *ComplaintService) UpdateStatus(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateComplaintStatusRequest) (Result[[]models.Complaint], error) {
	var zero Result[[]models.Complaint]
	if actor == nil {
		return zero, appErrors.ErrUnauthorized
	}
	if err := validate(s.validator, req, "invalid status update"); err != nil {
		return zero, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return zero, appErrors.Clone(appErrors.ErrValidation, "complaint id is required")
	}

	target := workflow.Normalize(req.Status)
	if err := workflow.Complaint.Validate(s.lastKnownStatus(ctx, actor, id), target); err != nil {
		return zero, err
	}

	writeErr := s.repo.UpdateStatus(ctx, id, target, strings.TrimSpace(req.Response))
	if writeErr != nil {
		s.logger.Warn("complaint status update failed", zap.String("id", id), zap.String("status", target), zap.Error(writeErr))
	}
	return s.refresh(ctx, actor, "", writeErr)
}

func (s *ComplaintService) lastKnownStatus(ctx context.Context, actor *models.JWTClaims, id string) string {
	items, ok := Peek(ctx, s.cache, scopeOf(actor), s.repo.ListQuery(""), repository.DecodeComplaints)
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

func (s *ComplaintService) refresh(ctx context.Context, actor *models.JWTClaims, studentID string, writeErr error) (Result[[]models.Complaint], error) {
	res, err := s.List(ctx, actor, studentID, filter.Criteria{})
	if err != nil {
		s.logger.Warn("complaint list refresh failed", zap.Error(err))
	}
	return written(res, err, writeErr)
}
