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
	"github.com/noah-isme/school-gateway/pkg/dates"
	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
)

type homeworkStore interface {
	ListQuery(class, section string) repository.TaskQuery
	Fetch(ctx context.Context, q repository.TaskQuery) ([]byte, error)
	Create(ctx context.Context, p repository.CreateHomeworkParams) error
}

// HomeworkService lists and posts assignments.
type HomeworkService struct {
	repo      homeworkStore
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHomeworkService constructs the service.
func NewHomeworkService(repo homeworkStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *HomeworkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &HomeworkService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns a class's homework. Students always read their own class.
func (s *HomeworkService) List(ctx context.Context, actor *models.JWTClaims, q dto.HomeworkQuery) (Result[[]models.Homework], error) {
	if actor == nil {
		return Result[[]models.Homework]{}, appErrors.ErrUnauthorized
	}
	if !actor.Role.IsStaff() {
		q.Class, q.Section = actor.Class, actor.Section
	}
	res, err := Read(ctx, s.cache, scopeOf(actor), s.repo.ListQuery(q.Class, q.Section), s.repo.Fetch, repository.DecodeHomework)
	if err != nil {
		return res, err
	}
	return listResult(res, filter.Criteria{Query: q.Query}), nil
}

// Create posts an assignment and returns the class's refreshed homework.
func (s *HomeworkService) Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateHomeworkRequest) (Result[[]models.Homework], error) {
	var zero Result[[]models.Homework]
	if actor == nil {
		return zero, appErrors.ErrUnauthorized
	}
	if err := validate(s.validator, req, "invalid homework"); err != nil {
		return zero, err
	}
	subject, title := strings.TrimSpace(req.Subject), strings.TrimSpace(req.Title)
	if subject == "" || title == "" {
		return zero, appErrors.Clone(appErrors.ErrValidation, "subject and title are required")
	}
	dueDate := strings.TrimSpace(req.DueDate)
	if dueDate != "" {
		day, err := dates.Parse(dueDate)
		if err != nil {
			return zero, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid due_date")
		}
		dueDate = dates.Format(day)
	}

	writeErr := s.repo.Create(ctx, repository.CreateHomeworkParams{
		Class:       req.Class,
		Section:     req.Section,
		Subject:     subject,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		DueDate:     dueDate,
		Attachment:  strings.TrimSpace(req.Attachment),
		Teacher:     actor.Name,
	})
	if writeErr != nil {
		s.logger.Warn("homework post failed", zap.String("class", req.Class), zap.String("section", req.Section), zap.Error(writeErr))
	}

	res, err := s.List(ctx, actor, dto.HomeworkQuery{Class: req.Class, Section: req.Section})
	if err != nil {
		s.logger.Warn("homework list refresh failed", zap.Error(err))
	}
	return written(res, err, writeErr)
}
