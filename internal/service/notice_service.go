package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-gateway/internal/dto"
	"github.com/noah-isme/school-gateway/internal/filter"
	"github.com/noah-isme/school-gateway/internal/models"
	"github.com/noah-isme/school-gateway/internal/repository"
	"github.com/noah-isme/school-gateway/pkg/dates"
	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
)

type noticeStore interface {
	ListQuery() repository.TaskQuery
	Fetch(ctx context.Context, q repository.TaskQuery) ([]byte, error)
	Create(ctx context.Context, p repository.CreateNoticeParams) error
}

// NoticeService lists and publishes notices.
type NoticeService struct {
	repo      noticeStore
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewNoticeService constructs the service.
func NewNoticeService(repo noticeStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *NoticeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &NoticeService{repo: repo, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// List returns notices with their plain-text rendering, filtered by query.
func (s *NoticeService) List(ctx context.Context, actor *models.JWTClaims, query string) (Result[[]models.NoticeView], error) {
	res, err := Read(ctx, s.cache, scopeOf(actor), s.repo.ListQuery(), s.repo.Fetch, decodeNoticeViews)
	if err != nil {
		return res, err
	}
	return listResult(res, filter.Criteria{Query: query}), nil
}

// Create publishes a notice and returns the refreshed list.
func (s *NoticeService) Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateNoticeRequest) (Result[[]models.NoticeView], error) {
	var zero Result[[]models.NoticeView]
	if err := validate(s.validator, req, "invalid notice"); err != nil {
		return zero, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" || strings.TrimSpace(req.Details) == "" {
		return zero, appErrors.Clone(appErrors.ErrValidation, "title and details are required")
	}
	date := dates.Format(s.now())
	if strings.TrimSpace(req.Date) != "" {
		day, err := dates.Parse(req.Date)
		if err != nil {
			return zero, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
		}
		date = dates.Format(day)
	}

	writeErr := s.repo.Create(ctx, repository.CreateNoticeParams{
		Title:      title,
		Details:    req.Details,
		Date:       date,
		Attachment: strings.TrimSpace(req.Attachment),
		Audience:   strings.TrimSpace(req.Audience),
	})
	if writeErr != nil {
		s.logger.Warn("notice publish failed", zap.String("title", title), zap.Error(writeErr))
	}

	res, err := s.List(ctx, actor, "")
	if err != nil {
		s.logger.Warn("notice list refresh failed", zap.Error(err))
	}
	return written(res, err, writeErr)
}

func decodeNoticeViews(raw []byte) ([]models.NoticeView, error) {
	notices, err := repository.DecodeNotices(raw)
	if err != nil {
		return nil, err
	}
	views := make([]models.NoticeView, 0, len(notices))
	for _, n := range notices {
		views = append(views, models.NoticeView{Notice: n, PlainText: n.PlainDetails()})
	}
	return views, nil
}
