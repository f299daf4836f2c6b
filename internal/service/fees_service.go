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

type feesStore interface {
	DuesQuery(class, section string) repository.TaskQuery
	StudentDuesQuery(studentID string) repository.TaskQuery
	PaymentsQuery(studentID string) repository.TaskQuery
	ReceiptQuery(receiptID string) repository.TaskQuery
	Fetch(ctx context.Context, q repository.TaskQuery) ([]byte, error)
	RecordPayment(ctx context.Context, p repository.RecordPaymentParams) (string, error)
}

// RecordedPayment is the receipt id the backend assigned plus the student's refreshed payments.
type RecordedPayment struct {
	ReceiptID string                  `json:"receipt_id,omitempty"`
	Payments  []models.PaymentReceipt `json:"payments"`
}

// FeesService serves dues, payments and receipts.
type FeesService struct {
	repo      feesStore
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeesService constructs the service.
func NewFeesService(repo feesStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *FeesService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &FeesService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Dues lists a class's dues with totals recomputed. Students get their own row only.
func (s *FeesService) Dues(ctx context.Context, actor *models.JWTClaims, q dto.DuesQuery) (Result[[]models.DuesRecord], error) {
	var zero Result[[]models.DuesRecord]
	if actor == nil {
		return zero, appErrors.ErrUnauthorized
	}
	if !actor.Role.IsStaff() {
		q.Class, q.Section = actor.Class, actor.Section
	}
	res, err := Read(ctx, s.cache, scopeOf(actor), s.repo.DuesQuery(q.Class, q.Section), s.repo.Fetch, repository.DecodeDues)
	if err != nil {
		return zero, err
	}
	if !actor.Role.IsStaff() {
		own := res.Value[:0]
		for _, d := range res.Value {
			if d.StudentID == actor.StudentID {
				own = append(own, d)
			}
		}
		res.Value = own
	}
	return listResult(res, filter.Criteria{Status: q.Status, Query: q.Query}), nil
}

// StudentDues returns one student's dues.
func (s *FeesService) StudentDues(ctx context.Context, actor *models.JWTClaims, studentID string) (Result[models.DuesRecord], error) {
	sid, err := studentFilter(actor, studentID)
	if err != nil {
		return Result[models.DuesRecord]{}, err
	}
	if sid == "" {
		return Result[models.DuesRecord]{}, appErrors.Clone(appErrors.ErrValidation, "student_id is required")
	}
	return Read(ctx, s.cache, scopeOf(actor), s.repo.StudentDuesQuery(sid), s.repo.Fetch, repository.DecodeDuesRecord)
}

// Payments lists recorded payments.
func (s *FeesService) Payments(ctx context.Context, actor *models.JWTClaims, q dto.PaymentsQuery) (Result[[]models.PaymentReceipt], error) {
	sid, err := studentFilter(actor, q.StudentID)
	if err != nil {
		return Result[[]models.PaymentReceipt]{}, err
	}
	res, err := Read(ctx, s.cache, scopeOf(actor), s.repo.PaymentsQuery(sid), s.repo.Fetch, repository.DecodePayments)
	if err != nil {
		return res, err
	}
	return listResult(res, filter.Criteria{Status: q.Status, Query: q.Query}), nil
}

// RecordPayment submits a payment and returns the student's refreshed payments.
func (s *FeesService) RecordPayment(ctx context.Context, actor *models.JWTClaims, req dto.RecordPaymentRequest) (Result[RecordedPayment], error) {
	var zero Result[RecordedPayment]
	if err := validate(s.validator, req, "invalid payment"); err != nil {
		return zero, err
	}
	studentID := strings.TrimSpace(req.StudentID)
	if studentID == "" {
		return zero, appErrors.Clone(appErrors.ErrValidation, "student_id is required")
	}
	paymentDate := strings.TrimSpace(req.PaymentDate)
	if paymentDate != "" {
		day, err := dates.Parse(paymentDate)
		if err != nil {
			return zero, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment_date")
		}
		paymentDate = dates.Format(day)
	}

	receiptID, writeErr := s.repo.RecordPayment(ctx, repository.RecordPaymentParams{
		StudentID:   studentID,
		Amount:      req.Amount,
		PaymentDate: paymentDate,
		PaymentMode: strings.TrimSpace(req.PaymentMode),
		Remarks:     strings.TrimSpace(req.Remarks),
	})
	if writeErr != nil {
		s.logger.Warn("payment recording failed", zap.String("student_id", studentID), zap.Error(writeErr))
	} else {
		s.logger.Info("payment recorded", zap.String("student_id", studentID), zap.String("receipt_id", receiptID), zap.Float64("amount", req.Amount))
	}

	payments, err := s.Payments(ctx, actor, dto.PaymentsQuery{StudentID: studentID})
	if err != nil {
		s.logger.Warn("payment list refresh failed", zap.Error(err))
	}
	return written(Result[RecordedPayment]{
		Value: RecordedPayment{ReceiptID: receiptID, Payments: payments.Value},
		Meta:  payments.Meta,
		Cause: payments.Cause,
	}, err, writeErr)
}

// Receipt returns one receipt. Students may only open their own.
func (s *FeesService) Receipt(ctx context.Context, actor *models.JWTClaims, receiptID string) (Result[models.PaymentReceipt], error) {
	var zero Result[models.PaymentReceipt]
	if actor == nil {
		return zero, appErrors.ErrUnauthorized
	}
	receiptID = strings.TrimSpace(receiptID)
	if receiptID == "" {
		return zero, appErrors.Clone(appErrors.ErrValidation, "receipt id is required")
	}
	res, err := Read(ctx, s.cache, scopeOf(actor), s.repo.ReceiptQuery(receiptID), s.repo.Fetch, repository.DecodeReceipt)
	if err != nil {
		return zero, err
	}
	if !actor.Role.IsStaff() && res.Value.StudentID != actor.StudentID {
		return zero, appErrors.Clone(appErrors.ErrForbidden, "receipt belongs to another student")
	}
	if res.Value.ReceiptID == "" {
		res.Value.ReceiptID = receiptID
	}
	return res, nil
}
