package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/school-gateway/internal/filter"
	"github.com/noah-isme/school-gateway/internal/models"
	"github.com/noah-isme/school-gateway/internal/repository"
	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
)

// reloadNotice tells the caller a write went through although the list behind it could not be read.
const reloadNotice = "saved, but the updated list could not be loaded"

// written merges a write outcome with the reload that follows it. A successful write whose reload
// failed with nothing cached keeps the reload failure as the result's cause.
func written[T any](res Result[T], reloadErr, writeErr error) (Result[T], error) {
	if writeErr != nil || reloadErr == nil {
		return res, writeErr
	}
	res.Cause = reloadErr
	res.Meta.Notice = reloadNotice
	return res, nil
}

// scopeOf is the cache scope of the caller; requests made before login share "anonymous".
func scopeOf(actor *models.JWTClaims) string {
	if actor == nil {
		return ""
	}
	return actor.UserID
}

// studentFilter pins students to their own records. Staff may narrow by any student id, or pass
// nothing to see everyone.
func studentFilter(actor *models.JWTClaims, requested string) (string, error) {
	if actor == nil {
		return "", appErrors.ErrUnauthorized
	}
	if actor.Role.IsStaff() {
		return strings.TrimSpace(requested), nil
	}
	if actor.StudentID == "" {
		return "", appErrors.Clone(appErrors.ErrForbidden, "account is not linked to a student")
	}
	return actor.StudentID, nil
}

// listResult applies the filter and records the counts before and after it.
func listResult[T filter.Filterable](res Result[[]T], c filter.Criteria) Result[[]T] {
	total := len(res.Value)
	res.Value = filter.Apply(res.Value, c)
	if res.Value == nil {
		res.Value = []T{}
	}
	count := len(res.Value)
	res.Meta.Total = &total
	res.Meta.Count = &count
	return res
}

func validate(v *validator.Validate, payload interface{}, message string) error {
	if err := v.Struct(payload); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	return nil
}

// Peek decodes the stored payload for q without calling the backend. It is used for advisory
// checks, so any failure is just "unknown".
func Peek[T any](ctx context.Context, s *CacheService, scope string, q repository.TaskQuery, decode func([]byte) (T, error)) (T, bool) {
	var zero T
	if s == nil || s.store == nil {
		return zero, false
	}
	cached, err := s.store.Get(ctx, s.Fingerprint(scope, q))
	if err != nil {
		return zero, false
	}
	value, err := decode(cached.Payload)
	if err != nil {
		return zero, false
	}
	return value, true
}
