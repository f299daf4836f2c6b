package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-gateway/internal/models"
	"github.com/noah-isme/school-gateway/internal/repository"
	"github.com/noah-isme/school-gateway/pkg/config"
	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
	"github.com/noah-isme/school-gateway/pkg/response"
)

// PayloadStore abstracts persistence for last good payloads.
type PayloadStore interface {
	Get(ctx context.Context, fingerprint string) (*models.CachedPayload, error)
	Put(ctx context.Context, payload models.CachedPayload) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// Fetcher performs a backend read.
type Fetcher func(ctx context.Context, q repository.TaskQuery) ([]byte, error)

// Result is a decoded payload plus where it came from. Cause is set when the value is a cached
// fallback for a failed fetch.
type Result[T any] struct {
	Value T
	Meta  response.Meta
	Cause error
}

// Degraded reports whether the value was served from the cache.
func (r Result[T]) Degraded() bool {
	return r.Cause != nil
}

// CacheService keeps the last successful payload per request fingerprint and serves it when the
// backend cannot be reached.
type CacheService struct {
	store     PayloadStore
	metrics   *MetricsService
	namespace string
	maxAge    time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewCacheService constructs a cache service. A zero MaxAge keeps entries usable indefinitely.
func NewCacheService(store PayloadStore, metrics *MetricsService, cfg config.CacheConfig, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	namespace := strings.TrimSpace(cfg.Namespace)
	if namespace == "" {
		namespace = "binex"
	}
	return &CacheService{
		store:     store,
		metrics:   metrics,
		namespace: namespace,
		maxAge:    cfg.MaxAge,
		logger:    logger,
		now:       time.Now,
	}
}

var scopeReplacer = strings.NewReplacer(":", "_", "*", "_", "/", "_", "?", "_", "[", "_", "]", "_", "\\", "_")

// Fingerprint is namespace:scope:task:sha1(sorted params).
func (s *CacheService) Fingerprint(scope string, q repository.TaskQuery) string {
	sum := sha1.Sum([]byte(q.CanonicalParams()))
	return s.namespace + ":" + scopeKey(scope) + ":" + q.Task + ":" + hex.EncodeToString(sum[:])
}

// Invalidate drops every payload stored for scope.
func (s *CacheService) Invalidate(ctx context.Context, scope string) error {
	if s == nil || s.store == nil {
		return nil
	}
	pattern := s.namespace + ":" + scopeKey(scope) + ":*"
	if err := s.store.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	return nil
}

// Read always asks the backend first. A decoded success overwrites the stored payload. Transport
// and shape failures fall back to the stored payload when one exists within the max age; any
// other failure, or a miss, returns the original error.
func Read[T any](ctx context.Context, s *CacheService, scope string, q repository.TaskQuery, fetch Fetcher, decode func([]byte) (T, error)) (Result[T], error) {
	var zero Result[T]

	raw, err := fetch(ctx, q)
	if err == nil {
		var value T
		value, err = decode(raw)
		if err == nil {
			s.persist(ctx, scope, q, raw)
			return Result[T]{Value: value, Meta: response.Meta{Source: response.SourceNetwork}}, nil
		}
	}
	if !appErrors.Recoverable(err) || s == nil || s.store == nil {
		return zero, err
	}

	fingerprint := s.Fingerprint(scope, q)
	cached, lookupErr := s.store.Get(ctx, fingerprint)
	if lookupErr != nil {
		if !errors.Is(lookupErr, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache lookup failed", zap.String("fingerprint", fingerprint), zap.Error(lookupErr))
		}
		s.metrics.RecordFallback(q.Task, false)
		return zero, err
	}
	now := s.now()
	age := cached.Age(now)
	if s.maxAge > 0 && age > s.maxAge {
		s.metrics.RecordFallback(q.Task, false)
		return zero, err
	}
	value, decodeErr := decode(cached.Payload)
	if decodeErr != nil {
		s.logger.Warn("cached payload no longer decodes", zap.String("fingerprint", fingerprint), zap.Error(decodeErr))
		s.metrics.RecordFallback(q.Task, false)
		return zero, err
	}

	s.metrics.RecordFallback(q.Task, true)
	s.logger.Info("serving cached payload", zap.String("task", q.Task), zap.Duration("age", age), zap.Error(err))
	cachedAt := cached.CachedAt
	return Result[T]{
		Value: value,
		Meta: response.Meta{
			Source:     response.SourceCache,
			Stale:      true,
			CachedAt:   &cachedAt,
			AgeSeconds: int64(age / time.Second),
			Notice:     response.CachedNotice,
		},
		Cause: err,
	}, nil
}

func (s *CacheService) persist(ctx context.Context, scope string, q repository.TaskQuery, raw []byte) {
	if s == nil || s.store == nil {
		return
	}
	payload := models.CachedPayload{Fingerprint: s.Fingerprint(scope, q), Payload: raw, CachedAt: s.now().UTC()}
	if err := s.store.Put(ctx, payload); err != nil {
		s.metrics.RecordCacheWrite(false)
		s.logger.Warn("cache write failed", zap.String("fingerprint", payload.Fingerprint), zap.Error(err))
		return
	}
	s.metrics.RecordCacheWrite(true)
}

func scopeKey(scope string) string {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return "anonymous"
	}
	return scopeReplacer.Replace(scope)
}
