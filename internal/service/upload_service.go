package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/school-gateway/internal/dto"
	"github.com/noah-isme/school-gateway/internal/models"
	"github.com/noah-isme/school-gateway/pkg/binex"
	"github.com/noah-isme/school-gateway/pkg/config"
	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
	"github.com/noah-isme/school-gateway/pkg/jobs"
)

const uploadJobType = "upload"

type uploader interface {
	Upload(ctx context.Context, req binex.UploadRequest, progress binex.ProgressFunc) ([]byte, error)
}

// FileInfo describes a file before any of it is read.
type FileInfo struct {
	Name string
	Size int64
}

// Limits bound what an upload may be. Extensions are compared case-insensitively with the dot.
type Limits struct {
	MaxSizeBytes      int64
	AllowedExtensions []string
}

// ValidateFile checks the size ceiling, then the extension allow-list, then that the file has
// content. It does no I/O.
func ValidateFile(f FileInfo, l Limits) error {
	if l.MaxSizeBytes > 0 && f.Size > l.MaxSizeBytes {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds the %d byte limit", l.MaxSizeBytes))
	}
	if len(l.AllowedExtensions) > 0 {
		ext := strings.ToLower(filepath.Ext(f.Name))
		allowed := false
		for _, candidate := range l.AllowedExtensions {
			if ext != "" && ext == normalizeExt(candidate) {
				allowed = true
				break
			}
		}
		if !allowed {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file type %q is not allowed", ext))
		}
	}
	if f.Size <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "file is empty")
	}
	return nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// SubmitUpload is one file handed to the upload manager.
type SubmitUpload struct {
	OwnerID     string
	File        FileInfo
	ContentType string
	Content     io.Reader
	Options     dto.UploadOptions
}

type uploadEntry struct {
	job    models.UploadJob
	data   []byte
	fields map[string]string
	cancel context.CancelFunc
}

// UploadService validates, optionally recompresses and streams files to the backend on a
// worker pool. Each job can be polled and cancelled.
type UploadService struct {
	client  uploader
	cfg     config.UploadConfig
	metrics *MetricsService
	logger  *zap.Logger
	queue   *jobs.Queue
	now     func() time.Time

	mu      sync.RWMutex
	entries map[string]*uploadEntry
}

// NewUploadService constructs the service and its queue. Call Start before Submit.
func NewUploadService(client uploader, cfg config.UploadConfig, metrics *MetricsService, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = 70
	}
	svc := &UploadService{
		client:  client,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*uploadEntry),
	}
	svc.queue = jobs.NewQueue("uploads", svc.process, jobs.QueueConfig{Workers: cfg.Workers, Logger: logger})
	return svc
}

// Start launches the upload workers.
func (s *UploadService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop waits for in-flight uploads to finish or observe cancellation.
func (s *UploadService) Stop() {
	s.queue.Stop()
}

// Limits resolves the effective limits. Callers may tighten the configured ones but never
// loosen them.
func (s *UploadService) Limits(opts dto.UploadOptions) (Limits, error) {
	limits := Limits{MaxSizeBytes: s.cfg.MaxFileSizeBytes, AllowedExtensions: s.cfg.AllowedExtensions}
	if opts.MaxSizeBytes > 0 && (limits.MaxSizeBytes <= 0 || opts.MaxSizeBytes < limits.MaxSizeBytes) {
		limits.MaxSizeBytes = opts.MaxSizeBytes
	}
	if strings.TrimSpace(opts.AllowedExtensions) == "" {
		return limits, nil
	}
	var narrowed []string
	for _, ext := range strings.Split(opts.AllowedExtensions, ",") {
		ext = normalizeExt(ext)
		if ext == "" {
			continue
		}
		if len(s.cfg.AllowedExtensions) == 0 || containsExt(s.cfg.AllowedExtensions, ext) {
			narrowed = append(narrowed, ext)
		}
	}
	if len(narrowed) == 0 {
		return limits, appErrors.Clone(appErrors.ErrValidation, "none of the requested file types are allowed")
	}
	limits.AllowedExtensions = narrowed
	return limits, nil
}

func containsExt(list []string, ext string) bool {
	for _, candidate := range list {
		if normalizeExt(candidate) == ext {
			return true
		}
	}
	return false
}

// Submit validates the file before reading it, then queues it for upload.
func (s *UploadService) Submit(ctx context.Context, req SubmitUpload) (models.UploadJob, error) {
	limits, err := s.Limits(req.Options)
	if err != nil {
		return models.UploadJob{}, err
	}
	if err := ValidateFile(req.File, limits); err != nil {
		return models.UploadJob{}, err
	}
	if req.Content == nil {
		return models.UploadJob{}, appErrors.Clone(appErrors.ErrValidation, "file content missing")
	}

	content := req.Content
	if limits.MaxSizeBytes > 0 {
		content = io.LimitReader(content, limits.MaxSizeBytes+1)
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return models.UploadJob{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read upload")
	}
	if err := ValidateFile(FileInfo{Name: req.File.Name, Size: int64(len(data))}, limits); err != nil {
		return models.UploadJob{}, err
	}

	now := s.now().UTC()
	job := models.UploadJob{
		ID:           uuid.NewString(),
		OwnerID:      req.OwnerID,
		Task:         binex.TaskUploadFile,
		Filename:     filepath.Base(req.File.Name),
		ContentType:  req.ContentType,
		OriginalSize: int64(len(data)),
		Size:         int64(len(data)),
		State:        models.UploadQueued,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	recompress := s.cfg.RecompressImages
	if req.Options.Recompress != nil {
		recompress = *req.Options.Recompress
	}
	if recompress {
		if smaller, ok := recompressImage(data, job.Filename, s.cfg.JPEGQuality); ok {
			data = smaller
			job.Size = int64(len(data))
			job.Recompressed = true
		}
	}

	fields := map[string]string{"uploaded_by": req.OwnerID}
	if purpose := strings.TrimSpace(req.Options.Purpose); purpose != "" {
		fields["purpose"] = purpose
	}

	s.mu.Lock()
	s.entries[job.ID] = &uploadEntry{job: job, data: data, fields: fields}
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: uploadJobType}); err != nil {
		s.mu.Lock()
		delete(s.entries, job.ID)
		s.mu.Unlock()
		if errors.Is(err, jobs.ErrQueueFull) {
			return models.UploadJob{}, appErrors.ErrTooManyUploads
		}
		return models.UploadJob{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue upload")
	}

	s.metrics.RecordUpload(string(models.UploadQueued))
	s.logger.Info("upload queued",
		zap.String("id", job.ID),
		zap.String("filename", job.Filename),
		zap.Int64("size", job.Size),
		zap.Bool("recompressed", job.Recompressed),
	)
	return job, nil
}

// Get returns a snapshot of the caller's job.
func (s *UploadService) Get(ownerID, id string) (models.UploadJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[id]
	if !ok || entry.job.OwnerID != ownerID {
		return models.UploadJob{}, appErrors.Clone(appErrors.ErrNotFound, "upload not found")
	}
	return entry.job, nil
}

// Cancel aborts a queued or running upload and resets its progress to zero.
func (s *UploadService) Cancel(ownerID, id string) (models.UploadJob, error) {
	s.mu.Lock()
	entry, ok := s.entries[id]
	if !ok || entry.job.OwnerID != ownerID {
		s.mu.Unlock()
		return models.UploadJob{}, appErrors.Clone(appErrors.ErrNotFound, "upload not found")
	}
	if entry.job.State.Terminal() {
		job := entry.job
		s.mu.Unlock()
		return job, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("upload already %s", strings.ToLower(string(job.State))))
	}
	entry.job.State = models.UploadCancelled
	entry.job.BytesSent = 0
	entry.job.Progress = 0
	entry.job.UpdatedAt = s.now().UTC()
	entry.data = nil
	cancel := entry.cancel
	job := entry.job
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.metrics.RecordUpload(string(models.UploadCancelled))
	s.logger.Info("upload cancelled", zap.String("id", id))
	return job, nil
}

// Prune forgets finished jobs last updated before now-age and returns how many were removed.
func (s *UploadService) Prune(age time.Duration) int {
	cutoff := s.now().UTC().Add(-age)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, entry := range s.entries {
		if entry.job.State.Terminal() && entry.job.UpdatedAt.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Pending reports queued uploads not yet picked up by a worker.
func (s *UploadService) Pending() int {
	return s.queue.Pending()
}

func (s *UploadService) process(ctx context.Context, j jobs.Job) error {
	uploadCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	entry, ok := s.entries[j.ID]
	if !ok || entry.job.State != models.UploadQueued {
		s.mu.Unlock()
		return nil
	}
	entry.job.State = models.UploadUploading
	entry.job.UpdatedAt = s.now().UTC()
	entry.cancel = cancel
	data := entry.data
	fields := entry.fields
	job := entry.job
	s.mu.Unlock()
	s.metrics.RecordUpload(string(models.UploadUploading))

	raw, err := s.client.Upload(uploadCtx, binex.UploadRequest{
		Task:   job.Task,
		Fields: fields,
		File: binex.FilePart{
			Filename:    job.Filename,
			ContentType: job.ContentType,
			Size:        int64(len(data)),
			Content:     bytes.NewReader(data),
		},
	}, func(sent, total int64) {
		s.progress(j.ID, sent, total)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok = s.entries[j.ID]
	if !ok || entry.job.State == models.UploadCancelled {
		return nil
	}
	entry.cancel = nil
	entry.data = nil
	entry.job.UpdatedAt = s.now().UTC()
	if err != nil {
		entry.job.State = models.UploadFailed
		entry.job.Error = appErrors.FromError(err).Message
		s.metrics.RecordUpload(string(models.UploadFailed))
		return err
	}
	entry.job.State = models.UploadSucceeded
	entry.job.BytesSent = entry.job.Size
	entry.job.Progress = 100
	if json.Valid(raw) {
		entry.job.Result = json.RawMessage(raw)
	}
	s.metrics.RecordUpload(string(models.UploadSucceeded))
	s.logger.Info("upload finished", zap.String("id", j.ID), zap.String("filename", entry.job.Filename))
	return nil
}

func (s *UploadService) progress(id string, sent, total int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok || entry.job.State != models.UploadUploading {
		return
	}
	entry.job.BytesSent = sent
	if total > 0 {
		entry.job.Progress = float64(sent*10000/total) / 100
	}
	entry.job.UpdatedAt = s.now().UTC()
}

// recompressImage re-encodes JPEG and PNG files and keeps the result only when it is smaller.
func recompressImage(data []byte, filename string, quality int) ([]byte, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return nil, false
	}
	img, formatName, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false
	}

	var buf bytes.Buffer
	switch formatName {
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	case "png":
		err = (&png.Encoder{CompressionLevel: png.BestCompression}).Encode(&buf, img)
	default:
		return nil, false
	}
	if err != nil || buf.Len() >= len(data) {
		return nil, false
	}
	return buf.Bytes(), true
}
