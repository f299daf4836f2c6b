package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-gateway/internal/dto"
	"github.com/noah-isme/school-gateway/internal/models"
	"github.com/noah-isme/school-gateway/pkg/binex"
	"github.com/noah-isme/school-gateway/pkg/config"
	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
)

type stubUploader struct {
	mu    sync.Mutex
	calls int
	req   binex.UploadRequest
	data  []byte
	body  string
	err   error
	block bool
}

func (u *stubUploader) Upload(ctx context.Context, req binex.UploadRequest, progress binex.ProgressFunc) ([]byte, error) {
	data, _ := io.ReadAll(req.File.Content)
	u.mu.Lock()
	u.calls++
	u.req = req
	u.data = data
	u.mu.Unlock()

	progress(int64(len(data))/2, req.File.Size)
	if u.block {
		<-ctx.Done()
		return nil, appErrors.Wrap(ctx.Err(), appErrors.ErrUploadCancelled.Code, appErrors.ErrUploadCancelled.Status, appErrors.ErrUploadCancelled.Message)
	}
	progress(int64(len(data)), req.File.Size)
	return []byte(u.body), u.err
}

func (u *stubUploader) callCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}

func newTestUploadService(t *testing.T, up *stubUploader, cfg config.UploadConfig) *UploadService {
	t.Helper()
	svc := NewUploadService(up, cfg, nil, nil)
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)
	return svc
}

func waitForState(t *testing.T, svc *UploadService, owner, id string, state models.UploadState) models.UploadJob {
	t.Helper()
	var job models.UploadJob
	require.Eventually(t, func() bool {
		var err error
		job, err = svc.Get(owner, id)
		return err == nil && job.State == state
	}, 2*time.Second, 5*time.Millisecond)
	return job
}

var defaultUploadConfig = config.UploadConfig{MaxFileSizeBytes: 1024, AllowedExtensions: []string{".pdf", "jpg", ".PNG"}, Workers: 1}

func TestValidateFileOrder(t *testing.T) {
	limits := Limits{MaxSizeBytes: 100, AllowedExtensions: []string{".pdf", "png"}}
	cases := []struct {
		name string
		file FileInfo
		msg  string
	}{
		{"oversize checked before extension", FileInfo{Name: "a.exe", Size: 101}, "limit"},
		{"disallowed extension", FileInfo{Name: "a.exe", Size: 10}, "not allowed"},
		{"missing extension", FileInfo{Name: "README", Size: 10}, "not allowed"},
		{"empty file", FileInfo{Name: "a.pdf", Size: 0}, "empty"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateFile(tc.file, limits)
			require.ErrorIs(t, err, appErrors.ErrValidation)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
	assert.NoError(t, ValidateFile(FileInfo{Name: "Scan.PNG", Size: 100}, limits))
	assert.NoError(t, ValidateFile(FileInfo{Name: "anything.bin", Size: 5}, Limits{}))
}

func TestUploadLimitsOnlyTighten(t *testing.T) {
	svc := NewUploadService(&stubUploader{}, defaultUploadConfig, nil, nil)

	limits, err := svc.Limits(dto.UploadOptions{MaxSizeBytes: 4096})
	require.NoError(t, err)
	assert.Equal(t, int64(1024), limits.MaxSizeBytes)

	limits, err = svc.Limits(dto.UploadOptions{MaxSizeBytes: 10, AllowedExtensions: "PDF, .exe"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), limits.MaxSizeBytes)
	assert.Equal(t, []string{".pdf"}, limits.AllowedExtensions)

	_, err = svc.Limits(dto.UploadOptions{AllowedExtensions: ".exe"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestUploadRejectedBeforeAnyNetworkCall(t *testing.T) {
	up := &stubUploader{}
	svc := newTestUploadService(t, up, defaultUploadConfig)

	_, err := svc.Submit(context.Background(), SubmitUpload{OwnerID: "u1", File: FileInfo{Name: "big.pdf", Size: 2048}, Content: strings.NewReader("x")})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Submit(context.Background(), SubmitUpload{OwnerID: "u1", File: FileInfo{Name: "virus.exe", Size: 10}, Content: strings.NewReader("x")})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	// A declared size that lies is caught once the content is read.
	_, err = svc.Submit(context.Background(), SubmitUpload{OwnerID: "u1", File: FileInfo{Name: "a.pdf", Size: 10}, Content: strings.NewReader(strings.Repeat("x", 2000))})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	assert.Zero(t, up.callCount())
}

func TestUploadSucceeds(t *testing.T) {
	up := &stubUploader{body: `{"status":"success","filename":"notice_42.pdf"}`}
	svc := newTestUploadService(t, up, defaultUploadConfig)

	job, err := svc.Submit(context.Background(), SubmitUpload{
		OwnerID:     "u1",
		File:        FileInfo{Name: "/tmp/circular.pdf", Size: 11},
		ContentType: "application/pdf",
		Content:     strings.NewReader("%PDF-1.4 ok"),
		Options:     dto.UploadOptions{Purpose: "notice"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.UploadQueued, job.State)
	assert.Equal(t, "circular.pdf", job.Filename)

	done := waitForState(t, svc, "u1", job.ID, models.UploadSucceeded)
	assert.Equal(t, 100.0, done.Progress)
	assert.Equal(t, int64(11), done.BytesSent)
	assert.JSONEq(t, up.body, string(done.Result))

	assert.Equal(t, binex.TaskUploadFile, up.req.Task)
	assert.Equal(t, "notice", up.req.Fields["purpose"])
	assert.Equal(t, "u1", up.req.Fields["uploaded_by"])
	assert.Equal(t, "%PDF-1.4 ok", string(up.data))

	_, err = svc.Get("someone-else", job.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Cancel("u1", job.ID)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestUploadFailureIsReported(t *testing.T) {
	up := &stubUploader{err: appErrors.Clone(appErrors.ErrBackendRejected, "disk full")}
	svc := newTestUploadService(t, up, defaultUploadConfig)

	job, err := svc.Submit(context.Background(), SubmitUpload{OwnerID: "u1", File: FileInfo{Name: "a.pdf", Size: 3}, Content: strings.NewReader("abc")})
	require.NoError(t, err)

	failed := waitForState(t, svc, "u1", job.ID, models.UploadFailed)
	assert.Equal(t, "disk full", failed.Error)
	assert.Equal(t, 1, up.callCount())
}

func TestUploadCancelResetsProgress(t *testing.T) {
	up := &stubUploader{block: true}
	svc := newTestUploadService(t, up, defaultUploadConfig)

	job, err := svc.Submit(context.Background(), SubmitUpload{OwnerID: "u1", File: FileInfo{Name: "a.pdf", Size: 10}, Content: strings.NewReader("0123456789")})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		current, err := svc.Get("u1", job.ID)
		return err == nil && current.State == models.UploadUploading && current.BytesSent == 5
	}, 2*time.Second, 5*time.Millisecond)

	cancelled, err := svc.Cancel("u1", job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UploadCancelled, cancelled.State)
	assert.Zero(t, cancelled.Progress)
	assert.Zero(t, cancelled.BytesSent)

	time.Sleep(20 * time.Millisecond)
	after, err := svc.Get("u1", job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UploadCancelled, after.State)
	assert.Zero(t, after.Progress)
}

func TestUploadQueueFull(t *testing.T) {
	up := &stubUploader{block: true}
	svc := newTestUploadService(t, up, defaultUploadConfig)
	submit := func() error {
		_, err := svc.Submit(context.Background(), SubmitUpload{OwnerID: "u1", File: FileInfo{Name: "a.pdf", Size: 1}, Content: strings.NewReader("x")})
		return err
	}

	require.NoError(t, submit())
	require.Eventually(t, func() bool { return up.callCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	for i := 0; i < 4; i++ {
		require.NoError(t, submit())
	}
	assert.Equal(t, 4, svc.Pending())
	assert.ErrorIs(t, submit(), appErrors.ErrTooManyUploads)
}

func TestUploadPrune(t *testing.T) {
	up := &stubUploader{body: `{"status":"success"}`}
	svc := newTestUploadService(t, up, defaultUploadConfig)
	job, err := svc.Submit(context.Background(), SubmitUpload{OwnerID: "u1", File: FileInfo{Name: "a.pdf", Size: 1}, Content: strings.NewReader("x")})
	require.NoError(t, err)
	waitForState(t, svc, "u1", job.ID, models.UploadSucceeded)

	assert.Zero(t, svc.Prune(time.Hour))
	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.Equal(t, 1, svc.Prune(time.Hour))
	_, err = svc.Get("u1", job.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestRecompressImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for x := 0; x < 64; x++ {
		for y := 0; y < 64; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: uint8((x + y) * 2), A: 255})
		}
	}
	var original bytes.Buffer
	require.NoError(t, jpeg.Encode(&original, img, &jpeg.Options{Quality: 100}))

	smaller, ok := recompressImage(original.Bytes(), "photo.JPG", 30)
	require.True(t, ok)
	assert.Less(t, len(smaller), original.Len())

	_, ok = recompressImage(original.Bytes(), "photo.pdf", 30)
	assert.False(t, ok)
	_, ok = recompressImage([]byte("not an image"), "photo.png", 30)
	assert.False(t, ok)
}
