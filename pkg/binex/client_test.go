package binex

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
	"github.com/noah-isme/school-gateway/pkg/middleware/requestid"
)

type observerStub struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *observerStub) ObserveBackendCall(task, outcome string, duration time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, task+":"+outcome)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *observerStub) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	obs := &observerStub{}
	client, err := New(Config{BaseURL: srv.URL + "/binex/api.php", UserAgent: "gateway-test", Observer: obs})
	require.NoError(t, err)
	return client, obs
}

func TestNewRejectsInvalidBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "not a url"})
	assert.Error(t, err)
}

func TestDoGetEncodesTaskAndQuery(t *testing.T) {
	var got *http.Request
	client, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`  {"status":"success","data":[]}`))
	})

	ctx := requestid.WithValue(context.Background(), "req-9")
	raw, err := client.Do(ctx, Request{Task: TaskStudentLeaves, Query: url.Values{"student_id": {"S1"}}})
	require.NoError(t, err)
	assert.Equal(t, `{"status":"success","data":[]}`, string(raw))
	require.NotNil(t, got)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/binex/api.php", got.URL.Path)
	assert.Equal(t, "get_leaves", got.URL.Query().Get("task"))
	assert.Equal(t, "S1", got.URL.Query().Get("student_id"))
	assert.Equal(t, "req-9", got.Header.Get(requestid.Header))
	assert.Equal(t, "gateway-test", got.Header.Get("User-Agent"))
	assert.Equal(t, []string{"get_leaves:ok"}, obs.outcomes)
}

func TestDoPostsFormAndJSON(t *testing.T) {
	var (
		contentType string
		body        string
		method      string
	)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		contentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})

	_, err := client.Do(context.Background(), Request{Task: TaskApplyLeave, Form: url.Values{"cause": {"fever"}}})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "application/x-www-form-urlencoded", contentType)
	assert.Equal(t, "cause=fever", body)

	_, err = client.Do(context.Background(), Request{Task: TaskMarkAttendance, JSON: map[string]string{"S1": "P"}})
	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
	assert.JSONEq(t, `{"S1":"P"}`, body)
}

func TestDoClassifiesFailures(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		client, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		_, err := client.Do(context.Background(), Request{Task: TaskNotices})
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrBackendUnavailable))
		assert.Equal(t, []string{"get_notices:http_error"}, obs.outcomes)
	})

	t.Run("php warning instead of json", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<br />\n<b>Warning</b>: mysqli_connect()"))
		})
		_, err := client.Do(context.Background(), Request{Task: TaskNotices})
		assert.True(t, errors.Is(err, appErrors.ErrMalformedResponse))
	})

	t.Run("transport", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()
		client, err := New(Config{BaseURL: srv.URL})
		require.NoError(t, err)
		_, err = client.Do(context.Background(), Request{Task: TaskNotices})
		assert.True(t, errors.Is(err, appErrors.ErrBackendUnavailable))
		assert.True(t, appErrors.Recoverable(err))
	})

	t.Run("missing task", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
		_, err := client.Do(context.Background(), Request{})
		assert.True(t, errors.Is(err, appErrors.ErrValidation))
	})
}

func TestUploadStreamsMultipartWithProgress(t *testing.T) {
	var (
		fields   = map[string]string{}
		received []byte
		filename string
	)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		file, header, err := r.FormFile(DefaultFileField)
		require.NoError(t, err)
		defer file.Close()
		filename = header.Filename
		received, _ = io.ReadAll(file)
		_, _ = w.Write([]byte(`{"status":"success","data":{"filename":"stored.pdf"}}`))
	})

	content := bytes.Repeat([]byte("a"), 64*1024)
	var last, total int64
	raw, err := client.Upload(context.Background(), UploadRequest{
		Task:   TaskUploadFile,
		Fields: map[string]string{"purpose": "notice"},
		File:   FilePart{Filename: "circular.pdf", ContentType: "application/pdf", Size: int64(len(content)), Content: bytes.NewReader(content)},
	}, func(sent, t int64) {
		last, total = sent, t
	})
	require.NoError(t, err)
	assert.Contains(t, string(raw), "stored.pdf")
	assert.Equal(t, "notice", fields["purpose"])
	assert.Equal(t, "circular.pdf", filename)
	assert.Equal(t, content, received)
	assert.Equal(t, int64(len(content)), last)
	assert.Equal(t, int64(len(content)), total)
}

type blockingReader struct {
	started chan struct{}
	once    sync.Once
}

func (b *blockingReader) Read(p []byte) (int, error) {
	b.once.Do(func() { close(b.started) })
	time.Sleep(10 * time.Millisecond)
	p[0] = 'x'
	return 1, nil
}

func TestUploadCancellationAbortsRequest(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
	})

	ctx, cancel := context.WithCancel(context.Background())
	reader := &blockingReader{started: make(chan struct{})}
	go func() {
		<-reader.started
		cancel()
	}()

	_, err := client.Upload(ctx, UploadRequest{
		Task: TaskUploadFile,
		File: FilePart{Filename: "big.pdf", Size: 1 << 30, Content: reader},
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUploadCancelled))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestUploadRequiresContent(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	_, err := client.Upload(context.Background(), UploadRequest{Task: TaskUploadFile, File: FilePart{Filename: "x.pdf"}}, nil)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.False(t, strings.Contains(err.Error(), "panic"))
}
