package repository

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/noah-isme/school-gateway/pkg/binex"
)

// TaskQuery is a cacheable read against the backend: one task plus its query parameters.
type TaskQuery struct {
	Task   string
	Params url.Values
}

// CanonicalParams renders Params with sorted keys and values so equal queries compare equal.
func (q TaskQuery) CanonicalParams() string {
	keys := make([]string, 0, len(q.Params))
	for key := range q.Params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, key := range keys {
		values := append([]string(nil), q.Params[key]...)
		sort.Strings(values)
		for _, v := range values {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(key))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// RemoteRepository is the shared path to the backend used by every entity repository.
type RemoteRepository struct {
	client *binex.Client
}

// NewRemoteRepository wraps a backend client.
func NewRemoteRepository(client *binex.Client) *RemoteRepository {
	return &RemoteRepository{client: client}
}

// Fetch runs the read and returns the raw body.
func (r *RemoteRepository) Fetch(ctx context.Context, q TaskQuery) ([]byte, error) {
	return r.client.Do(ctx, binex.Request{Task: q.Task, Query: q.Params})
}

// PostForm submits a form and fails with the backend's message when it reports a non-success status.
func (r *RemoteRepository) PostForm(ctx context.Context, task string, form url.Values) ([]byte, error) {
	raw, err := r.client.Do(ctx, binex.Request{Task: task, Form: form})
	if err != nil {
		return nil, err
	}
	if err := binex.CheckStatus(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// PostJSON submits a JSON body with the same status handling as PostForm.
func (r *RemoteRepository) PostJSON(ctx context.Context, task string, query url.Values, body interface{}) ([]byte, error) {
	raw, err := r.client.Do(ctx, binex.Request{Task: task, Query: query, JSON: body})
	if err != nil {
		return nil, err
	}
	if err := binex.CheckStatus(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Upload streams a multipart upload and checks the returned status.
func (r *RemoteRepository) Upload(ctx context.Context, req binex.UploadRequest, progress binex.ProgressFunc) ([]byte, error) {
	raw, err := r.client.Upload(ctx, req, progress)
	if err != nil {
		return nil, err
	}
	if err := binex.CheckStatus(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func params(pairs ...string) url.Values {
	values := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		if v := strings.TrimSpace(pairs[i+1]); v != "" {
			values.Set(pairs[i], v)
		}
	}
	return values
}
