package binex

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
)

// DefaultFileField is the multipart field name the upload task reads.
const DefaultFileField = "file"

// FilePart is the file section of a multipart upload.
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// UploadRequest is a multipart task call carrying one file plus plain fields.
type UploadRequest struct {
	Task   string
	Fields map[string]string
	File   FilePart
}

// ProgressFunc receives the number of file bytes streamed so far and the declared total.
type ProgressFunc func(sent, total int64)

// Upload streams the multipart body through a pipe so progress reflects bytes handed to the
// transport. Cancelling ctx aborts the HTTP request.
func (c *Client) Upload(ctx context.Context, req UploadRequest, progress ProgressFunc) ([]byte, error) {
	if strings.TrimSpace(req.Task) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "task is required")
	}
	if req.File.Content == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file content missing")
	}
	field := req.File.Field
	if field == "" {
		field = DefaultFileField
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeMultipart(mw, field, req, progress))
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.taskURL(req.Task, nil), pr)
	if err != nil {
		_ = pr.Close()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build upload request")
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	c.decorate(httpReq)

	raw, err := c.send(req.Task, httpReq)
	if err != nil && ctx.Err() != nil {
		return nil, appErrors.Wrap(ctx.Err(), appErrors.ErrUploadCancelled.Code, appErrors.ErrUploadCancelled.Status, appErrors.ErrUploadCancelled.Message)
	}
	return raw, err
}

func writeMultipart(mw *multipart.Writer, field string, req UploadRequest, progress ProgressFunc) error {
	for key, value := range req.Fields {
		if err := mw.WriteField(key, value); err != nil {
			return fmt.Errorf("write field %s: %w", key, err)
		}
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(field), escapeQuotes(req.File.Filename)))
	contentType := req.File.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	counter := &countingReader{r: req.File.Content, total: req.File.Size, progress: progress}
	if _, err := io.Copy(part, counter); err != nil {
		return fmt.Errorf("stream file: %w", err)
	}
	return mw.Close()
}

type countingReader struct {
	r        io.Reader
	sent     int64
	total    int64
	progress ProgressFunc
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.sent += int64(n)
		if c.progress != nil {
			c.progress(c.sent, c.total)
		}
	}
	return n, err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
