package repository

import (
	"context"

	"github.com/noah-isme/school-gateway/internal/models"
	"github.com/noah-isme/school-gateway/pkg/binex"
)

// CreateNoticeParams is the form sent by add_notice.
type CreateNoticeParams struct {
	Title      string
	Details    string
	Date       string
	Attachment string
	Audience   string
}

// NoticeRepository maps notice operations onto backend tasks.
type NoticeRepository struct {
	*RemoteRepository
}

// NewNoticeRepository constructs the repository.
func NewNoticeRepository(remote *RemoteRepository) *NoticeRepository {
	return &NoticeRepository{RemoteRepository: remote}
}

// ListQuery reads every notice.
func (r *NoticeRepository) ListQuery() TaskQuery {
	return TaskQuery{Task: binex.TaskNotices, Params: params()}
}

// Create publishes a notice.
func (r *NoticeRepository) Create(ctx context.Context, p CreateNoticeParams) error {
	_, err := r.PostForm(ctx, binex.TaskAddNotice, params(
		"title", p.Title,
		"details", p.Details,
		"date", p.Date,
		"attachment", p.Attachment,
		"audience", p.Audience,
	))
	return err
}

// DecodeNotices decodes a notice listing.
func DecodeNotices(raw []byte) ([]models.Notice, error) {
	return binex.DecodeList[models.Notice](raw, "data", "notices")
}
