package repository

import (
	"context"

	"github.com/noah-isme/school-gateway/internal/models"
	"github.com/noah-isme/school-gateway/pkg/binex"
)

// CreateHomeworkParams is the form sent by add_homework.
type CreateHomeworkParams struct {
	Class       string
	Section     string
	Subject     string
	Title       string
	Description string
	DueDate     string
	Attachment  string
	Teacher     string
}

// HomeworkRepository maps homework operations onto backend tasks.
type HomeworkRepository struct {
	*RemoteRepository
}

// NewHomeworkRepository constructs the repository.
func NewHomeworkRepository(remote *RemoteRepository) *HomeworkRepository {
	return &HomeworkRepository{RemoteRepository: remote}
}

// ListQuery reads the homework of a class and section.
func (r *HomeworkRepository) ListQuery(class, section string) TaskQuery {
	return TaskQuery{Task: binex.TaskHomework, Params: params("class", class, "section", section)}
}

// Create posts an assignment.
func (r *HomeworkRepository) Create(ctx context.Context, p CreateHomeworkParams) error {
	_, err := r.PostForm(ctx, binex.TaskAddHomework, params(
		"class", p.Class,
		"section", p.Section,
		"subject", p.Subject,
		"title", p.Title,
		"description", p.Description,
		"due_date", p.DueDate,
		"attachment", p.Attachment,
		"teacher", p.Teacher,
	))
	return err
}

// DecodeHomework decodes a homework listing.
func DecodeHomework(raw []byte) ([]models.Homework, error) {
	return binex.DecodeList[models.Homework](raw, "data", "homework")
}
