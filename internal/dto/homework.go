package dto

// HomeworkQuery lists a class's homework.
type HomeworkQuery struct {
	Class   string `form:"class"`
	Section string `form:"section"`
	Query   string `form:"q"`
}

// CreateHomeworkRequest posts an assignment.
type CreateHomeworkRequest struct {
	Class       string `json:"class" validate:"required"`
	Section     string `json:"section" validate:"required"`
	Subject     string `json:"subject" validate:"required,max=100"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=4000"`
	DueDate     string `json:"due_date"`
	Attachment  string `json:"attachment" validate:"max=255"`
}
