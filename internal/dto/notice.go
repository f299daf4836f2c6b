package dto

// CreateNoticeRequest publishes a notice. Attachment is a filename returned by a finished upload.
type CreateNoticeRequest struct {
	Title      string `json:"title" validate:"required,max=200"`
	Details    string `json:"details" validate:"required"`
	Date       string `json:"date"`
	Attachment string `json:"attachment" validate:"max=255"`
	Audience   string `json:"audience" validate:"max=50"`
}
