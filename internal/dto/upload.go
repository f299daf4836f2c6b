package dto

// UploadOptions are the multipart form fields sent alongside the file. Limits tighten, never
// loosen, the configured defaults.
type UploadOptions struct {
	Purpose           string `form:"purpose" validate:"max=50"`
	MaxSizeBytes      int64  `form:"max_size_bytes" validate:"gte=0"`
	AllowedExtensions string `form:"allowed_extensions" validate:"max=200"`
	Recompress        *bool  `form:"recompress"`
}
