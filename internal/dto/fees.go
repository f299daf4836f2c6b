package dto

// DuesQuery lists a class's dues.
type DuesQuery struct {
	Class   string `form:"class"`
	Section string `form:"section"`
	Status  string `form:"status"`
	Query   string `form:"q"`
}

// PaymentsQuery lists payments.
type PaymentsQuery struct {
	StudentID string `form:"student_id"`
	Status    string `form:"status"`
	Query     string `form:"q"`
}

// RecordPaymentRequest records a fee payment.
type RecordPaymentRequest struct {
	StudentID   string  `json:"student_id" validate:"required,max=50"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	PaymentDate string  `json:"payment_date"`
	PaymentMode string  `json:"payment_mode" validate:"omitempty,max=30"`
	Remarks     string  `json:"remarks" validate:"max=255"`
}
