package repository

import (
	"context"
	"strconv"

	"github.com/bytedance/sonic"

	"github.com/noah-isme/school-gateway/internal/models"
	"github.com/noah-isme/school-gateway/pkg/binex"
)

// RecordPaymentParams is the form sent by record_payment.
type RecordPaymentParams struct {
	StudentID   string
	Amount      float64
	PaymentDate string
	PaymentMode string
	Remarks     string
}

// FeesRepository maps dues and payment operations onto backend tasks.
type FeesRepository struct {
	*RemoteRepository
}

// NewFeesRepository constructs the repository.
func NewFeesRepository(remote *RemoteRepository) *FeesRepository {
	return &FeesRepository{RemoteRepository: remote}
}

// DuesQuery reads the dues of a class and section.
func (r *FeesRepository) DuesQuery(class, section string) TaskQuery {
	return TaskQuery{Task: binex.TaskDues, Params: params("class", class, "section", section)}
}

// StudentDuesQuery reads one student's dues.
func (r *FeesRepository) StudentDuesQuery(studentID string) TaskQuery {
	return TaskQuery{Task: binex.TaskStudentDues, Params: params("student_id", studentID)}
}

// PaymentsQuery reads payments, narrowed to one student when studentID is set.
func (r *FeesRepository) PaymentsQuery(studentID string) TaskQuery {
	return TaskQuery{Task: binex.TaskPayments, Params: params("student_id", studentID)}
}

// ReceiptQuery reads a single receipt.
func (r *FeesRepository) ReceiptQuery(receiptID string) TaskQuery {
	return TaskQuery{Task: binex.TaskReceipt, Params: params("receipt_id", receiptID)}
}

// RecordPayment submits a payment and returns the receipt id when the backend reports one.
func (r *FeesRepository) RecordPayment(ctx context.Context, p RecordPaymentParams) (string, error) {
	raw, err := r.PostForm(ctx, binex.TaskRecordPayment, params(
		"student_id", p.StudentID,
		"amount", strconv.FormatFloat(p.Amount, 'f', 2, 64),
		"payment_date", p.PaymentDate,
		"payment_mode", p.PaymentMode,
		"remarks", p.Remarks,
	))
	if err != nil {
		return "", err
	}
	var ack struct {
		ReceiptID binex.Text `json:"receipt_id"`
		Data      struct {
			ReceiptID binex.Text `json:"receipt_id"`
		} `json:"data"`
	}
	if err := sonic.Unmarshal(raw, &ack); err != nil {
		return "", nil
	}
	if ack.ReceiptID != "" {
		return ack.ReceiptID.String(), nil
	}
	return ack.Data.ReceiptID.String(), nil
}

// DecodeDues decodes a dues listing.
func DecodeDues(raw []byte) ([]models.DuesRecord, error) {
	return binex.DecodeList[models.DuesRecord](raw, "data", "dues")
}

// DecodeDuesRecord decodes a single student's dues.
func DecodeDuesRecord(raw []byte) (models.DuesRecord, error) {
	return binex.DecodeObject[models.DuesRecord](raw, "data", "dues")
}

// DecodePayments decodes a payment listing.
func DecodePayments(raw []byte) ([]models.PaymentReceipt, error) {
	return binex.DecodeList[models.PaymentReceipt](raw, "data", "payments")
}

// DecodeReceipt decodes a single receipt.
func DecodeReceipt(raw []byte) (models.PaymentReceipt, error) {
	return binex.DecodeObject[models.PaymentReceipt](raw, "data", "receipt")
}
