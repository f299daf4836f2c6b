package models

import (
	"encoding/json"
	"math"
	"sort"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/noah-isme/school-gateway/pkg/binex"
)

// FeeComponent is one line of a fee breakdown.
type FeeComponent struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// DuesRecord is what a student still owes. Total is previous dues plus every breakdown line.
type DuesRecord struct {
	StudentID    string         `json:"student_id"`
	StudentName  string         `json:"student_name"`
	Class        string         `json:"class,omitempty"`
	Section      string         `json:"section,omitempty"`
	Roll         string         `json:"roll,omitempty"`
	PreviousDues float64        `json:"previous_dues"`
	Breakdown    []FeeComponent `json:"breakdown"`
	Total        float64        `json:"total"`
}

// UnmarshalJSON reads the backend's flat record: identity columns, previous_dues and the fee
// heads. A total sent by the backend is ignored and recomputed.
func (d *DuesRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	var identity struct {
		StudentID    binex.Text   `json:"student_id"`
		StudentName  binex.Text   `json:"student_name"`
		Class        binex.Text   `json:"class"`
		Section      binex.Text   `json:"section"`
		Roll         binex.Text   `json:"roll"`
		PreviousDues binex.Number `json:"previous_dues"`
	}
	if err := sonic.Unmarshal(data, &identity); err != nil {
		return err
	}
	breakdown := feeHeads(raw)
	*d = DuesRecord{
		StudentID:    identity.StudentID.String(),
		StudentName:  identity.StudentName.String(),
		Class:        identity.Class.String(),
		Section:      identity.Section.String(),
		Roll:         identity.Roll.String(),
		PreviousDues: identity.PreviousDues.Float(),
		Breakdown:    breakdown,
	}
	d.Total = d.ComputeTotal()
	return nil
}

// ComputeTotal returns previous dues plus the breakdown sum, rounded to paise.
func (d DuesRecord) ComputeTotal() float64 {
	total := d.PreviousDues
	for _, c := range d.Breakdown {
		total += c.Amount
	}
	return roundMoney(total)
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// FilterStatus implements filter.Filterable; dues are either pending or clear.
func (d DuesRecord) FilterStatus() string {
	if d.Total > 0 {
		return "PENDING"
	}
	return "CLEAR"
}

// SearchFields implements filter.Filterable.
func (d DuesRecord) SearchFields() []string {
	return []string{d.StudentName, d.StudentID}
}

// PaymentReceipt is a recorded fee payment.
type PaymentReceipt struct {
	ReceiptID   string         `json:"receipt_id"`
	StudentID   string         `json:"student_id"`
	StudentName string         `json:"student_name"`
	Class       string         `json:"class,omitempty"`
	Section     string         `json:"section,omitempty"`
	AmountPaid  float64        `json:"amount_paid"`
	TotalAmount float64        `json:"total_amount"`
	Balance     float64        `json:"balance"`
	Breakdown   []FeeComponent `json:"breakdown"`
	PaymentDate string         `json:"payment_date"`
	PaymentMode string         `json:"payment_mode,omitempty"`
	Status      string         `json:"status"`
}

// UnmarshalJSON accepts receipt_id or receipt_no and amount_paid or paid_amount, and collects
// the fee heads as the breakdown.
func (p *PaymentReceipt) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	var wire struct {
		ReceiptID   binex.Text   `json:"receipt_id"`
		ReceiptNo   binex.Text   `json:"receipt_no"`
		ID          binex.Text   `json:"id"`
		StudentID   binex.Text   `json:"student_id"`
		StudentName binex.Text   `json:"student_name"`
		Class       binex.Text   `json:"class"`
		Section     binex.Text   `json:"section"`
		AmountPaid  binex.Number `json:"amount_paid"`
		PaidAmount  binex.Number `json:"paid_amount"`
		TotalAmount binex.Number `json:"total_amount"`
		Balance     binex.Number `json:"balance"`
		PaymentDate binex.Text   `json:"payment_date"`
		Date        binex.Text   `json:"date"`
		PaymentMode binex.Text   `json:"payment_mode"`
		Mode        binex.Text   `json:"mode"`
		Status      binex.Text   `json:"status"`
	}
	if err := sonic.Unmarshal(data, &wire); err != nil {
		return err
	}
	breakdown := feeHeads(raw)
	*p = PaymentReceipt{
		ReceiptID:   firstText(wire.ReceiptID, wire.ReceiptNo, wire.ID),
		StudentID:   wire.StudentID.String(),
		StudentName: wire.StudentName.String(),
		Class:       wire.Class.String(),
		Section:     wire.Section.String(),
		AmountPaid:  firstNumber(wire.AmountPaid, wire.PaidAmount),
		TotalAmount: wire.TotalAmount.Float(),
		Balance:     wire.Balance.Float(),
		Breakdown:   breakdown,
		PaymentDate: firstText(wire.PaymentDate, wire.Date),
		PaymentMode: firstText(wire.PaymentMode, wire.Mode),
		Status:      strings.ToUpper(wire.Status.String()),
	}
	if p.TotalAmount == 0 {
		for _, c := range breakdown {
			p.TotalAmount += c.Amount
		}
		p.TotalAmount = roundMoney(p.TotalAmount)
	}
	if p.Status == "" {
		p.Status = "PAID"
	}
	return nil
}

// FilterStatus implements filter.Filterable.
func (p PaymentReceipt) FilterStatus() string { return p.Status }

// SearchFields implements filter.Filterable.
func (p PaymentReceipt) SearchFields() []string {
	return []string{p.ReceiptID, p.StudentName, p.StudentID}
}

var feeHeadNames = map[string]struct{}{
	"tuition": {}, "transport": {}, "admission": {}, "exam": {}, "library": {}, "sports": {},
	"computer": {}, "lab": {}, "development": {}, "annual": {}, "hostel": {}, "uniform": {},
	"books": {}, "misc": {}, "miscellaneous": {}, "fine": {}, "late_fine": {}, "other": {},
}

// Summary columns such as total_fees or paid_fee repeat the heads and are never summed.
var aggregatePrefixes = map[string]struct{}{
	"total": {}, "net": {}, "paid": {}, "grand": {}, "balance": {}, "sub": {}, "subtotal": {},
	"due": {}, "dues": {}, "outstanding": {}, "pending": {}, "previous": {},
}

// isFeeHead matches the known head names and anything suffixed _fee, _fees or _charges that is
// not a summary column.
func isFeeHead(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if _, ok := feeHeadNames[key]; ok {
		return true
	}
	if !strings.HasSuffix(key, "_fee") && !strings.HasSuffix(key, "_fees") && !strings.HasSuffix(key, "_charges") {
		return false
	}
	prefix, _, _ := strings.Cut(key, "_")
	_, aggregate := aggregatePrefixes[prefix]
	return !aggregate
}

// feeHeads collects the fee head columns of a flat record, sorted by name. Heads whose value is
// not numeric are skipped.
func feeHeads(raw map[string]json.RawMessage) []FeeComponent {
	heads := make([]FeeComponent, 0)
	for key, value := range raw {
		if !isFeeHead(key) {
			continue
		}
		var amount binex.Number
		if err := sonic.Unmarshal(value, &amount); err != nil {
			continue
		}
		heads = append(heads, FeeComponent{Name: key, Amount: amount.Float()})
	}
	sort.Slice(heads, func(i, j int) bool { return heads[i].Name < heads[j].Name })
	return heads
}

func firstText(values ...binex.Text) string {
	for _, v := range values {
		if v != "" {
			return v.String()
		}
	}
	return ""
}

func firstNumber(values ...binex.Number) float64 {
	for _, v := range values {
		if v != 0 {
			return v.Float()
		}
	}
	return 0
}
