package models

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-gateway/pkg/binex"
)

func TestDuesRecordComputesTotal(t *testing.T) {
	var rec DuesRecord
	raw := `{"student_id":101,"student_name":"Asha","previous_dues":"500","tuition_fee":"1,200","transport_fee":300,"total":99999,"phone":"9876543210"}`
	require.NoError(t, sonic.Unmarshal([]byte(raw), &rec))

	assert.Equal(t, "101", rec.StudentID)
	assert.Equal(t, []FeeComponent{{Name: "transport_fee", Amount: 300}, {Name: "tuition_fee", Amount: 1200}}, rec.Breakdown)
	assert.Equal(t, 2000.0, rec.Total)
	assert.Equal(t, "PENDING", rec.FilterStatus())
}

func TestDuesRecordSkipsSummaryColumns(t *testing.T) {
	var rec DuesRecord
	raw := `{"student_id":"S1","previous_dues":"100","tuition":"500","transport":"200","total_fees":"700","net_fee":700,"paid_fee":"0","grand_total_charges":800}`
	require.NoError(t, sonic.Unmarshal([]byte(raw), &rec))

	assert.Equal(t, []FeeComponent{{Name: "transport", Amount: 200}, {Name: "tuition", Amount: 500}}, rec.Breakdown)
	assert.Equal(t, 800.0, rec.Total)
}

func TestDuesRecordTotalIsRounded(t *testing.T) {
	var rec DuesRecord
	require.NoError(t, sonic.Unmarshal([]byte(`{"student_id":"S2","previous_dues":0.1,"exam_fee":0.2}`), &rec))
	assert.Equal(t, 0.3, rec.Total)
}

func TestDuesRecordWithoutHeads(t *testing.T) {
	var rec DuesRecord
	require.NoError(t, sonic.Unmarshal([]byte(`{"student_id":"S9","student_name":"Ravi"}`), &rec))
	assert.Zero(t, rec.Total)
	assert.NotNil(t, rec.Breakdown)
	assert.Equal(t, "CLEAR", rec.FilterStatus())
}

func TestPaymentReceiptAliases(t *testing.T) {
	var rec PaymentReceipt
	raw := `{"receipt_no":"R-7","student_id":"S1","paid_amount":"1500","tuition":1000,"exam_fee":500,"date":"2024-04-02","mode":"UPI"}`
	require.NoError(t, sonic.Unmarshal([]byte(raw), &rec))

	assert.Equal(t, "R-7", rec.ReceiptID)
	assert.Equal(t, 1500.0, rec.AmountPaid)
	assert.Equal(t, 1500.0, rec.TotalAmount)
	assert.Equal(t, "2024-04-02", rec.PaymentDate)
	assert.Equal(t, "UPI", rec.PaymentMode)
	assert.Equal(t, "PAID", rec.Status)
	assert.Len(t, rec.Breakdown, 2)
}

func TestNoticePlainDetails(t *testing.T) {
	n := Notice{Details: binex.Text("<p>School closed on <b>Friday</b>.</p><p>Fees &amp; forms due&nbsp;Monday<br/>Thanks</p>")}
	assert.Equal(t, "School closed on Friday.\nFees & forms due Monday\nThanks", n.PlainDetails())
	assert.Equal(t, []string{"", n.PlainDetails()}, n.SearchFields())
}

func TestLeaveWithDays(t *testing.T) {
	l := LeaveApplication{FromDate: "2024-05-01", ToDate: "2024-05-03"}.WithDays()
	assert.Equal(t, 3, l.Days)

	l = LeaveApplication{FromDate: "soon"}.WithDays()
	assert.Zero(t, l.Days)
}

func TestSubjectMarkObtained(t *testing.T) {
	assert.Equal(t, 87.0, SubjectMark{NB: 4, SE: 5, MO: 78}.Obtained())
	assert.Equal(t, 90.0, SubjectMark{NB: 4, Total: 90}.Obtained())
	assert.Equal(t, 100.0, SubjectMark{}.MaxMarks())
	assert.Equal(t, 50.0, SubjectMark{Max: 50}.MaxMarks())
}

func TestParseRoleAndMarks(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleTeacher, ParseRole(" Teacher "))
	assert.Equal(t, RoleStudent, ParseRole("parent"))
	assert.True(t, RoleTeacher.IsStaff())
	assert.False(t, RoleStudent.IsStaff())

	mark, ok := NormalizeMark("present")
	assert.True(t, ok)
	assert.Equal(t, AttendancePresent, mark)
	_, ok = NormalizeMark("L")
	assert.False(t, ok)
}

func TestAttendanceSheetTally(t *testing.T) {
	sheet := AttendanceSheet{Entries: []AttendanceEntry{{Status: "P"}, {Status: "A"}, {Status: "P"}, {}}}
	sheet.Tally()
	assert.Equal(t, 2, sheet.Present)
	assert.Equal(t, 1, sheet.Absent)
	assert.Equal(t, 1, sheet.Unmarked)
}
