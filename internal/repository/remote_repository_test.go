package repository

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-gateway/pkg/binex"
	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
)

type capturedRequest struct {
	task  string
	query url.Values
	form  url.Values
	body  string
}

func newRemote(t *testing.T, reply func(task string) string) (*RemoteRepository, *[]capturedRequest) {
	t.Helper()
	captured := &[]capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := capturedRequest{task: r.URL.Query().Get("task"), query: r.URL.Query()}
		if r.Header.Get("Content-Type") == "application/x-www-form-urlencoded" {
			require.NoError(t, r.ParseForm())
			req.form = r.PostForm
		} else if r.Body != nil {
			data, _ := io.ReadAll(r.Body)
			req.body = string(data)
		}
		*captured = append(*captured, req)
		_, _ = w.Write([]byte(reply(req.task)))
	}))
	t.Cleanup(srv.Close)
	client, err := binex.New(binex.Config{BaseURL: srv.URL + "/binex/api.php"})
	require.NoError(t, err)
	return NewRemoteRepository(client), captured
}

func TestTaskQueryCanonicalParams(t *testing.T) {
	a := TaskQuery{Task: "t", Params: url.Values{"section": {"A"}, "class": {"10"}}}
	b := TaskQuery{Task: "t", Params: url.Values{"class": {"10"}, "section": {"A"}}}
	assert.Equal(t, a.CanonicalParams(), b.CanonicalParams())
	assert.Equal(t, "class=10&section=A", a.CanonicalParams())
	assert.Equal(t, "", TaskQuery{}.CanonicalParams())
}

func TestLeaveRepositoryQueriesAndWrites(t *testing.T) {
	remote, captured := newRemote(t, func(task string) string {
		switch task {
		case binex.TaskUpdateLeaveStatus:
			return `{"status":"error","message":"Leave already processed"}`
		default:
			return `{"status":"success","data":[{"id":"1","from_date":"2024-05-01","to_date":"2024-05-02","status":"PENDING"}]}`
		}
	})
	repo := NewLeaveRepository(remote)

	assert.Equal(t, binex.TaskAllLeaves, repo.ListQuery("").Task)
	q := repo.ListQuery("S1")
	assert.Equal(t, binex.TaskStudentLeaves, q.Task)

	raw, err := repo.Fetch(context.Background(), q)
	require.NoError(t, err)
	leaves, err := DecodeLeaves(raw)
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	assert.Equal(t, 2, leaves[0].Days)

	require.NoError(t, repo.Apply(context.Background(), ApplyLeaveParams{StudentID: "S1", FromDate: "2024-05-01", ToDate: "2024-05-02", Cause: "fever", Days: 2}))
	apply := (*captured)[1]
	assert.Equal(t, binex.TaskApplyLeave, apply.task)
	assert.Equal(t, "fever", apply.form.Get("cause"))
	assert.Equal(t, "2", apply.form.Get("days"))
	assert.Empty(t, apply.form.Get("class"))

	err = repo.UpdateStatus(context.Background(), "1", "APPROVED", "")
	assert.True(t, errors.Is(err, appErrors.ErrBackendRejected))
	assert.Contains(t, err.Error(), "Leave already processed")
}

func TestAttendanceRepositoryMarkSendsJSON(t *testing.T) {
	remote, captured := newRemote(t, func(string) string { return `{"status":"success"}` })
	repo := NewAttendanceRepository(remote)

	require.NoError(t, repo.Mark(context.Background(), "10", "A", "2024-06-01", map[string]string{"S1": "P", "S2": "A"}))
	got := (*captured)[0]
	assert.Equal(t, binex.TaskMarkAttendance, got.task)
	assert.Equal(t, "10", got.query.Get("class"))
	assert.JSONEq(t, `{"class":"10","section":"A","date":"2024-06-01","attendance":{"S1":"P","S2":"A"}}`, got.body)
}

func TestDecodeAttendanceShapes(t *testing.T) {
	records, err := DecodeAttendance([]byte(`{"status":"success","data":{"S2":"A","S1":"P"}}`))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, binex.Text("S1"), records[0].StudentID)
	assert.Equal(t, binex.Text("P"), records[0].Status)

	records, err = DecodeAttendance([]byte(`[{"student_id":"S1","status":"A","date":"2024-06-01"}]`))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, binex.Text("A"), records[0].Status)

	_, err = DecodeAttendance([]byte(`{"status":"failed","message":"no class"}`))
	assert.True(t, errors.Is(err, appErrors.ErrBackendRejected))
}

func TestAuthRepositoryLoginBareUserWithStatus(t *testing.T) {
	remote, _ := newRemote(t, func(string) string {
		return `{"id":8,"name":"Ravi","role":"teacher","status":"active"}`
	})
	user, err := NewAuthRepository(remote).Login(context.Background(), "ravi", "secret")
	require.NoError(t, err)
	assert.Equal(t, binex.Text("8"), user.ID)
}

func TestFeesRepositoryRecordPayment(t *testing.T) {
	remote, captured := newRemote(t, func(string) string { return `{"status":"success","data":{"receipt_id":"R-42"}}` })
	repo := NewFeesRepository(remote)

	id, err := repo.RecordPayment(context.Background(), RecordPaymentParams{StudentID: "S1", Amount: 1500, PaymentMode: "cash"})
	require.NoError(t, err)
	assert.Equal(t, "R-42", id)
	assert.Equal(t, "1500.00", (*captured)[0].form.Get("amount"))
}

func TestAuthRepositoryLogin(t *testing.T) {
	remote, captured := newRemote(t, func(string) string {
		return `{"status":"success","user":{"id":7,"name":"Asha","role":"student","student_id":"S7","class":"10","section":"B"}}`
	})
	user, err := NewAuthRepository(remote).Login(context.Background(), "asha", "secret")
	require.NoError(t, err)
	assert.Equal(t, binex.Text("7"), user.ID)
	assert.Equal(t, binex.Text("S7"), user.StudentID)
	assert.Equal(t, "asha", (*captured)[0].form.Get("username"))
}

func TestDecodeEntityListings(t *testing.T) {
	complaints, err := DecodeComplaints([]byte(`{"complaints":[{"id":1,"complaint":"bus late","status":"ACTIVE"}]}`))
	require.NoError(t, err)
	assert.Len(t, complaints, 1)

	notices, err := DecodeNotices([]byte(`[{"id":"n1","title":"Holiday","details":"<p>Closed</p>"}]`))
	require.NoError(t, err)
	assert.Equal(t, "Closed", notices[0].PlainDetails())

	homework, err := DecodeHomework([]byte(`{"status":"success","data":null}`))
	require.NoError(t, err)
	assert.Empty(t, homework)

	report, err := DecodeExamReport([]byte(`{"status":"success","data":{"student_id":"S1","subjects":[{"subject":"Maths","mo":"78","nb":4,"se":5}],"grand_total":""}}`))
	require.NoError(t, err)
	require.Len(t, report.Subjects, 1)
	assert.Equal(t, 87.0, report.Subjects[0].Obtained())

	_, err = DecodeReceipt([]byte(`{"status":"success","data":null}`))
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestDecodeBareReceiptKeepsItsStatus(t *testing.T) {
	receipt, err := DecodeReceipt([]byte(`{"receipt_id":"R-1","student_id":"S1","amount_paid":"1500","tuition":"1500","payment_date":"2024-04-02","status":"PAID"}`))
	require.NoError(t, err)
	assert.Equal(t, "R-1", receipt.ReceiptID)
	assert.Equal(t, "PAID", receipt.Status)
	assert.Equal(t, 1500.0, receipt.AmountPaid)
}
