package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-gateway/internal/dto"
	"github.com/noah-isme/school-gateway/internal/filter"
	"github.com/noah-isme/school-gateway/internal/repository"
	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
)

type stubComplaintStore struct {
	body     string
	fetchErr error
	writeErr error
	queries  []repository.TaskQuery
	created  []repository.CreateComplaintParams
	updates  [][3]string
}

func (s *stubComplaintStore) ListQuery(studentID string) repository.TaskQuery {
	return repository.NewComplaintRepository(nil).ListQuery(studentID)
}

func (s *stubComplaintStore) Fetch(ctx context.Context, q repository.TaskQuery) ([]byte, error) {
	s.queries = append(s.queries, q)
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return []byte(s.body), nil
}

func (s *stubComplaintStore) Create(ctx context.Context, p repository.CreateComplaintParams) error {
	s.created = append(s.created, p)
	return s.writeErr
}

func (s *stubComplaintStore) UpdateStatus(ctx context.Context, id, status, response string) error {
	s.updates = append(s.updates, [3]string{id, status, response})
	return s.writeErr
}

const threeComplaints = `[
	{"id":"c1","student_name":"Asha","student_roll":12,"complaint_to":"Class teacher","complaint":"Broken bench","status":"active"},
	{"id":"c2","student_name":"Ravi","student_roll":4,"complaint_to":"Transport","complaint":"Bus late","status":"RESOLVED"},
	{"id":"c3","student_name":"Meera","complaint":"Library fine","status":"CLOSED"}
]`

func newTestComplaintService(store *stubComplaintStore) *ComplaintService {
	cache, _ := newTestCache(0)
	return NewComplaintService(store, cache, nil, nil)
}

func TestComplaintServiceListSearchesFixedFields(t *testing.T) {
	svc := newTestComplaintService(&stubComplaintStore{body: threeComplaints})

	res, err := svc.List(context.Background(), adminActor, "", filter.Criteria{Query: "transport"})
	require.NoError(t, err)
	require.Len(t, res.Value, 1)
	assert.Equal(t, "c2", res.Value[0].ID.String())

	res, err = svc.List(context.Background(), adminActor, "", filter.Criteria{Query: "12"})
	require.NoError(t, err)
	require.Len(t, res.Value, 1)
	assert.Equal(t, "Asha", res.Value[0].StudentName.String())

	res, err = svc.List(context.Background(), adminActor, "", filter.Criteria{Status: "ACTIVE"})
	require.NoError(t, err)
	assert.Len(t, res.Value, 1)
}

func TestComplaintServiceCreate(t *testing.T) {
	store := &stubComplaintStore{body: threeComplaints}
	svc := newTestComplaintService(store)

	_, err := svc.Create(context.Background(), studentActor, dto.CreateComplaintRequest{Complaint: "  "})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, store.created)

	res, err := svc.Create(context.Background(), studentActor, dto.CreateComplaintRequest{Complaint: "Fan not working", ComplaintTo: "Office", StudentID: "S-1"})
	require.NoError(t, err)
	require.Len(t, store.created, 1)
	assert.Equal(t, "S-7", store.created[0].StudentID)
	assert.Equal(t, "Asha", store.created[0].StudentName)
	assert.Equal(t, "A", store.created[0].StudentSection)
	assert.Len(t, res.Value, 3)
}

func TestComplaintServiceUpdateStatus(t *testing.T) {
	store := &stubComplaintStore{body: threeComplaints}
	svc := newTestComplaintService(store)
	_, err := svc.List(context.Background(), adminActor, "", filter.Criteria{})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), adminActor, "c3", dto.UpdateComplaintStatusRequest{Status: "RESOLVED"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	_, err = svc.UpdateStatus(context.Background(), adminActor, "c1", dto.UpdateComplaintStatusRequest{Status: "escalated"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, store.updates)

	_, err = svc.UpdateStatus(context.Background(), adminActor, "c1", dto.UpdateComplaintStatusRequest{Status: "resolved", Response: "Bench replaced"})
	require.NoError(t, err)
	assert.Equal(t, [][3]string{{"c1", "RESOLVED", "Bench replaced"}}, store.updates)
}

func TestComplaintServiceUpdateFailureReturnsFreshList(t *testing.T) {
	store := &stubComplaintStore{body: threeComplaints, writeErr: appErrors.ErrBackendUnavailable}
	svc := newTestComplaintService(store)

	res, err := svc.UpdateStatus(context.Background(), adminActor, "c1", dto.UpdateComplaintStatusRequest{Status: "CLOSED"})
	assert.ErrorIs(t, err, appErrors.ErrBackendUnavailable)
	assert.Len(t, res.Value, 3)
}

func TestComplaintServiceCreateReportsFailedReload(t *testing.T) {
	store := &stubComplaintStore{fetchErr: appErrors.ErrMalformedResponse}
	svc := newTestComplaintService(store)

	res, err := svc.Create(context.Background(), studentActor, dto.CreateComplaintRequest{Complaint: "Fan not working"})
	require.NoError(t, err)
	assert.Len(t, store.created, 1)
	assert.ErrorIs(t, res.Cause, appErrors.ErrMalformedResponse)
}
