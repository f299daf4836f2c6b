package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-gateway/internal/dto"
	"github.com/noah-isme/school-gateway/internal/filter"
	"github.com/noah-isme/school-gateway/internal/models"
	"github.com/noah-isme/school-gateway/internal/repository"
	"github.com/noah-isme/school-gateway/pkg/binex"
	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
)

type stubLeaveStore struct {
	body     string
	fetchErr error
	writeErr error
	queries  []repository.TaskQuery
	applied  []repository.ApplyLeaveParams
	updates  [][3]string
}

func (s *stubLeaveStore) ListQuery(studentID string) repository.TaskQuery {
	return repository.NewLeaveRepository(nil).ListQuery(studentID)
}

func (s *stubLeaveStore) Fetch(ctx context.Context, q repository.TaskQuery) ([]byte, error) {
	s.queries = append(s.queries, q)
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return []byte(s.body), nil
}

func (s *stubLeaveStore) Apply(ctx context.Context, p repository.ApplyLeaveParams) error {
	s.applied = append(s.applied, p)
	return s.writeErr
}

func (s *stubLeaveStore) UpdateStatus(ctx context.Context, id, status, remarks string) error {
	s.updates = append(s.updates, [3]string{id, status, remarks})
	return s.writeErr
}

var (
	adminActor   = &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin, Name: "Principal"}
	studentActor = &models.JWTClaims{UserID: "u-7", Role: models.RoleStudent, Name: "Asha", StudentID: "S-7", Class: "10", Section: "A"}
)

func newTestLeaveService(store *stubLeaveStore) *LeaveService {
	cache, _ := newTestCache(0)
	return NewLeaveService(store, cache, nil, nil)
}

func TestLeaveServiceListScopesStudents(t *testing.T) {
	store := &stubLeaveStore{body: twoLeaves}
	svc := newTestLeaveService(store)

	_, err := svc.List(context.Background(), studentActor, "S-99", filter.Criteria{})
	require.NoError(t, err)
	require.Len(t, store.queries, 1)
	assert.Equal(t, binex.TaskStudentLeaves, store.queries[0].Task)
	assert.Equal(t, "S-7", store.queries[0].Params.Get("student_id"))

	_, err = svc.List(context.Background(), adminActor, "", filter.Criteria{})
	require.NoError(t, err)
	assert.Equal(t, binex.TaskAllLeaves, store.queries[1].Task)
}

func TestLeaveServiceListFilters(t *testing.T) {
	svc := newTestLeaveService(&stubLeaveStore{body: twoLeaves})

	res, err := svc.List(context.Background(), adminActor, "", filter.Criteria{Status: "approved"})
	require.NoError(t, err)
	require.Len(t, res.Value, 1)
	assert.Equal(t, "Ravi", res.Value[0].StudentName.String())
	assert.Equal(t, 1, *res.Meta.Count)
	assert.Equal(t, 2, *res.Meta.Total)

	res, err = svc.List(context.Background(), adminActor, "", filter.Criteria{Status: "all", Query: "ash"})
	require.NoError(t, err)
	require.Len(t, res.Value, 1)
	assert.Equal(t, "Asha", res.Value[0].StudentName.String())
}

func TestLeaveServiceListFallsBackToCache(t *testing.T) {
	store := &stubLeaveStore{body: twoLeaves}
	svc := newTestLeaveService(store)
	_, err := svc.List(context.Background(), adminActor, "", filter.Criteria{})
	require.NoError(t, err)

	store.fetchErr = appErrors.ErrBackendUnavailable
	res, err := svc.List(context.Background(), adminActor, "", filter.Criteria{Status: "pending"})
	require.NoError(t, err)
	assert.True(t, res.Meta.Stale)
	assert.Len(t, res.Value, 1)
	assert.ErrorIs(t, res.Cause, appErrors.ErrBackendUnavailable)
}

func TestLeaveServiceListWithoutStudentLink(t *testing.T) {
	svc := newTestLeaveService(&stubLeaveStore{body: twoLeaves})
	_, err := svc.List(context.Background(), &models.JWTClaims{UserID: "x", Role: models.RoleStudent}, "", filter.Criteria{})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestLeaveServiceApply(t *testing.T) {
	store := &stubLeaveStore{body: twoLeaves}
	svc := newTestLeaveService(store)

	res, err := svc.Apply(context.Background(), studentActor, dto.ApplyLeaveRequest{
		FromDate: "03-06-2024",
		ToDate:   "2024-06-05",
		Cause:    " fever ",
	})
	require.NoError(t, err)
	require.Len(t, store.applied, 1)
	applied := store.applied[0]
	assert.Equal(t, "S-7", applied.StudentID)
	assert.Equal(t, "Asha", applied.StudentName)
	assert.Equal(t, "10", applied.Class)
	assert.Equal(t, "2024-06-03", applied.FromDate)
	assert.Equal(t, "2024-06-05", applied.ToDate)
	assert.Equal(t, "fever", applied.Cause)
	assert.Equal(t, 3, applied.Days)
	assert.Len(t, res.Value, 2)
}

func TestLeaveServiceApplyValidation(t *testing.T) {
	store := &stubLeaveStore{body: twoLeaves}
	svc := newTestLeaveService(store)

	cases := map[string]dto.ApplyLeaveRequest{
		"missing cause":  {FromDate: "2024-06-03", ToDate: "2024-06-03"},
		"blank cause":    {FromDate: "2024-06-03", ToDate: "2024-06-03", Cause: "   "},
		"reversed dates": {FromDate: "2024-06-05", ToDate: "2024-06-03", Cause: "trip"},
		"bad date":       {FromDate: "someday", ToDate: "2024-06-03", Cause: "trip"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Apply(context.Background(), studentActor, req)
			assert.ErrorIs(t, err, appErrors.ErrValidation)
		})
	}
	assert.Empty(t, store.applied)

	_, err := svc.Apply(context.Background(), adminActor, dto.ApplyLeaveRequest{FromDate: "2024-06-03", ToDate: "2024-06-03", Cause: "trip"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestLeaveServiceUpdateStatusChecksCachedState(t *testing.T) {
	store := &stubLeaveStore{body: twoLeaves}
	svc := newTestLeaveService(store)
	_, err := svc.List(context.Background(), adminActor, "", filter.Criteria{})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), adminActor, "2", dto.UpdateLeaveStatusRequest{Status: "rejected"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Empty(t, store.updates)

	_, err = svc.UpdateStatus(context.Background(), adminActor, "1", dto.UpdateLeaveStatusRequest{Status: "pending"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	res, err := svc.UpdateStatus(context.Background(), adminActor, "1", dto.UpdateLeaveStatusRequest{Status: "approved", Remarks: "ok"})
	require.NoError(t, err)
	require.Len(t, store.updates, 1)
	assert.Equal(t, [3]string{"1", "APPROVED", "ok"}, store.updates[0])
	assert.Len(t, res.Value, 2)
}

func TestLeaveServiceUpdateStatusUnknownStateIsLeftToBackend(t *testing.T) {
	store := &stubLeaveStore{body: twoLeaves}
	svc := newTestLeaveService(store)

	_, err := svc.UpdateStatus(context.Background(), adminActor, "2", dto.UpdateLeaveStatusRequest{Status: "REJECTED"})
	require.NoError(t, err)
	assert.Len(t, store.updates, 1)
}

func TestLeaveServiceUpdateStatusFailureStillRefreshes(t *testing.T) {
	store := &stubLeaveStore{body: twoLeaves, writeErr: appErrors.Clone(appErrors.ErrBackendRejected, "already approved")}
	svc := newTestLeaveService(store)

	res, err := svc.UpdateStatus(context.Background(), adminActor, "1", dto.UpdateLeaveStatusRequest{Status: "APPROVED"})
	assert.ErrorIs(t, err, appErrors.ErrBackendRejected)
	assert.Len(t, res.Value, 2)
	assert.Len(t, store.queries, 1)
}

func TestLeaveServiceUpdateStatusReportsFailedReload(t *testing.T) {
	store := &stubLeaveStore{fetchErr: appErrors.ErrBackendUnavailable}
	svc := newTestLeaveService(store)

	res, err := svc.UpdateStatus(context.Background(), adminActor, "1", dto.UpdateLeaveStatusRequest{Status: "APPROVED"})
	require.NoError(t, err)
	assert.Len(t, store.updates, 1)
	require.True(t, res.Degraded())
	assert.ErrorIs(t, res.Cause, appErrors.ErrBackendUnavailable)
	assert.Equal(t, reloadNotice, res.Meta.Notice)
}
