package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-gateway/internal/dto"
	"github.com/noah-isme/school-gateway/internal/repository"
	"github.com/noah-isme/school-gateway/pkg/binex"
	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
)

type stubHomeworkStore struct {
	*repository.HomeworkRepository
	taskStore
	created  []repository.CreateHomeworkParams
	writeErr error
}

func (s *stubHomeworkStore) Fetch(ctx context.Context, q repository.TaskQuery) ([]byte, error) {
	return s.taskStore.Fetch(ctx, q)
}

func (s *stubHomeworkStore) Create(ctx context.Context, p repository.CreateHomeworkParams) error {
	s.created = append(s.created, p)
	return s.writeErr
}

const homework = `[
	{"id":1,"class":"10","section":"A","subject":"Maths","title":"Exercise 4.2","description":"Odd questions only"},
	{"id":2,"class":"10","section":"A","subject":"English","title":"Essay","description":"Monsoon in my town"}
]`

func newTestHomeworkService() (*HomeworkService, *stubHomeworkStore) {
	store := &stubHomeworkStore{
		HomeworkRepository: repository.NewHomeworkRepository(nil),
		taskStore:          taskStore{bodies: map[string]string{binex.TaskHomework: homework}},
	}
	cache, _ := newTestCache(0)
	return NewHomeworkService(store, cache, nil, nil), store
}

func TestHomeworkListScopesStudentsToTheirClass(t *testing.T) {
	svc, store := newTestHomeworkService()

	res, err := svc.List(context.Background(), studentActor, dto.HomeworkQuery{Class: "12", Section: "C", Query: "monsoon"})
	require.NoError(t, err)
	require.Len(t, res.Value, 1)
	assert.Equal(t, "Essay", res.Value[0].Title.String())
	assert.Equal(t, "10", store.queries[0].Params.Get("class"))
	assert.Equal(t, "A", store.queries[0].Params.Get("section"))
}

func TestHomeworkCreate(t *testing.T) {
	svc, store := newTestHomeworkService()

	_, err := svc.Create(context.Background(), adminActor, dto.CreateHomeworkRequest{Class: "10", Section: "A", Subject: "Maths"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(context.Background(), adminActor, dto.CreateHomeworkRequest{Class: "10", Section: "A", Subject: "Maths", Title: "Ex 5", DueDate: "tomorrow"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, store.created)

	res, err := svc.Create(context.Background(), adminActor, dto.CreateHomeworkRequest{Class: "10", Section: "A", Subject: "Maths", Title: "Ex 5", DueDate: "20-06-2024"})
	require.NoError(t, err)
	require.Len(t, store.created, 1)
	assert.Equal(t, "2024-06-20", store.created[0].DueDate)
	assert.Equal(t, "Principal", store.created[0].Teacher)
	assert.Len(t, res.Value, 2)
}
