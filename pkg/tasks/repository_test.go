package tasks

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harrisonrobin/gradary/pkg/model"
	"github.com/harrisonrobin/gradary/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) (*Repository, *storage.Gateway) {
	t.Helper()
	gw := storage.NewGateway(storage.NewMemoryStore())
	n := 0
	repo := NewRepository(gw,
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
	return repo, gw
}

func due(days int) model.Date {
	return model.NewDate(fixedNow.AddDate(0, 0, days))
}

func ids(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestAdd(t *testing.T) {
	repo, gw := newTestRepo(t)

	task, err := repo.Add("Essay", "History", model.Assignment, due(3))
	require.NoError(t, err)

	assert.Equal(t, "id-1", task.ID)
	assert.False(t, task.Completed)
	assert.Equal(t, fixedNow, task.CreatedAt)
	assert.Equal(t, due(3), task.DueDate)

	// written through
	assert.Equal(t, []model.Task{task}, gw.Tasks())
}

func TestAddUsesUUIDByDefault(t *testing.T) {
	repo := NewRepository(storage.NewGateway(storage.NewMemoryStore()))
	a, err := repo.Add("a", "s", model.Lab, due(1))
	require.NoError(t, err)
	b, err := repo.Add("b", "s", model.Lab, due(1))
	require.NoError(t, err)

	_, err = uuid.Parse(a.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestToggleMovesBetweenViews(t *testing.T) {
	repo, gw := newTestRepo(t)
	a, _ := repo.Add("A", "Math", model.Exam, due(1))
	repo.Add("B", "Math", model.Exam, due(2))

	require.NoError(t, repo.Toggle(a.ID))
	assert.Equal(t, []string{a.ID}, ids(repo.Completed()))
	assert.Equal(t, []string{"id-2"}, ids(repo.Pending()))
	assert.True(t, gw.Tasks()[0].Completed)

	require.NoError(t, repo.Toggle(a.ID))
	assert.Empty(t, repo.Completed())
	assert.Equal(t, []string{"id-1", "id-2"}, ids(repo.Pending()))
}

func TestToggleUnknownIsNoop(t *testing.T) {
	repo, _ := newTestRepo(t)
	repo.Add("A", "Math", model.Exam, due(1))

	require.NoError(t, repo.Toggle("nope"))
	assert.Len(t, repo.Pending(), 1)
}

func TestDeleteIsIdempotent(t *testing.T) {
	repo, gw := newTestRepo(t)
	a, _ := repo.Add("A", "Math", model.Exam, due(1))
	b, _ := repo.Add("B", "Math", model.Exam, due(1))
	require.NoError(t, repo.Toggle(b.ID))

	require.NoError(t, repo.Delete(b.ID))
	assert.NotContains(t, ids(repo.Pending()), b.ID)
	assert.NotContains(t, ids(repo.Completed()), b.ID)

	require.NoError(t, repo.Delete(b.ID))
	assert.Equal(t, []string{a.ID}, ids(repo.All()))
	assert.Equal(t, []string{a.ID}, ids(gw.Tasks()))
}

func TestListsPreserveInsertionOrder(t *testing.T) {
	repo, _ := newTestRepo(t)
	for i := 0; i < 5; i++ {
		repo.Add(fmt.Sprintf("T%d", i), "S", model.Other, due(5-i))
	}
	repo.Toggle("id-2")
	repo.Toggle("id-4")

	assert.Equal(t, []string{"id-1", "id-3", "id-5"}, ids(repo.Pending()))
	assert.Equal(t, []string{"id-2", "id-4"}, ids(repo.Completed()))
}

func TestListsAreCopies(t *testing.T) {
	repo, _ := newTestRepo(t)
	repo.Add("A", "Math", model.Exam, due(1))

	all := repo.All()
	all[0].Title = "changed"
	got, ok := repo.Get("id-1")
	require.True(t, ok)
	assert.Equal(t, "A", got.Title)
}

func TestRepositoryLoadsStoredTasks(t *testing.T) {
	gw := storage.NewGateway(storage.NewMemoryStore())
	require.NoError(t, gw.SaveTasks([]model.Task{{ID: "x", Title: "Stored", Subject: "Art"}}))

	repo := NewRepository(gw)
	assert.Equal(t, []string{"x"}, ids(repo.All()))
}

func TestImportPersistsOnce(t *testing.T) {
	store := &countingStore{MemoryStore: storage.NewMemoryStore()}
	repo := NewRepository(storage.NewGateway(store))

	created, err := repo.Import([]Input{
		{Title: "A", Subject: "S", Type: model.Lab, DueDate: due(1)},
		{Title: "B", Subject: "S", Type: model.Exam, DueDate: due(2), Completed: true},
	})
	require.NoError(t, err)
	assert.Len(t, created, 2)
	assert.True(t, created[1].Completed)
	assert.Equal(t, 1, store.sets)
}

func TestSubscribeReceivesSnapshot(t *testing.T) {
	repo, _ := newTestRepo(t)
	var got [][]string
	repo.Subscribe(func(tasks []model.Task) { got = append(got, ids(tasks)) })

	repo.Add("A", "S", model.Lab, due(1))
	repo.Toggle("id-1")
	repo.Delete("id-1")

	assert.Equal(t, [][]string{{"id-1"}, {"id-1"}, {}}, got)
}

func TestSaveFailureKeepsChange(t *testing.T) {
	repo := NewRepository(storage.NewGateway(brokenStore{storage.NewMemoryStore()}))

	task, err := repo.Add("A", "S", model.Lab, due(1))
	assert.Error(t, err)
	assert.Equal(t, []string{task.ID}, ids(repo.All()))
}

func TestResolve(t *testing.T) {
	repo, _ := newTestRepo(t)
	repo.Import([]Input{{Title: "A"}, {Title: "B"}})

	task, err := repo.Resolve("id-2")
	require.NoError(t, err)
	assert.Equal(t, "B", task.Title)

	_, err = repo.Resolve("id-")
	assert.ErrorIs(t, err, ErrAmbiguous)

	_, err = repo.Resolve("zzz")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Resolve("")
	assert.ErrorIs(t, err, ErrNotFound)
}

type countingStore struct {
	*storage.MemoryStore
	sets int
}

func (c *countingStore) Set(key, value string) error {
	c.sets++
	return c.MemoryStore.Set(key, value)
}

type brokenStore struct {
	*storage.MemoryStore
}

func (brokenStore) Set(string, string) error { return errors.New("read-only") }
