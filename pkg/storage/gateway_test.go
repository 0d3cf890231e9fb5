package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/harrisonrobin/gradary/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	*MemoryStore
}

func (failingStore) Get(string) (string, bool, error) { return "", false, errors.New("disk gone") }
func (failingStore) Set(string, string) error          { return errors.New("disk full") }

func TestGatewayDefaults(t *testing.T) {
	gw := NewGateway(NewMemoryStore())

	tasks := gw.Tasks()
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
	assert.Equal(t, model.DefaultGoals(), gw.Goals())
}

func TestGatewayRoundTrip(t *testing.T) {
	gw := NewGateway(NewMemoryStore())
	due := model.Date{Year: 2026, Month: time.November, Day: 2}
	in := []model.Task{
		{ID: "a", Title: "Essay", Subject: "History", Type: model.Assignment, DueDate: due, CreatedAt: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)},
		{ID: "b", Title: "Midterm", Subject: "Math", Type: model.Exam, Completed: true},
	}
	require.NoError(t, gw.SaveTasks(in))
	assert.Equal(t, in, gw.Tasks())

	goals := model.Goals{CGPATarget: 3.9, DailyStudyHours: 4, Streak: 1, LastVisit: "Wed Oct 14 2026"}
	require.NoError(t, gw.SaveGoals(goals))
	assert.Equal(t, goals, gw.Goals())
}

func TestGatewayCorruptData(t *testing.T) {
	store := NewMemoryStore()
	gw := NewGateway(store)

	require.NoError(t, store.Set(TasksKey, "[{oops"))
	require.NoError(t, store.Set(GoalsKey, `"not an object"`))

	assert.Empty(t, gw.Tasks())
	assert.Equal(t, model.DefaultGoals(), gw.Goals())
}

func TestGatewayDropsInvalidTaskRecords(t *testing.T) {
	store := NewMemoryStore()
	gw := NewGateway(store)
	require.NoError(t, store.Set(TasksKey, `[
		{"id":"a","title":"ok","subject":"Math","type":"exam","dueDate":"2026-10-20"},
		{"title":"no id"},
		42,
		{"id":"a","title":"duplicate"},
		{"id":"c","title":"bad date","dueDate":"tomorrow"},
		{"id":"d","title":"untyped","subject":"Art"}
	]`))

	tasks := gw.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "a", tasks[0].ID)
	assert.Equal(t, "ok", tasks[0].Title)
	assert.Equal(t, "d", tasks[1].ID)
	assert.Equal(t, model.Other, tasks[1].Type)
}

func TestGatewayStoreFailures(t *testing.T) {
	gw := NewGateway(failingStore{NewMemoryStore()})

	assert.Empty(t, gw.Tasks())
	assert.Equal(t, model.DefaultGoals(), gw.Goals())
	assert.Error(t, gw.SaveTasks(nil))
}

func TestGatewaySaveNilTasksWritesEmptyArray(t *testing.T) {
	store := NewMemoryStore()
	gw := NewGateway(store)
	require.NoError(t, gw.SaveTasks(nil))
	v, _, _ := store.Get(TasksKey)
	assert.Equal(t, "[]", v)
}

func TestGatewayGoalsWithBadTargetKeepStreak(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(GoalsKey, `{"cgpaTarget":"abc","dailyStudyHours":2,"streak":12,"lastVisit":"Tue Oct 13 2026"}`))
	gw := NewGateway(store)

	goals := gw.Goals()
	assert.Equal(t, model.Goals{DailyStudyHours: 2, Streak: 12, LastVisit: "Tue Oct 13 2026"}, goals)
}
