package app

import (
	"testing"
	"time"

	"github.com/harrisonrobin/gradary/pkg/dashboard"
	"github.com/harrisonrobin/gradary/pkg/model"
	"github.com/harrisonrobin/gradary/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

func TestNewRecordsVisit(t *testing.T) {
	store := storage.NewMemoryStore()
	New(store, WithClock(func() time.Time { return now }))

	assert.Equal(t, "Wed Oct 14 2026", storage.NewGateway(store).Goals().LastVisit)
}

func TestOnChangeEmitsSummary(t *testing.T) {
	s := New(storage.NewMemoryStore(), WithClock(func() time.Time { return now }))

	var got []dashboard.Summary
	s.OnChange(func(sum dashboard.Summary) { got = append(got, sum) })

	a, err := s.Tasks.Add("Derivatives", "Math", model.Exam, model.NewDate(now.AddDate(0, 0, -1)))
	require.NoError(t, err)
	b, err := s.Tasks.Add("Integrals", "Math", model.Assignment, model.NewDate(now.AddDate(0, 0, 1)))
	require.NoError(t, err)
	require.NoError(t, s.Tasks.Toggle(b.ID))

	require.Len(t, got, 3)
	last := got[2]
	assert.Equal(t, dashboard.Counts{Total: 2, Completed: 1, Pending: 1}, last.Counts)
	require.Len(t, last.Priority, 1)
	assert.Equal(t, a.ID, last.Priority[0].Task.ID)
	assert.Equal(t, last, s.Summary())
}

func TestStateSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(storage.BackendFile, dir)
	require.NoError(t, err)
	_, err = s.Tasks.Add("Lab 3", "Chem", model.Lab, model.NewDate(now))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open(storage.BackendFile, dir)
	require.NoError(t, err)
	defer s2.Close()
	require.Len(t, s2.Tasks.All(), 1)
	assert.Equal(t, "Lab 3", s2.Tasks.All()[0].Title)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("cloud", t.TempDir())
	assert.ErrorIs(t, err, storage.ErrUnknownBackend)
}
