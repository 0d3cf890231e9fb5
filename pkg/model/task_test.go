package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskJSON(t *testing.T) {
	input := `{
		"id": "lx3k2a9f0q",
		"title": "Lab report",
		"subject": "Physics",
		"type": "lab",
		"dueDate": "2026-10-20",
		"completed": false,
		"createdAt": "2026-10-10T08:15:00.000Z"
	}`

	var task Task
	require.NoError(t, json.Unmarshal([]byte(input), &task))

	assert.Equal(t, "lx3k2a9f0q", task.ID)
	assert.Equal(t, Lab, task.Type)
	assert.Equal(t, Date{Year: 2026, Month: time.October, Day: 20}, task.DueDate)
	assert.Equal(t, time.Date(2026, 10, 10, 8, 15, 0, 0, time.UTC), task.CreatedAt.UTC())

	out, err := json.Marshal(task)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"dueDate":"2026-10-20"`)
}

func TestDateUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Date
		err  bool
	}{
		{"plain date", `"2026-01-31"`, Date{2026, time.January, 31}, false},
		{"timestamp keeps date", `"2026-01-31T23:00:00Z"`, Date{2026, time.January, 31}, false},
		{"empty string", `""`, Date{}, false},
		{"null", `null`, Date{}, false},
		{"garbage", `"soon"`, Date{}, true},
		{"number", `42`, Date{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			err := json.Unmarshal([]byte(tt.in), &d)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestParseTaskType(t *testing.T) {
	assert.Equal(t, Exam, ParseTaskType("Exam"))
	assert.Equal(t, Other, ParseTaskType(""))
	assert.Equal(t, Other, ParseTaskType("quiz"))
	assert.False(t, Other.Known())
	assert.True(t, Project.Known())
}

func TestTaskValidate(t *testing.T) {
	assert.Error(t, Task{Title: "no id"}.Validate())
	assert.NoError(t, Task{ID: "a"}.Validate())
}

func TestGoalsJSON(t *testing.T) {
	t.Run("defaults encode lastVisit as null", func(t *testing.T) {
		out, err := json.Marshal(DefaultGoals())
		require.NoError(t, err)
		assert.JSONEq(t, `{"cgpaTarget":0,"dailyStudyHours":0,"streak":0,"lastVisit":null}`, string(out))
	})

	t.Run("string target from the form decodes", func(t *testing.T) {
		var g Goals
		require.NoError(t, json.Unmarshal([]byte(`{"cgpaTarget":"3.7","streak":2,"lastVisit":"Wed Oct 14 2026"}`), &g))
		assert.Equal(t, Score(3.7), g.CGPATarget)
		assert.Equal(t, 2, g.Streak)
		assert.Equal(t, "Wed Oct 14 2026", g.LastVisit)
	})

	t.Run("empty string target is unset", func(t *testing.T) {
		var g Goals
		require.NoError(t, json.Unmarshal([]byte(`{"cgpaTarget":""}`), &g))
		assert.False(t, g.CGPATarget.IsSet())
	})

	t.Run("unparsable target keeps the rest of the record", func(t *testing.T) {
		for _, raw := range []string{`"abc"`, `"-2"`, `true`, `-1`} {
			var g Goals
			record := `{"cgpaTarget":` + raw + `,"dailyStudyHours":3,"streak":12,"lastVisit":"Tue Oct 13 2026"}`
			require.NoError(t, json.Unmarshal([]byte(record), &g), raw)
			assert.False(t, g.CGPATarget.IsSet(), raw)
			assert.Equal(t, 12, g.Streak, raw)
			assert.Equal(t, 3.0, g.DailyStudyHours, raw)
			assert.Equal(t, "Tue Oct 13 2026", g.LastVisit, raw)
		}
	})

	t.Run("negative streak clamps", func(t *testing.T) {
		var g Goals
		require.NoError(t, json.Unmarshal([]byte(`{"streak":-4}`), &g))
		assert.Equal(t, 0, g.Streak)
	})
}
