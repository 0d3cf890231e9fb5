package taskwarrior

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/gradary/pkg/model"
)

const exportJSON = `[
	{"uuid": "f45a05b3-c12e-42e5-9c9c-333333333333", "description": "Problem set 4", "status": "pending",
	 "due": "20261020T030000Z", "project": "Calculus", "tags": ["weekly", "assignment"]},
	{"uuid": "a1", "description": "Lab writeup", "status": "completed",
	 "due": "20261001T120000Z", "project": "Chemistry", "tags": ["lab"]},
	{"uuid": "a2", "description": "Dropped", "status": "deleted", "due": "20261001T120000Z", "project": "Chemistry"},
	{"uuid": "a3", "description": "No project", "status": "pending", "due": "20261001T120000Z"},
	{"uuid": "a4", "description": "No due", "status": "pending", "project": "Chemistry"}
]`

func TestParseTasksArray(t *testing.T) {
	tasks, err := NewClient().ParseTasks(strings.NewReader(exportJSON))
	if err != nil {
		t.Fatalf("ParseTasks failed: %v", err)
	}
	if len(tasks) != 5 {
		t.Fatalf("Expected 5 tasks, got %d", len(tasks))
	}
	if tasks[0].UUID != "f45a05b3-c12e-42e5-9c9c-333333333333" {
		t.Errorf("Unexpected UUID %s", tasks[0].UUID)
	}
	expectedDue, _ := time.Parse(time.RFC3339, "2026-10-20T03:00:00Z")
	if !tasks[0].Due.Time.Equal(expectedDue) {
		t.Errorf("Expected Due %v, got %v", expectedDue, tasks[0].Due.Time)
	}
	if len(tasks[0].Tags) != 2 {
		t.Errorf("Expected 2 tags, got %d", len(tasks[0].Tags))
	}
}

func TestParseTasksStream(t *testing.T) {
	input := `
{"uuid": "one", "description": "Read ch. 3", "status": "pending"}
{"uuid": "two", "description": "Quiz", "status": "pending"}
`
	tasks, err := NewClient().ParseTasks(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseTasks failed: %v", err)
	}
	if len(tasks) != 2 || tasks[1].UUID != "two" {
		t.Errorf("Unexpected tasks: %+v", tasks)
	}

	tasks, err = NewClient().ParseTasks(strings.NewReader("  \n"))
	if err != nil || len(tasks) != 0 {
		t.Errorf("Expected empty input to give no tasks, got %v, %v", tasks, err)
	}

	if _, err := NewClient().ParseTasks(strings.NewReader(`{"uuid": `)); err == nil {
		t.Error("Expected error for truncated json")
	}
}

func TestToInputs(t *testing.T) {
	tasks, err := NewClient().ParseTasks(strings.NewReader(exportJSON))
	if err != nil {
		t.Fatal(err)
	}
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}

	inputs := ToInputs(tasks, ny)
	if len(inputs) != 2 {
		t.Fatalf("Expected 2 inputs, got %d: %+v", len(inputs), inputs)
	}

	first := inputs[0]
	if first.Title != "Problem set 4" || first.Subject != "Calculus" || first.Type != model.Assignment {
		t.Errorf("Unexpected first input: %+v", first)
	}
	// 03:00 UTC is 23:00 the previous evening in New York (EDT)
	if want := (model.Date{Year: 2026, Month: time.October, Day: 19}); first.DueDate != want {
		t.Errorf("Expected due %v, got %v", want, first.DueDate)
	}
	if first.Completed {
		t.Error("Expected pending task")
	}

	second := inputs[1]
	if second.Type != model.Lab || !second.Completed {
		t.Errorf("Unexpected second input: %+v", second)
	}
}

func TestGetTasks(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "task")
	body := "#!/bin/sh\ncat <<'JSON'\n" + exportJSON + "\nJSON\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}

	client := &Client{Binary: script}
	tasks, err := client.GetTasks(context.Background(), []string{"status:pending"})
	if err != nil {
		t.Skipf("could not run fake taskwarrior: %v", err)
	}
	if len(tasks) != 5 {
		t.Errorf("Expected 5 tasks, got %d", len(tasks))
	}

	client.Binary = filepath.Join(dir, "missing")
	if _, err := client.GetTasks(context.Background(), nil); err == nil {
		t.Error("Expected error for missing binary")
	}
}
