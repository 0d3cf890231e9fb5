package taskwarrior

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/harrisonrobin/gradary/pkg/model"
	"github.com/harrisonrobin/gradary/pkg/tasks"
)

type Client struct {
	// Binary is the taskwarrior executable, "task" by default.
	Binary string
}

func NewClient() *Client {
	return &Client{Binary: "task"}
}

// GetTasks runs `task <filter> export` and decodes its output.
func (c *Client) GetTasks(ctx context.Context, filter []string) ([]Task, error) {
	args := append(append([]string{}, filter...), "export", "rc.hooks=0")
	cmd := exec.CommandContext(ctx, c.Binary, args...)

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("taskwarrior command failed: exit code %d, %s, stderr: %s",
				exitErr.ExitCode(), err, exitErr.Stderr)
		}
		return nil, fmt.Errorf("taskwarrior command failed: %w", err)
	}
	return c.ParseTasks(bytes.NewReader(output))
}

// ParseTasks decodes either a JSON array (the `task export` form) or a stream
// of JSON objects, one per line.
func (c *Client) ParseTasks(r io.Reader) ([]Task, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(br)
	if first == '[' {
		var tasks []Task
		if err := decoder.Decode(&tasks); err != nil {
			return nil, fmt.Errorf("failed to decode task json: %w", err)
		}
		return tasks, nil
	}

	var tasks []Task
	for {
		var task Task
		if err := decoder.Decode(&task); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to decode task json: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		if !strings.ContainsRune(" \t\r\n", rune(b[0])) {
			return b[0], nil
		}
		br.Discard(1)
	}
}

// ToInputs maps taskwarrior records to task drafts. Due times are converted
// to calendar dates in loc. Deleted tasks and tasks without a project or a
// due date are skipped, as are blank descriptions.
func ToInputs(twTasks []Task, loc *time.Location) []tasks.Input {
	if loc == nil {
		loc = time.Local
	}
	var inputs []tasks.Input
	for _, t := range twTasks {
		if t.Status == DELETED || strings.TrimSpace(t.Description) == "" || strings.TrimSpace(t.Project) == "" || t.Due == nil || t.Due.IsZero() {
			continue
		}
		inputs = append(inputs, tasks.Input{
			Title:     strings.TrimSpace(t.Description),
			Subject:   strings.TrimSpace(t.Project),
			Type:      typeFromTags(t.Tags),
			DueDate:   model.NewDate(t.Due.In(loc)),
			Completed: t.Status == COMPLETED,
		})
	}
	return inputs
}

func typeFromTags(tags []string) model.TaskType {
	for _, tag := range tags {
		if t := model.ParseTaskType(tag); t != model.Other {
			return t
		}
	}
	return model.Other
}
