package storage

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/harrisonrobin/gradary/pkg/model"
)

// Record keys. Existing browser data used these names, so they are kept.
const (
	TasksKey          = "gradary_tasks"
	GoalsKey          = "gradary_goals"
	SubjectColorsKey  = "gradary_subject_colors"
	CalendarEventsKey = "gradary_calendar_events"
)

// Gateway reads and writes typed records through a Store.
type Gateway struct {
	store Store
}

func NewGateway(store Store) *Gateway {
	return &Gateway{store: store}
}

func (g *Gateway) Store() Store {
	return g.store
}

// Load decodes the record under key into v. It returns false, leaving v as the
// caller's default, when the key is absent, unreadable, or does not parse.
func (g *Gateway) Load(key string, v any) bool {
	raw, ok := g.read(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		log.Printf("Warning: stored %s is corrupt, using default: %v", key, err)
		return false
	}
	return true
}

func (g *Gateway) read(key string) (string, bool) {
	raw, ok, err := g.store.Get(key)
	if err != nil {
		log.Printf("Warning: could not read %s, using default: %v", key, err)
		return "", false
	}
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}

// Save encodes v and writes it under key.
func (g *Gateway) Save(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := g.store.Set(key, string(b)); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Tasks returns the stored task list, or an empty one. Records that do not
// decode, have no id, or repeat an earlier id are dropped.
func (g *Gateway) Tasks() []model.Task {
	tasks := []model.Task{}
	raw, ok := g.read(TasksKey)
	if !ok {
		return tasks
	}

	var records []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		log.Printf("Warning: stored %s is corrupt, using default: %v", TasksKey, err)
		return tasks
	}

	seen := make(map[string]bool, len(records))
	for i, rec := range records {
		var task model.Task
		if err := json.Unmarshal(rec, &task); err != nil {
			log.Printf("Warning: dropping stored task #%d: %v", i, err)
			continue
		}
		if err := task.Validate(); err != nil {
			log.Printf("Warning: dropping stored task #%d: %v", i, err)
			continue
		}
		if seen[task.ID] {
			log.Printf("Warning: dropping stored task #%d: duplicate id %s", i, task.ID)
			continue
		}
		seen[task.ID] = true
		if task.Type == "" {
			task.Type = model.Other
		}
		tasks = append(tasks, task)
	}
	return tasks
}

func (g *Gateway) SaveTasks(tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	return g.Save(TasksKey, tasks)
}

// Goals returns the stored goals record, or the defaults.
func (g *Gateway) Goals() model.Goals {
	goals := model.DefaultGoals()
	if !g.Load(GoalsKey, &goals) {
		return model.DefaultGoals()
	}
	return goals
}

func (g *Gateway) SaveGoals(goals model.Goals) error {
	return g.Save(GoalsKey, goals)
}
