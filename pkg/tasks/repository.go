// Package tasks owns the task collection. Every mutation is written through to
// the storage gateway before it returns.
package tasks

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harrisonrobin/gradary/pkg/model"
	"github.com/harrisonrobin/gradary/pkg/storage"
)

// Repository is the in-memory task collection mirrored to storage.
type Repository struct {
	mu          sync.Mutex
	gw          *storage.Gateway
	tasks       []model.Task
	now         func() time.Time
	newID       func() string
	subscribers []func([]model.Task)
}

type Option func(*Repository)

// WithClock sets the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(gen func() string) Option {
	return func(r *Repository) { r.newID = gen }
}

// NewRepository loads the stored tasks.
func NewRepository(gw *storage.Gateway, opts ...Option) *Repository {
	r := &Repository{
		gw:    gw,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.tasks = gw.Tasks()
	return r
}

// Subscribe registers fn to receive the collection after each mutation.
func (r *Repository) Subscribe(fn func([]model.Task)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers = append(r.subscribers, fn)
}

// Add creates a pending task. Inputs are not validated here; see ParseInput.
func (r *Repository) Add(title, subject string, typ model.TaskType, due model.Date) (model.Task, error) {
	tasks, err := r.Import([]Input{{Title: title, Subject: subject, Type: typ, DueDate: due}})
	return tasks[0], err
}

// Import adds several tasks as a single mutation.
func (r *Repository) Import(inputs []Input) ([]model.Task, error) {
	created := make([]model.Task, 0, len(inputs))
	err := r.mutate(func() {
		for _, in := range inputs {
			task := model.Task{
				ID:        r.newID(),
				Title:     in.Title,
				Subject:   in.Subject,
				Type:      in.Type,
				DueDate:   in.DueDate,
				Completed: in.Completed,
				CreatedAt: r.now(),
			}
			r.tasks = append(r.tasks, task)
			created = append(created, task)
		}
	})
	return created, err
}

// Toggle flips the completed flag of the task with id. Unknown ids are ignored.
func (r *Repository) Toggle(id string) error {
	return r.mutate(func() {
		for i := range r.tasks {
			if r.tasks[i].ID == id {
				r.tasks[i].Completed = !r.tasks[i].Completed
				return
			}
		}
	})
}

// Delete removes the task with id. Deleting an unknown id is a no-op.
func (r *Repository) Delete(id string) error {
	return r.mutate(func() {
		kept := make([]model.Task, 0, len(r.tasks))
		for _, t := range r.tasks {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		r.tasks = kept
	})
}

// mutate applies change and persists the result under the lock, then hands the
// new snapshot to subscribers. A failed save leaves the in-memory change in place.
func (r *Repository) mutate(change func()) error {
	r.mu.Lock()
	change()
	err := r.gw.SaveTasks(r.tasks)
	snapshot := r.snapshot(nil)
	subs := append([]func([]model.Task){}, r.subscribers...)
	r.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
	if err != nil {
		return fmt.Errorf("task change not persisted: %w", err)
	}
	return nil
}

// snapshot copies the tasks matching keep, in insertion order. Caller holds mu.
func (r *Repository) snapshot(keep func(model.Task) bool) []model.Task {
	out := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if keep == nil || keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func (r *Repository) list(keep func(model.Task) bool) []model.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot(keep)
}

func (r *Repository) All() []model.Task {
	return r.list(nil)
}

func (r *Repository) Pending() []model.Task {
	return r.list(func(t model.Task) bool { return !t.Completed })
}

func (r *Repository) Completed() []model.Task {
	return r.list(func(t model.Task) bool { return t.Completed })
}

// Get returns the task with id.
func (r *Repository) Get(id string) (model.Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

var (
	ErrNotFound  = errors.New("no task matches")
	ErrAmbiguous = errors.New("more than one task matches")
)

// Resolve finds a task by full id or unique id prefix.
func (r *Repository) Resolve(ref string) (model.Task, error) {
	if t, ok := r.Get(ref); ok {
		return t, nil
	}
	var match []model.Task
	if ref != "" {
		match = r.list(func(t model.Task) bool { return strings.HasPrefix(t.ID, ref) })
	}
	switch len(match) {
	case 0:
		return model.Task{}, fmt.Errorf("%w %q", ErrNotFound, ref)
	case 1:
		return match[0], nil
	default:
		return model.Task{}, fmt.Errorf("%w %q", ErrAmbiguous, ref)
	}
}
