// Package app wires the store, repository and goals into one explicit state
// object with a load-at-start / persist-after-mutate lifecycle.
package app

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/harrisonrobin/gradary/pkg/dashboard"
	"github.com/harrisonrobin/gradary/pkg/goals"
	"github.com/harrisonrobin/gradary/pkg/model"
	"github.com/harrisonrobin/gradary/pkg/storage"
	"github.com/harrisonrobin/gradary/pkg/tasks"
)

type State struct {
	Store   storage.Store
	Gateway *storage.Gateway
	Tasks   *tasks.Repository
	Goals   *goals.Service

	now       func() time.Time
	mu        sync.Mutex
	listeners []func(dashboard.Summary)
}

type Option func(*options)

type options struct {
	now     func() time.Time
	repoOps []tasks.Option
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
		o.repoOps = append(o.repoOps, tasks.WithClock(now))
	}
}

// New loads all records from store and stamps today's visit.
func New(store storage.Store, opts ...Option) *State {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	gw := storage.NewGateway(store)
	s := &State{
		Store:   store,
		Gateway: gw,
		Tasks:   tasks.NewRepository(gw, o.repoOps...),
		Goals:   goals.NewService(gw, o.now),
		now:     o.now,
	}
	if err := s.Goals.RecordVisit(); err != nil {
		log.Printf("Warning: could not record visit: %v", err)
	}
	s.Tasks.Subscribe(s.publish)
	return s
}

// Open is New over the configured backend.
func Open(backend, dir string, opts ...Option) (*State, error) {
	store, err := storage.Open(backend, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store in %s: %w", backend, dir, err)
	}
	return New(store, opts...), nil
}

func (s *State) Close() error {
	return s.Store.Close()
}

func (s *State) Now() time.Time {
	return s.now()
}

// Summary is the dashboard for the current collection.
func (s *State) Summary() dashboard.Summary {
	return dashboard.Summarize(s.Tasks.All(), s.now())
}

// OnChange registers fn to receive the recomputed dashboard after every task mutation.
func (s *State) OnChange(fn func(dashboard.Summary)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *State) publish(snapshot []model.Task) {
	s.mu.Lock()
	listeners := append([]func(dashboard.Summary){}, s.listeners...)
	s.mu.Unlock()
	if len(listeners) == 0 {
		return
	}
	summary := dashboard.Summarize(snapshot, s.now())
	for _, fn := range listeners {
		fn(summary)
	}
}
