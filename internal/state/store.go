// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package state persists the run properties that let a cleaning cycle
// survive across invocations.
//
// A Store is a flat string key-value map scoped to the installation. The
// SQLite store is the default; the memory store backs tests and dry runs.
package state

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"
)

// Store is the persisted property map of a cycle.
type Store interface {
	// Get returns the value of key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes key immediately.
	Set(ctx context.Context, key, value string) error

	// All returns a copy of every stored property.
	All(ctx context.Context) (map[string]string, error)

	// ClearAll removes every property and recorded outcome. Clearing an
	// empty store is not an error.
	ClearAll(ctx context.Context) error

	Close() error
}

// OutcomeStatus is the result of processing one item.
type OutcomeStatus string

const (
	OutcomeDone   OutcomeStatus = "done"
	OutcomeFailed OutcomeStatus = "failed"
)

// Outcome is one entry of the per-cycle item journal.
type Outcome struct {
	Index      int           `json:"index" yaml:"index"`
	ItemID     string        `json:"item_id" yaml:"item_id"`
	Status     OutcomeStatus `json:"status" yaml:"status"`
	Detail     string        `json:"detail,omitempty" yaml:"detail,omitempty"`
	RecordedAt time.Time     `json:"recorded_at" yaml:"recorded_at"`
}

// Journal is implemented by stores that also keep item outcomes for the
// current cycle.
type Journal interface {
	Record(ctx context.Context, o Outcome) error
	Outcomes(ctx context.Context) ([]Outcome, error)
}

// MemoryStore is an in-process Store and Journal.
type MemoryStore struct {
	mu       sync.Mutex
	props    map[string]string
	outcomes []Outcome

	// SetHook, when non-nil, is called before every Set and may fail it.
	SetHook func(key, value string) error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{props: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.props[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetHook != nil {
		if err := m.SetHook(key, value); err != nil {
			return err
		}
	}
	m.props[key] = value
	return nil
}

func (m *MemoryStore) All(_ context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.props), nil
}

func (m *MemoryStore) ClearAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.props)
	m.outcomes = nil
	return nil
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) Record(_ context.Context, o Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, o)
	return nil
}

func (m *MemoryStore) Outcomes(_ context.Context) ([]Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.outcomes), nil
}
