package repo

import (
	"context"
	"sync"
)

// Memory is an in-process Repository used by store tests and the
// import/export path. It records save counts so tests can assert the
// write-after-mutation behavior.
type Memory struct {
	mu    sync.Mutex
	slots map[string][]byte
	saves map[string]int
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		slots: make(map[string][]byte),
		saves: make(map[string]int),
	}
}

// Load implements Repository.
func (r *Memory) Load(_ context.Context, slot string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, ok := r.slots[slot]
	if !ok {
		return nil, ErrSlotEmpty
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Save implements Repository.
func (r *Memory) Save(_ context.Context, slot string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	r.slots[slot] = stored
	r.saves[slot]++
	return nil
}

// Seed writes a slot directly, bypassing the save counter. Tests use it
// to stage pre-hydration state.
func (r *Memory) Seed(slot string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[slot] = data
}

// SaveCount reports how many times a slot has been saved.
func (r *Memory) SaveCount(slot string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves[slot]
}

// Snapshot returns the current blob for a slot, or nil.
func (r *Memory) Snapshot(slot string) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slots[slot]
}
