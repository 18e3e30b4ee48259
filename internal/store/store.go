// Package store holds the in-memory entity collections for the reading
// tracker. Each store owns one collection, is the single source of
// truth for it, and mirrors the full collection to a persistent slot
// after every mutation. Mutations are synchronous with respect to the
// in-memory state; the durable write is fire-and-forget.
package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/leaflogapp/leaflog-core/internal/repo"
)

// persister is the fire-and-forget write path behind a store. Mutations
// enqueue the freshly-marshaled collection; a background goroutine
// writes it to the repository. Snapshots coalesce: if mutations outrun
// the repository, only the latest snapshot is written.
type persister struct {
	repo   repo.Repository
	slot   string
	logger *slog.Logger

	mu      sync.Mutex
	pending []byte
	closed  bool
	kick    chan struct{}
	done    chan struct{}
}

func newPersister(r repo.Repository, slot string, logger *slog.Logger) *persister {
	p := &persister{
		repo:   r,
		slot:   slot,
		logger: logger,
		kick:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

// Enqueue replaces any pending snapshot with data and wakes the writer.
// Never blocks the mutating caller.
func (p *persister) Enqueue(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.pending = data
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

func (p *persister) run() {
	defer close(p.done)
	for range p.kick {
		p.drain()
	}
	// Pick up anything enqueued between the last drain and close.
	p.drain()
}

func (p *persister) drain() {
	for {
		p.mu.Lock()
		data := p.pending
		p.pending = nil
		p.mu.Unlock()
		if data == nil {
			return
		}
		if err := p.repo.Save(context.Background(), p.slot, data); err != nil && p.logger != nil {
			p.logger.LogAttrs(context.Background(), slog.LevelWarn, "persist failed",
				slog.String("slot", p.slot),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Close flushes the pending snapshot and stops the writer. Safe to call
// once; the store owns its persister's lifecycle.
func (p *persister) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.kick)
	}
	p.mu.Unlock()
	<-p.done
}
