package events

import (
	"context"
	"sync"

	"xs2gate/internal/authorization/ports"
)

// InMemoryPublisher collects events in memory. Used in tests and when no
// broker is configured.
type InMemoryPublisher struct {
	mu     sync.Mutex
	events []ports.StatusChange
}

func NewInMemoryPublisher() *InMemoryPublisher {
	return &InMemoryPublisher{}
}

func (p *InMemoryPublisher) Emit(_ context.Context, event ports.StatusChange) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns a snapshot of everything emitted so far.
func (p *InMemoryPublisher) Events() []ports.StatusChange {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ports.StatusChange, len(p.events))
	copy(out, p.events)
	return out
}
