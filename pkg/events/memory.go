package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryBus is a process-local Bus. It satisfies the same delivery contract
// as RedisBus (all subscribers, originator included) and is what a single
// instance deployment and the test suite run on.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	closed   bool
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[string][]Handler)}
}

func (m *MemoryBus) Publish(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %v", err)
	}

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return fmt.Errorf("bus is closed")
	}
	hs := make([]Handler, len(m.handlers[topic]))
	copy(hs, m.handlers[topic])
	m.mu.RUnlock()

	for _, h := range hs {
		h(topic, data)
	}
	return nil
}

func (m *MemoryBus) Subscribe(topic string, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[topic] = append(m.handlers[topic], h)
}

func (m *MemoryBus) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.handlers = make(map[string][]Handler)
	return nil
}
