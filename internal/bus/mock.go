package bus

import "sync"

// Mock is a recording Bus for testing. It is safe for concurrent use.
type Mock struct {
	mu     sync.Mutex
	Events []Event

	PublishFunc func(event Event) error
}

// NewMock creates a new recording bus.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Publish(event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	if m.PublishFunc != nil {
		return m.PublishFunc(event)
	}
	return nil
}

// TypesSeen returns the event types published, in order.
func (m *Mock) TypesSeen() []EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]EventType, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Type
	}
	return types
}

// Reset clears the recorded events.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = nil
}
