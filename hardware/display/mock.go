package display

import (
	"image"
	"sync"
)

// MockEngine records frame loads. Stands in for the compositor in tests
// and in headless development mode.
type MockEngine struct {
	mu     sync.Mutex
	size   image.Point
	ready  bool
	loads  []string
	LoadErr error
}

func NewMockEngine(size image.Point) *MockEngine {
	return &MockEngine{size: size, ready: true}
}

func (m *MockEngine) Size() image.Point { return m.size }

func (m *MockEngine) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

func (m *MockEngine) SetReady(ready bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = ready
}

func (m *MockEngine) Load(f *Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return m.LoadErr
	}
	m.loads = append(m.loads, f.Name)
	return nil
}

func (m *MockEngine) Loads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.loads))
	copy(out, m.loads)
	return out
}
