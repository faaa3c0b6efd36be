package gateway

import "sync"

// ModalState is a snapshot of a form modal for rendering.
type ModalState[F any] struct {
	Open   bool `json:"open"`
	Fields F    `json:"fields"`
}

// Modal is a create form that can be opened, edited, cancelled, or
// submitted. Closing always resets the fields to their defaults.
type Modal[F any] struct {
	mu       sync.Mutex
	open     bool
	fields   F
	defaults F
}

func NewModal[F any](defaults F) *Modal[F] {
	return &Modal[F]{fields: defaults, defaults: defaults}
}

// Open shows the modal with the given fields.
func (m *Modal[F]) Open(fields F) {
	m.mu.Lock()
	m.open = true
	m.fields = fields
	m.mu.Unlock()
}

// OpenDefault shows the modal with default fields.
func (m *Modal[F]) OpenDefault() {
	m.Open(m.defaults)
}

// Set replaces the fields without changing visibility.
func (m *Modal[F]) Set(fields F) {
	m.mu.Lock()
	m.fields = fields
	m.mu.Unlock()
}

// Close hides the modal and clears its fields.
func (m *Modal[F]) Close() {
	m.mu.Lock()
	m.open = false
	m.fields = m.defaults
	m.mu.Unlock()
}

func (m *Modal[F]) Defaults() F {
	return m.defaults
}

func (m *Modal[F]) State() ModalState[F] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ModalState[F]{Open: m.open, Fields: m.fields}
}
