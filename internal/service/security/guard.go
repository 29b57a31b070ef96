package security

import "sync"

// Guard serializes access to a Service shared by concurrent callers, such as
// gRPC handlers. Each Do call runs to completion, listener callbacks included,
// before the next one starts.
type Guard struct {
	mu      sync.Mutex
	service *Service
}

// NewGuard wraps the service.
func NewGuard(service *Service) *Guard {
	return &Guard{service: service}
}

// Do runs fn with exclusive access to the service.
func (g *Guard) Do(fn func(*Service) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return fn(g.service)
}
