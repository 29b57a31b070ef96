package security

import (
	"slices"

	"github.com/samber/lo"

	domain "github.com/oshokin/catpoint/internal/domain/alarm"
)

// AddStatusListener registers a listener. Registering it twice has no effect.
func (s *Service) AddStatusListener(listener domain.StatusListener) {
	if listener == nil || lo.Contains(s.listeners, listener) {
		return
	}

	s.listeners = append(s.listeners, listener)
}

// RemoveStatusListener unregisters a listener. Unknown listeners are ignored.
func (s *Service) RemoveStatusListener(listener domain.StatusListener) {
	s.listeners = lo.Without(s.listeners, listener)
}

// snapshotListeners returns a copy so that callbacks may unregister themselves.
func (s *Service) snapshotListeners() []domain.StatusListener {
	return slices.Clone(s.listeners)
}
