package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/catpoint/internal/config"
)

// errUnknownBackend is returned for store backends Open does not know.
var errUnknownBackend = errors.New("unknown store backend")

// Open builds the repository selected by the store settings.
// The returned close function releases backend resources and is never nil.
//
//nolint:ireturn // The backend is chosen at runtime.
func Open(ctx context.Context, settings *config.Store) (Repository, func() error, error) {
	noop := func() error { return nil }

	switch settings.Backend {
	case config.StoreMemory:
		return NewMemoryRepository(), noop, nil
	case config.StoreFile, "":
		return NewFileRepository(settings.StateFile), noop, nil
	case config.StorePostgres:
		repo, err := NewPostgresRepository(ctx, settings.PostgresDSN)
		if err != nil {
			return nil, noop, err
		}

		if err = repo.Init(ctx); err != nil {
			_ = repo.Close()

			return nil, noop, err
		}

		return repo, repo.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: %s", errUnknownBackend, settings.Backend)
	}
}
