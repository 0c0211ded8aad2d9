package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/niksmo/game-storefront/internal/core/domain"
	"github.com/niksmo/game-storefront/internal/core/port"
)

// Persistence reads and writes structured records to a KVStore. It owns no
// data: the calling store decides what is written and when.
type Persistence struct {
	kv port.KVStore
}

func NewPersistence(kv port.KVStore) Persistence {
	return Persistence{kv}
}

// Read decodes the record at key into v. found is false when the record is
// absent. An unparsable record is deleted and reported as
// domain.ErrPersistenceCorrupt.
func (p Persistence) Read(ctx context.Context, key string, v any) (found bool, err error) {
	const op = "Persistence.Read"
	log := slog.With("op", op, "key", key)

	data, err := p.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		if delErr := p.kv.Delete(ctx, key); delErr != nil {
			log.Warn("failed to drop corrupt record", "err", delErr)
		}
		return false, fmt.Errorf("%s: %w: %w", op, domain.ErrPersistenceCorrupt, err)
	}
	return true, nil
}

// Write stores v at key synchronously.
func (p Persistence) Write(ctx context.Context, key string, v any) error {
	const op = "Persistence.Write"

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := p.kv.Put(ctx, key, data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (p Persistence) Remove(ctx context.Context, key string) error {
	const op = "Persistence.Remove"

	if err := p.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
