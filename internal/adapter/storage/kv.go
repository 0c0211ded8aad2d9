package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/niksmo/game-storefront/internal/core/domain"
	"github.com/niksmo/game-storefront/internal/core/port"
)

var _ port.KVStore = (*SQLiteKV)(nil)
var _ port.KVStore = (*MemoryKV)(nil)

// SQLiteKV keeps records in the migrated "records" table.
type SQLiteKV struct {
	sqldb sqldb
}

func NewSQLiteKV(sqldb sqldb) SQLiteKV {
	return SQLiteKV{sqldb}
}

func (s SQLiteKV) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "SQLiteKV.Get"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT value FROM records WHERE key = ?;`

	var value []byte
	err := s.sqldb.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %q: %w", op, key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return value, nil
}

func (s SQLiteKV) Put(ctx context.Context, key string, value []byte) error {
	const op = "SQLiteKV.Put"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `
		INSERT INTO records (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at;`

	if _, err := s.sqldb.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("%s: failed to exec: %w", op, err)
	}
	return nil
}

func (s SQLiteKV) Delete(ctx context.Context, key string) error {
	const op = "SQLiteKV.Delete"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `DELETE FROM records WHERE key = ?;`

	if _, err := s.sqldb.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("%s: failed to exec: %w", op, err)
	}
	return nil
}

// MemoryKV is a process local KVStore.
type MemoryKV struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{records: make(map[string][]byte)}
}

func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "MemoryKV.Get"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.records[key]
	if !ok {
		return nil, fmt.Errorf("%s: %q: %w", op, key, domain.ErrNotFound)
	}
	return slices.Clone(v), nil
}

func (m *MemoryKV) Put(ctx context.Context, key string, value []byte) error {
	const op = "MemoryKV.Put"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = slices.Clone(value)
	return nil
}

func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	const op = "MemoryKV.Delete"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
	return nil
}
