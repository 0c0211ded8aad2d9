// Package fallback serves the catalog bundled with the binary.
package fallback

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"github.com/niksmo/game-storefront/internal/core/domain"
	"github.com/niksmo/game-storefront/internal/core/port"
)

//go:embed games.json
var bundled []byte

var _ port.FallbackSource = (*Dataset)(nil)

// Dataset is the static fallback catalog. Records are validated the same
// way as remote ones.
type Dataset struct {
	path string
}

// New returns the embedded dataset, or the JSON file at path when path is
// not empty.
func New(path string) Dataset {
	return Dataset{path: path}
}

func (d Dataset) LoadFallback(ctx context.Context) ([]domain.Game, error) {
	const op = "Dataset.LoadFallback"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data := bundled
	if d.path != "" {
		b, err := os.ReadFile(d.path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		data = b
	}

	games, dropped, err := domain.DecodeGames(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if dropped > 0 {
		log.Warn("invalid records dropped", "nDropped", dropped)
	}
	return games, nil
}
