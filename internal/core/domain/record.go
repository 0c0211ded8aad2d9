package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ReleaseDateLayout is the only accepted release date format. Sorting by
// release date relies on its lexical order.
const ReleaseDateLayout = "2006-01-02"

// gameRecord is the wire shape of a game. Pointer fields distinguish a
// missing field from a zero value.
type gameRecord struct {
	ID               *int     `json:"id"`
	Title            *string  `json:"title"`
	Thumbnail        *string  `json:"thumbnail"`
	ShortDescription string   `json:"short_description"`
	GameURL          string   `json:"game_url"`
	Genre            *string  `json:"genre"`
	Platform         *string  `json:"platform"`
	Publisher        *string  `json:"publisher"`
	Developer        string   `json:"developer"`
	ReleaseDate      *string  `json:"release_date"`
	Price            *float64 `json:"price,omitempty"`
	Discount         *int     `json:"discount,omitempty"`
	Rating           *float64 `json:"rating,omitempty"`
}

// DecodeGame validates a single raw record. A record missing any required
// field, or carrying a wrongly typed one, is rejected as a whole.
func DecodeGame(raw []byte) (Game, error) {
	var r gameRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		return Game{}, fmt.Errorf("%w: %w", ErrSchemaInvalid, err)
	}
	if err := r.validate(); err != nil {
		return Game{}, err
	}
	return r.toDomain(), nil
}

// DecodeGames validates a catalog payload. The payload itself must be a
// JSON array; individual invalid records are dropped and counted.
func DecodeGames(data []byte) (games []Game, dropped int, err error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrSchemaInvalid, err)
	}

	games = make([]Game, 0, len(raws))
	seen := make(map[int]struct{}, len(raws))
	for _, raw := range raws {
		g, err := DecodeGame(raw)
		if err != nil {
			dropped++
			continue
		}
		if _, ok := seen[g.ID]; ok {
			dropped++
			continue
		}
		seen[g.ID] = struct{}{}
		games = append(games, g)
	}
	return games, dropped, nil
}

// ValidateGame applies the record checks to a game that did not come in as
// JSON, such as one read back from the catalog cache.
func ValidateGame(g Game) error {
	return fromDomain(g).validate()
}

// EncodeGames is the inverse of DecodeGames.
func EncodeGames(games []Game) ([]byte, error) {
	rs := make([]gameRecord, len(games))
	for i, g := range games {
		rs[i] = fromDomain(g)
	}
	return json.Marshal(rs)
}

func (r gameRecord) validate() error {
	switch {
	case r.ID == nil:
		return &SchemaError{"id", "missing"}
	case r.Title == nil || *r.Title == "":
		return &SchemaError{"title", "missing or empty"}
	case r.Thumbnail == nil:
		return &SchemaError{"thumbnail", "missing"}
	case r.Genre == nil:
		return &SchemaError{"genre", "missing"}
	case r.Platform == nil:
		return &SchemaError{"platform", "missing"}
	case r.Publisher == nil:
		return &SchemaError{"publisher", "missing"}
	case r.ReleaseDate == nil:
		return &SchemaError{"release_date", "missing"}
	case r.Discount != nil && (*r.Discount < 0 || *r.Discount > 100):
		return &SchemaError{"discount", "out of range 0..100"}
	case r.Rating != nil && (*r.Rating < 0 || *r.Rating > 5):
		return &SchemaError{"rating", "out of range 0..5"}
	case r.Price != nil && *r.Price < 0:
		return &SchemaError{"price", "negative"}
	}
	if _, err := time.Parse(ReleaseDateLayout, *r.ReleaseDate); err != nil {
		return &SchemaError{"release_date", "not a YYYY-MM-DD date"}
	}
	return nil
}

func (r gameRecord) toDomain() Game {
	return Game{
		ID:               *r.ID,
		Title:            *r.Title,
		Thumbnail:        *r.Thumbnail,
		ShortDescription: r.ShortDescription,
		GameURL:          r.GameURL,
		Genre:            *r.Genre,
		Platform:         *r.Platform,
		Publisher:        *r.Publisher,
		Developer:        r.Developer,
		ReleaseDate:      *r.ReleaseDate,
		Price:            r.Price,
		Discount:         r.Discount,
		Rating:           r.Rating,
	}
}

func fromDomain(g Game) gameRecord {
	return gameRecord{
		ID:               &g.ID,
		Title:            &g.Title,
		Thumbnail:        &g.Thumbnail,
		ShortDescription: g.ShortDescription,
		GameURL:          g.GameURL,
		Genre:            &g.Genre,
		Platform:         &g.Platform,
		Publisher:        &g.Publisher,
		Developer:        g.Developer,
		ReleaseDate:      &g.ReleaseDate,
		Price:            g.Price,
		Discount:         g.Discount,
		Rating:           g.Rating,
	}
}
