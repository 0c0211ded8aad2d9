package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

const CatalogSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront",
	"name": "catalog",
	"fields": [
		{"name": "saved_at", "type": {"type": "long", "logicalType": "timestamp-millis"}},
		{"name": "games", "type": {"type": "array", "items": {
			"type": "record",
			"name": "game",
			"fields": [
				{"name": "id", "type": "long"},
				{"name": "title", "type": "string"},
				{"name": "thumbnail", "type": "string"},
				{"name": "short_description", "type": "string", "default": ""},
				{"name": "game_url", "type": "string", "default": ""},
				{"name": "genre", "type": "string"},
				{"name": "platform", "type": "string"},
				{"name": "publisher", "type": "string"},
				{"name": "developer", "type": "string", "default": ""},
				{"name": "release_date", "type": "string"},
				{"name": "price", "type": ["null", "double"], "default": null},
				{"name": "discount", "type": ["null", "int"], "default": null},
				{"name": "rating", "type": ["null", "double"], "default": null}
			]
		}}}
	]
}`

type (
	CatalogV1 struct {
		SavedAt time.Time `avro:"saved_at"`
		Games   []GameV1  `avro:"games"`
	}

	GameV1 struct {
		ID               int64    `avro:"id"`
		Title            string   `avro:"title"`
		Thumbnail        string   `avro:"thumbnail"`
		ShortDescription string   `avro:"short_description"`
		GameURL          string   `avro:"game_url"`
		Genre            string   `avro:"genre"`
		Platform         string   `avro:"platform"`
		Publisher        string   `avro:"publisher"`
		Developer        string   `avro:"developer"`
		ReleaseDate      string   `avro:"release_date"`
		Price            *float64 `avro:"price"`
		Discount         *int     `avro:"discount"`
		Rating           *float64 `avro:"rating"`
	}
)

// CatalogV1Avro parses CatalogSchemaTextV1 and panics if it is invalid.
func CatalogV1Avro() avro.Schema {
	return avro.MustParse(CatalogSchemaTextV1)
}
