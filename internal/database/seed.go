package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"
)

//go:embed seed_items.yaml
var seedItemsYAML []byte

// SeedItem is one sample catalog entry. Priced items use the kisses currency.
type SeedItem struct {
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
	Subcategory string  `yaml:"subcategory"`
	MediaKind   string  `yaml:"media"`
	MediaURL    string  `yaml:"url"`
	Price       float64 `yaml:"price"`
}

// SeedCategory groups sample items under an existing category.
type SeedCategory struct {
	Category string     `yaml:"category"`
	Items    []SeedItem `yaml:"items"`
}

// LoadSeed parses the embedded sample catalog.
func LoadSeed() ([]SeedCategory, error) {
	var seed []SeedCategory
	if err := yaml.Unmarshal(seedItemsYAML, &seed); err != nil {
		return nil, fmt.Errorf("parse seed items: %w", err)
	}
	return seed, nil
}

const insertSeedItem = `
INSERT INTO items (category_id, subcategory_id, title, description, media_kind, media_url, price_amount, currency_id)
SELECT c.id, s.id, $2::text, $3::text, NULLIF($5::text, ''), $6::text, $7::numeric,
       CASE WHEN $7::numeric > 0 THEN (SELECT id FROM currencies WHERE name = $8::text) END
FROM categories c
LEFT JOIN subcategories s ON s.category_id = c.id AND s.name = $4::text
WHERE c.name = $1::text
ON CONFLICT (category_id, title) DO NOTHING`

// Seed inserts the sample catalog. Existing items are left untouched.
// It returns the number of inserted items.
func Seed(ctx context.Context, db *sql.DB, log *slog.Logger) (int, error) {
	if log == nil {
		log = slog.Default()
	}

	seed, err := LoadSeed()
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, category := range seed {
		added := 0
		for _, item := range category.Items {
			res, err := db.ExecContext(ctx, insertSeedItem,
				category.Category,
				item.Title,
				item.Description,
				item.Subcategory,
				item.MediaKind,
				item.MediaURL,
				item.Price,
				"Поцілунки",
			)
			if err != nil {
				return inserted, fmt.Errorf("seed item %q: %w", item.Title, err)
			}
			if n, err := res.RowsAffected(); err == nil {
				added += int(n)
			}
		}

		log.Info("seeded category",
			slog.String("category", category.Category),
			slog.Int("inserted", added),
			slog.Int("total", len(category.Items)),
		)
		inserted += added
	}

	return inserted, nil
}
