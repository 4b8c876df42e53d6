// Package catalogstub serves a generated product catalog over the same HTTP
// API the storefront's remote client reads. It is a development and test
// double for the real catalog.
package catalogstub

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
)

// idNamespace makes generated ids stable across runs.
var idNamespace = uuid.MustParse("6f1c2a8e-3b7d-4e59-9a0c-5d2f8b1e4c77")

var categories = map[string][]string{
	"Electronics": {"Headphones", "Keyboard", "Monitor", "Webcam", "Speaker"},
	"Home":        {"Desk Lamp", "Coffee Grinder", "Kettle", "Throw Blanket"},
	"Outdoor":     {"Backpack", "Water Bottle", "Tent", "Trail Shoes"},
	"Office":      {"Notebook", "Fountain Pen", "Desk Organizer", "Office Chair"},
}

// categoryOrder fixes iteration order over categories.
var categoryOrder = []string{"Electronics", "Home", "Outdoor", "Office"}

var adjectives = []string{
	"Wireless", "Compact", "Premium", "Classic", "Ergonomic",
	"Portable", "Minimal", "Heavy Duty", "Smart", "Recycled",
}

var colors = []string{"Black", "White", "Navy", "Graphite", "Sand", "Olive", "Red"}

var descriptionTemplates = []string{
	"A dependable %s built for everyday use.",
	"Our best selling %s, refreshed for this season.",
	"%s with a clean design and long lasting materials.",
}

// Generate returns n products. The same seed always yields the same catalog.
// A negative n yields an empty catalog.
func Generate(n int, seed uint64) []domain.Product {
	n = max(n, 0)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	products := make([]domain.Product, 0, n)

	for i := 0; i < n; i++ {
		category := categoryOrder[i%len(categoryOrder)]
		types := categories[category]
		productType := types[rng.IntN(len(types))]
		adjective := adjectives[rng.IntN(len(adjectives))]
		color := colors[rng.IntN(len(colors))]

		// Prices are whole units between 5 and 500.
		price := float64(5 + rng.IntN(496))

		products = append(products, domain.Product{
			ID:          ProductID(i),
			Name:        fmt.Sprintf("%s %s - %s", adjective, productType, color),
			Description: fmt.Sprintf(descriptionTemplates[rng.IntN(len(descriptionTemplates))], productType),
			Price:       price,
			ImageURL:    fmt.Sprintf("https://picsum.photos/seed/%d/400/400", i),
			Category:    category,
			Stock:       rng.IntN(200),
		})
	}
	return products
}

// ProductID returns the id of the i-th generated product.
func ProductID(i int) string {
	return uuid.NewSHA1(idNamespace, []byte(strconv.Itoa(i))).String()
}
