package converter

import (
	"regexp"
	"strings"
	"time"

	"github.com/xshopai/seeder/internal/fixtures"
	"github.com/xshopai/seeder/internal/identity"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Z0-9]+`)

type Taxonomy struct {
	Department  string `bson:"department"`
	Category    string `bson:"category"`
	Subcategory string `bson:"subcategory"`
}

type Variant struct {
	SKU   string `bson:"sku"`
	Color string `bson:"color"`
	Size  string `bson:"size"`
}

type Product struct {
	Key            string                 `bson:"-"`
	ID             primitive.ObjectID     `bson:"_id"`
	Name           string                 `bson:"name"`
	Description    string                 `bson:"description"`
	Price          float64                `bson:"price"`
	Brand          string                 `bson:"brand"`
	SKU            string                 `bson:"sku"`
	Images         []string               `bson:"images"`
	Tags           []string               `bson:"tags"`
	Colors         []string               `bson:"colors"`
	Sizes          []string               `bson:"sizes"`
	Variants       []Variant              `bson:"variants"`
	Specifications map[string]interface{} `bson:"specifications"`
	Taxonomy       Taxonomy               `bson:"taxonomy"`
	IsActive       bool                   `bson:"is_active"`
	CreatedAt      time.Time              `bson:"created_at"`
	UpdatedAt      time.Time              `bson:"updated_at"`
	CreatedBy      string                 `bson:"created_by"`
	History        []interface{}          `bson:"history"`

	// Populated later by sync operations, never at conversion time.
	AvailabilityStatus map[string]interface{} `bson:"availability_status,omitempty"`
	ReviewAggregates   *RatingAggregate       `bson:"review_aggregates,omitempty"`
}

// VariantSKU appends the uppercased, alphanumeric-only color and size tokens
// to base: ("ANT-WOM-CLO-001", "Dark Gray", "M") -> "ANT-WOM-CLO-001-DARKGRAY-M".
func VariantSKU(base, color, size string) string {
	parts := []string{base}
	for _, token := range []string{color, size} {
		if t := nonAlphanumeric.ReplaceAllString(strings.ToUpper(token), ""); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "-")
}

// Variants is the colors x sizes cross product, colors outermost.
func Variants(base string, colors, sizes []string) []Variant {
	if len(colors) == 0 || len(sizes) == 0 {
		return nil
	}
	out := make([]Variant, 0, len(colors)*len(sizes))
	for _, c := range colors {
		for _, s := range sizes {
			out = append(out, Variant{SKU: VariantSKU(base, c, s), Color: c, Size: s})
		}
	}
	return out
}

func ConvertProducts(raw []fixtures.Record, ctx *Context) []Product {
	out := make([]Product, 0, len(raw))
	for i, r := range raw {
		key := identity.Key("product", i+1)
		now := ctx.Now().UTC()
		sku := r.String("sku")
		colors := nonNil(r.Strings("colors"))
		sizes := nonNil(r.Strings("sizes"))

		specs := map[string]interface{}(r.Map("specifications"))

		out = append(out, Product{
			Key:            key,
			ID:             ctx.IDs.GetOrCreateObjectID(key),
			Name:           r.String("name"),
			Description:    r.String("description"),
			Price:          r.Float("price"),
			Brand:          r.String("brand"),
			SKU:            sku,
			Images:         nonNil(r.Strings("images")),
			Tags:           nonNil(r.Strings("tags")),
			Colors:         colors,
			Sizes:          sizes,
			Variants:       Variants(sku, colors, sizes),
			Specifications: specs,
			Taxonomy: Taxonomy{
				Department:  strings.ToLower(r.String("department")),
				Category:    strings.ToLower(r.String("category")),
				Subcategory: strings.ToLower(r.String("subcategory")),
			},
			IsActive:  r.BoolOr("isActive", true),
			CreatedAt: now,
			UpdatedAt: now,
			CreatedBy: "SEEDER",
			History:   []interface{}{},
		})
	}
	return out
}

// CatalogEntry is the slice of a product other converters need.
type CatalogEntry struct {
	Key   string
	Name  string
	SKU   string
	Price float64
}

// Catalog indexes product fixtures by logical key.
func Catalog(raw []fixtures.Record) map[string]CatalogEntry {
	out := make(map[string]CatalogEntry, len(raw))
	for i, r := range raw {
		key := identity.Key("product", i+1)
		out[key] = CatalogEntry{Key: key, Name: r.String("name"), SKU: r.String("sku"), Price: r.Float("price")}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
