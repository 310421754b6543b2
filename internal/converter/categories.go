package converter

import (
	"regexp"
	"strings"
	"time"

	"github.com/xshopai/seeder/internal/fixtures"
	"github.com/xshopai/seeder/internal/identity"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

type Category struct {
	Key         string             `bson:"-"`
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Slug        string             `bson:"slug"`
	Parent      string             `bson:"parent,omitempty"`
	Description string             `bson:"description"`
	IsActive    bool               `bson:"is_active"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func Slugify(s string) string {
	return strings.Trim(slugSeparators.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func ConvertCategories(raw []fixtures.Record, ctx *Context) []Category {
	out := make([]Category, 0, len(raw))
	for i, r := range raw {
		key := identity.Key("category", i+1)
		name := r.String("name")
		out = append(out, Category{
			Key:         key,
			ID:          ctx.IDs.GetOrCreateObjectID(key),
			Name:        name,
			Slug:        r.StringOr("slug", Slugify(name)),
			Parent:      strings.ToLower(r.String("parent")),
			Description: r.String("description"),
			IsActive:    r.BoolOr("isActive", true),
			CreatedAt:   ctx.Now().UTC(),
		})
	}
	return out
}
