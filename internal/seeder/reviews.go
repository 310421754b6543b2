package seeder

import (
	"context"

	"github.com/fatih/color"
	"github.com/xshopai/seeder/internal/converter"
	"github.com/xshopai/seeder/internal/database"
	"github.com/xshopai/seeder/internal/fixtures"
)

const reviewsSchema = `
CREATE TABLE IF NOT EXISTS reviews (
    id TEXT PRIMARY KEY,
    product_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    username TEXT,
    rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
    title TEXT,
    comment TEXT,
    is_verified_purchase BOOLEAN NOT NULL DEFAULT 0,
    helpful_votes INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'approved',
    sentiment_label TEXT,
    sentiment_score REAL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS ix_reviews_product_id ON reviews (product_id);

CREATE TABLE IF NOT EXISTS product_ratings (
    product_id TEXT PRIMARY KEY,
    average_rating REAL NOT NULL DEFAULT 0,
    total_reviews INTEGER NOT NULL DEFAULT 0,
    verified_reviews INTEGER NOT NULL DEFAULT 0,
    rating_1 INTEGER NOT NULL DEFAULT 0,
    rating_2 INTEGER NOT NULL DEFAULT 0,
    rating_3 INTEGER NOT NULL DEFAULT 0,
    rating_4 INTEGER NOT NULL DEFAULT 0,
    rating_5 INTEGER NOT NULL DEFAULT 0,
    last_updated TIMESTAMP NOT NULL
);
`

type reviewsUnit struct {
	base
}

func NewReviews(d Deps) Unit {
	return &reviewsUnit{base: newBase(d, "reviews", reviewsSchema)}
}

func (u *reviewsUnit) Seed(ctx context.Context, opts Options) error {
	raw, err := fixtures.Load(u.deps.Fixtures, fixtures.Reviews)
	if err != nil {
		return err
	}

	reviews, skipped := converter.ConvertReviews(raw, u.deps.Convert)
	aggregates := converter.AggregateRatings(reviews, u.deps.Convert.Now())
	u.stats.Total = len(raw) + len(aggregates)
	u.stats.Skipped = skipped
	if skipped > 0 {
		color.Yellow("  ⚠️  Skipping %d reviews whose user or product was not seeded in this run", skipped)
	}
	color.Cyan("  📝 Prepared %d reviews across %d products", len(reviews), len(aggregates))
	if opts.DryRun {
		return nil
	}

	db, err := u.sql()
	if err != nil {
		return err
	}
	reviewRows := make([]database.Record, 0, len(reviews))
	for _, r := range reviews {
		reviewRows = append(reviewRows, r.Record())
	}
	ratingRows := make([]database.Record, 0, len(aggregates))
	for _, a := range aggregates {
		ratingRows = append(ratingRows, a.Record())
	}
	if err := db.Transaction(ctx, func(tx database.Execer) error {
		if err := tx.Insert(ctx, "reviews", reviewRows); err != nil {
			return err
		}
		return tx.Insert(ctx, "product_ratings", ratingRows)
	}); err != nil {
		return err
	}
	u.stats.Inserted += len(reviewRows) + len(ratingRows)
	u.expected = len(reviewRows)
	color.Green("  ✅ Inserted %d reviews and %d rating aggregates", len(reviewRows), len(ratingRows))

	u.publish(ctx, aggregates)
	return nil
}

// publish pushes each aggregate to subscribers. Sync failures never fail
// the review unit.
func (u *reviewsUnit) publish(ctx context.Context, aggregates []converter.RatingAggregate) {
	if u.deps.Bus == nil || len(aggregates) == 0 {
		return
	}
	var total PublishResult
	for _, agg := range aggregates {
		id, _ := u.deps.IDs.LookupObjectID(agg.ProductKey)
		res := u.deps.Bus.Publish(ctx, RatingAggregateUpdated{ProductKey: agg.ProductKey, ProductID: id, Aggregate: agg})
		total.Delivered += res.Delivered
		total.Failed += res.Failed
	}
	if total.Failed > 0 {
		color.Yellow("  ⚠️  Rating aggregate sync: %d applied, %d failed", total.Delivered, total.Failed)
		return
	}
	color.Green("  🔄 Synced rating aggregates for %d products", total.Delivered)
}
