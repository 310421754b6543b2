package seeder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fatih/color"
	"github.com/xshopai/seeder/internal/converter"
	"github.com/xshopai/seeder/internal/database"
	"github.com/xshopai/seeder/internal/database/mongodb"
	"github.com/xshopai/seeder/internal/fixtures"
)

type productsUnit struct {
	base
}

// NewProducts also subscribes the product catalog to rating aggregate
// updates, when the run has a bus.
func NewProducts(d Deps) Unit {
	u := &productsUnit{base: newBase(d, "products", "")}
	if u.deps.Bus != nil {
		u.deps.Bus.Subscribe(u.Name(), NewProductAggregateSync(u.deps))
	}
	return u
}

func (u *productsUnit) Seed(ctx context.Context, opts Options) error {
	rawProducts, err := fixtures.Load(u.deps.Fixtures, fixtures.Products)
	if err != nil {
		return err
	}
	rawCategories, err := fixtures.Load(u.deps.Fixtures, fixtures.Categories)
	if errors.Is(err, fixtures.ErrFixtureNotFound) {
		rawCategories = nil
	} else if err != nil {
		return err
	}

	categories := converter.ConvertCategories(rawCategories, u.deps.Convert)
	products := converter.ConvertProducts(rawProducts, u.deps.Convert)
	u.stats.Total = len(categories) + len(products)
	color.Cyan("  📝 Prepared %d products and %d categories", len(products), len(categories))
	if opts.DryRun {
		return nil
	}
	if _, err := u.documents(); err != nil {
		return err
	}

	if len(categories) > 0 {
		docs, err := mongodb.Documents(categories)
		if err != nil {
			return fmt.Errorf("failed to encode categories: %w", err)
		}
		if err := u.insertDocuments(ctx, "categories", docs, opts); err != nil {
			return err
		}
	}

	docs, err := mongodb.Documents(products)
	if err != nil {
		return fmt.Errorf("failed to encode products: %w", err)
	}
	if err := u.insertDocuments(ctx, "products", docs, opts); err != nil {
		return err
	}
	u.expected = len(docs)
	color.Green("  ✅ Inserted %d products", len(docs))
	return nil
}

// ProductAggregateSync copies review rating aggregates onto product
// documents. It opens its own product-service connection on first use.
type ProductAggregateSync struct {
	deps Deps

	mu    sync.Mutex
	store database.DocumentStore
}

func NewProductAggregateSync(d Deps) *ProductAggregateSync {
	return &ProductAggregateSync{deps: d.withDefaults()}
}

func (s *ProductAggregateSync) connect(ctx context.Context) (database.DocumentStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store != nil {
		return s.store, nil
	}
	store, err := s.deps.open(ctx, s.deps.Service)
	if err != nil {
		return nil, err
	}
	ds, ok := store.(database.DocumentStore)
	if !ok {
		store.Close()
		return nil, fmt.Errorf("%s store does not support document updates", s.deps.Service.Kind)
	}
	s.store = ds
	return ds, nil
}

func (s *ProductAggregateSync) HandleRatingAggregate(ctx context.Context, evt RatingAggregateUpdated) error {
	if evt.ProductID.IsZero() {
		return fmt.Errorf("product %s has no known id", evt.ProductKey)
	}
	store, err := s.connect(ctx)
	if err != nil {
		return err
	}

	n, err := store.Update(ctx, "products",
		database.Record{"_id": evt.ProductID},
		database.Record{"review_aggregates": evt.Aggregate, "updated_at": evt.Aggregate.LastUpdated},
	)
	if err != nil {
		return fmt.Errorf("failed to update product %s: %w", evt.ProductKey, err)
	}
	if n == 0 {
		return fmt.Errorf("product %s (%s) not found", evt.ProductKey, evt.ProductID.Hex())
	}
	return nil
}

func (s *ProductAggregateSync) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	err := s.store.Close()
	s.store = nil
	return err
}
