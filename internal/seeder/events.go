package seeder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fatih/color"
	"github.com/xshopai/seeder/internal/converter"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RatingAggregateUpdated announces a freshly computed rating aggregate for
// one product.
type RatingAggregateUpdated struct {
	ProductKey string
	ProductID  primitive.ObjectID
	Aggregate  converter.RatingAggregate
}

type Handler interface {
	HandleRatingAggregate(ctx context.Context, evt RatingAggregateUpdated) error
	Close() error
}

// Bus delivers events synchronously to named subscribers in subscription
// order. Handler failures are logged and never reach the publisher.
type Bus struct {
	mu       sync.Mutex
	order    []string
	handlers map[string]Handler
}

type PublishResult struct {
	Delivered int
	Failed    int
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string]Handler)}
}

// Subscribe registers h under name, replacing and closing any previous
// handler of the same name.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.handlers[name]; ok {
		if err := old.Close(); err != nil {
			color.Yellow("  ⚠️  Failed to close previous %s subscriber: %v", name, err)
		}
	} else {
		b.order = append(b.order, name)
	}
	b.handlers[name] = h
}

func (b *Bus) Publish(ctx context.Context, evt RatingAggregateUpdated) PublishResult {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.order))
	names := make([]string, 0, len(b.order))
	for _, name := range b.order {
		handlers = append(handlers, b.handlers[name])
		names = append(names, name)
	}
	b.mu.Unlock()

	var res PublishResult
	for i, h := range handlers {
		if err := h.HandleRatingAggregate(ctx, evt); err != nil {
			color.Yellow("  ⚠️  %s could not apply rating aggregate for %s: %v", names[i], evt.ProductKey, err)
			res.Failed++
			continue
		}
		res.Delivered++
	}
	return res
}

func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	for _, name := range b.order {
		if err := b.handlers[name].Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	b.order = nil
	b.handlers = make(map[string]Handler)
	return errors.Join(errs...)
}
