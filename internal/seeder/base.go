package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/xshopai/seeder/internal/config"
	"github.com/xshopai/seeder/internal/converter"
	"github.com/xshopai/seeder/internal/database"
	"github.com/xshopai/seeder/internal/database/common"
	"github.com/xshopai/seeder/internal/identity"
	"github.com/xshopai/seeder/internal/retry"
)

// Deps is everything a unit needs from the run that creates it.
type Deps struct {
	Service  config.Service
	IDs      *identity.Mapper
	Fixtures string
	Bus      *Bus
	Convert  *converter.Context
	Insert   InsertSettings

	NewStore func(kind string) (database.Store, error)
	URL      func(config.Service) (string, error)
}

type InsertSettings struct {
	BatchSize int
	Pause     time.Duration
	Retry     retry.Config
}

func (d Deps) withDefaults() Deps {
	if d.IDs == nil && d.Convert != nil {
		d.IDs = d.Convert.IDs
	}
	if d.IDs == nil {
		d.IDs = identity.New()
	}
	if d.Convert == nil {
		d.Convert = converter.NewContext(d.IDs)
	}
	if d.NewStore == nil {
		d.NewStore = database.NewStore
	}
	if d.URL == nil {
		d.URL = config.Service.GetURL
	}
	if d.Insert.BatchSize <= 0 {
		d.Insert.BatchSize = 10
	}
	if d.Insert.Retry.MaxAttempts <= 0 {
		d.Insert.Retry = retry.DefaultConfig()
	}
	if d.Fixtures == "" {
		d.Fixtures = "data"
	}
	return d
}

// open connects and pings a fresh store for svc.
func (d Deps) open(ctx context.Context, svc config.Service) (database.Store, error) {
	url, err := d.URL(svc)
	if err != nil {
		return nil, err
	}
	store, err := d.NewStore(svc.Kind)
	if err != nil {
		return nil, err
	}
	if err := store.Connect(ctx, url); err != nil {
		return nil, err
	}
	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", svc.Name, err)
	}
	return store, nil
}

// base carries the lifecycle steps shared by every unit.
type base struct {
	deps    Deps
	store   database.Store
	primary string // table recounted by Validate
	schema  string // CREATE TABLE IF NOT EXISTS script, relational units only
	stats   Stats

	// expected is how many rows Seed wrote to primary.
	expected int
}

func newBase(d Deps, primary, schema string) base {
	d = d.withDefaults()
	return base{deps: d, primary: primary, schema: schema, stats: Stats{Service: d.Service.Name}}
}

func (b *base) Name() string { return b.deps.Service.Name }

func (b *base) Stats() *Stats { return &b.stats }

func (b *base) Initialize(ctx context.Context, opts Options) error {
	color.Cyan("📡 Connecting to %s (%s)...", b.Name(), b.deps.Service.Kind)
	store, err := b.deps.open(ctx, b.deps.Service)
	if err != nil {
		return err
	}
	b.store = store

	if b.schema == "" || opts.DryRun {
		return nil
	}
	db, err := b.sql()
	if err != nil {
		return err
	}
	for _, stmt := range common.SplitStatements(b.schema) {
		if err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// Clear empties every declared table in order. Tables the credentials may
// not touch are reported and skipped.
func (b *base) Clear(ctx context.Context) error {
	for _, table := range b.deps.Service.Tables {
		n, err := b.store.DeleteAll(ctx, table)
		if common.IsForbidden(err) {
			color.Yellow("  ⚠️  No permission to clear %s, continuing: %v", table, err)
			continue
		}
		if err != nil {
			return err
		}
		color.Yellow("  🗑️  Cleared %d rows from %s", n, table)
	}
	return nil
}

func (b *base) Validate(ctx context.Context) bool {
	n, err := b.store.Count(ctx, b.primary)
	if common.IsForbidden(err) {
		color.Yellow("  ⚠️  No permission to count %s, skipping validation", b.primary)
		return true
	}
	if err != nil {
		color.Red("  ❌ Failed to count %s: %v", b.primary, err)
		return false
	}
	if int(n) < b.expected {
		color.Red("  ❌ %s has %d rows, expected at least %d", b.primary, n, b.expected)
		return false
	}
	return true
}

func (b *base) Cleanup(ctx context.Context) error {
	if b.store == nil {
		return nil
	}
	err := b.store.Close()
	b.store = nil
	return err
}

func (b *base) documents() (database.DocumentStore, error) {
	ds, ok := b.store.(database.DocumentStore)
	if !ok {
		return nil, fmt.Errorf("%s: %s store does not support documents", b.Name(), b.deps.Service.Kind)
	}
	return ds, nil
}

func (b *base) sql() (database.SQLStore, error) {
	ss, ok := b.store.(database.SQLStore)
	if !ok {
		return nil, fmt.Errorf("%s: %s store is not relational", b.Name(), b.deps.Service.Kind)
	}
	return ss, nil
}

func (b *base) batchSize(opts Options) int {
	if opts.BatchSize > 0 {
		return opts.BatchSize
	}
	return b.deps.Insert.BatchSize
}

// insertDocuments writes records in sequential batches with a pause between
// them. Each batch retries on its own when the store reports rate limiting.
func (b *base) insertDocuments(ctx context.Context, collection string, records []database.Record, opts Options) error {
	size := b.batchSize(opts)
	cfg := b.deps.Insert.Retry
	cfg.RetryIf = common.IsRateLimited
	cfg.DelayHint = common.RetryAfter
	cfg.OnRetry = func(attempt int, err error, wait time.Duration) {
		color.Yellow("  ⏳ %s rate limited (attempt %d), retrying in %s", collection, attempt, wait.Round(time.Millisecond))
	}

	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		pending := records[start:end]
		err := retry.Do(ctx, cfg, func() error {
			err := b.store.Insert(ctx, collection, pending)
			// a throttled insert may have stored a prefix; resend only the rest
			if n := min(common.Written(err), len(pending)); n > 0 {
				b.stats.Inserted += n
				pending = pending[n:]
			}
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to insert %s batch %d-%d: %w", collection, start+1, end, err)
		}
		b.stats.Inserted += len(pending)

		if end < len(records) && b.deps.Insert.Pause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.deps.Insert.Pause):
			}
		}
	}
	return nil
}
