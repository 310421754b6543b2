package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
)

type Options struct {
	Clear     bool // delete existing rows before seeding
	Validate  bool // recount after seeding
	DryRun    bool // convert only, write nothing
	BatchSize int  // document batch size override, 0 keeps the configured size
	Verbose   bool
}

type Stats struct {
	Service  string        `json:"service"`
	Total    int           `json:"total"`
	Inserted int           `json:"inserted"`
	Skipped  int           `json:"skipped"`
	Errors   int           `json:"errors"`
	Duration time.Duration `json:"duration"`
}

// Unit seeds one service. Seed is the only entity-specific step; the rest
// is shared through base.
type Unit interface {
	Name() string
	Initialize(ctx context.Context, opts Options) error
	Clear(ctx context.Context) error
	Seed(ctx context.Context, opts Options) error
	Validate(ctx context.Context) bool
	Cleanup(ctx context.Context) error
	Stats() *Stats
}

// Execute drives a unit through initialize, clear, seed, validate and
// cleanup. Cleanup runs even when an earlier step fails; the first failure
// is counted in the unit's stats and returned.
func Execute(ctx context.Context, u Unit, opts Options) (stats Stats, err error) {
	start := time.Now()
	s := u.Stats()
	s.Service = u.Name()

	defer func() {
		if cerr := u.Cleanup(ctx); cerr != nil {
			color.Yellow("  ⚠️  %s: cleanup failed: %v", u.Name(), cerr)
		}
		s.Duration = time.Since(start)
		stats = *s
	}()

	if err := u.Initialize(ctx, opts); err != nil {
		s.Errors++
		return *s, fmt.Errorf("failed to initialize %s: %w", u.Name(), err)
	}

	if opts.Clear && !opts.DryRun {
		if err := u.Clear(ctx); err != nil {
			s.Errors++
			return *s, fmt.Errorf("failed to clear %s: %w", u.Name(), err)
		}
	}

	if err := u.Seed(ctx, opts); err != nil {
		s.Errors++
		return *s, fmt.Errorf("failed to seed %s: %w", u.Name(), err)
	}

	if opts.Validate && !opts.DryRun {
		if u.Validate(ctx) {
			color.Green("  ✅ %s: validation passed", u.Name())
		} else {
			color.Yellow("  ⚠️  %s: validation failed", u.Name())
		}
	}

	return *s, nil
}
