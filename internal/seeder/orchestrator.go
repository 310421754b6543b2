package seeder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/xshopai/seeder/internal/config"
	"github.com/xshopai/seeder/internal/database"
	"github.com/xshopai/seeder/internal/identity"
)

var ErrNoConverter = errors.New("no converter registered for service")

// DependencyError reports services that must seed, in this run, before
// Service can.
type DependencyError struct {
	Service string
	Missing []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: dependencies not met: %s", e.Service, strings.Join(e.Missing, ", "))
}

// Orchestrator seeds services in ascending seed order, sharing one identity
// mapper and event bus across every unit of the run.
type Orchestrator struct {
	cfg      *config.Config
	services []config.Service
	registry *Registry
	deps     Deps
	seeded   map[string]bool
}

func NewOrchestrator(cfg *config.Config, registry *Registry, deps Deps) (*Orchestrator, error) {
	if _, err := NewDependencyGraph(cfg.Services).Order(); err != nil {
		return nil, err
	}
	if registry == nil {
		registry = DefaultRegistry()
	}
	if deps.Bus == nil {
		deps.Bus = NewBus()
	}
	if deps.Fixtures == "" {
		deps.Fixtures = cfg.FixturesDir
	}
	if deps.Insert.BatchSize <= 0 {
		deps.Insert.BatchSize = cfg.BatchSize
	}
	if deps.Insert.Pause == 0 {
		deps.Insert.Pause = cfg.BatchPause
	}
	if deps.Insert.Retry.MaxAttempts <= 0 {
		deps.Insert.Retry = cfg.Retry.Config()
	}

	return &Orchestrator{
		cfg:      cfg,
		services: cfg.Sorted(),
		registry: registry,
		deps:     deps.withDefaults(),
		seeded:   make(map[string]bool),
	}, nil
}

func (o *Orchestrator) IDs() *identity.Mapper { return o.deps.IDs }

// Seeded reports whether name seeded successfully earlier in this run.
func (o *Orchestrator) Seeded(name string) bool { return o.seeded[name] }

// Close releases the run's event subscribers.
func (o *Orchestrator) Close() error {
	return o.deps.Bus.Close()
}

// SeedAll reseeds every service that has a converter, always clearing first.
// A service whose dependency failed is recorded as failed without touching
// its storage; the remaining services still run.
func (o *Orchestrator) SeedAll(ctx context.Context, opts Options) []ServiceResult {
	opts.Clear = true
	color.Cyan("🌱 Seeding %d services...", len(o.services))

	var results []ServiceResult
	for _, svc := range o.services {
		if err := ctx.Err(); err != nil {
			results = append(results, failed(svc.Name, err))
			continue
		}
		factory, ok := o.registry.Lookup(svc.Name)
		if !ok {
			color.Yellow("⏭️  No converter for %s, skipping", svc.Name)
			continue
		}
		if missing := o.ValidateDependencies(svc.Name, o.seeded); len(missing) > 0 {
			err := &DependencyError{Service: svc.Name, Missing: missing}
			color.Red("❌ %v", err)
			results = append(results, failed(svc.Name, err))
			continue
		}
		results = append(results, o.run(ctx, svc, factory, opts))
	}
	return results
}

// SeedOne seeds a single service. Its dependencies must already have
// seeded successfully in this run.
func (o *Orchestrator) SeedOne(ctx context.Context, name string, opts Options) (ServiceResult, error) {
	svc, err := o.cfg.Service(name)
	if err != nil {
		return failed(name, err), err
	}
	if missing := o.ValidateDependencies(name, o.seeded); len(missing) > 0 {
		err := &DependencyError{Service: name, Missing: missing}
		return failed(name, err), err
	}
	factory, ok := o.registry.Lookup(name)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrNoConverter, name)
		return failed(name, err), err
	}

	res := o.run(ctx, svc, factory, opts)
	return res, res.Err
}

// ValidateDependencies returns the declared dependencies of name that are
// not in seeded, in declared order. Unknown services have none.
func (o *Orchestrator) ValidateDependencies(name string, seeded map[string]bool) []string {
	svc, err := o.cfg.Service(name)
	if err != nil {
		return nil
	}
	var missing []string
	for _, dep := range svc.DependsOn {
		if !seeded[dep] {
			missing = append(missing, dep)
		}
	}
	return missing
}

// ClearServices empties the named services, or all of them when names is
// empty, in reverse seed order. Every failure is collected.
func (o *Orchestrator) ClearServices(ctx context.Context, names []string) error {
	var errs []error
	selected := make(map[string]bool, len(names))
	for _, name := range names {
		if _, err := o.cfg.Service(name); err != nil {
			errs = append(errs, err)
			continue
		}
		selected[name] = true
	}

	for i := len(o.services) - 1; i >= 0; i-- {
		svc := o.services[i]
		if len(names) > 0 && !selected[svc.Name] {
			continue
		}
		color.Yellow("🗑️  Clearing %s...", svc.Name)
		if err := o.clear(ctx, svc); err != nil {
			color.Red("❌ %s: %v", svc.Name, err)
			errs = append(errs, fmt.Errorf("%s: %w", svc.Name, err))
			continue
		}
		color.Green("✅ %s cleared", svc.Name)
	}
	return errors.Join(errs...)
}

func (o *Orchestrator) clear(ctx context.Context, svc config.Service) (err error) {
	d := o.deps
	d.Service = svc
	schema := ""
	if database.IsRelational(svc.Kind) {
		schema = o.registry.Schema(svc.Name)
	}
	b := newBase(d, "", schema)

	defer func() {
		if cerr := b.Cleanup(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := b.Initialize(ctx, Options{}); err != nil {
		return err
	}
	return b.Clear(ctx)
}

// failed is the result of a service that never reached its unit.
func failed(name string, err error) ServiceResult {
	return ServiceResult{Service: name, Stats: Stats{Service: name, Errors: 1}, Err: err}
}

func (o *Orchestrator) run(ctx context.Context, svc config.Service, factory Factory, opts Options) ServiceResult {
	d := o.deps
	d.Service = svc
	unit := factory(d)

	color.Cyan("\n🌱 Seeding %s...", svc.Name)
	start := time.Now()
	stats, err := Execute(ctx, unit, opts)
	res := ServiceResult{Service: svc.Name, Success: err == nil, Stats: stats, Err: err, Duration: time.Since(start)}

	if err != nil {
		color.Red("❌ %s failed: %v", svc.Name, err)
		return res
	}
	o.seeded[svc.Name] = true
	color.Green("✅ %s seeded: %d inserted, %d skipped (%s)", svc.Name, stats.Inserted, stats.Skipped, res.Duration.Round(time.Millisecond))
	if opts.Verbose {
		ids := o.deps.IDs.Stats()
		color.White("   🔑 %d object ids, %d uuids, %d relationships", ids.ObjectIDCount, ids.UUIDCount, ids.RelationshipCount)
	}
	return res
}
