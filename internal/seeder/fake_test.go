package seeder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xshopai/seeder/internal/config"
	"github.com/xshopai/seeder/internal/database"
	"github.com/xshopai/seeder/internal/database/common"
	"github.com/xshopai/seeder/internal/fixtures"
	"github.com/xshopai/seeder/internal/identity"
	"github.com/xshopai/seeder/internal/retry"
)

// world is an in-memory stand-in for every service database. Stores are
// addressed by URL, and the fake URL of a service is its name.
type world struct {
	mu       sync.Mutex
	tables   map[string]map[string][]database.Record
	connects map[string]int

	failConnect map[string]error
	// failOp injects an error for "<url>/<op>/<table>", op one of
	// insert, delete, count, update.
	failOp map[string][]error

	inserts map[string]int // insert calls per url/table
	execs   map[string][]string
	deletes []string // url/table in call order
	closes  map[string]int
}

func newWorld() *world {
	return &world{
		tables:      make(map[string]map[string][]database.Record),
		connects:    make(map[string]int),
		failConnect: make(map[string]error),
		failOp:      make(map[string][]error),
		inserts:     make(map[string]int),
		execs:       make(map[string][]string),
		closes:      make(map[string]int),
	}
}

func (w *world) newStore(kind string) (database.Store, error) {
	if database.NormalizeKind(kind) == "" {
		return nil, fmt.Errorf("unsupported database kind: %s", kind)
	}
	return &fakeStore{w: w}, nil
}

func (w *world) fail(url, op, table string, errs ...error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := url + "/" + op + "/" + table
	w.failOp[key] = append(w.failOp[key], errs...)
}

// next pops the next injected error. Must hold mu.
func (w *world) next(url, op, table string) error {
	key := url + "/" + op + "/" + table
	errs := w.failOp[key]
	if len(errs) == 0 {
		return nil
	}
	w.failOp[key] = errs[1:]
	return errs[0]
}

func (w *world) rows(url, table string) []database.Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tables[url][table]
}

func (w *world) connectCount(url string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connects[url]
}

type fakeStore struct {
	w   *world
	url string
}

func (s *fakeStore) Connect(ctx context.Context, url string) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	s.w.connects[url]++
	if err := s.w.failConnect[url]; err != nil {
		return err
	}
	s.url = url
	if s.w.tables[url] == nil {
		s.w.tables[url] = make(map[string][]database.Record)
	}
	return nil
}

func (s *fakeStore) Close() error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	s.w.closes[s.url]++
	return nil
}

func (s *fakeStore) Ping(ctx context.Context) error {
	if s.url == "" {
		return common.ErrNotConnected
	}
	return nil
}

func (s *fakeStore) Insert(ctx context.Context, table string, records []database.Record) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	s.w.inserts[s.url+"/"+table]++
	if err := s.w.next(s.url, "insert", table); err != nil {
		var p *partialInsert
		if !errors.As(err, &p) {
			return err
		}
		if werr := s.store(table, records[:min(p.n, len(records))]); werr != nil {
			return werr
		}
		return p.err
	}
	return s.store(table, records)
}

// store appends copies of records, rejecting an _id the table already
// holds. Must hold mu.
func (s *fakeStore) store(table string, records []database.Record) error {
	seen := make(map[interface{}]bool)
	for _, row := range s.w.tables[s.url][table] {
		if id, ok := row["_id"]; ok {
			seen[id] = true
		}
	}
	for _, r := range records {
		if id, ok := r["_id"]; ok && seen[id] {
			return fmt.Errorf("E11000 duplicate key error _id %v", id)
		}
	}
	for _, r := range records {
		cp := make(database.Record, len(r))
		for k, v := range r {
			cp[k] = v
		}
		s.w.tables[s.url][table] = append(s.w.tables[s.url][table], cp)
	}
	return nil
}

// partialInsert, queued as an insert failure, stores the first n records
// and then fails with err, like an ordered bulk insert cut short.
type partialInsert struct {
	n   int
	err error
}

func (p *partialInsert) Error() string { return p.err.Error() }

func (s *fakeStore) DeleteAll(ctx context.Context, table string) (int64, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	s.w.deletes = append(s.w.deletes, s.url+"/"+table)
	if err := s.w.next(s.url, "delete", table); err != nil {
		return 0, err
	}
	n := len(s.w.tables[s.url][table])
	delete(s.w.tables[s.url], table)
	return int64(n), nil
}

func (s *fakeStore) Count(ctx context.Context, table string) (int64, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if err := s.w.next(s.url, "count", table); err != nil {
		return 0, err
	}
	return int64(len(s.w.tables[s.url][table])), nil
}

func (s *fakeStore) Update(ctx context.Context, collection string, filter, set database.Record) (int64, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if err := s.w.next(s.url, "update", collection); err != nil {
		return 0, err
	}
	var matched int64
	for _, doc := range s.w.tables[s.url][collection] {
		ok := true
		for k, v := range filter {
			if doc[k] != v {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		matched++
		for k, v := range set {
			doc[k] = v
		}
	}
	return matched, nil
}

func (s *fakeStore) Exec(ctx context.Context, query string, args ...interface{}) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	s.w.execs[s.url] = append(s.w.execs[s.url], strings.TrimSpace(query))
	return nil
}

// Column answers "SELECT <col> FROM <table>" from the stored rows.
func (s *fakeStore) Column(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	fields := strings.Fields(query)
	if len(fields) != 4 || !strings.EqualFold(fields[0], "select") || !strings.EqualFold(fields[2], "from") {
		return nil, fmt.Errorf("fake store cannot answer %q", query)
	}
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	var out []string
	for _, row := range s.w.tables[s.url][fields[3]] {
		out = append(out, fmt.Sprint(row[fields[1]]))
	}
	return out, nil
}

// Transaction snapshots this store's tables and restores them when fn fails.
func (s *fakeStore) Transaction(ctx context.Context, fn func(database.Execer) error) error {
	s.w.mu.Lock()
	snapshot := make(map[string][]database.Record, len(s.w.tables[s.url]))
	for t, rows := range s.w.tables[s.url] {
		snapshot[t] = append([]database.Record(nil), rows...)
	}
	s.w.mu.Unlock()

	if err := fn(s); err != nil {
		s.w.mu.Lock()
		s.w.tables[s.url] = snapshot
		s.w.mu.Unlock()
		return err
	}
	return nil
}

var (
	_ database.DocumentStore = (*fakeStore)(nil)
	_ database.SQLStore      = (*fakeStore)(nil)
)

func serviceURL(svc config.Service) (string, error) { return svc.Name, nil }

func testConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	return &config.Config{
		FixturesDir:  dir,
		BatchSize:    10,
		DefaultClear: true,
		Services:     config.DefaultServices(),
	}
}

func testDeps(w *world, dir string) Deps {
	return Deps{
		IDs:      identity.New(),
		Fixtures: dir,
		NewStore: w.newStore,
		URL:      serviceURL,
		Insert: InsertSettings{
			BatchSize: 10,
			Retry:     retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2},
		},
	}
}

func newTestOrchestrator(t *testing.T, w *world, dir string) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(testConfig(t, dir), DefaultRegistry(), testDeps(w, dir))
	require.NoError(t, err)
	t.Cleanup(func() { o.Close() })
	return o
}

// writeFixtures lays down a small consistent data set: two users, two
// products (the first with 2 colors x 2 sizes), inventory for both, two
// orders and three reviews.
func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	write := func(name string, records []fixtures.Record) {
		require.NoError(t, fixtures.Write(dir, name, records))
	}

	write(fixtures.Users, []fixtures.Record{
		{"email": "guest@xshopai.com", "password": "guest", "firstName": "Guest", "lastName": "User"},
		{"email": "admin@xshopai.com", "password": "admin", "firstName": "Admin", "lastName": "User", "roles": []interface{}{"admin"}},
	})
	write(fixtures.Categories, []fixtures.Record{
		{"name": "Women"},
	})
	write(fixtures.Products, []fixtures.Record{
		{"name": "Trail Jacket", "sku": "ANT-WOM-CLO-001", "price": 80.0, "department": "Women",
			"colors": []interface{}{"Black", "Dark Gray"}, "sizes": []interface{}{"S", "M"}},
		{"name": "Mug", "sku": "HOM-KIT-001", "price": 12.5},
	})
	write(fixtures.Inventory, []fixtures.Record{
		{"sku": "ANT-WOM-CLO-001", "quantity_available": 10, "cost_per_unit": 30.0},
		{"sku": "HOM-KIT-001", "quantity_available": 5},
	})
	write(fixtures.Orders, []fixtures.Record{
		{"userId": "PLACEHOLDER_USER_1", "items": []interface{}{
			map[string]interface{}{"productId": "PLACEHOLDER_PRODUCT_1", "quantity": 1},
			map[string]interface{}{"productId": "PLACEHOLDER_PRODUCT_2", "quantity": 2},
		}},
		{"userId": "PLACEHOLDER_USER_2", "items": []interface{}{
			map[string]interface{}{"productId": "PLACEHOLDER_PRODUCT_2", "quantity": 1},
		}},
	})
	write(fixtures.Reviews, []fixtures.Record{
		{"userId": "PLACEHOLDER_USER_1", "productId": "PLACEHOLDER_PRODUCT_1", "rating": 5, "title": "Great"},
		{"userId": "PLACEHOLDER_USER_2", "productId": "PLACEHOLDER_PRODUCT_2", "rating": 4, "title": "Fine"},
		{"userId": "PLACEHOLDER_USER_1", "productId": "PLACEHOLDER_PRODUCT_2", "rating": 3, "title": "Ok"},
	})
	return dir
}

var errBoom = errors.New("boom")
