package database

import (
	"context"

	"github.com/xshopai/seeder/internal/database/common"
)

type (
	Record = common.Record
	Execer = common.Execer
)

// Store is the minimal contract every seeding unit relies on.
type Store interface {
	Connect(ctx context.Context, url string) error
	Close() error
	Ping(ctx context.Context) error

	Insert(ctx context.Context, table string, records []Record) error
	// DeleteAll removes every row or document and reports how many went.
	DeleteAll(ctx context.Context, table string) (int64, error)
	Count(ctx context.Context, table string) (int64, error)
}

// DocumentStore adds in-place field updates, used by denormalization sync and
// password maintenance.
type DocumentStore interface {
	Store
	Update(ctx context.Context, collection string, filter, set Record) (int64, error)
}

type SQLStore interface {
	Store
	Execer
	Column(ctx context.Context, query string, args ...interface{}) ([]string, error)
	Transaction(ctx context.Context, fn func(Execer) error) error
}
