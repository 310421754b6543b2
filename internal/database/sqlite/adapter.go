package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/xshopai/seeder/internal/database/common"
)

type Adapter struct {
	*common.SQLStore
	path string
}

func New() *Adapter {
	return &Adapter{SQLStore: common.NewSQLStore(common.QuoteANSI, classify)}
}

// Path strips the sqlite:// scheme and any query string.
func Path(url string) string {
	p := strings.TrimPrefix(strings.TrimPrefix(url, "sqlite://"), "file:")
	if idx := strings.Index(p, "?"); idx >= 0 {
		p = p[:idx]
	}
	return p
}

func (s *Adapter) Connect(ctx context.Context, url string) error {
	dbPath := strings.TrimPrefix(url, "sqlite://")
	s.path = Path(url)

	if !strings.Contains(dbPath, "?") {
		if s.path == ":memory:" {
			dbPath = "file::memory:?cache=shared"
		} else {
			dbPath += "?cache=shared&_journal_mode=WAL"
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// One writer keeps transactions and plain statements on the same connection.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(5 * time.Minute)

	s.DB = db
	return nil
}

func (s *Adapter) Database() string { return s.path }

func classify(op string, err error) error {
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		switch sqErr.Code {
		case sqlite3.ErrAuth, sqlite3.ErrPerm, sqlite3.ErrReadonly:
			return common.Forbidden(op, err)
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
