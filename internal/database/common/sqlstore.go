package common

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
)

// Execer is the write surface shared by a store and an open transaction.
type Execer interface {
	Exec(ctx context.Context, query string, args ...interface{}) error
	Insert(ctx context.Context, table string, records []Record) error
}

type sqlExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SQLStore implements the relational store contract on database/sql. Dialect
// packages supply the connection, identifier quoting and error mapping.
type SQLStore struct {
	DB       *sql.DB
	QB       squirrel.StatementBuilderType
	Quote    func(string) string
	Classify func(op string, err error) error
}

func NewSQLStore(quote func(string) string, classify func(string, error) error) *SQLStore {
	return &SQLStore{
		QB:       squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		Quote:    quote,
		Classify: classify,
	}
}

func (s *SQLStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	if s.DB == nil {
		return ErrNotConnected
	}
	return s.classify("ping", s.DB.PingContext(ctx))
}

func (s *SQLStore) Exec(ctx context.Context, query string, args ...interface{}) error {
	return s.exec(ctx, s.DB, query, args...)
}

func (s *SQLStore) Insert(ctx context.Context, table string, records []Record) error {
	return s.insert(ctx, s.DB, table, records)
}

func (s *SQLStore) DeleteAll(ctx context.Context, table string) (int64, error) {
	if s.DB == nil {
		return 0, ErrNotConnected
	}
	query, args, err := s.QB.Delete(s.Quote(table)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete for %s: %w", table, err)
	}
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, s.classify("delete from "+table, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *SQLStore) Count(ctx context.Context, table string) (int64, error) {
	if s.DB == nil {
		return 0, ErrNotConnected
	}
	query, args, err := s.QB.Select("COUNT(*)").From(s.Quote(table)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count for %s: %w", table, err)
	}
	var n int64
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, s.classify("count "+table, err)
	}
	return n, nil
}

// Column runs query and collects the first column of every row as a string.
func (s *SQLStore) Column(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	if s.DB == nil {
		return nil, ErrNotConnected
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.classify("query", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, v.String)
	}
	return out, rows.Err()
}

// Transaction runs fn inside one transaction, rolling back when fn fails.
func (s *SQLStore) Transaction(ctx context.Context, fn func(Execer) error) error {
	if s.DB == nil {
		return ErrNotConnected
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return s.classify("begin transaction", err)
	}
	if err := fn(&sqlTx{store: s, tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return s.classify("commit", err)
	}
	return nil
}

func (s *SQLStore) exec(ctx context.Context, ex sqlExecutor, query string, args ...interface{}) error {
	if ex == nil || s.DB == nil {
		return ErrNotConnected
	}
	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return s.classify("exec", err)
	}
	return nil
}

// insert issues one INSERT per record.
func (s *SQLStore) insert(ctx context.Context, ex sqlExecutor, table string, records []Record) error {
	if s.DB == nil {
		return ErrNotConnected
	}
	for i, rec := range records {
		query, args, err := BuildInsert(s.QB, s.Quote, table, rec)
		if err != nil {
			return err
		}
		if _, err := ex.ExecContext(ctx, query, args...); err != nil {
			return s.classify(fmt.Sprintf("insert into %s (row %d)", table, i+1), err)
		}
	}
	return nil
}

func (s *SQLStore) classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if s.Classify != nil {
		return s.Classify(op, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

type sqlTx struct {
	store *SQLStore
	tx    *sql.Tx
}

func (t *sqlTx) Exec(ctx context.Context, query string, args ...interface{}) error {
	return t.store.exec(ctx, t.tx, query, args...)
}

func (t *sqlTx) Insert(ctx context.Context, table string, records []Record) error {
	return t.store.insert(ctx, t.tx, table, records)
}

// BuildInsert renders a single-row INSERT with columns in sorted order.
func BuildInsert(qb squirrel.StatementBuilderType, quote func(string) string, table string, rec Record) (string, []interface{}, error) {
	cols := Columns(rec)
	quoted := make([]string, len(cols))
	values := make([]interface{}, len(cols))
	for i, c := range cols {
		quoted[i] = quote(c)
		values[i] = rec[c]
	}
	query, args, err := qb.Insert(quote(table)).Columns(quoted...).Values(values...).ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build insert for %s: %w", table, err)
	}
	return query, args, nil
}

// QuoteANSI double-quotes an identifier.
func QuoteANSI(name string) string {
	return `"` + escape(name, '"') + `"`
}

func QuoteBacktick(name string) string {
	return "`" + escape(name, '`') + "`"
}

func escape(name string, q byte) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		if name[i] == q {
			out = append(out, q)
		}
		out = append(out, name[i])
	}
	return string(out)
}
