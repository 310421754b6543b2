package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/xshopai/seeder/internal/database/common"
)

const insufficientPrivilege = "42501"

type Adapter struct {
	pool     *pgxpool.Pool
	qb       squirrel.StatementBuilderType
	database string
}

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func New() *Adapter {
	return &Adapter{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (p *Adapter) Connect(ctx context.Context, url string) error {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return fmt.Errorf("failed to parse connection URL: %w", err)
	}

	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	config.MaxConns = 2
	config.MinConns = 0
	config.MaxConnLifetime = 15 * time.Minute
	config.MaxConnIdleTime = 3 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	p.pool = pool
	p.database = config.ConnConfig.Database
	return nil
}

func (p *Adapter) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *Adapter) Ping(ctx context.Context) error {
	if p.pool == nil {
		return common.ErrNotConnected
	}
	return classify("ping", p.pool.Ping(ctx))
}

func (p *Adapter) Database() string { return p.database }

func (p *Adapter) Exec(ctx context.Context, query string, args ...interface{}) error {
	if p.pool == nil {
		return common.ErrNotConnected
	}
	return p.exec(ctx, p.pool, query, args...)
}

func (p *Adapter) Insert(ctx context.Context, table string, records []common.Record) error {
	if p.pool == nil {
		return common.ErrNotConnected
	}
	return p.insert(ctx, p.pool, table, records)
}

func (p *Adapter) DeleteAll(ctx context.Context, table string) (int64, error) {
	if p.pool == nil {
		return 0, common.ErrNotConnected
	}
	query, args, err := p.qb.Delete(pq.QuoteIdentifier(table)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete for %s: %w", table, err)
	}
	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, classify("delete from "+table, err)
	}
	return tag.RowsAffected(), nil
}

func (p *Adapter) Count(ctx context.Context, table string) (int64, error) {
	if p.pool == nil {
		return 0, common.ErrNotConnected
	}
	query, args, err := p.qb.Select("COUNT(*)").From(pq.QuoteIdentifier(table)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count for %s: %w", table, err)
	}
	var n int64
	if err := p.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, classify("count "+table, err)
	}
	return n, nil
}

func (p *Adapter) Column(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	if p.pool == nil {
		return nil, common.ErrNotConnected
	}
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("query", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v *string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if v != nil {
			out = append(out, *v)
		} else {
			out = append(out, "")
		}
	}
	return out, rows.Err()
}

func (p *Adapter) Transaction(ctx context.Context, fn func(common.Execer) error) error {
	if p.pool == nil {
		return common.ErrNotConnected
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return classify("begin transaction", err)
	}
	if err := fn(&pgTx{adapter: p, tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return classify("commit", err)
	}
	return nil
}

func (p *Adapter) exec(ctx context.Context, ex pgExecutor, query string, args ...interface{}) error {
	if _, err := ex.Exec(ctx, query, args...); err != nil {
		return classify("exec", err)
	}
	return nil
}

func (p *Adapter) insert(ctx context.Context, ex pgExecutor, table string, records []common.Record) error {
	for i, rec := range records {
		query, args, err := common.BuildInsert(p.qb, pq.QuoteIdentifier, table, rec)
		if err != nil {
			return err
		}
		if _, err := ex.Exec(ctx, query, args...); err != nil {
			return classify(fmt.Sprintf("insert into %s (row %d)", table, i+1), err)
		}
	}
	return nil
}

type pgTx struct {
	adapter *Adapter
	tx      pgx.Tx
}

func (t *pgTx) Exec(ctx context.Context, query string, args ...interface{}) error {
	return t.adapter.exec(ctx, t.tx, query, args...)
}

func (t *pgTx) Insert(ctx context.Context, table string, records []common.Record) error {
	return t.adapter.insert(ctx, t.tx, table, records)
}

func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == insufficientPrivilege {
		return common.Forbidden(op, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
