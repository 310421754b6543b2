package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/xshopai/seeder/internal/database/common"
)

// Error numbers treated as authorization failures.
var forbiddenCodes = map[uint16]bool{
	1044: true, // ER_DBACCESS_DENIED_ERROR
	1045: true, // ER_ACCESS_DENIED_ERROR
	1142: true, // ER_TABLEACCESS_DENIED_ERROR
	1227: true, // ER_SPECIFIC_ACCESS_DENIED_ERROR
}

var sslModes = strings.NewReplacer(
	"ssl-mode=REQUIRED", "tls=skip-verify",
	"ssl-mode=DISABLED", "tls=false",
	"ssl-mode=VERIFY_CA", "tls=true",
	"ssl-mode=VERIFY_IDENTITY", "tls=true",
	"sslmode=require", "tls=skip-verify",
	"sslmode=disable", "tls=false",
	"sslmode=verify-ca", "tls=true",
	"sslmode=verify-full", "tls=true",
)

type Adapter struct {
	*common.SQLStore
	database string
}

func New() *Adapter {
	return &Adapter{SQLStore: common.NewSQLStore(common.QuoteBacktick, classify)}
}

// DSN converts a mysql:// URL into a go-sql-driver DSN. Anything else is
// assumed to already be a DSN. parseTime is always enabled.
func DSN(url string) string {
	dsn := url
	if strings.HasPrefix(url, "mysql://") {
		dsn = strings.TrimPrefix(url, "mysql://")
		if at := strings.LastIndex(dsn, "@"); at > 0 {
			credentials, remainder := dsn[:at], dsn[at+1:]
			hostPort, dbAndParams := remainder, ""
			if slash := strings.Index(remainder, "/"); slash >= 0 {
				hostPort, dbAndParams = remainder[:slash], remainder[slash+1:]
			}
			dsn = fmt.Sprintf("%s@tcp(%s)/%s", credentials, hostPort, sslModes.Replace(dbAndParams))
		}
	}
	if !strings.Contains(dsn, "parseTime=") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "parseTime=true"
	}
	return dsn
}

func (m *Adapter) Connect(ctx context.Context, url string) error {
	dsn := DSN(url)
	if cfg, err := mysql.ParseDSN(dsn); err == nil {
		m.database = cfg.DBName
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(0)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(3 * time.Minute)

	m.DB = db
	return nil
}

func (m *Adapter) Database() string { return m.database }

func classify(op string, err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && forbiddenCodes[myErr.Number] {
		return common.Forbidden(op, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
