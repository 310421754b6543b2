package database

import (
	"fmt"
	"strings"

	"github.com/xshopai/seeder/internal/database/mongodb"
	"github.com/xshopai/seeder/internal/database/mysql"
	"github.com/xshopai/seeder/internal/database/postgres"
	"github.com/xshopai/seeder/internal/database/sqlite"
)

const (
	KindMongoDB    = "mongodb"
	KindPostgreSQL = "postgresql"
	KindMySQL      = "mysql"
	KindSQLite     = "sqlite"
)

// NormalizeKind maps aliases onto the canonical kind names.
func NormalizeKind(kind string) string {
	switch strings.ToLower(kind) {
	case "mongodb", "mongo":
		return KindMongoDB
	case "postgresql", "postgres":
		return KindPostgreSQL
	case "mysql":
		return KindMySQL
	case "sqlite", "sqlite3":
		return KindSQLite
	default:
		return ""
	}
}

func IsRelational(kind string) bool {
	k := NormalizeKind(kind)
	return k == KindPostgreSQL || k == KindMySQL || k == KindSQLite
}

func NewStore(kind string) (Store, error) {
	switch NormalizeKind(kind) {
	case KindMongoDB:
		return mongodb.New(), nil
	case KindPostgreSQL:
		return postgres.New(), nil
	case KindMySQL:
		return mysql.New(), nil
	case KindSQLite:
		return sqlite.New(), nil
	default:
		return nil, fmt.Errorf("unsupported database kind: %s", kind)
	}
}
