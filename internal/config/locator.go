package config

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/xshopai/seeder/internal/database"
)

var defaultPorts = map[string]int{
	database.KindMongoDB:    27017,
	database.KindPostgreSQL: 5432,
	database.KindMySQL:      3306,
}

// Locator is the printable part of a connection string. Credentials other
// than the user name are never kept.
type Locator struct {
	Host     string
	Port     int
	Database string
	User     string
}

// NormalizeURL rewrites driver-qualified schemes left over from other
// tooling into the plain form the adapters expect.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, prefix := range []string{"mysql+pymysql://", "mysql+mysqldb://", "mysql+aiomysql://"} {
		if strings.HasPrefix(raw, prefix) {
			return "mysql://" + strings.TrimPrefix(raw, prefix)
		}
	}
	if strings.HasPrefix(raw, "postgresql+asyncpg://") || strings.HasPrefix(raw, "postgresql+psycopg2://") {
		return "postgresql://" + raw[strings.Index(raw, "://")+3:]
	}
	return raw
}

// EnsureMongoDatabase inserts db as the URL path when the URL names none.
func EnsureMongoDatabase(raw, db string) string {
	scheme := strings.Index(raw, "://")
	if scheme < 0 {
		return raw
	}
	rest := raw[scheme+3:]
	query := ""
	if q := strings.Index(rest, "?"); q >= 0 {
		rest, query = rest[:q], rest[q:]
	}
	hosts, path := rest, ""
	if slash := strings.Index(rest, "/"); slash >= 0 {
		hosts, path = rest[:slash], rest[slash+1:]
	}
	if path != "" {
		return raw
	}
	return raw[:scheme+3] + hosts + "/" + db + query
}

// ParseLocator extracts host, port, database and user from a URL or a
// go-sql-driver DSN. Unparseable input yields a Locator with only Host set
// to "unknown".
func ParseLocator(kind, raw string) Locator {
	kind = database.NormalizeKind(kind)
	raw = NormalizeURL(raw)

	if kind == database.KindSQLite {
		path := strings.TrimPrefix(raw, "sqlite://")
		if idx := strings.Index(path, "?"); idx >= 0 {
			path = path[:idx]
		}
		return Locator{Host: "local", Database: path}
	}

	if kind == database.KindMySQL && !strings.Contains(raw, "://") {
		cfg, err := mysql.ParseDSN(raw)
		if err != nil {
			return Locator{Host: "unknown"}
		}
		loc := Locator{Database: cfg.DBName, User: cfg.User}
		loc.Host, loc.Port = splitHostPort(cfg.Addr, defaultPorts[kind])
		return loc
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Locator{Host: "unknown"}
	}
	loc := Locator{Database: strings.TrimPrefix(u.Path, "/"), User: u.User.Username()}
	// Replica-set URLs list several hosts; the first one is shown.
	host := strings.Split(u.Host, ",")[0]
	loc.Host, loc.Port = splitHostPort(host, defaultPorts[kind])
	return loc
}

func splitHostPort(hostport string, fallback int) (string, int) {
	idx := strings.LastIndex(hostport, ":")
	if idx < 0 || strings.HasSuffix(hostport, "]") {
		return hostport, fallback
	}
	port, err := strconv.Atoi(hostport[idx+1:])
	if err != nil {
		return hostport, fallback
	}
	return hostport[:idx], port
}
