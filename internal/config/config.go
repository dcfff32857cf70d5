// Package config resolves database connection aliases from environment
// variables. Each alias is a prefix: <ALIAS>_TYPE names the engine, and
// <ALIAS>_HOST / _PORT / _USERNAME / _PASSWORD / _DATABASE (or _DSN for
// Oracle) supply the connection parameters.
package config

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"dbscout/internal/dialect"
)

// LegacyDefaultAlias is the historical alias that predates the <ALIAS>_TYPE
// convention. When its _TYPE variable is unset it resolves to Oracle.
const LegacyDefaultAlias = "DWH"

var defaultPorts = map[dialect.Kind]string{
	dialect.Oracle:    "1521",
	dialect.MySQL:     "3306",
	dialect.Postgres:  "5432",
	dialect.SQLServer: "1433",
}

// Load reads a .env file into the process environment. A missing file is
// not an error; existing environment variables are never overridden.
func Load(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// DialectFor resolves the engine kind configured for an alias.
func DialectFor(alias string) (dialect.Kind, error) {
	alias = normalizeAlias(alias)
	raw := os.Getenv(alias + "_TYPE")
	if raw == "" {
		if alias == LegacyDefaultAlias {
			return dialect.Oracle, nil
		}
		return "", fmt.Errorf("%s_TYPE is not set (expected one of oracle, mysql, postgresql, sqlserver)", alias)
	}
	kind, err := dialect.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%s_TYPE: %w", alias, err)
	}
	return kind, nil
}

// DSN builds the driver connection string for an alias.
func DSN(alias string, kind dialect.Kind) (string, error) {
	alias = normalizeAlias(alias)
	switch kind {
	case dialect.Oracle:
		return oracleDSN(alias)
	case dialect.MySQL:
		return mysqlDSN(alias)
	case dialect.Postgres:
		return postgresDSN(alias)
	case dialect.SQLServer:
		return sqlserverDSN(alias)
	}
	return "", fmt.Errorf("no DSN builder for dialect %q", kind)
}

func oracleDSN(alias string) (string, error) {
	user, pass, err := credentials(alias)
	if err != nil {
		return "", err
	}
	// Either <ALIAS>_DSN carries "host:port/service" directly, or the
	// address is assembled from _HOST/_PORT/_DATABASE.
	addr := envVar(alias, "DSN")
	if addr == "" {
		host := envVar(alias, "HOST")
		service := envVar(alias, "DATABASE")
		if host == "" || service == "" {
			return "", missingVars(alias, "DSN (or HOST and DATABASE)")
		}
		addr = host + ":" + portFor(alias, dialect.Oracle) + "/" + service
	}
	return fmt.Sprintf("oracle://%s@%s", url.UserPassword(user, pass).String(), addr), nil
}

func mysqlDSN(alias string) (string, error) {
	user, pass, err := credentials(alias)
	if err != nil {
		return "", err
	}
	host := envVar(alias, "HOST")
	database := envVar(alias, "DATABASE")
	if host == "" || database == "" {
		return "", missingVars(alias, "HOST", "DATABASE")
	}
	// parseTime makes DATETIME columns scan as time.Time instead of []byte.
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", user, pass, host, portFor(alias, dialect.MySQL), database), nil
}

func postgresDSN(alias string) (string, error) {
	user, pass, err := credentials(alias)
	if err != nil {
		return "", err
	}
	host := envVar(alias, "HOST")
	database := envVar(alias, "DATABASE")
	if host == "" || database == "" {
		return "", missingVars(alias, "HOST", "DATABASE")
	}
	sslmode := envVar(alias, "SSLMODE")
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=%s",
		url.UserPassword(user, pass).String(), host, portFor(alias, dialect.Postgres), database, sslmode), nil
}

func sqlserverDSN(alias string) (string, error) {
	user, pass, err := credentials(alias)
	if err != nil {
		return "", err
	}
	host := envVar(alias, "HOST")
	database := envVar(alias, "DATABASE")
	if host == "" || database == "" {
		return "", missingVars(alias, "HOST", "DATABASE")
	}
	query := url.Values{}
	query.Set("database", database)
	u := url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(user, pass),
		Host:     host + ":" + portFor(alias, dialect.SQLServer),
		RawQuery: query.Encode(),
	}
	return u.String(), nil
}

// Connection describes one configured alias.
type Connection struct {
	Alias string
	Kind  dialect.Kind
}

// ListConnections returns every alias with a valid engine marker, sorted by
// alias. Aliases with an unsupported _TYPE value are skipped. The legacy
// default alias is included when its connection variables exist even if its
// _TYPE is unset.
func ListConnections() []Connection {
	seen := map[string]dialect.Kind{}
	for _, entry := range os.Environ() {
		name, _, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasSuffix(name, "_TYPE") {
			continue
		}
		alias := strings.TrimSuffix(name, "_TYPE")
		if alias == "" {
			continue
		}
		kind, err := DialectFor(alias)
		if err != nil {
			continue
		}
		seen[alias] = kind
	}
	if _, ok := seen[LegacyDefaultAlias]; !ok {
		if envVar(LegacyDefaultAlias, "DSN") != "" || envVar(LegacyDefaultAlias, "HOST") != "" {
			seen[LegacyDefaultAlias] = dialect.Oracle
		}
	}

	conns := make([]Connection, 0, len(seen))
	for alias, kind := range seen {
		conns = append(conns, Connection{Alias: alias, Kind: kind})
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].Alias < conns[j].Alias })
	return conns
}

func normalizeAlias(alias string) string {
	return strings.ToUpper(strings.TrimSpace(alias))
}

func envVar(alias, key string) string {
	return os.Getenv(alias + "_" + key)
}

func portFor(alias string, kind dialect.Kind) string {
	if port := envVar(alias, "PORT"); port != "" {
		return port
	}
	return defaultPorts[kind]
}

func credentials(alias string) (user, pass string, err error) {
	user = envVar(alias, "USERNAME")
	pass = envVar(alias, "PASSWORD")
	if user == "" {
		return "", "", missingVars(alias, "USERNAME")
	}
	return user, pass, nil
}

func missingVars(alias string, names ...string) error {
	prefixed := make([]string, len(names))
	for i, n := range names {
		prefixed[i] = alias + "_" + n
	}
	return fmt.Errorf("connection %s is missing required variables: %s", alias, strings.Join(prefixed, ", "))
}
