// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"strings"

	"github.com/simple-bulletin/simple-bulletin/internal/config"
)

// Create builds the Data Source Name for the configured engine.
// The connect timeout of the pool is part of every DSN.
func Create(db *config.DB) string {
	switch db.GormEngine {
	case config.EngineMySQL:
		return MySQL(db)
	case config.EnginePostgres:
		return Postgres(db)
	default:
		return SQLite(db)
	}
}

// MySQL builds a go-sql-driver DSN.
func MySQL(db *config.DB) string {
	params := []string{
		"parseTime=true",
		fmt.Sprintf("timeout=%s", db.ConnectTimeout),
	}

	if db.Extras != "" {
		params = append(params, db.Extras)
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		db.User,
		db.Password,
		db.Host,
		db.Port,
		db.Name,
		strings.Join(params, "&"),
	)
}

// Postgres builds a libpq style keyword/value DSN understood by pgx.
func Postgres(db *config.DB) string {
	out := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s connect_timeout=%d",
		db.Host,
		db.Port,
		db.User,
		db.Password,
		db.Name,
		int(db.ConnectTimeout.Seconds()),
	)

	if db.Extras != "" {
		out += " " + db.Extras
	}

	return out
}

// PostgresURI builds a postgres URI, the form gofiber/storage/postgres expects.
func PostgresURI(db *config.DB) string {
	out := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?connect_timeout=%d",
		db.User,
		db.Password,
		db.Host,
		db.Port,
		db.Name,
		int(db.ConnectTimeout.Seconds()),
	)

	if db.Extras != "" {
		out += "&" + db.Extras
	}

	return out
}

// SQLite builds a glebarez/sqlite DSN with foreign keys and a busy timeout.
func SQLite(db *config.DB) string {
	out := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)",
		db.Path,
		db.ConnectTimeout.Milliseconds(),
	)

	if db.Extras != "" {
		out += "&" + db.Extras
	}

	return out
}
