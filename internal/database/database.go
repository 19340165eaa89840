package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/jackc/pgx/v5/stdlib"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"lexiapi/internal/config"
)

const pingTimeout = 5 * time.Second

var (
	sqlOpen = sql.Open

	errIncompleteConfig = errors.New("invalid database config: host, port, user, and name are required")
)

// BuildPostgresDSN renders c as a postgres:// URL, escaping credentials.
func BuildPostgresDSN(c config.DatabaseConfig) (string, error) {
	if c.Host == "" || c.Port == "" || c.User == "" || c.Name == "" {
		return "", errIncompleteConfig
	}

	user := url.User(c.User)
	if c.Password != "" {
		user = url.UserPassword(c.User, c.Password)
	}
	dsn := url.URL{
		Scheme: "postgres",
		User:   user,
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   c.Name,
	}
	if c.SSLMode != "" {
		dsn.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return dsn.String(), nil
}

// NewPostgres opens the document record database through the otelsql-wrapped
// pgx driver and pings it before returning.
func NewPostgres(ctx context.Context, c config.DatabaseConfig, log *slog.Logger) (*sql.DB, error) {
	dsn, err := BuildPostgresDSN(c)
	if err != nil {
		return nil, err
	}

	driverName, err := otelsql.Register("pgx",
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithSQLCommenter(true),
	)
	if err != nil {
		return nil, fmt.Errorf("register otelsql driver: %w", err)
	}

	db, err := sqlOpen(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	applyPool(db, c)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	if log != nil {
		log.Info("database_connected",
			slog.String("component", "database"),
			slog.String("db_host", c.Host),
			slog.String("db_name", c.Name),
			slog.Int("max_open_conns", c.MaxOpenConns),
		)
	}
	return db, nil
}

// applyPool sets pool limits; zero values keep database/sql defaults.
func applyPool(db *sql.DB, c config.DatabaseConfig) {
	if c.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.ConnMaxLifetimeSec > 0 {
		db.SetConnMaxLifetime(time.Duration(c.ConnMaxLifetimeSec) * time.Second)
	}
}
