// Package db provides shared helpers for pgx connections and safely quoted
// table identifiers.
package db

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"
)

// Conn is the subset of *pgx.Conn used by the store. pgxmock connections
// satisfy it as well.
type Conn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close(ctx context.Context) error
}

// ConnParams are the discrete connection settings of a Postgres database.
type ConnParams struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// URL renders p as a postgres:// connection string. User and password are
// escaped, so any characters are allowed.
func (p ConnParams) URL() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   p.Host,
		Path:   "/" + p.Name,
	}
	if p.Port > 0 {
		u.Host = net.JoinHostPort(p.Host, fmt.Sprint(p.Port))
	}
	if p.User != "" {
		if p.Password != "" {
			u.User = url.UserPassword(p.User, p.Password)
		} else {
			u.User = url.User(p.User)
		}
	}
	if p.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {p.SSLMode}}.Encode()
	}
	return u.String()
}

// Connect opens a single connection. Callers own it and must Close it.
func Connect(ctx context.Context, connString string) (*pgx.Conn, error) {
	cfg, err := pgx.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "db: parse config")
	}

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "db: connect")
	}
	return conn, nil
}
