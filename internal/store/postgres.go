package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"

	"github.com/travelplaner/travelplaner/internal/db"
	"github.com/travelplaner/travelplaner/internal/failure"
	"github.com/travelplaner/travelplaner/internal/model"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// PostgresStore implements Store on a single PostGIS connection.
type PostgresStore struct {
	conn db.Conn
}

// NewPostgres opens a connection to connString. The caller must Close it.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	conn, err := db.Connect(ctx, connString)
	if err != nil {
		return nil, failure.Wrap(failure.KindDatabase, eris.Wrap(err, "postgres: open"))
	}
	return &PostgresStore{conn: conn}, nil
}

// NewPostgresFromConn wraps an existing connection.
func NewPostgresFromConn(conn db.Conn) *PostgresStore {
	return &PostgresStore{conn: conn}
}

func postgresCreateTable(t db.Table) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id SERIAL PRIMARY KEY,
	place VARCHAR(255) NOT NULL UNIQUE,
	geom GEOMETRY(Point, 4326),
	opening_hours TEXT,
	full_address TEXT,
	street_address VARCHAR(255),
	street_name VARCHAR(255),
	street_number VARCHAR(50),
	postal_code VARCHAR(20),
	city_municipality VARCHAR(255),
	region VARCHAR(255),
	country VARCHAR(255),
	place_id VARCHAR(255),
	location_type VARCHAR(255),
	description VARCHAR(255),
	url TEXT
)`, t.Sanitize())
}

func postgresInsert(t db.Table) string {
	placeholders := make([]string, len(attributeColumns))
	for i := range attributeColumns {
		placeholders[i] = fmt.Sprintf("$%d", i+5)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (place, geom, %s) VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), $4), %s)",
		t.Sanitize(), db.QuoteAndJoin(attributeColumns), strings.Join(placeholders, ", "),
	)
}

func postgresList(t db.Table) string {
	return fmt.Sprintf(`SELECT id, place, COALESCE(ST_X(geom), 0), COALESCE(ST_Y(geom), 0),
	street_address, city_municipality, country, location_type
FROM %s ORDER BY id LIMIT $1`, t.Sanitize())
}

// EnsureTable creates the table if it does not exist.
func (s *PostgresStore) EnsureTable(ctx context.Context, table string) error {
	t, err := db.ParseTable(table)
	if err != nil {
		return failure.Wrap(failure.KindDatabase, eris.Wrap(err, "postgres: ensure table"))
	}
	if _, err := s.conn.Exec(ctx, postgresCreateTable(t)); err != nil {
		return failure.Wrap(failure.KindDatabase, eris.Wrapf(err, "postgres: create table %s", t))
	}
	return nil
}

// Save ensures the table and inserts row inside one transaction. Every
// failure rolls the transaction back, leaving the table untouched.
func (s *PostgresStore) Save(ctx context.Context, table string, row *model.LocationRow) error {
	t, err := db.ParseTable(table)
	if err != nil {
		return failure.Wrap(failure.KindDatabase, eris.Wrap(err, "postgres: save"))
	}
	pt, err := row.Coordinates.Point()
	if err != nil {
		return failure.Wrap(failure.KindParse, eris.Wrap(err, "postgres: save"))
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return failure.Wrap(failure.KindDatabase, eris.Wrap(err, "postgres: begin tx"))
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, postgresCreateTable(t)); err != nil {
		return failure.Wrap(failure.KindDatabase, eris.Wrapf(err, "postgres: create table %s", t))
	}

	args := append([]any{row.Place, pt.X(), pt.Y(), pt.SRID()}, attributeValues(row)...)
	if _, err := tx.Exec(ctx, postgresInsert(t), args...); err != nil {
		return postgresError(err, row.Place)
	}

	if err := tx.Commit(ctx); err != nil {
		return failure.Wrap(failure.KindDatabase, eris.Wrap(err, "postgres: commit"))
	}
	return nil
}

// List returns up to limit rows ordered by id.
func (s *PostgresStore) List(ctx context.Context, table string, limit int) ([]model.StoredLocation, error) {
	t, err := db.ParseTable(table)
	if err != nil {
		return nil, failure.Wrap(failure.KindDatabase, eris.Wrap(err, "postgres: list"))
	}

	rows, err := s.conn.Query(ctx, postgresList(t), limitOrDefault(limit))
	if err != nil {
		return nil, failure.Wrap(failure.KindDatabase, eris.Wrapf(err, "postgres: list %s", t))
	}
	defer rows.Close()

	var out []model.StoredLocation
	for rows.Next() {
		var l model.StoredLocation
		if err := rows.Scan(&l.ID, &l.Place, &l.Longitude, &l.Latitude,
			&l.StreetAddress, &l.CityMunicipality, &l.Country, &l.LocationType); err != nil {
			return nil, failure.Wrap(failure.KindDatabase, eris.Wrap(err, "postgres: scan location"))
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, failure.Wrap(failure.KindDatabase, eris.Wrap(err, "postgres: iterate locations"))
	}
	return out, nil
}

// Close closes the underlying connection.
func (s *PostgresStore) Close() error {
	return s.conn.Close(context.Background())
}

func postgresError(err error, place string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return failure.Wrap(failure.KindDatabase,
			eris.Wrapf(failure.ErrDuplicatePlace, "postgres: insert %q (%s)", place, pgErr.ConstraintName))
	}
	return failure.Wrap(failure.KindDatabase, eris.Wrap(err, "postgres: insert location"))
}
