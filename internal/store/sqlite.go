package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/travelplaner/travelplaner/internal/db"
	"github.com/travelplaner/travelplaner/internal/failure"
	"github.com/travelplaner/travelplaner/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Points are kept as
// EWKB blobs so rows carry the same geometry as the PostGIS table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, failure.Wrap(failure.KindDatabase, eris.Wrap(err, "sqlite: open"))
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, failure.Wrap(failure.KindDatabase, eris.Wrapf(err, "sqlite: exec %s", pragma))
		}
	}
	return &SQLiteStore{db: sqlDB}, nil
}

// sqliteTable validates name. Schema-qualified names would address an
// attached database in SQLite, so they are rejected.
func sqliteTable(name string) (db.Table, error) {
	t, err := db.ParseTable(name)
	if err != nil {
		return db.Table{}, err
	}
	if t.Schema != "" {
		return db.Table{}, eris.Errorf("sqlite: schema-qualified table %q is not supported", name)
	}
	return t, nil
}

func sqliteCreateTable(t db.Table) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	place TEXT NOT NULL UNIQUE,
	geom BLOB,
	opening_hours TEXT,
	full_address TEXT,
	street_address TEXT,
	street_name TEXT,
	street_number TEXT,
	postal_code TEXT,
	city_municipality TEXT,
	region TEXT,
	country TEXT,
	place_id TEXT,
	location_type TEXT,
	description TEXT,
	url TEXT
)`, t.Sanitize())
}

func sqliteInsert(t db.Table) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(attributeColumns)+2), ", ")
	return fmt.Sprintf("INSERT INTO %s (place, geom, %s) VALUES (%s)",
		t.Sanitize(), db.QuoteAndJoin(attributeColumns), placeholders)
}

// EnsureTable creates the table if it does not exist.
func (s *SQLiteStore) EnsureTable(ctx context.Context, table string) error {
	t, err := sqliteTable(table)
	if err != nil {
		return failure.Wrap(failure.KindDatabase, eris.Wrap(err, "sqlite: ensure table"))
	}
	if _, err := s.db.ExecContext(ctx, sqliteCreateTable(t)); err != nil {
		return failure.Wrap(failure.KindDatabase, eris.Wrapf(err, "sqlite: create table %s", t))
	}
	return nil
}

// Save ensures the table and inserts row inside one transaction.
func (s *SQLiteStore) Save(ctx context.Context, table string, row *model.LocationRow) error {
	t, err := sqliteTable(table)
	if err != nil {
		return failure.Wrap(failure.KindDatabase, eris.Wrap(err, "sqlite: save"))
	}
	pt, err := row.Coordinates.Point()
	if err != nil {
		return failure.Wrap(failure.KindParse, eris.Wrap(err, "sqlite: save"))
	}
	blob, err := ewkb.Marshal(pt, ewkb.NDR)
	if err != nil {
		return failure.Wrap(failure.KindDatabase, eris.Wrap(err, "sqlite: encode point"))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return failure.Wrap(failure.KindDatabase, eris.Wrap(err, "sqlite: begin tx"))
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, sqliteCreateTable(t)); err != nil {
		return failure.Wrap(failure.KindDatabase, eris.Wrapf(err, "sqlite: create table %s", t))
	}

	args := append([]any{row.Place, blob}, attributeValues(row)...)
	if _, err := tx.ExecContext(ctx, sqliteInsert(t), args...); err != nil {
		return sqliteError(err, row.Place)
	}

	if err := tx.Commit(); err != nil {
		return failure.Wrap(failure.KindDatabase, eris.Wrap(err, "sqlite: commit"))
	}
	return nil
}

// List returns up to limit rows ordered by id.
func (s *SQLiteStore) List(ctx context.Context, table string, limit int) ([]model.StoredLocation, error) {
	t, err := sqliteTable(table)
	if err != nil {
		return nil, failure.Wrap(failure.KindDatabase, eris.Wrap(err, "sqlite: list"))
	}

	q := fmt.Sprintf(`SELECT id, place, geom, street_address, city_municipality, country, location_type
FROM %s ORDER BY id LIMIT ?`, t.Sanitize())
	rows, err := s.db.QueryContext(ctx, q, limitOrDefault(limit))
	if err != nil {
		return nil, failure.Wrap(failure.KindDatabase, eris.Wrapf(err, "sqlite: list %s", t))
	}
	defer rows.Close() //nolint:errcheck

	var out []model.StoredLocation
	for rows.Next() {
		var (
			l    model.StoredLocation
			blob []byte
		)
		if err := rows.Scan(&l.ID, &l.Place, &blob,
			&l.StreetAddress, &l.CityMunicipality, &l.Country, &l.LocationType); err != nil {
			return nil, failure.Wrap(failure.KindDatabase, eris.Wrap(err, "sqlite: scan location"))
		}
		if len(blob) > 0 {
			g, err := ewkb.Unmarshal(blob)
			if err != nil {
				return nil, failure.Wrap(failure.KindDatabase, eris.Wrapf(err, "sqlite: decode geom of %q", l.Place))
			}
			if pt, ok := g.(*geom.Point); ok {
				l.Longitude, l.Latitude = pt.X(), pt.Y()
			}
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, failure.Wrap(failure.KindDatabase, eris.Wrap(err, "sqlite: iterate locations"))
	}
	return out, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func sqliteError(err error, place string) error {
	var se *sqlite.Error
	if errors.As(err, &se) && isUniqueViolation(se) {
		return failure.Wrap(failure.KindDatabase,
			eris.Wrapf(failure.ErrDuplicatePlace, "sqlite: insert %q", place))
	}
	return failure.Wrap(failure.KindDatabase, eris.Wrap(err, "sqlite: insert location"))
}

func isUniqueViolation(se *sqlite.Error) bool {
	if se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	// Without extended result codes only the primary code is reported.
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE")
}
