package db

import (
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// identPattern restricts table and schema names to plain SQL identifiers
// that fit in Postgres' 63 byte limit.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// Table is a validated, optionally schema-qualified table name.
type Table struct {
	Schema string
	Name   string
}

// ParseTable validates name ("table" or "schema.table").
func ParseTable(name string) (Table, error) {
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return Table{}, eris.Errorf("db: invalid table name %q: too many dots", name)
	}
	for _, p := range parts {
		if !identPattern.MatchString(p) {
			return Table{}, eris.Errorf("db: invalid table name %q: use letters, digits and underscores", name)
		}
	}

	if len(parts) == 2 {
		return Table{Schema: parts[0], Name: parts[1]}, nil
	}
	return Table{Name: parts[0]}, nil
}

// Identifier returns the table as a pgx identifier.
func (t Table) Identifier() pgx.Identifier {
	if t.Schema != "" {
		return pgx.Identifier{t.Schema, t.Name}
	}
	return pgx.Identifier{t.Name}
}

// Sanitize returns the quoted identifier for use in SQL text.
func (t Table) Sanitize() string {
	return t.Identifier().Sanitize()
}

// String returns the unquoted dotted name.
func (t Table) String() string {
	if t.Schema != "" {
		return t.Schema + "." + t.Name
	}
	return t.Name
}

// QuoteAndJoin quotes each column name and joins with commas.
func QuoteAndJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
