package warehouse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// Dialect renders the driver-specific parts of a query
type Dialect interface {
	// Driver is the database/sql driver name
	Driver() string
	// Placeholder returns the n-th (1-based) bind parameter
	Placeholder(n int) string
	// InList renders "column IN values" starting at bind parameter n and
	// returns the clause, its args and the next free parameter index
	InList(column string, n int, values []string) (string, []interface{}, int)
}

// DialectFor returns the dialect for a driver name
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "postgres":
		return Postgres{}, nil
	case "sqlite":
		return SQLite{}, nil
	default:
		return nil, fmt.Errorf("unsupported warehouse driver %q", driver)
	}
}

// Postgres uses $n parameters and binds lists as arrays
type Postgres struct{}

func (Postgres) Driver() string { return "postgres" }

func (Postgres) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (p Postgres) InList(column string, n int, values []string) (string, []interface{}, int) {
	return column + " = ANY(" + p.Placeholder(n) + ")", []interface{}{pq.Array(values)}, n + 1
}

// SQLite uses ? parameters and expands lists
type SQLite struct{}

func (SQLite) Driver() string { return "sqlite" }

func (SQLite) Placeholder(int) string { return "?" }

func (SQLite) InList(column string, n int, values []string) (string, []interface{}, int) {
	marks := make([]string, len(values))
	args := make([]interface{}, len(values))
	for i, v := range values {
		marks[i] = "?"
		args[i] = v
	}
	return column + " IN (" + strings.Join(marks, ", ") + ")", args, n + len(values)
}
