package checks

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/moolen/troubleshooter/internal/warehouse"
)

// SQLCheck evaluates a Definition with one query
type SQLCheck struct {
	def        Definition
	query      string
	staticArgs []interface{}
}

// Build renders a definition for a dialect and table layout
func Build(def Definition, dialect warehouse.Dialect, tables warehouse.Tables) (*SQLCheck, error) {
	table := tables.Name(def.Table)
	if table == "" {
		return nil, fmt.Errorf("check %s: table %s is not configured", def.Name, def.Table)
	}
	if def.Kind == Threshold && def.Sum == "" {
		return nil, fmt.Errorf("check %s: threshold checks need a summed column", def.Name)
	}

	var (
		where []string
		args  []interface{}
		n     = 1
	)
	for _, f := range def.Filters {
		if len(f.Values) == 1 {
			where = append(where, f.Column+" = "+dialect.Placeholder(n))
			args = append(args, f.Values[0])
			n++
			continue
		}
		clause, inArgs, next := dialect.InList(f.Column, n, f.Values)
		where = append(where, clause)
		args = append(args, inArgs...)
		n = next
	}
	if def.ChannelColumn != "" {
		where = append(where, def.ChannelColumn+" = "+dialect.Placeholder(n))
		n++
	}
	where = append(where, "partition_id = "+dialect.Placeholder(n))

	var selectList string
	switch def.Kind {
	case Threshold:
		selectList = strings.Join(append([]string{"SUM(" + def.Sum + ")"}, def.Extra...), ", ")
	case Existence:
		selectList = "partition_id"
	default:
		return nil, fmt.Errorf("check %s: unknown kind %d", def.Name, def.Kind)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", selectList, table, strings.Join(where, " AND "))
	return &SQLCheck{def: def, query: query, staticArgs: args}, nil
}

// Name returns the check name
func (c *SQLCheck) Name() string {
	return c.def.Name
}

// Query returns the rendered SQL
func (c *SQLCheck) Query() string {
	return c.query
}

// Evaluate runs the query for a partition and channel
func (c *SQLCheck) Evaluate(ctx context.Context, q warehouse.Querier, partitionID, channel string) (bool, error) {
	args := make([]interface{}, 0, len(c.staticArgs)+2)
	args = append(args, c.staticArgs...)
	if c.def.ChannelColumn != "" {
		args = append(args, channel)
	}
	args = append(args, partitionID)

	if c.def.Kind == Existence {
		return c.exists(ctx, q, args)
	}
	return c.exceeds(ctx, q, args)
}

func (c *SQLCheck) exists(ctx context.Context, q warehouse.Querier, args []interface{}) (bool, error) {
	rows, err := q.QueryContext(ctx, c.query, args...)
	if err != nil {
		return false, fmt.Errorf("%s: %w", c.def.Name, err)
	}
	defer rows.Close()

	found := rows.Next()
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("%s: %w", c.def.Name, err)
	}
	return found, nil
}

func (c *SQLCheck) exceeds(ctx context.Context, q warehouse.Querier, args []interface{}) (bool, error) {
	dest := make([]interface{}, 1+len(c.def.Extra))
	var sum sql.NullFloat64
	dest[0] = &sum
	for i := range c.def.Extra {
		dest[i+1] = new(sql.NullFloat64)
	}

	if err := q.QueryRowContext(ctx, c.query, args...).Scan(dest...); err != nil {
		return false, fmt.Errorf("%s: %w", c.def.Name, err)
	}

	// No matching rows means a NULL sum, which is not evidence of a fault.
	if !sum.Valid {
		return false, nil
	}
	value := sum.Float64
	if c.def.Truncate {
		value = math.Trunc(value)
	}
	return value > c.def.Threshold, nil
}
