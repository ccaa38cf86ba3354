package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// Choice fields, in the order a user narrows a job down
const (
	FieldSerialNumber = "serial_number"
	FieldJobNumber    = "job_number"
	FieldJobStart     = "job_start"
)

// nullChoice is shown for NULL metadata values
const nullChoice = "NaN"

// Fleet reads the fleet metadata view
type Fleet struct {
	q       Querier
	dialect Dialect
	table   string
}

// NewFleet creates a fleet metadata accessor
func NewFleet(q Querier, dialect Dialect, tables Tables) *Fleet {
	return &Fleet{q: q, dialect: dialect, table: tables.Name(TableFleetMetadata)}
}

// Choices returns the distinct sorted values of field. job_number is narrowed
// by serial number and job_start by job number only. Unknown fields and a
// missing parent yield an empty list.
func (f *Fleet) Choices(ctx context.Context, field, parent string) ([]string, error) {
	var (
		query string
		args  []interface{}
	)
	switch field {
	case FieldSerialNumber:
		query = fmt.Sprintf("SELECT DISTINCT serial_number FROM %s", f.table)
	case FieldJobNumber:
		if parent == "" {
			return []string{}, nil
		}
		query = fmt.Sprintf("SELECT DISTINCT job_number FROM %s WHERE serial_number = %s", f.table, f.dialect.Placeholder(1))
		args = append(args, parent)
	case FieldJobStart:
		if parent == "" {
			return []string{}, nil
		}
		query = fmt.Sprintf("SELECT DISTINCT CAST(job_start AS CHAR(26)) FROM %s WHERE job_number = %s", f.table, f.dialect.Placeholder(1))
		args = append(args, parent)
	default:
		return []string{}, nil
	}

	rows, err := f.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s choices: %w", field, err)
	}
	defer rows.Close()

	seen := map[string]struct{}{}
	choices := []string{}
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan %s choice: %w", field, err)
		}
		value := nullChoice
		if v.Valid {
			value = v.String
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		choices = append(choices, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s choices: %w", field, err)
	}

	sort.Strings(choices)
	return choices, nil
}

// LookupPartition resolves a unit job to its partition id. The first
// matching row wins; found is false when nothing matches.
func (f *Fleet) LookupPartition(ctx context.Context, serialNumber, jobNumber, jobStart string) (string, bool, error) {
	query := fmt.Sprintf(
		"SELECT partition_id FROM %s WHERE serial_number = %s AND job_number = %s AND CAST(job_start AS CHAR(26)) = %s",
		f.table, f.dialect.Placeholder(1), f.dialect.Placeholder(2), f.dialect.Placeholder(3))

	rows, err := f.q.QueryContext(ctx, query, serialNumber, jobNumber, jobStart)
	if err != nil {
		return "", false, fmt.Errorf("failed to look up partition: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return "", false, rows.Err()
	}
	var id sql.NullString
	if err := rows.Scan(&id); err != nil {
		return "", false, fmt.Errorf("failed to scan partition id: %w", err)
	}
	if !id.Valid || id.String == "" {
		return "", false, nil
	}
	return id.String, true, nil
}
