package graph

import (
	"fmt"
	"time"
)

// GraphQuery represents a parameterized Cypher query
type GraphQuery struct {
	Query      string                 `json:"query"`
	Parameters map[string]interface{} `json:"parameters"`
	Timeout    int                    `json:"timeout,omitempty"` // Timeout in milliseconds (0 = default)
}

// QueryResult represents the result of a graph query
type QueryResult struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
	Stats   QueryStats      `json:"stats"`
}

// QueryStats represents query execution statistics
type QueryStats struct {
	NodesCreated         int           `json:"nodesCreated"`
	NodesDeleted         int           `json:"nodesDeleted"`
	RelationshipsCreated int           `json:"relationshipsCreated"`
	RelationshipsDeleted int           `json:"relationshipsDeleted"`
	PropertiesSet        int           `json:"propertiesSet"`
	LabelsAdded          int           `json:"labelsAdded"`
	ExecutionTime        time.Duration `json:"executionTime"`
}

// StringColumns reads every row as n string cells. NULL cells become "".
func (r *QueryResult) StringColumns(n int) ([][]string, error) {
	out := make([][]string, 0, len(r.Rows))
	for i, row := range r.Rows {
		if len(row) < n {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(row), n)
		}
		cells := make([]string, n)
		for j := 0; j < n; j++ {
			switch v := row[j].(type) {
			case nil:
			case string:
				cells[j] = v
			case []byte:
				cells[j] = string(v)
			default:
				cells[j] = fmt.Sprint(v)
			}
		}
		out = append(out, cells)
	}
	return out, nil
}
