package graph

import (
	"context"
	"sync"
)

// MockClient is an in-process Client that records queries and replays
// canned results keyed by query text
type MockClient struct {
	mu      sync.Mutex
	results map[string]*QueryResult
	errs    map[string]error
	queries []GraphQuery
}

// NewMockClient creates an empty mock
func NewMockClient() *MockClient {
	return &MockClient{
		results: map[string]*QueryResult{},
		errs:    map[string]error{},
	}
}

// SetResult registers the result returned for a query text
func (m *MockClient) SetResult(query string, result *QueryResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[query] = result
}

// SetError registers the error returned for a query text
func (m *MockClient) SetError(query string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[query] = err
}

// Queries returns the queries executed so far
func (m *MockClient) Queries() []GraphQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]GraphQuery(nil), m.queries...)
}

func (m *MockClient) Connect(ctx context.Context) error { return nil }

func (m *MockClient) Close() error { return nil }

func (m *MockClient) Ping(ctx context.Context) error { return nil }

func (m *MockClient) DeleteGraph(ctx context.Context) error { return nil }

func (m *MockClient) ExecuteQuery(ctx context.Context, query GraphQuery) (*QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	if err, ok := m.errs[query.Query]; ok {
		return nil, err
	}
	if result, ok := m.results[query.Query]; ok {
		return result, nil
	}
	return &QueryResult{Rows: [][]interface{}{}}, nil
}
