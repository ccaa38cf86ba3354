package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/FalkorDB/falkordb-go/v2"
	"github.com/moolen/troubleshooter/internal/logging"
)

// ErrNotConnected is returned by operations on a client before Connect
var ErrNotConnected = errors.New("graph client not connected")

// Client is the subset of FalkorDB that the ontology backend needs
type Client interface {
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// ExecuteQuery runs a parameterized Cypher query against the ontology graph
	ExecuteQuery(ctx context.Context, query GraphQuery) (*QueryResult, error)

	// DeleteGraph drops the ontology graph; a missing graph is not an error
	DeleteGraph(ctx context.Context) error
}

// ClientConfig locates the FalkorDB instance and graph holding the ontology
type ClientConfig struct {
	Host         string
	Port         int
	Password     string
	GraphName    string
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
}

// DefaultClientConfig returns settings for a local FalkorDB
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Host:         "localhost",
		Port:         6379,
		GraphName:    "troubleshooting",
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		PoolSize:     10,
	}
}

// Addr returns host:port
func (c ClientConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type falkorClient struct {
	config ClientConfig
	logger *logging.Logger
	db     *falkordb.FalkorDB
	graph  *falkordb.Graph
}

// NewClient returns an unconnected client for config
func NewClient(config ClientConfig) Client {
	return &falkorClient{
		config: config,
		logger: logging.GetLogger("graph.client").WithField("graph", config.GraphName),
	}
}

func (c *falkorClient) Connect(ctx context.Context) error {
	db, err := falkordb.FalkorDBNew(&falkordb.ConnectionOption{
		Addr:         c.config.Addr(),
		Password:     c.config.Password,
		DialTimeout:  c.config.DialTimeout,
		ReadTimeout:  c.config.ReadTimeout,
		WriteTimeout: c.config.WriteTimeout,
		PoolSize:     c.config.PoolSize,
		MaxRetries:   c.config.MaxRetries,
	})
	if err != nil {
		return fmt.Errorf("ontology graph %s at %s: %w", c.config.GraphName, c.config.Addr(), err)
	}
	c.db = db
	c.graph = db.SelectGraph(c.config.GraphName)

	if err := c.Ping(ctx); err != nil {
		return err
	}
	c.logger.Info("Ontology graph reachable at %s", c.config.Addr())
	return nil
}

func (c *falkorClient) Close() error {
	if c.db == nil || c.db.Conn == nil {
		return nil
	}
	return c.db.Conn.Close()
}

// Ping round-trips a trivial Cypher statement so a server without the graph
// module is rejected too
func (c *falkorClient) Ping(ctx context.Context) error {
	if c.graph == nil {
		return ErrNotConnected
	}
	if err := c.db.Conn.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ontology graph unreachable: %w", err)
	}
	if _, err := c.graph.Query("RETURN 1", nil, nil); err != nil {
		return fmt.Errorf("ontology graph does not accept cypher: %w", err)
	}
	return nil
}

func (c *falkorClient) ExecuteQuery(ctx context.Context, query GraphQuery) (*QueryResult, error) {
	if c.graph == nil {
		return nil, ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var options *falkordb.QueryOptions
	if ms := queryTimeout(ctx, query.Timeout); ms > 0 {
		options = falkordb.NewQueryOptions().SetTimeout(ms)
	}

	began := time.Now()
	res, err := c.graph.Query(query.Query, query.Parameters, options)
	if err != nil {
		return nil, fmt.Errorf("cypher on ontology graph: %w", err)
	}

	out := &QueryResult{Columns: []string{}, Rows: [][]interface{}{}}
	for res.Next() {
		rec := res.Record()
		if len(out.Rows) == 0 {
			out.Columns = rec.Keys()
		}
		out.Rows = append(out.Rows, rec.Values())
	}
	out.Stats = QueryStats{
		NodesCreated:         res.NodesCreated(),
		NodesDeleted:         res.NodesDeleted(),
		RelationshipsCreated: res.RelationshipsCreated(),
		RelationshipsDeleted: res.RelationshipsDeleted(),
		PropertiesSet:        res.PropertiesSet(),
		LabelsAdded:          res.LabelsAdded(),
		ExecutionTime:        time.Since(began),
	}
	c.logger.Debug("%d ontology rows in %s", len(out.Rows), out.Stats.ExecutionTime)
	return out, nil
}

// queryTimeout picks the server-side timeout in milliseconds: the explicit
// value, else whatever is left of the context deadline
func queryTimeout(ctx context.Context, explicit int) int {
	if explicit > 0 {
		return explicit
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	left := time.Until(deadline).Milliseconds()
	if left < 1 {
		return 1
	}
	return int(left)
}

func (c *falkorClient) DeleteGraph(ctx context.Context) error {
	if c.graph == nil {
		return ErrNotConnected
	}
	// FalkorDB answers "empty key" for a graph that was never created
	if err := c.graph.Delete(); err != nil && !strings.Contains(err.Error(), "empty key") {
		return fmt.Errorf("drop ontology graph %s: %w", c.config.GraphName, err)
	}
	c.graph = c.db.SelectGraph(c.config.GraphName)
	return nil
}
