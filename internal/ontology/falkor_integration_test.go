//go:build integration

package ontology

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/moolen/troubleshooter/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startFalkorDB(t *testing.T) graph.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "falkordb/falkordb:latest",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	cfg := graph.DefaultClientConfig()
	cfg.Host = host
	cfg.Port = port.Int()
	cfg.GraphName = fmt.Sprintf("test-%s", uuid.New().String()[:8])

	client := graph.NewClient(cfg)
	require.Eventually(t, func() bool { return client.Connect(ctx) == nil }, 30*time.Second, 500*time.Millisecond)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestFalkorStore_AgainstFalkorDB(t *testing.T) {
	client := startFalkorDB(t)
	ctx := context.Background()

	_, err := client.ExecuteQuery(ctx, graph.GraphQuery{Query: `
CREATE (f:Failure {label: 'FNFM No Flow'}),
       (r:RootCause {label: 'Master controller fault'}),
       (tr:Trigger {label: 'FNFM Master Controller Digital Voltage'}),
       (c:DataChannel {label: 'MCDIGVLTFM'}),
       (d:Document {label: 'Controller manual'}),
       (n:Document {label: 'Field note'}),
       (f)-[:hasRootCause]->(r),
       (r)-[:isTriggeredBy]->(tr),
       (tr)-[:consume]->(c),
       (r)-[:relatedTo]->(f),
       (d)-[:mentions]->(n)`})
	require.NoError(t, err)

	store := NewFalkorStore(client, 5000)

	got, err := store.Neighborhood(ctx, "Master controller fault")
	require.NoError(t, err)
	assert.ElementsMatch(t, []Triple{
		{"Master controller fault", "isTriggeredBy", "FNFM Master Controller Digital Voltage"},
		{"Master controller fault", "relatedTo", "FNFM No Flow"},
	}, got)

	got, err = store.Neighborhood(ctx, "Controller manual")
	require.NoError(t, err)
	assert.Empty(t, got)

	labels, err := store.FailureLabels(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"FNFM No Flow"}, labels)

	require.NoError(t, client.DeleteGraph(ctx))
}
