package ontology

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) *MemoryStore {
	t.Helper()
	store, err := LoadTurtle(filepath.Join("testdata", "troubleshooting.ttl"), "")
	require.NoError(t, err)
	return store
}

func TestMemoryStore_Neighborhood(t *testing.T) {
	store := loadFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		concept string
		want    []Triple
	}{
		{
			name:    "failure with untyped neighbor",
			concept: "FNFM No Flow",
			want: []Triple{
				{"FNFM No Flow", "hasRootCause", "Master controller fault"},
				{"FNFM No Flow", "hasRootCause", "Pump calibration drift"},
			},
		},
		{
			name:    "cycle back to failure",
			concept: "Pump calibration drift",
			want: []Triple{
				{"Pump calibration drift", "isTriggeredBy", "FNFM Large pump calibration check"},
				{"Pump calibration drift", "relatedTo", "FNFM No Flow"},
			},
		},
		{
			name:    "literal objects skipped",
			concept: "FNFM Master Controller Digital Voltage",
			want: []Triple{
				{"FNFM Master Controller Digital Voltage", "consume", "MCDIGVLTFM"},
			},
		},
		{
			name:    "domain subject to non-domain object",
			concept: "MCDIGVLTFM",
			want: []Triple{
				{"MCDIGVLTFM", "documentedIn", "Controller manual"},
			},
		},
		{"no domain endpoint", "Controller manual", []Triple{}},
		{"untyped subject", "Loose end", []Triple{}},
		{"unknown concept", "Nothing", []Triple{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Neighborhood(ctx, tt.concept)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMemoryStore_NeverReturnsTypeEdges(t *testing.T) {
	store := loadFixture(t)
	for _, concept := range []string{"FNFM No Flow", "Master controller fault", "LPCAL"} {
		got, err := store.Neighborhood(context.Background(), concept)
		require.NoError(t, err)
		for _, tr := range got {
			assert.NotEqual(t, "type", tr.Predicate)
			assert.NotEqual(t, "label", tr.Predicate)
		}
	}
}

func TestMemoryStore_FailureLabels(t *testing.T) {
	store := loadFixture(t)
	labels, err := store.FailureLabels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"FNFM Motor Stall", "FNFM No Flow"}, labels)
}

func TestMemoryStore_Version(t *testing.T) {
	store := loadFixture(t)
	assert.Equal(t, "1.4.0", store.Version())
	assert.Positive(t, store.TripleCount())
}

func TestDecodeTurtle_MultipleLabelsAndCustomNamespace(t *testing.T) {
	doc := `@prefix ex: <http://example.org/kg/> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
ex:f a ex:Failure ; rdfs:label "Leak", "Fuite" ; ex:hasRootCause ex:r .
ex:r a ex:RootCause ; rdfs:label "Seal" .
`
	store, err := DecodeTurtle(strings.NewReader(doc), "http://example.org/kg/")
	require.NoError(t, err)

	got, err := store.Neighborhood(context.Background(), "Fuite")
	require.NoError(t, err)
	assert.Equal(t, []Triple{
		{"Leak", "hasRootCause", "Seal"},
		{"Fuite", "hasRootCause", "Seal"},
	}, got)
}

func TestDecodeTurtle_Malformed(t *testing.T) {
	_, err := DecodeTurtle(strings.NewReader("this is not turtle ."), "")
	assert.Error(t, err)
}

func TestLocalName(t *testing.T) {
	assert.Equal(t, "consume", LocalName(DefaultNamespace+"consume"))
	assert.Equal(t, "hasRootCause", LocalName("http://example.org/kg/hasRootCause"))
	assert.Equal(t, "plain", LocalName("plain"))
}

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		found, min string
		wantErr    bool
	}{
		{"1.4.0", "", false},
		{"", "", false},
		{"1.4.0", "1.2", false},
		{"1.4.0", "1.4.0", false},
		{"1.1.9", "1.2.0", true},
		{"", "1.0", true},
		{"banana", "1.0", true},
	}
	for _, tt := range tests {
		t.Run(tt.found+">="+tt.min, func(t *testing.T) {
			err := CheckVersion(tt.found, tt.min)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedVersion)
				return
			}
			assert.NoError(t, err)
		})
	}
	assert.Error(t, CheckVersion("1.0", "not-a-version"))
}
