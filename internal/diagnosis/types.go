package diagnosis

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/moolen/troubleshooter/internal/ontology"
)

// Triple is one labeled knowledge graph edge
type Triple = ontology.Triple

// DepthMap holds the triples of one walk, bucketed by the depth at which
// their subject was expanded. It is not modified after Walk returns.
type DepthMap struct {
	levels map[int][]Triple
	order  []Triple
	seen   map[Triple]struct{}
}

func newDepthMap() *DepthMap {
	return &DepthMap{
		levels: map[int][]Triple{},
		seen:   map[Triple]struct{}{},
	}
}

// record appends triples to a depth bucket, skipping ones already in that
// bucket, and to the global list, skipping ones already seen anywhere.
// The bucket exists even when triples is empty.
func (m *DepthMap) record(depth int, triples []Triple) {
	bucket := m.levels[depth]
	if bucket == nil {
		bucket = []Triple{}
	}
	for _, t := range triples {
		if !containsTriple(bucket, t) {
			bucket = append(bucket, t)
		}
		if _, ok := m.seen[t]; !ok {
			m.seen[t] = struct{}{}
			m.order = append(m.order, t)
		}
	}
	m.levels[depth] = bucket
}

func containsTriple(list []Triple, t Triple) bool {
	for _, existing := range list {
		if existing == t {
			return true
		}
	}
	return false
}

// Depths returns the recorded depths in ascending order
func (m *DepthMap) Depths() []int {
	if m == nil {
		return nil
	}
	depths := make([]int, 0, len(m.levels))
	for d := range m.levels {
		depths = append(depths, d)
	}
	sort.Ints(depths)
	return depths
}

// At returns a copy of the triples first recorded at depth
func (m *DepthMap) At(depth int) []Triple {
	if m == nil {
		return nil
	}
	return append([]Triple(nil), m.levels[depth]...)
}

// Flatten returns every distinct triple in discovery order
func (m *DepthMap) Flatten() []Triple {
	if m == nil {
		return nil
	}
	return append([]Triple(nil), m.order...)
}

// Len returns the number of distinct triples
func (m *DepthMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// Levels returns a copy of the depth buckets
func (m *DepthMap) Levels() map[int][]Triple {
	if m == nil {
		return nil
	}
	out := make(map[int][]Triple, len(m.levels))
	for d, triples := range m.levels {
		out[d] = append([]Triple(nil), triples...)
	}
	return out
}

// MarshalJSON encodes the buckets as an object keyed by depth. A nil
// *DepthMap never reaches here; encoding/json writes null for it.
func (m *DepthMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.levels)
}

// MarshalYAML encodes the buckets as a mapping keyed by depth
func (m *DepthMap) MarshalYAML() (interface{}, error) {
	return m.levels, nil
}

// CheckRecord is a triple annotated with the outcome of its check.
// Status is nil when no check ran for the triple.
type CheckRecord struct {
	Subject   string `json:"subject" yaml:"subject"`
	Predicate string `json:"predicate" yaml:"predicate"`
	Object    string `json:"object" yaml:"object"`
	Status    *bool  `json:"status" yaml:"status"`
	Check     string `json:"check,omitempty" yaml:"check,omitempty"`
}

// Triple returns the record's edge
func (r CheckRecord) Triple() Triple {
	return Triple{Subject: r.Subject, Predicate: r.Predicate, Object: r.Object}
}

// Confirmed reports a strict true status
func (r CheckRecord) Confirmed() bool {
	return r.Status != nil && *r.Status
}

// Correlation is the output of Correlate. Checked holds only the edges that
// carry a check outcome; Triples holds every edge of the walk, which the
// resolver needs for the structural hasRootCause and isTriggeredBy hops.
type Correlation struct {
	Checked []CheckRecord `json:"checked" yaml:"checked"`
	Triples []Triple      `json:"triples" yaml:"triples"`
}

// RootCauseChain is one implicated Failure -> RootCause -> Trigger -> DataChannel path
type RootCauseChain struct {
	RootCause   string `json:"root_cause" yaml:"root_cause"`
	Trigger     string `json:"trigger" yaml:"trigger"`
	DataChannel string `json:"data_channel" yaml:"data_channel"`
}

// Diagnosis is the result of one pipeline run
type Diagnosis struct {
	RunID       string        `json:"run_id" yaml:"run_id"`
	PartitionID string        `json:"partition_id" yaml:"partition_id"`
	Failure     string        `json:"failure" yaml:"failure"`
	StartedAt   time.Time     `json:"started_at" yaml:"started_at"`
	Duration    time.Duration `json:"duration_ns" yaml:"duration"`
	Correlation Correlation   `json:"correlation" yaml:"correlation"`
	Depths      *DepthMap     `json:"depths" yaml:"depths"`
	Executed    int           `json:"executed_checks" yaml:"executed_checks"`
	Unmapped    []string      `json:"unmapped_triggers" yaml:"unmapped_triggers"`
}

// Report is a diagnosis together with its resolved chains
type Report struct {
	Diagnosis `yaml:",inline"`
	Chains    []RootCauseChain `json:"root_causes" yaml:"root_causes"`
}
