package ontology

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/knakk/rdf"
	"github.com/moolen/troubleshooter/internal/logging"
)

const (
	rdfType        = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	rdfsLabel      = "http://www.w3.org/2000/01/rdf-schema#label"
	owlVersionInfo = "http://www.w3.org/2002/07/owl#versionInfo"
)

type edge struct {
	predicate string // local name
	object    string // node id
}

// MemoryStore is an immutable in-memory knowledge graph
type MemoryStore struct {
	namespace string
	version   string
	triples   int

	labels  map[string][]string            // node id -> labels in file order
	classes map[string]map[string]struct{} // node id -> rdf:type IRIs
	edges   map[string][]edge              // subject id -> outgoing non-type edges
	byLabel map[string][]string            // label -> node ids in file order
}

// LoadTurtle decodes a Turtle file
func LoadTurtle(path, namespace string) (*MemoryStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ontology %q: %w", path, err)
	}
	defer f.Close()

	store, err := DecodeTurtle(f, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ontology %q: %w", path, err)
	}
	logging.GetLogger("ontology.memory").Info("Loaded ontology %s: %d triples, version %q", path, store.triples, store.version)
	return store, nil
}

// DecodeTurtle builds a store from a Turtle document
func DecodeTurtle(r io.Reader, namespace string) (*MemoryStore, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	s := &MemoryStore{
		namespace: namespace,
		labels:    map[string][]string{},
		classes:   map[string]map[string]struct{}{},
		edges:     map[string][]edge{},
		byLabel:   map[string][]string{},
	}

	dec := rdf.NewTripleDecoder(r, rdf.Turtle)
	for {
		t, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		s.add(t)
	}
	return s, nil
}

func nodeID(term rdf.Term) string {
	if term.Type() == rdf.TermBlank {
		return "_:" + term.String()
	}
	return term.String()
}

func (s *MemoryStore) add(t rdf.Triple) {
	s.triples++
	subject := nodeID(t.Subj)
	predicate := t.Pred.String()

	switch predicate {
	case rdfsLabel:
		if t.Obj.Type() != rdf.TermLiteral {
			return
		}
		label := t.Obj.String()
		if containsString(s.labels[subject], label) {
			return
		}
		s.labels[subject] = append(s.labels[subject], label)
		s.byLabel[label] = append(s.byLabel[label], subject)
		return
	case owlVersionInfo:
		if s.version == "" && t.Obj.Type() == rdf.TermLiteral {
			s.version = t.Obj.String()
		}
		return
	case rdfType:
		if s.classes[subject] == nil {
			s.classes[subject] = map[string]struct{}{}
		}
		s.classes[subject][t.Obj.String()] = struct{}{}
		return
	}

	if t.Obj.Type() == rdf.TermLiteral {
		return
	}
	e := edge{predicate: LocalName(predicate), object: nodeID(t.Obj)}
	for _, existing := range s.edges[subject] {
		if existing == e {
			return
		}
	}
	s.edges[subject] = append(s.edges[subject], e)
}

// LocalName reduces a relation IRI to the part after the first '#', or after
// the last '/' for slash namespaces
func LocalName(iri string) string {
	if i := strings.Index(iri, "#"); i >= 0 {
		return iri[i+1:]
	}
	if i := strings.LastIndex(iri, "/"); i >= 0 {
		return iri[i+1:]
	}
	return iri
}

func (s *MemoryStore) isDomain(node string) bool {
	for _, class := range DomainClasses() {
		if _, ok := s.classes[node][s.namespace+class]; ok {
			return true
		}
	}
	return false
}

func (s *MemoryStore) typed(node string) bool {
	return len(s.classes[node]) > 0
}

// Neighborhood returns the domain edges leaving every node labeled concept.
// Both endpoints must be typed and the object labeled; at least one endpoint
// must be a domain class. Rows follow file order.
func (s *MemoryStore) Neighborhood(ctx context.Context, concept string) ([]Triple, error) {
	out := []Triple{}
	seen := map[Triple]struct{}{}

	for _, subject := range s.byLabel[concept] {
		if !s.typed(subject) {
			continue
		}
		subjectDomain := s.isDomain(subject)
		for _, e := range s.edges[subject] {
			if !s.typed(e.object) || len(s.labels[e.object]) == 0 {
				continue
			}
			if !subjectDomain && !s.isDomain(e.object) {
				continue
			}
			for _, subjectLabel := range s.labels[subject] {
				for _, objectLabel := range s.labels[e.object] {
					t := Triple{Subject: subjectLabel, Predicate: e.predicate, Object: objectLabel}
					if _, dup := seen[t]; dup {
						continue
					}
					seen[t] = struct{}{}
					out = append(out, t)
				}
			}
		}
	}
	return out, nil
}

// FailureLabels returns the sorted labels of Failure nodes
func (s *MemoryStore) FailureLabels(ctx context.Context) ([]string, error) {
	failure := s.namespace + ClassFailure
	set := map[string]struct{}{}
	for node, classes := range s.classes {
		if _, ok := classes[failure]; !ok {
			continue
		}
		for _, label := range s.labels[node] {
			set[label] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for label := range set {
		out = append(out, label)
	}
	sort.Strings(out)
	return out, nil
}

// Version returns owl:versionInfo, or "" when absent
func (s *MemoryStore) Version() string {
	return s.version
}

// TripleCount returns the number of decoded RDF statements
func (s *MemoryStore) TripleCount() int {
	return s.triples
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
