package ontology

import (
	"context"
	"fmt"
)

// Domain classes
const (
	ClassFailure     = "Failure"
	ClassRootCause   = "RootCause"
	ClassTrigger     = "Trigger"
	ClassDataChannel = "DataChannel"
)

// Relations used by root-cause resolution
const (
	RelHasRootCause  = "hasRootCause"
	RelIsTriggeredBy = "isTriggeredBy"
	RelConsume       = "consume"
)

// DefaultNamespace is the IRI prefix of the troubleshooting ontology
const DefaultNamespace = "http://www.slb.com/ontologies/Troubleshooting_ORA_FNFM_Ontology_#"

// DomainClasses lists the classes a neighborhood edge must touch
func DomainClasses() []string {
	return []string{ClassFailure, ClassRootCause, ClassTrigger, ClassDataChannel}
}

// Triple is one labeled edge of the knowledge graph
type Triple struct {
	Subject   string `json:"subject" yaml:"subject"`
	Predicate string `json:"predicate" yaml:"predicate"`
	Object    string `json:"object" yaml:"object"`
}

func (t Triple) String() string {
	return fmt.Sprintf("(%s)-[%s]->(%s)", t.Subject, t.Predicate, t.Object)
}

// Store is a read-only knowledge graph
type Store interface {
	// Neighborhood returns the distinct domain edges leaving nodes labeled concept.
	// An unknown concept yields an empty slice, not an error.
	Neighborhood(ctx context.Context, concept string) ([]Triple, error)

	// FailureLabels returns the distinct labels of Failure nodes, sorted
	FailureLabels(ctx context.Context) ([]string, error)
}

// Source hands out the store to use for one pipeline run
type Source interface {
	Current() Store
}

// StaticSource always returns the same store
type StaticSource struct {
	Store Store
}

// Current returns the wrapped store
func (s StaticSource) Current() Store {
	return s.Store
}
