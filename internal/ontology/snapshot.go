package ontology

import "sync/atomic"

// Snapshot holds the current store and swaps it atomically on reload.
// A pipeline run calls Current once and keeps that store for its lifetime.
type Snapshot struct {
	current atomic.Pointer[storeBox]
}

type storeBox struct {
	Store
}

// NewSnapshot creates a snapshot holding initial
func NewSnapshot(initial Store) *Snapshot {
	s := &Snapshot{}
	s.Swap(initial)
	return s
}

// Current implements Source
func (s *Snapshot) Current() Store {
	box := s.current.Load()
	if box == nil {
		return nil
	}
	return box.Store
}

// Swap replaces the current store and returns the previous one
func (s *Snapshot) Swap(next Store) Store {
	prev := s.current.Swap(&storeBox{Store: next})
	if prev == nil {
		return nil
	}
	return prev.Store
}
