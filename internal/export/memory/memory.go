// Package memory is the in-process report sink used by tests and local runs
// without external credentials.
package memory

import (
	"context"
	"sync"

	"asociados/internal/liquidation"
)

type Export struct {
	Report  liquidation.Report
	Payload string
}

type Store struct {
	mu      sync.Mutex
	exports []Export
}

func New() *Store {
	return &Store{}
}

func (s *Store) ExportReport(_ context.Context, report liquidation.Report, payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exports = append(s.exports, Export{Report: report, Payload: payload})
	return nil
}

// Exports returns a copy of everything exported so far.
func (s *Store) Exports() []Export {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Export(nil), s.exports...)
}
