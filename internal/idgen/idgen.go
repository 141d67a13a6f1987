// Package idgen abstracts ID generation so that services never call the
// UUID library directly. Production wiring uses random UUIDv4; tests inject
// a sequential generator to get deterministic, assertable IDs — which also
// lets the intent log correlate retries of the same logical operation.
package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces unique IDs for new entities.
type Generator interface {
	New() uuid.UUID
}

type randomGenerator struct{}

// NewRandom returns the production generator backed by uuid.New.
func NewRandom() Generator { return randomGenerator{} }

func (randomGenerator) New() uuid.UUID { return uuid.New() }

// Sequential is a deterministic generator for tests. IDs are
// 00000000-0000-0000-0000-000000000001, ...-02, and so on.
type Sequential struct {
	n atomic.Uint64
}

func NewSequential() *Sequential { return &Sequential{} }

func (s *Sequential) New() uuid.UUID {
	n := s.n.Add(1)
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", n))
}
