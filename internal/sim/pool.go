package sim

import (
	"sync"

	"github.com/san-kum/radialsim/internal/dynamo"
)

// SnapshotPool recycles per-step snapshots so a running host does not
// allocate a new map every frame.
type SnapshotPool struct {
	pool sync.Pool
}

func NewSnapshotPool() *SnapshotPool {
	return &SnapshotPool{
		pool: sync.Pool{
			New: func() interface{} {
				return dynamo.NewSnapshot(64)
			},
		},
	}
}

func (p *SnapshotPool) Get() *dynamo.Snapshot {
	return p.pool.Get().(*dynamo.Snapshot)
}

func (p *SnapshotPool) Put(s *dynamo.Snapshot) {
	if s == nil {
		return
	}
	s.Reset()
	p.pool.Put(s)
}

// Capture builds a snapshot of the live particles in their current order.
func (p *SnapshotPool) Capture(particles []*dynamo.Particle) *dynamo.Snapshot {
	s := p.Get()
	for _, pt := range particles {
		s.Put(pt.ID, dynamo.Entry{Position: pt.Position, Velocity: pt.Velocity})
	}
	return s
}
