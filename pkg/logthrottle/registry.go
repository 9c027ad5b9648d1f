package logthrottle

import (
	"sync"
	"sync/atomic"
)

// gateRegistry maps type keys to their gates.
// Gates are created on first use and never removed, so the number of
// distinct keys must stay bounded by the caller.
type gateRegistry struct {
	gates       sync.Map // map[string]*typeGate
	size        atomic.Int64
	minDistance int64

	// onCreate is called with the new registry size each time a gate is added.
	onCreate func(size int64)
}

func newGateRegistry(minDistanceMillis int64, onCreate func(size int64)) *gateRegistry {
	return &gateRegistry{
		minDistance: minDistanceMillis,
		onCreate:    onCreate,
	}
}

func (r *gateRegistry) gateFor(key string) *typeGate {
	if gate, ok := r.gates.Load(key); ok {
		return gate.(*typeGate)
	}

	gate := newTypeGate(r.minDistance)
	actual, loaded := r.gates.LoadOrStore(key, gate)
	if !loaded {
		n := r.size.Add(1)
		if r.onCreate != nil {
			r.onCreate(n)
		}
	}
	return actual.(*typeGate)
}

func (r *gateRegistry) len() int64 {
	return r.size.Load()
}
