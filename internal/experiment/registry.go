package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/radialsim/internal/dynamo"
	"github.com/san-kum/radialsim/internal/metrics"
	"github.com/san-kum/radialsim/internal/physics"
	"github.com/san-kum/radialsim/internal/sim"
	"github.com/san-kum/radialsim/internal/spawn"
)

// Registry maps configuration names to the pieces a run is assembled from.
type Registry struct {
	policies map[string]physics.Policy
	orders   map[string]sim.Order
	metrics  map[string]func() dynamo.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		policies: make(map[string]physics.Policy),
		orders:   make(map[string]sim.Order),
		metrics:  make(map[string]func() dynamo.Metric),
	}

	for _, p := range physics.Policies() {
		r.policies[p.String()] = p
	}
	for _, o := range []sim.Order{sim.OrderInsertion, sim.OrderReverse, sim.OrderShuffle} {
		r.orders[o.String()] = o
	}

	r.metrics["energy"] = func() dynamo.Metric { return metrics.NewEnergy() }
	r.metrics["energy_drift"] = func() dynamo.Metric { return metrics.NewEnergyDrift() }
	r.metrics["momentum"] = func() dynamo.Metric { return metrics.NewMomentum() }
	r.metrics["contacts"] = func() dynamo.Metric { return metrics.NewContacts() }
	r.metrics["wall_hits"] = func() dynamo.Metric { return metrics.NewWallHits() }
	r.metrics["max_penetration"] = func() dynamo.Metric { return metrics.NewPenetration() }

	return r
}

func (r *Registry) GetPolicy(name string) (physics.Policy, error) {
	if name == "" {
		return physics.PolicySwap, nil
	}
	p, ok := r.policies[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", dynamo.ErrUnknownPolicy, name)
	}
	return p, nil
}

func (r *Registry) GetOrder(name string) (sim.Order, error) {
	if name == "" {
		return sim.OrderInsertion, nil
	}
	o, ok := r.orders[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", dynamo.ErrUnknownOrder, name)
	}
	return o, nil
}

func (r *Registry) GetPattern(name string) (spawn.Pattern, error) {
	return spawn.Lookup(name)
}

func (r *Registry) GetMetric(name string) (dynamo.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListPolicies() []string { return sortedKeys(r.policies) }
func (r *Registry) ListOrders() []string   { return sortedKeys(r.orders) }
func (r *Registry) ListPatterns() []string { return spawn.Names() }
func (r *Registry) ListMetrics() []string  { return sortedKeys(r.metrics) }

// DefaultMetrics returns a fresh instance of every registered metric.
func (r *Registry) DefaultMetrics() []dynamo.Metric {
	names := r.ListMetrics()
	out := make([]dynamo.Metric, 0, len(names))
	for _, name := range names {
		out = append(out, r.metrics[name]())
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
