// Package optim sweeps scene settings and reports the combination that
// minimizes a metric.
package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/san-kum/radialsim/internal/config"
	"github.com/san-kum/radialsim/internal/dynamo"
	"github.com/san-kum/radialsim/internal/experiment"
)

// Axis is one swept setting and its candidate values.
type Axis struct {
	Name   string
	Values []string
}

// Apply writes one axis value into a scene. Unknown axes are an error.
type Apply func(cfg *config.Config, axis, value string) error

// ApplySetting understands the policy, order and pattern axes.
func ApplySetting(cfg *config.Config, axis, value string) error {
	switch axis {
	case "policy":
		cfg.Policy = value
	case "order":
		cfg.Order = value
	case "pattern":
		cfg.Spawn.Pattern = value
	default:
		return fmt.Errorf("unknown sweep axis: %s", axis)
	}
	return nil
}

// Trial is one evaluated combination.
type Trial struct {
	Params map[string]string
	Value  float64
}

type GridSearch struct {
	axes     []Axis
	apply    Apply
	registry *experiment.Registry
	logger   *log.Logger
}

func NewGridSearch(axes []Axis, apply Apply) *GridSearch {
	if apply == nil {
		apply = ApplySetting
	}
	return &GridSearch{axes: axes, apply: apply, registry: experiment.NewRegistry(), logger: log.Default()}
}

func (g *GridSearch) SetLogger(l *log.Logger) {
	if l != nil {
		g.logger = l
	}
}

// Search runs base once per combination and returns every trial sorted by
// value, best first. A failing combination stops the search.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) ([]Trial, error) {
	if _, err := g.registry.GetMetric(metricName); err != nil {
		return nil, err
	}

	var trials []Trial
	if err := g.searchRecursive(ctx, 0, map[string]string{}, base, metricName, &trials); err != nil {
		return trials, err
	}
	sort.SliceStable(trials, func(i, j int) bool { return trials[i].Value < trials[j].Value })
	return trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]string,
	base *config.Config,
	metricName string,
	trials *[]Trial,
) error {
	if depth == len(g.axes) {
		val, err := g.evaluate(ctx, current, base, metricName)
		if err != nil {
			return err
		}
		params := make(map[string]string, len(current))
		for k, v := range current {
			params[k] = v
		}
		*trials = append(*trials, Trial{Params: params, Value: val})
		return nil
	}

	axis := g.axes[depth]
	for _, val := range axis.Values {
		current[axis.Name] = val
		if err := g.searchRecursive(ctx, depth+1, current, base, metricName, trials); err != nil {
			return err
		}
	}
	delete(current, axis.Name)
	return nil
}

func (g *GridSearch) evaluate(ctx context.Context, params map[string]string, base *config.Config, metricName string) (float64, error) {
	cfg := base.Clone()
	for name, value := range params {
		if err := g.apply(cfg, name, value); err != nil {
			return 0, err
		}
	}

	metric, err := g.registry.GetMetric(metricName)
	if err != nil {
		return 0, err
	}
	exp := experiment.New(cfg)
	exp.SetLogger(g.logger)
	if err := exp.Setup(g.registry, []dynamo.Metric{metric}); err != nil {
		return 0, fmt.Errorf("%v: %w", params, err)
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("%v: %w", params, err)
	}

	val, ok := result.Metrics[metricName]
	if !ok || math.IsNaN(val) {
		val = math.Inf(1)
	}
	g.logger.Debug("trial", "params", params, "metric", metricName, "value", val)
	return val, nil
}
