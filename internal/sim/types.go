package sim

import (
	"fmt"
	"strings"

	"github.com/san-kum/radialsim/internal/dynamo"
	"gopkg.in/yaml.v3"
)

// Order controls the sequence in which particles are handed to the
// collision resolver. Resolution is order dependent, so only insertion
// and reverse give reproducible results without a fixed seed.
type Order uint8

const (
	OrderInsertion Order = iota
	OrderReverse
	OrderShuffle
)

func (o Order) String() string {
	switch o {
	case OrderInsertion:
		return "insertion"
	case OrderReverse:
		return "reverse"
	case OrderShuffle:
		return "shuffle"
	}
	return fmt.Sprintf("order(%d)", uint8(o))
}

func ParseOrder(name string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "insertion":
		return OrderInsertion, nil
	case "reverse":
		return OrderReverse, nil
	case "shuffle":
		return OrderShuffle, nil
	}
	return 0, fmt.Errorf("%w: %q", dynamo.ErrUnknownOrder, name)
}

func (o Order) MarshalYAML() (interface{}, error) { return o.String(), nil }

func (o *Order) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseOrder(name)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

type Config struct {
	Dt            float64
	Duration      float64
	Seed          int64
	RecordEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0 / 60.0,
		Duration:      10.0,
		RecordEvery:   1,
		ValidateState: true,
	}
}

// Frame is a recorded copy of every particle after a step.
type Frame struct {
	Step      int
	Time      float64
	Particles []dynamo.Particle
}

type Result struct {
	Frames     []Frame
	Metrics    map[string]float64
	Totals     dynamo.StepStats
	StepsTaken int
	Final      []dynamo.Particle
}
