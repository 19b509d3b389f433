package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a particle with NaN/Inf position or velocity
	// or a negative radius.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN, Inf or negative radius)")

	// ErrInvalidBounds indicates a non-positive boundary width or height.
	ErrInvalidBounds = errors.New("dynamo: bounds must have positive width and height")

	// ErrInvalidParticle indicates a particle rejected on spawn.
	ErrInvalidParticle = errors.New("dynamo: invalid particle")

	// ErrDuplicateID indicates a spawn reusing a live particle ID.
	ErrDuplicateID = errors.New("dynamo: duplicate particle id")

	// ErrUnknownPolicy indicates an unrecognized resolution policy name.
	ErrUnknownPolicy = errors.New("dynamo: unknown resolution policy")

	// ErrUnknownOrder indicates an unrecognized iteration order name.
	ErrUnknownOrder = errors.New("dynamo: unknown iteration order")

	// ErrUnknownPattern indicates an unrecognized spawn pattern name.
	ErrUnknownPattern = errors.New("dynamo: unknown spawn pattern")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	ID      ID
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f) particle %d: %v", e.Step, e.Time, e.ID, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
