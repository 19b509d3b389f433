package physics

import (
	"fmt"
	"strings"

	"github.com/san-kum/radialsim/internal/dynamo"
	"gopkg.in/yaml.v3"
)

// Policy selects how velocities respond when two particles overlap.
type Policy uint8

const (
	// PolicySwap exchanges the two velocity vectors wholesale. The pair's
	// total kinetic energy is kept; momentum is not.
	PolicySwap Policy = iota
	// PolicyRedirect keeps each particle's own speed and points it away
	// from the other particle along the contact normal.
	PolicyRedirect
)

var policyNames = map[Policy]string{
	PolicySwap:     "swap",
	PolicyRedirect: "redirect",
}

func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("policy(%d)", uint8(p))
}

func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "swap":
		return PolicySwap, nil
	case "redirect":
		return PolicyRedirect, nil
	}
	return 0, fmt.Errorf("%w: %q", dynamo.ErrUnknownPolicy, name)
}

func Policies() []Policy { return []Policy{PolicySwap, PolicyRedirect} }

// Next cycles through the known policies.
func (p Policy) Next() Policy {
	return Policy((uint8(p) + 1) % uint8(len(policyNames)))
}

func (p Policy) MarshalYAML() (interface{}, error) { return p.String(), nil }

func (p *Policy) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParsePolicy(name)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// respond returns the post-contact velocities of a and b. towardA points
// from a to b, towardB from b to a.
func (p Policy) respond(va, vb, towardA, towardB dynamo.Vec3) (dynamo.Vec3, dynamo.Vec3) {
	switch p {
	case PolicyRedirect:
		return towardA.Neg().Scale(va.Norm()), towardB.Neg().Scale(vb.Norm())
	default:
		return vb, va
	}
}
