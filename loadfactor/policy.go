package loadfactor

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrInvalidPolicy marks a classification policy whose bands are
// missing, unnamed, or not strictly ascending.
var ErrInvalidPolicy = errors.New("invalid classification policy")

// Band labels load factors up to (and including) Max.
type Band struct {
	Name string  `yaml:"name"`
	Max  float64 `yaml:"max"`
}

// Policy classifies a load factor into a named band. Factors above the
// last band's Max, including +Inf, fall into Overflow.
type Policy struct {
	Bands    []Band `yaml:"bands"`
	Overflow string `yaml:"overflow"`
}

// DefaultPolicy provides sensible defaults.
var DefaultPolicy = Policy{
	Bands: []Band{
		{Name: "relaxed", Max: 0.5},
		{Name: "busy", Max: 0.8},
		{Name: "critical", Max: 1.0},
	},
	Overflow: "impossible",
}

// ParsePolicy decodes a YAML policy document and validates it.
func ParsePolicy(data []byte) (Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Validate checks the policy's structural invariants.
func (p Policy) Validate() error {
	if len(p.Bands) == 0 {
		return fmt.Errorf("%w: no bands", ErrInvalidPolicy)
	}
	if p.Overflow == "" {
		return fmt.Errorf("%w: empty overflow name", ErrInvalidPolicy)
	}
	prev := 0.0
	for i, b := range p.Bands {
		if b.Name == "" {
			return fmt.Errorf("%w: band %d has no name", ErrInvalidPolicy, i)
		}
		if b.Max <= prev && i > 0 || b.Max < 0 {
			return fmt.Errorf("%w: band %q max %v not ascending", ErrInvalidPolicy, b.Name, b.Max)
		}
		prev = b.Max
	}
	return nil
}

// Classify returns the name of the first band whose Max covers the
// factor.
func (p Policy) Classify(factor float64) string {
	for _, b := range p.Bands {
		if factor <= b.Max {
			return b.Name
		}
	}
	return p.Overflow
}
