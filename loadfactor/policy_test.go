package loadfactor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicyClassify(t *testing.T) {
	tests := []struct {
		factor float64
		want   string
	}{
		{0, "relaxed"},
		{0.5, "relaxed"}, // band maxima are inclusive
		{0.51, "busy"},
		{0.8, "busy"},
		{1.0, "critical"},
		{1.01, "impossible"},
		{math.Inf(1), "impossible"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultPolicy.Classify(tt.factor), "factor %v", tt.factor)
	}
}

func TestParsePolicy(t *testing.T) {
	doc := []byte(`
bands:
  - name: light
    max: 0.3
  - name: heavy
    max: 1.0
overflow: overbooked
`)
	p, err := ParsePolicy(doc)
	require.NoError(t, err)
	assert.Equal(t, "light", p.Classify(0.3))
	assert.Equal(t, "heavy", p.Classify(0.9))
	assert.Equal(t, "overbooked", p.Classify(2))
}

func TestParsePolicyRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", `bands: [`},
		{"no bands", `overflow: x`},
		{"no overflow", "bands:\n  - name: a\n    max: 1\n"},
		{"unnamed band", "bands:\n  - max: 1\noverflow: x\n"},
		{"descending maxima", "bands:\n  - name: a\n    max: 1\n  - name: b\n    max: 0.5\noverflow: x\n"},
		{"negative max", "bands:\n  - name: a\n    max: -0.1\noverflow: x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePolicy([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidPolicy)
		})
	}
}

func TestDefaultPolicyValid(t *testing.T) {
	assert.NoError(t, DefaultPolicy.Validate())
}
