package convert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"metadata-enricher/internal/record"
)

func TestPolicy_Convert(t *testing.T) {
	tests := []struct {
		name     string
		value    record.Value
		expected record.Kind
		want     record.Value
		outcome  Outcome
	}{
		{"float to int32 floors", record.Float64(1984.9), record.KindInt32, record.Int32(1984), OutcomeConverted},
		{"float to string floors", record.Float64(1984.9), record.KindString, record.String("1984"), OutcomeConverted},
		{"negative floors down", record.Float64(-2.5), record.KindInt32, record.Int32(-3), OutcomeConverted},
		{"float32 to string", record.Float32(7), record.KindString, record.String("7"), OutcomeConverted},
		{"same kind", record.Int32(5), record.KindInt32, record.Int32(5), OutcomeUnchanged},
		{"float to bool stays", record.Float64(1), record.KindBool, record.Float64(1), OutcomeAsIs},
		{"bool to string stays", record.Bool(true), record.KindString, record.Bool(true), OutcomeAsIs},
		{"int32 to float stays", record.Int32(3), record.KindFloat64, record.Int32(3), OutcomeAsIs},
		{"out of range stays", record.Float64(1e12), record.KindInt32, record.Float64(1e12), OutcomeAsIs},
		{"NaN stays", record.Float64(math.NaN()), record.KindString, nil, OutcomeAsIs},
	}

	var p Policy

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, outcome := p.Convert(tt.value, tt.expected)
			assert.Equal(t, tt.outcome, outcome)

			if tt.want != nil {
				assert.Equal(t, tt.want, got)
			} else {
				assert.Equal(t, record.KindFloat64, got.Kind())
			}
		})
	}
}

func TestRegistry_Expected(t *testing.T) {
	r := Registry{"BOOK:year": record.KindInt32, "bad": record.Kind(0)}

	assert.Equal(t, record.KindInt32, r.Expected("BOOK:year"))
	assert.Equal(t, record.KindString, r.Expected("BOOK:title"))
	assert.Equal(t, record.KindString, r.Expected("bad"))

	var empty Registry
	assert.Equal(t, record.KindString, empty.Expected("anything"))
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "as_is", OutcomeAsIs.String())
	assert.Equal(t, "unknown", Outcome(9).String())
}
