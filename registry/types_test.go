package registry

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreString(t *testing.T) {
	tests := []struct {
		name     string
		score    Score
		expected string
	}{
		{"typical", Score{big.NewInt(450), 2}, "4.5"},
		{"one decimal", Score{big.NewInt(45), 1}, "4.5"},
		{"no decimals", Score{big.NewInt(5), 0}, "5"},
		{"zero", Score{big.NewInt(0), 0}, "0"},
		{"nil raw", Score{nil, 2}, "0"},
		{"negative", Score{big.NewInt(-125), 2}, "-1.25"},
		{"interior zero", Score{big.NewInt(405), 2}, "4.05"},
		{"trailing zeros trimmed", Score{big.NewInt(400), 2}, "4"},
		{"below one", Score{big.NewInt(5), 2}, "0.05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.score.String())
		})
	}
}

func TestScoreFloat64(t *testing.T) {
	assert.InDelta(t, 4.5, Score{big.NewInt(450), 2}.Float64(), 1e-9)
	assert.InDelta(t, -1.25, Score{big.NewInt(-125), 2}.Float64(), 1e-9)
	assert.Zero(t, Score{nil, 2}.Float64())
}

func TestScoreMarshalJSON(t *testing.T) {
	out, err := json.Marshal(Score{big.NewInt(450), 2})
	require.NoError(t, err)
	assert.Equal(t, "4.5", string(out))

	// Inside a struct the decimal form must survive, not the mantissa.
	summary := ReputationSummary{
		AgentID:       big.NewInt(1),
		FeedbackCount: 10,
		AverageScore:  &Score{big.NewInt(450), 2},
		Decimals:      2,
		RawValue:      big.NewInt(450),
		Filters:       ReputationFilters{ClientAddresses: nil},
	}
	out, err = json.Marshal(summary)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"average_score":4.5`)
}

func TestScaleScore(t *testing.T) {
	tests := []struct {
		value    float64
		decimals uint8
		expected int64
	}{
		{4.5, 2, 450},
		{4.5, 1, 45},
		{4.5, 0, 5}, // rounds half away from zero
		{0, 2, 0},
		{-1.25, 2, -125},
		{4.05, 2, 405},
	}
	for _, tt := range tests {
		assert.Equal(t, big.NewInt(tt.expected), ScaleScore(tt.value, tt.decimals),
			"value=%v decimals=%d", tt.value, tt.decimals)
	}
}

func TestFormatAgentID(t *testing.T) {
	assert.Equal(t, "42", FormatAgentID(big.NewInt(42)))
	assert.Equal(t, "(unknown)", FormatAgentID(nil))
}
