package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Step
		want     bool
	}{
		{StepContact, StepShipping, true},
		{StepShipping, StepPayment, true},
		{StepShipping, StepContact, true},
		{StepPayment, StepShipping, true},
		{StepPayment, StepContact, true},
		{StepContact, StepPayment, false},
		{StepContact, StepContact, false},
		{StepPayment, StepPayment, false},
		{Step("review"), StepPayment, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransitionTo(tt.from, tt.to))
		})
	}
}

func TestParseStep(t *testing.T) {
	step, err := ParseStep("shipping")
	require.NoError(t, err)
	assert.Equal(t, StepShipping, step)

	_, err = ParseStep("review")
	assert.Error(t, err)
}

func TestStepBefore(t *testing.T) {
	assert.True(t, StepContact.Before(StepPayment))
	assert.False(t, StepPayment.Before(StepShipping))
}
