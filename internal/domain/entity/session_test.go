package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStep(t *testing.T) {
	step, err := ParseStep("")
	require.NoError(t, err)
	assert.Equal(t, StepShopping, step)

	step, err = ParseStep("WAITING_DNI")
	require.NoError(t, err)
	assert.Equal(t, StepWaitingDNI, step)

	_, err = ParseStep("waiting_dni")
	assert.True(t, errors.Is(err, ErrUnknownStep))
}

func TestWizardHappyPathTransitions(t *testing.T) {
	s := NewSession("584121234567")
	path := []Step{
		StepWaitingName,
		StepWaitingDNI,
		StepWaitingAddress,
		StepWaitingFinalConfirmation,
		StepProcessingCheckout,
	}
	for _, next := range path {
		require.NoError(t, s.Advance(next), "to %s", next)
	}
	assert.Equal(t, StepProcessingCheckout, s.Step)
}

func TestIllegalTransitionsRejected(t *testing.T) {
	cases := []struct {
		from, to Step
	}{
		{StepShopping, StepProcessingCheckout},
		{StepShopping, StepWaitingDNI},
		{StepWaitingName, StepWaitingAddress},
		{StepWaitingDNI, StepProcessingCheckout},
		{StepProcessingCheckout, StepWaitingName},
	}
	for _, tc := range cases {
		s := &Session{Step: tc.from}
		err := s.Advance(tc.to)
		assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", tc.from, tc.to)
		assert.Equal(t, tc.from, s.Step)
	}
}

func TestEveryWizardStepCanReturnToShopping(t *testing.T) {
	for _, step := range allSteps {
		if step == StepShopping {
			continue
		}
		assert.True(t, CanTransition(step, StepShopping), step)
	}
}

func TestSessionExpiry(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	s := &Session{UpdatedAt: now.Add(-31 * time.Minute)}
	assert.True(t, s.IsExpired(now, 30*time.Minute))

	s.UpdatedAt = now.Add(-30 * time.Minute)
	assert.False(t, s.IsExpired(now, 30*time.Minute))

	assert.False(t, (*Session)(nil).IsExpired(now, time.Minute))
}

func TestCloneDoesNotShareItems(t *testing.T) {
	s := &Session{Items: []CartItem{{ProductName: "Camisa", Quantity: 1}}}
	c := s.Clone()
	c.Items[0].Quantity = 9
	assert.Equal(t, 1, s.Items[0].Quantity)
}
