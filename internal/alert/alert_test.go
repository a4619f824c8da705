package alert_test

import (
	"testing"

	"codeberg.org/mutker/homedash/internal/alert"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateThreshold(t *testing.T) {
	hazard, msg := alert.Evaluate(3001)
	assert.True(t, hazard)
	assert.NotEmpty(t, msg)
	assert.Contains(t, msg, "3001")
	assert.Contains(t, msg, alert.FanResponse)

	hazard, msg = alert.Evaluate(3000)
	assert.False(t, hazard, "boundary value is not a hazard")
	assert.Empty(t, msg)

	hazard, msg = alert.Evaluate(0)
	assert.False(t, hazard)
	assert.Empty(t, msg)
}

func TestEvaluateHasNoMemory(t *testing.T) {
	hazard, _ := alert.Evaluate(5000)
	assert.True(t, hazard)

	hazard, _ = alert.Evaluate(2999)
	assert.False(t, hazard, "a single low reading clears the hazard")
}

func TestFromLatest(t *testing.T) {
	assert.Equal(t, alert.State{}, alert.FromLatest(9999, false))

	state := alert.FromLatest(4200, true)
	assert.True(t, state.Hazard)
	assert.True(t, state.Known)
	assert.Equal(t, 4200.0, state.Gas)
	assert.Equal(t, "High gas level detected: 4200 (fans running at 100%)", state.Message)

	state = alert.FromLatest(100, true)
	assert.False(t, state.Hazard)
	assert.Empty(t, state.Message)
}
