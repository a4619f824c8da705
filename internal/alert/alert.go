// Package alert derives the gas hazard state from the latest gas reading.
package alert

import (
	"fmt"
	"strconv"
)

// GasThreshold is the gas level above which the hazard is raised. The
// boundary value itself is safe.
const GasThreshold = 3000

// FanResponse describes what the fans do while the hazard is raised
const FanResponse = "fans running at 100%"

// State is the derived alert state
type State struct {
	Hazard  bool    `json:"hazard"`
	Message string  `json:"message"`
	Gas     float64 `json:"gas"`
	Known   bool    `json:"known"`
}

// Evaluate returns the hazard flag and advisory message for a gas value
func Evaluate(gas float64) (bool, string) {
	if gas <= GasThreshold {
		return false, ""
	}

	return true, fmt.Sprintf("High gas level detected: %s (%s)",
		strconv.FormatFloat(gas, 'f', -1, 64), FanResponse)
}

// FromLatest evaluates an optional latest gas value. Without a value the
// state is neutral.
func FromLatest(gas float64, ok bool) State {
	if !ok {
		return State{}
	}

	hazard, msg := Evaluate(gas)

	return State{
		Hazard:  hazard,
		Message: msg,
		Gas:     gas,
		Known:   true,
	}
}
