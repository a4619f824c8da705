package telemetry

import (
	"bytes"
	"encoding/json"
	"math"
	"time"

	"codeberg.org/mutker/homedash/internal/errors"
	"github.com/spf13/cast"
)

// Decode parses a telemetry payload captured at the given time.
//
// Only a malformed envelope is an error. Each numeric field is coerced on
// its own: an unparsable value becomes 0 and is listed in Reading.Coerced,
// the rest of the reading is still usable.
func Decode(payload []byte, at time.Time) (Reading, error) {
	errFactory := errors.New()

	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return Reading{}, errFactory.New(ErrEmptyPayload)
	}

	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Reading{}, errFactory.Wrap(ErrDecodeFailed, err)
	}
	if raw == nil {
		return Reading{}, errFactory.WithMessage(ErrDecodeFailed, "payload is not a JSON object")
	}

	reading := Reading{Time: at}
	for i, m := range Metrics {
		value, ok := raw[string(m)]
		if !ok || value == nil {
			continue
		}

		n, err := coerce(m, value)
		if err != nil {
			reading.Coerced = append(reading.Coerced, m)
		}
		reading.Fields[i] = Field{Value: n, Present: true}
	}

	if value, ok := raw[MotionKey]; ok && value != nil {
		reading.Motion = Motion{Detected: IsMotion(value), Present: true}
	}

	return reading, nil
}

// coerce parses one numeric field. Strings are read as base 10 decimals;
// gas is truncated toward zero without any integer range limit.
func coerce(m Metric, value any) (float64, error) {
	n, err := cast.ToFloat64E(value)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, errors.New().WithData(errors.ErrInvalidArgument, value)
	}

	if m == Gas {
		n = math.Trunc(n)
	}

	return n, nil
}

// IsMotion reports whether a PIR value means motion: its string form must
// be exactly "1".
func IsMotion(value any) bool {
	s, err := cast.ToStringE(value)
	if err != nil {
		return false
	}

	return s == "1"
}
