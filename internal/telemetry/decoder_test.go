package telemetry_test

import (
	"testing"
	"time"

	"codeberg.org/mutker/homedash/internal/errors"
	"codeberg.org/mutker/homedash/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestDecodeFullReading(t *testing.T) {
	payload := []byte(`{"temp": 23.5, "hum": 41, "gas": 1200, "dist": 12.25, "luz": 300, "pir": "1", "extra": "ignored"}`)

	reading, err := telemetry.Decode(payload, at)
	require.NoError(t, err)

	assert.Equal(t, at, reading.Time)
	assert.Equal(t, telemetry.Field{Value: 23.5, Present: true}, reading.Field(telemetry.Temperature))
	assert.Equal(t, telemetry.Field{Value: 41, Present: true}, reading.Field(telemetry.Humidity))
	assert.Equal(t, telemetry.Field{Value: 1200, Present: true}, reading.Field(telemetry.Gas))
	assert.Equal(t, telemetry.Field{Value: 12.25, Present: true}, reading.Field(telemetry.Distance))
	assert.Equal(t, telemetry.Field{Value: 300, Present: true}, reading.Field(telemetry.Light))
	assert.Equal(t, telemetry.Motion{Detected: true, Present: true}, reading.Motion)
	assert.Empty(t, reading.Coerced)
}

func TestDecodeMalformedEnvelope(t *testing.T) {
	cases := map[string]string{
		"not json":   `{"temp": 2`,
		"array":      `[1, 2, 3]`,
		"string":     `"temp"`,
		"null":       `null`,
		"whitespace": "  \n",
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := telemetry.Decode([]byte(payload), at)
			require.Error(t, err)
			assert.True(t,
				errors.HasCode(err, telemetry.ErrDecodeFailed) || errors.HasCode(err, telemetry.ErrEmptyPayload),
				"unexpected error: %v", err)
		})
	}
}

func TestDecodeBadFieldDefaults(t *testing.T) {
	reading, err := telemetry.Decode([]byte(`{"temp": "not-a-number"}`), at)
	require.NoError(t, err)

	assert.Equal(t, telemetry.Field{Value: 0, Present: true}, reading.Field(telemetry.Temperature))
	assert.Equal(t, []telemetry.Metric{telemetry.Temperature}, reading.Coerced)

	for _, m := range []telemetry.Metric{telemetry.Humidity, telemetry.Gas, telemetry.Distance, telemetry.Light} {
		assert.Equal(t, telemetry.Field{}, reading.Field(m), "metric %s", m)
	}
	assert.False(t, reading.Motion.Present)
	assert.False(t, reading.Motion.Detected)
	assert.Equal(t, [telemetry.NumMetrics]float64{}, reading.Values())
}

func TestDecodeNumericStrings(t *testing.T) {
	reading, err := telemetry.Decode([]byte(`{"temp": "21.5", "gas": "3001", "hum": {"nested": true}}`), at)
	require.NoError(t, err)

	assert.Equal(t, 21.5, reading.Field(telemetry.Temperature).Value)
	assert.Equal(t, 3001.0, reading.Field(telemetry.Gas).Value)
	assert.Equal(t, telemetry.Field{Value: 0, Present: true}, reading.Field(telemetry.Humidity))
	assert.Equal(t, []telemetry.Metric{telemetry.Humidity}, reading.Coerced)
}

func TestDecodeGasIsInteger(t *testing.T) {
	reading, err := telemetry.Decode([]byte(`{"gas": 3000.9}`), at)
	require.NoError(t, err)
	assert.Equal(t, 3000.0, reading.Field(telemetry.Gas).Value)
}

func TestDecodeGasStringsAreDecimal(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    float64
		coerced bool
	}{
		{"leading zero", `{"gas": "0100"}`, 100, false},
		{"hex", `{"gas": "0x1000"}`, 0, true},
		{"fraction", `{"gas": "3000.9"}`, 3000, false},
		{"negative", `{"gas": -12.7}`, -12, false},
		{"beyond int64", `{"gas": 1e20}`, 1e20, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reading, err := telemetry.Decode([]byte(tt.payload), at)
			require.NoError(t, err)

			assert.Equal(t, telemetry.Field{Value: tt.want, Present: true}, reading.Field(telemetry.Gas))
			if tt.coerced {
				assert.Equal(t, []telemetry.Metric{telemetry.Gas}, reading.Coerced)
			} else {
				assert.Empty(t, reading.Coerced)
			}
		})
	}
}

func TestDecodeNullFieldsAreAbsent(t *testing.T) {
	reading, err := telemetry.Decode([]byte(`{"temp": null, "gas": null, "pir": null, "hum": 40}`), at)
	require.NoError(t, err)

	assert.Equal(t, telemetry.Field{}, reading.Field(telemetry.Temperature))
	assert.Equal(t, telemetry.Field{}, reading.Field(telemetry.Gas))
	assert.Equal(t, telemetry.Motion{}, reading.Motion)
	assert.Equal(t, telemetry.Field{Value: 40, Present: true}, reading.Field(telemetry.Humidity))
	assert.Empty(t, reading.Coerced)
}

func TestIsMotion(t *testing.T) {
	assert.True(t, telemetry.IsMotion("1"))
	assert.True(t, telemetry.IsMotion(1.0))
	assert.True(t, telemetry.IsMotion(1))
	assert.False(t, telemetry.IsMotion("0"))
	assert.False(t, telemetry.IsMotion(0.0))
	assert.False(t, telemetry.IsMotion(true))
	assert.False(t, telemetry.IsMotion("yes"))
	assert.False(t, telemetry.IsMotion(nil))
	assert.False(t, telemetry.IsMotion(map[string]any{}))
}

func TestDecodeMotionAbsentOrZero(t *testing.T) {
	reading, err := telemetry.Decode([]byte(`{"pir": "0"}`), at)
	require.NoError(t, err)
	assert.Equal(t, telemetry.Motion{Detected: false, Present: true}, reading.Motion)

	reading, err = telemetry.Decode([]byte(`{}`), at)
	require.NoError(t, err)
	assert.Equal(t, telemetry.Motion{}, reading.Motion)
}

func TestParseMetric(t *testing.T) {
	m, err := telemetry.ParseMetric("gas")
	require.NoError(t, err)
	assert.Equal(t, telemetry.Gas, m)

	_, err = telemetry.ParseMetric("pir")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, telemetry.ErrUnknownMetric))
}
