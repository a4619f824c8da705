package history_test

import (
	"testing"
	"time"

	"codeberg.org/mutker/homedash/internal/history"
	"codeberg.org/mutker/homedash/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func valuesFor(i int) [telemetry.NumMetrics]float64 {
	v := float64(i)
	return [telemetry.NumMetrics]float64{v, v + 0.5, v * 100, v + 1, v + 2}
}

func TestEmptyStore(t *testing.T) {
	s := history.New()

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Series(telemetry.Gas))
	assert.NotNil(t, s.Series(telemetry.Gas))
	assert.Empty(t, s.Motion())
	assert.Empty(t, s.Times())
}

func TestLengthNeverExceedsCapacity(t *testing.T) {
	s := history.New()

	for i := 1; i <= 100; i++ {
		s.Append(base.Add(time.Duration(i)*time.Second), valuesFor(i))
		expected := min(i, history.Capacity)
		require.Equal(t, expected, s.Len())
		for _, m := range telemetry.Metrics {
			require.Len(t, s.Series(m), expected)
		}
		require.Len(t, s.Times(), expected)
	}
}

func TestEvictionIsFIFO(t *testing.T) {
	s := history.New()

	for i := 1; i <= 31; i++ {
		s.Append(base.Add(time.Duration(i)*time.Second), valuesFor(i))
	}

	temps := s.Series(telemetry.Temperature)
	require.Len(t, temps, 30)
	for j, p := range temps {
		assert.Equal(t, float64(j+2), p.Value)
		assert.Equal(t, base.Add(time.Duration(j+2)*time.Second), p.Time)
	}
}

func TestSeriesStayAligned(t *testing.T) {
	s := history.New()

	for i := 1; i <= 45; i++ {
		s.Append(base.Add(time.Duration(i)*time.Minute), valuesFor(i))
	}

	times := s.Times()
	for _, m := range telemetry.Metrics {
		series := s.Series(m)
		require.Len(t, series, len(times))
		for j := range series {
			assert.Equal(t, times[j], series[j].Time, "metric %s index %d", m, j)
		}
	}

	gas := s.Series(telemetry.Gas)
	temp := s.Series(telemetry.Temperature)
	for j := range gas {
		assert.Equal(t, temp[j].Value*100, gas[j].Value)
	}
}

func TestSeriesIsACopy(t *testing.T) {
	s := history.New()
	s.Append(base, valuesFor(1))

	series := s.Series(telemetry.Humidity)
	series[0].Value = -1

	for i := 2; i <= 40; i++ {
		s.Append(base.Add(time.Duration(i)*time.Second), valuesFor(i))
	}

	assert.Equal(t, -1.0, series[0].Value)
	assert.Len(t, series, 1)
	assert.Equal(t, 11.5, s.Series(telemetry.Humidity)[0].Value)
}

func TestMotionIsIndependent(t *testing.T) {
	s := history.New()

	for i := 0; i < 5; i++ {
		s.Append(base.Add(time.Duration(i)*time.Second), valuesFor(i))
	}
	s.AppendMotion(base)

	assert.Equal(t, 5, s.Len())
	assert.Len(t, s.Motion(), 1)

	for i := 1; i <= 40; i++ {
		s.AppendMotion(base.Add(time.Duration(i) * time.Second))
	}

	motion := s.Motion()
	require.Len(t, motion, history.Capacity)
	assert.Equal(t, base.Add(11*time.Second), motion[0])
	assert.Equal(t, base.Add(40*time.Second), motion[len(motion)-1])
	assert.Equal(t, 5, s.Len())
}

func TestZeroCapacityIgnoresAppends(t *testing.T) {
	s := history.NewWithCapacity(0)
	s.Append(base, valuesFor(1))
	s.AppendMotion(base)

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Motion())
}
