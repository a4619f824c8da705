package telemetry

import (
	"time"

	"codeberg.org/mutker/homedash/internal/errors"
)

// Metric names a numeric sensor channel as it appears on the wire
type Metric string

const (
	Temperature Metric = "temp"
	Humidity    Metric = "hum"
	Gas         Metric = "gas"
	Distance    Metric = "dist"
	Light       Metric = "luz"
)

// MotionKey is the wire key of the PIR motion sensor
const MotionKey = "pir"

// Metrics lists the numeric channels in display order. Index positions are
// stable and used by the history store.
var Metrics = [...]Metric{Temperature, Humidity, Gas, Distance, Light}

// NumMetrics is the number of numeric channels
const NumMetrics = len(Metrics)

// Index returns the position of m in Metrics
func (m Metric) Index() (int, bool) {
	for i, metric := range Metrics {
		if metric == m {
			return i, true
		}
	}

	return -1, false
}

// ParseMetric validates a metric name
func ParseMetric(name string) (Metric, error) {
	m := Metric(name)
	if _, ok := m.Index(); !ok {
		return "", errors.New().WithData(ErrUnknownMetric, name)
	}

	return m, nil
}

// Field is one decoded numeric value. Present is false when the key was
// missing from the payload; Value is then 0.
type Field struct {
	Value   float64
	Present bool
}

// Motion is the decoded PIR field
type Motion struct {
	Detected bool
	Present  bool
}

// Reading is one decoded telemetry event
type Reading struct {
	Time    time.Time
	Fields  [NumMetrics]Field
	Motion  Motion
	Coerced []Metric
}

// Field returns the decoded field for m
func (r Reading) Field(m Metric) Field {
	i, ok := m.Index()
	if !ok {
		return Field{}
	}

	return r.Fields[i]
}

// Values returns the numeric values in Metrics order, missing ones as 0
func (r Reading) Values() [NumMetrics]float64 {
	var values [NumMetrics]float64
	for i, f := range r.Fields {
		values[i] = f.Value
	}

	return values
}
