package dashboard

import (
	"strconv"
	"time"

	"codeberg.org/mutker/homedash/internal/telemetry"
)

// Unknown is shown for a metric that has not been reported yet
const Unknown = "---"

const (
	MotionDetected = "Motion detected"
	NoMotion       = "No motion"
)

// Value is the last known value of one metric
type Value struct {
	Number float64
	Known  bool
}

// String formats the value for display, Unknown before the first report
func (v Value) String() string {
	if !v.Known {
		return Unknown
	}

	return strconv.FormatFloat(v.Number, 'f', -1, 64)
}

// Snapshot holds the latest known value of every sensor
type Snapshot struct {
	Values  [telemetry.NumMetrics]Value
	Motion  Value
	Updated time.Time
}

// Value returns the latest value for m
func (s Snapshot) Value(m telemetry.Metric) Value {
	i, ok := m.Index()
	if !ok {
		return Value{}
	}

	return s.Values[i]
}

// MotionDetected reports whether the latest PIR value means motion
func (s Snapshot) MotionDetected() bool {
	return s.Motion.Known && s.Motion.Number == 1
}

// apply overwrites the fields present in r and keeps the others
func (s Snapshot) apply(r telemetry.Reading) Snapshot {
	for i, f := range r.Fields {
		if f.Present {
			s.Values[i] = Value{Number: f.Value, Known: true}
		}
	}

	if r.Motion.Present {
		motion := Value{Known: true}
		if r.Motion.Detected {
			motion.Number = 1
		}
		s.Motion = motion
	}

	s.Updated = r.Time

	return s
}

// numbers returns the values to record for a tick, unknown ones as 0
func (s Snapshot) numbers() [telemetry.NumMetrics]float64 {
	var values [telemetry.NumMetrics]float64
	for i, v := range s.Values {
		values[i] = v.Number
	}

	return values
}

// Display is the snapshot formatted for direct display
type Display struct {
	Temperature string `json:"temp"`
	Humidity    string `json:"hum"`
	Gas         string `json:"gas"`
	Distance    string `json:"dist"`
	Light       string `json:"luz"`
	Motion      string `json:"pir"`
}

// Display formats the snapshot
func (s Snapshot) Display() Display {
	motion := NoMotion
	if s.MotionDetected() {
		motion = MotionDetected
	}

	return Display{
		Temperature: s.Value(telemetry.Temperature).String() + " °C",
		Humidity:    s.Value(telemetry.Humidity).String() + " %",
		Gas:         s.Value(telemetry.Gas).String(),
		Distance:    s.Value(telemetry.Distance).String() + " cm",
		Light:       s.Value(telemetry.Light).String(),
		Motion:      motion,
	}
}
