package history

import (
	"time"

	"codeberg.org/mutker/homedash/internal/telemetry"
)

// Capacity is the number of points kept per series
const Capacity = 30

// Point is one value of a metric series
type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// tick holds every numeric metric for one instant, so that all series and
// the shared timestamps are evicted together.
type tick struct {
	at     time.Time
	values [telemetry.NumMetrics]float64
}

// Store keeps the bounded metric and motion history. It is not safe for
// concurrent use; callers serialize access.
type Store struct {
	ticks  *ring[tick]
	motion *ring[time.Time]
}

func New() *Store {
	return NewWithCapacity(Capacity)
}

// NewWithCapacity creates a store keeping capacity points per series
func NewWithCapacity(capacity int) *Store {
	return &Store{
		ticks:  newRing[tick](capacity),
		motion: newRing[time.Time](capacity),
	}
}

// Append records one value per numeric metric at the given time
func (s *Store) Append(at time.Time, values [telemetry.NumMetrics]float64) {
	s.ticks.push(tick{at: at, values: values})
}

// AppendMotion records a motion detection
func (s *Store) AppendMotion(at time.Time) {
	s.motion.push(at)
}

// Series returns a copy of the points recorded for m, oldest first
func (s *Store) Series(m telemetry.Metric) []Point {
	idx, ok := m.Index()
	if !ok {
		return []Point{}
	}

	points := make([]Point, s.ticks.len())
	for i := range points {
		t := s.ticks.at(i)
		points[i] = Point{Time: t.at, Value: t.values[idx]}
	}

	return points
}

// Times returns a copy of the shared timestamp sequence
func (s *Store) Times() []time.Time {
	times := make([]time.Time, s.ticks.len())
	for i := range times {
		times[i] = s.ticks.at(i).at
	}

	return times
}

// Motion returns a copy of the motion timestamps, oldest first
func (s *Store) Motion() []time.Time {
	return s.motion.slice()
}

// Len returns the number of ticks held
func (s *Store) Len() int {
	return s.ticks.len()
}
