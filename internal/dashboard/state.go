// Package dashboard owns the live sensor snapshot and the bounded history.
//
// Ingestion (bus callback) and polling (refresh timer) run concurrently. All
// mutation happens under one lock and every read returns a copy, so readers
// never observe a half-applied reading.
package dashboard

import (
	"sync"
	"time"

	"codeberg.org/mutker/homedash/internal/alert"
	"codeberg.org/mutker/homedash/internal/history"
	"codeberg.org/mutker/homedash/internal/logger"
	"codeberg.org/mutker/homedash/internal/metrics"
	"codeberg.org/mutker/homedash/internal/telemetry"
)

// ViewMessage is the live message type carrying a View
const ViewMessage = "view"

// View is what the presentation layer renders on every refresh
type View struct {
	Time    time.Time   `json:"time"`
	Display Display     `json:"display"`
	Alert   alert.State `json:"alert"`
}

type State struct {
	mu         sync.RWMutex
	snapshot   Snapshot
	history    *history.Store
	pollAppend bool
	now        func() time.Time
}

type Option func(*State)

// WithPollAppend makes every Tick record the current snapshot into the
// history, in addition to the append done on ingestion.
func WithPollAppend(enabled bool) Option {
	return func(s *State) {
		s.pollAppend = enabled
	}
}

// WithCapacity overrides the history capacity
func WithCapacity(capacity int) Option {
	return func(s *State) {
		s.history = history.NewWithCapacity(capacity)
	}
}

// WithClock overrides the ingestion clock
func WithClock(now func() time.Time) Option {
	return func(s *State) {
		s.now = now
	}
}

func New(opts ...Option) *State {
	s := &State{
		history: history.New(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// HandleMessage decodes and ingests one bus message. Malformed payloads are
// logged and dropped without touching the state.
func (s *State) HandleMessage(topic string, payload []byte) {
	metrics.MessagesReceived.Inc()

	reading, err := telemetry.Decode(payload, s.now())
	if err != nil {
		metrics.DecodeFailures.Inc()
		logger.Warn().
			Err(err).
			Str("topic", topic).
			Int("size", len(payload)).
			Msg("Dropping malformed telemetry")
		return
	}

	for _, m := range reading.Coerced {
		metrics.CoercedFields.WithLabelValues(string(m)).Inc()
		logger.Warn().
			Str("topic", topic).
			Str("metric", string(m)).
			Msg("Telemetry field is not numeric, defaulting to 0")
	}

	s.Ingest(reading)
}

// Ingest folds a decoded reading into the snapshot and the history
func (s *State) Ingest(r telemetry.Reading) {
	s.mu.Lock()
	s.snapshot = s.snapshot.apply(r)
	s.history.Append(r.Time, r.Values())
	if r.Motion.Detected {
		s.history.AppendMotion(r.Time)
	}
	// gauges follow the snapshot, so they are set before another ingest can
	// overwrite it
	for i, v := range s.snapshot.Values {
		if r.Fields[i].Present {
			metrics.SensorValue.WithLabelValues(string(telemetry.Metrics[i])).Set(v.Number)
		}
	}
	s.mu.Unlock()

	if r.Motion.Detected {
		metrics.MotionEvents.Inc()
	}

	logger.Debug().
		Time("at", r.Time).
		Interface("values", r.Values()).
		Bool("motion", r.Motion.Detected).
		Msg("Telemetry ingested")
}

// Tick is the periodic refresh. It returns the current view and, when poll
// append is enabled, records the snapshot into the history first.
func (s *State) Tick(at time.Time) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pollAppend {
		s.history.Append(at, s.snapshot.numbers())
		if s.snapshot.MotionDetected() {
			s.history.AppendMotion(at)
		}
	}

	return s.viewLocked(at)
}

// View returns the current view without recording anything
func (s *State) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.viewLocked(s.now())
}

func (s *State) viewLocked(at time.Time) View {
	return View{
		Time:    at,
		Display: s.snapshot.Display(),
		Alert:   s.alertLocked(),
	}
}

// Snapshot returns a copy of the latest values
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot
}

// Display returns the latest values formatted for display
func (s *State) Display() Display {
	return s.Snapshot().Display()
}

// Alert evaluates the gas hazard from the latest known gas value
func (s *State) Alert() alert.State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.alertLocked()
}

func (s *State) alertLocked() alert.State {
	gas := s.snapshot.Value(telemetry.Gas)

	return alert.FromLatest(gas.Number, gas.Known)
}

// History returns a copy of the series recorded for m
func (s *State) History(m telemetry.Metric) []history.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.history.Series(m)
}

// MotionHistory returns a copy of the motion timestamps
func (s *State) MotionHistory() []time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.history.Motion()
}

// HistoryLen returns the number of ticks held
func (s *State) HistoryLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.history.Len()
}
