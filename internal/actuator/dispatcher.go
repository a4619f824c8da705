// Package actuator maps dashboard actions to outbound bus commands.
package actuator

import (
	"context"
	"time"

	"codeberg.org/mutker/homedash/internal/errors"
	"codeberg.org/mutker/homedash/internal/journal"
	"codeberg.org/mutker/homedash/internal/logger"
	"codeberg.org/mutker/homedash/internal/metrics"
	"github.com/google/uuid"
)

// Publisher sends one message to a bus topic
type Publisher interface {
	Publish(ctx context.Context, topic, payload string) error
}

// Command is a dispatched action
type Command struct {
	RequestID string    `json:"request_id"`
	Action    Action    `json:"action"`
	Topic     string    `json:"topic"`
	Payload   string    `json:"payload"`
	Time      time.Time `json:"time"`
}

type Dispatcher struct {
	publisher Publisher
	routes    map[Action]route
	journal   journal.Recorder
	log       logger.Logger
	now       func() time.Time
}

type Option func(*Dispatcher)

// WithJournal records every dispatched command
func WithJournal(rec journal.Recorder) Option {
	return func(d *Dispatcher) {
		d.journal = rec
	}
}

func WithLogger(log logger.Logger) Option {
	return func(d *Dispatcher) {
		d.log = log
	}
}

func NewDispatcher(publisher Publisher, topics Topics, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		publisher: publisher,
		routes:    topics.routes(),
		log:       logger.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Actions lists the actions this dispatcher accepts
func (d *Dispatcher) Actions() []Action {
	return Actions
}

// Lookup returns the command an action would publish, without publishing it
func (d *Dispatcher) Lookup(action Action) (Command, bool) {
	r, ok := d.routes[action]
	if !ok {
		return Command{}, false
	}

	return Command{Action: action, Topic: r.topic, Payload: r.payload}, true
}

// Dispatch publishes the command for action exactly once. A failed publish
// is reported to the caller and never retried.
func (d *Dispatcher) Dispatch(ctx context.Context, action Action) (Command, error) {
	errFactory := errors.New()

	cmd, ok := d.Lookup(action)
	if !ok {
		return Command{}, errFactory.WithData(ErrUnknownAction, string(action))
	}
	if d.publisher == nil {
		return cmd, errFactory.New(ErrNoPublisher)
	}

	cmd.RequestID = uuid.NewString()
	cmd.Time = d.now()

	err := d.publisher.Publish(ctx, cmd.Topic, cmd.Payload)

	status := journal.StatusSent
	if err != nil {
		status = journal.StatusFailed
	}
	metrics.CommandsDispatched.WithLabelValues(string(action), string(status)).Inc()
	d.record(ctx, cmd, status, err)

	if err != nil {
		d.log.Warn().
			Err(err).
			Str("request_id", cmd.RequestID).
			Str("action", string(action)).
			Str("topic", cmd.Topic).
			Msg("Failed to publish actuator command")
		return cmd, errFactory.Wrap(ErrPublishFailed, err)
	}

	d.log.Info().
		Str("request_id", cmd.RequestID).
		Str("action", string(action)).
		Str("topic", cmd.Topic).
		Str("payload", cmd.Payload).
		Msg("Actuator command sent")

	return cmd, nil
}

func (d *Dispatcher) record(ctx context.Context, cmd Command, status journal.Status, cause error) {
	if d.journal == nil {
		return
	}

	entry := &journal.Entry{
		RequestID: cmd.RequestID,
		Timestamp: cmd.Time,
		Action:    string(cmd.Action),
		Topic:     cmd.Topic,
		Payload:   cmd.Payload,
		Status:    status,
	}
	if cause != nil {
		entry.Error = cause.Error()
	}

	if err := d.journal.Record(ctx, entry); err != nil {
		d.log.Warn().Err(err).Str("request_id", cmd.RequestID).Msg("Failed to journal command")
	}
}
