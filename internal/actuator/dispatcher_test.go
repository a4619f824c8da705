package actuator_test

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"codeberg.org/mutker/homedash/internal/actuator"
	"codeberg.org/mutker/homedash/internal/errors"
	"codeberg.org/mutker/homedash/internal/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct {
	topic   string
	payload string
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []message
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, topic, payload string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sent = append(p.sent, message{topic, payload})
	return p.err
}

type memoryJournal struct {
	entries []journal.Entry
}

func (j *memoryJournal) Record(_ context.Context, e *journal.Entry) error {
	j.entries = append(j.entries, *e)
	return nil
}

func (j *memoryJournal) Recent(_ context.Context, _ int) ([]journal.Entry, error) {
	return j.entries, nil
}

func (j *memoryJournal) Close() error { return nil }

func TestDispatchTable(t *testing.T) {
	tests := []struct {
		action  actuator.Action
		topic   string
		payload string
	}{
		{actuator.Light1On, "home/dashboard/led1", "on"},
		{actuator.Light1Off, "home/dashboard/led1", "off"},
		{actuator.Light2On, "home/dashboard/led2", "on"},
		{actuator.Light2Off, "home/dashboard/led2", "off"},
		{actuator.Door1Open, "home/dashboard/servo1", "90"},
		{actuator.Door1Close, "home/dashboard/servo1", "0"},
		{actuator.Door2Open, "home/dashboard/servo2", "90"},
		{actuator.Door2Close, "home/dashboard/servo2", "0"},
		{actuator.Fan1Start, "home/dashboard/stepper1", "on"},
		{actuator.Fan2Start, "home/dashboard/stepper2", "on"},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			pub := &fakePublisher{}
			d := actuator.NewDispatcher(pub, actuator.DefaultTopics())

			cmd, err := d.Dispatch(context.Background(), tt.action)
			require.NoError(t, err)

			require.Len(t, pub.sent, 1)
			assert.Equal(t, tt.topic, pub.sent[0].topic)
			assert.Equal(t, tt.payload, pub.sent[0].payload)
			assert.Equal(t, tt.action, cmd.Action)
			assert.NotEmpty(t, cmd.RequestID)
		})
	}
}

func TestEveryActionIsRouted(t *testing.T) {
	d := actuator.NewDispatcher(&fakePublisher{}, actuator.DefaultTopics())

	for _, a := range d.Actions() {
		_, ok := d.Lookup(a)
		assert.True(t, ok, a)
	}
}

func TestDispatchUnknownAction(t *testing.T) {
	pub := &fakePublisher{}
	d := actuator.NewDispatcher(pub, actuator.DefaultTopics())

	_, err := d.Dispatch(context.Background(), actuator.Action("fan1-stop"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, actuator.ErrUnknownAction))
	assert.Empty(t, pub.sent)
}

func TestDispatchPublishFailure(t *testing.T) {
	pub := &fakePublisher{err: stderrors.New("broker unreachable")}
	rec := &memoryJournal{}
	d := actuator.NewDispatcher(pub, actuator.DefaultTopics(), actuator.WithJournal(rec))

	cmd, err := d.Dispatch(context.Background(), actuator.Door1Open)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, actuator.ErrPublishFailed))
	assert.Equal(t, "home/dashboard/servo1", cmd.Topic)

	// no retry
	assert.Len(t, pub.sent, 1)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, journal.StatusFailed, rec.entries[0].Status)
	assert.Contains(t, rec.entries[0].Error, "broker unreachable")
}

func TestDispatchJournalsSuccess(t *testing.T) {
	rec := &memoryJournal{}
	d := actuator.NewDispatcher(&fakePublisher{}, actuator.DefaultTopics(), actuator.WithJournal(rec))

	cmd, err := d.Dispatch(context.Background(), actuator.Fan2Start)
	require.NoError(t, err)

	require.Len(t, rec.entries, 1)
	e := rec.entries[0]
	assert.Equal(t, cmd.RequestID, e.RequestID)
	assert.Equal(t, "fan2-start", e.Action)
	assert.Equal(t, "home/dashboard/stepper2", e.Topic)
	assert.Equal(t, "on", e.Payload)
	assert.Equal(t, journal.StatusSent, e.Status)
	assert.Empty(t, e.Error)
}

func TestDispatchCustomTopics(t *testing.T) {
	pub := &fakePublisher{}
	topics := actuator.DefaultTopics()
	topics.Light2 = "lab/led2"
	d := actuator.NewDispatcher(pub, topics)

	_, err := d.Dispatch(context.Background(), actuator.Light2Off)
	require.NoError(t, err)
	assert.Equal(t, []message{{"lab/led2", "off"}}, pub.sent)
}

func TestDispatchWithoutPublisher(t *testing.T) {
	d := actuator.NewDispatcher(nil, actuator.DefaultTopics())

	_, err := d.Dispatch(context.Background(), actuator.Light1On)
	assert.True(t, errors.HasCode(err, actuator.ErrNoPublisher))
}
