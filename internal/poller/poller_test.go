package poller_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"codeberg.org/mutker/homedash/internal/dashboard"
	"codeberg.org/mutker/homedash/internal/errors"
	"codeberg.org/mutker/homedash/internal/logger"
	"codeberg.org/mutker/homedash/internal/poller"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	views []dashboard.View
}

func (r *recorder) Broadcast(msgType string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msgType == dashboard.ViewMessage {
		r.views = append(r.views, payload.(dashboard.View))
	}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.views)
}

func TestRefreshBroadcastsView(t *testing.T) {
	state := dashboard.New()
	state.HandleMessage("t", []byte(`{"gas":4000}`))
	out := &recorder{}
	p := poller.New(state, out, time.Second, logger.Default())

	view := p.Refresh(time.Now())
	assert.True(t, view.Alert.Hazard)
	assert.Equal(t, "4000", view.Display.Gas)

	require.Equal(t, 1, out.count())
	assert.Equal(t, view, out.views[0])
}

func TestRefreshRecordsWithPollAppend(t *testing.T) {
	state := dashboard.New(dashboard.WithPollAppend(true))
	p := poller.New(state, nil, time.Second, logger.Default())

	for i := 0; i < 35; i++ {
		p.Refresh(time.Now())
	}

	assert.Equal(t, 30, state.HistoryLen())
}

func TestRunStopsOnCancel(t *testing.T) {
	out := &recorder{}
	p := poller.New(dashboard.New(), out, 10*time.Millisecond, logger.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return out.count() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}
}

func TestRunRejectsInvalidInterval(t *testing.T) {
	p := poller.New(dashboard.New(), nil, 0, logger.Default())

	err := p.Run(context.Background())
	assert.True(t, errors.HasCode(err, errors.ErrInvalidInterval))
}
