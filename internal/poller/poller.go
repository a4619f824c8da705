// Package poller drives the periodic dashboard refresh.
package poller

import (
	"context"
	"time"

	"codeberg.org/mutker/homedash/internal/dashboard"
	"codeberg.org/mutker/homedash/internal/errors"
	"codeberg.org/mutker/homedash/internal/logger"
	"codeberg.org/mutker/homedash/internal/metrics"
)

// Ticker is the part of the dashboard state refreshed on every tick
type Ticker interface {
	Tick(at time.Time) dashboard.View
	HistoryLen() int
}

// Broadcaster pushes a view to live clients
type Broadcaster interface {
	Broadcast(msgType string, payload any)
}

type Poller struct {
	state    Ticker
	out      Broadcaster
	interval time.Duration
	log      logger.Logger

	hazard bool
}

func New(state Ticker, out Broadcaster, interval time.Duration, log logger.Logger) *Poller {
	return &Poller{
		state:    state,
		out:      out,
		interval: interval,
		log:      log,
	}
}

// Run refreshes the dashboard every interval until ctx is cancelled
func (p *Poller) Run(ctx context.Context) error {
	if p.interval <= 0 {
		return errors.New().WithData(errors.ErrInvalidInterval, p.interval.String())
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Info().Dur("interval", p.interval).Msg("Dashboard refresh started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			p.Refresh(now)
		}
	}
}

// Refresh runs one tick
func (p *Poller) Refresh(now time.Time) dashboard.View {
	view := p.state.Tick(now)

	metrics.PollTicks.Inc()
	metrics.GasHazard.Set(metrics.BoolToFloat(view.Alert.Hazard))
	metrics.HistoryLength.Set(float64(p.state.HistoryLen()))

	if p.out != nil {
		p.out.Broadcast(dashboard.ViewMessage, view)
	}

	p.logView(view)

	return view
}

func (p *Poller) logView(view dashboard.View) {
	if view.Alert.Hazard != p.hazard {
		p.hazard = view.Alert.Hazard
		if p.hazard {
			p.log.Warn().
				Float64("gas", view.Alert.Gas).
				Msg(view.Alert.Message)
		} else {
			p.log.Info().
				Float64("gas", view.Alert.Gas).
				Msg("Gas level back to normal")
		}
	}

	p.log.Debug().
		Str("temp", view.Display.Temperature).
		Str("hum", view.Display.Humidity).
		Str("gas", view.Display.Gas).
		Str("dist", view.Display.Distance).
		Str("luz", view.Display.Light).
		Str("pir", view.Display.Motion).
		Bool("hazard", view.Alert.Hazard).
		Msg("")
}
