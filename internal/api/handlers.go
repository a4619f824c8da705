// Package api is the HTTP and live view surface of the dashboard.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"codeberg.org/mutker/homedash/internal/actuator"
	"codeberg.org/mutker/homedash/internal/alert"
	"codeberg.org/mutker/homedash/internal/dashboard"
	"codeberg.org/mutker/homedash/internal/errors"
	"codeberg.org/mutker/homedash/internal/history"
	"codeberg.org/mutker/homedash/internal/journal"
	"codeberg.org/mutker/homedash/internal/logger"
	"codeberg.org/mutker/homedash/internal/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/spf13/cast"
)

const (
	defaultCommandLimit = 20
	maxCommandLimit     = 100
)

// StateReader is the read side of the dashboard state
type StateReader interface {
	View() dashboard.View
	Display() dashboard.Display
	Alert() alert.State
	History(m telemetry.Metric) []history.Point
	MotionHistory() []time.Time
}

// Dispatcher sends actuator commands
type Dispatcher interface {
	Dispatch(ctx context.Context, action actuator.Action) (actuator.Command, error)
	Lookup(action actuator.Action) (actuator.Command, bool)
	Actions() []actuator.Action
}

// HealthChecker reports bus connectivity
type HealthChecker interface {
	IsConnected() bool
}

type Handler struct {
	state      StateReader
	dispatcher Dispatcher
	hub        *Hub
	journal    journal.Recorder
	bus        HealthChecker
	log        logger.Logger
	upgrader   websocket.Upgrader
}

type Option func(*Handler)

func WithJournal(rec journal.Recorder) Option {
	return func(h *Handler) {
		h.journal = rec
	}
}

func WithHealthChecker(bus HealthChecker) Option {
	return func(h *Handler) {
		h.bus = bus
	}
}

func WithLogger(log logger.Logger) Option {
	return func(h *Handler) {
		h.log = log
	}
}

func NewHandler(state StateReader, dispatcher Dispatcher, hub *Hub, opts ...Option) *Handler {
	h := &Handler{
		state:      state,
		dispatcher: dispatcher,
		hub:        hub,
		log:        logger.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

type errorResponse struct {
	Error string          `json:"error"`
	Code  errors.ErrorCode `json:"code"`
}

type historyResponse struct {
	Metric telemetry.Metric `json:"metric"`
	Points []history.Point  `json:"points"`
}

type actionResponse struct {
	Action  actuator.Action `json:"action"`
	Topic   string          `json:"topic"`
	Payload string          `json:"payload"`
}

type healthResponse struct {
	Status string `json:"status"`
	Bus    string `json:"bus"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Debug().Err(errors.New().Wrap(ErrEncodeFailed, err)).Msg("Failed to write response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, errorResponse{Error: err.Error(), Code: errors.CodeOf(err)})
}

// View returns the combined display and alert state
func (h *Handler) View(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.state.View())
}

func (h *Handler) Display(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.state.Display())
}

func (h *Handler) Alert(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.state.Alert())
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	m, err := telemetry.ParseMetric(chi.URLParam(r, "metric"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	h.writeJSON(w, http.StatusOK, historyResponse{Metric: m, Points: h.state.History(m)})
}

func (h *Handler) Motion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.state.MotionHistory())
}

// Actions lists every action with the command it publishes
func (h *Handler) Actions(w http.ResponseWriter, _ *http.Request) {
	actions := h.dispatcher.Actions()
	out := make([]actionResponse, 0, len(actions))
	for _, a := range actions {
		cmd, ok := h.dispatcher.Lookup(a)
		if !ok {
			continue
		}
		out = append(out, actionResponse{Action: a, Topic: cmd.Topic, Payload: cmd.Payload})
	}

	h.writeJSON(w, http.StatusOK, out)
}

// Dispatch publishes one actuator command
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	action := actuator.Action(chi.URLParam(r, "action"))

	cmd, err := h.dispatcher.Dispatch(r.Context(), action)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusAccepted, cmd)
	case errors.HasCode(err, actuator.ErrUnknownAction):
		h.writeError(w, http.StatusNotFound, err)
	case errors.HasCode(err, actuator.ErrNoPublisher):
		h.writeError(w, http.StatusServiceUnavailable, err)
	default:
		h.writeError(w, http.StatusBadGateway, err)
	}
}

// Commands returns the most recent journaled commands
func (h *Handler) Commands(w http.ResponseWriter, r *http.Request) {
	limit := defaultCommandLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := cast.ToIntE(raw)
		if err != nil || n <= 0 {
			h.writeError(w, http.StatusBadRequest, errors.New().WithData(ErrInvalidLimit, raw))
			return
		}
		limit = min(n, maxCommandLimit)
	}

	if h.journal == nil {
		h.writeJSON(w, http.StatusOK, []journal.Entry{})
		return
	}

	entries, err := h.journal.Recent(r.Context(), limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok", Bus: "connected"}
	if h.bus != nil && !h.bus.IsConnected() {
		resp = healthResponse{Status: "degraded", Bus: "disconnected"}
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// LiveView upgrades to a websocket, sends the current view and registers
// the client for every subsequent refresh.
func (h *Handler) LiveView(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(errors.New().Wrap(ErrUpgradeFailed, err)).Msg("Live view upgrade failed")
		return
	}

	client := NewClient(h.hub, conn, h.log)
	if b, err := Encode(dashboard.ViewMessage, h.state.View()); err == nil {
		client.Queue(b)
	}

	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
