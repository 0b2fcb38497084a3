package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/canstralian/GitUpgradeNavigator/internal/models"
	"github.com/canstralian/GitUpgradeNavigator/internal/plans"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventMessage is the wire envelope for plan progress streaming
type EventMessage struct {
	Type  string                `json:"type"`
	Event *models.ProgressEvent `json:"event,omitempty"`
	Plan  *models.UpgradePlan   `json:"plan,omitempty"`
	Error string                `json:"error,omitempty"`
}

const eventWriteTimeout = 10 * time.Second

// handlePlanEventsWS streams step-toggle progress events for one plan
// over a websocket. The current plan snapshot is sent on connect, then
// one message per progress change until the client disconnects.
func (s *Server) handlePlanEventsWS(w http.ResponseWriter, r *http.Request) {
	planID, ok := urlParamInt(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "validation_error", "plan id must be an integer")
		return
	}

	plan, err := s.planManager.Get(r.Context(), planID)
	if err != nil {
		if errors.Is(err, plans.ErrPlanNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "plan not found")
			return
		}
		slog.Error("failed to get plan for event stream", "error", err, "plan_id", planID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get plan")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	slog.Info("plan event stream connected", "plan_id", planID)

	broker := s.planManager.Events()
	events := broker.Subscribe(planID)
	defer broker.Unsubscribe(planID, events)

	// Send the current snapshot first so the client starts consistent
	if err := sendEventMessage(conn, EventMessage{Type: "snapshot", Plan: plan}); err != nil {
		return
	}

	// Drain client frames so close handshakes are noticed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.Debug("websocket read error", "error", err)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			slog.Info("plan event stream disconnected", "plan_id", planID)
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := sendEventMessage(conn, EventMessage{Type: "progress", Event: &event}); err != nil {
				return
			}
		}
	}
}

func sendEventMessage(conn *websocket.Conn, msg EventMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal event message", "error", err)
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Debug("failed to send event message", "error", err)
		return err
	}
	return nil
}
