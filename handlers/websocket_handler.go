package handlers

import (
	"log/slog"
	"net/http"

	"github.com/JackRamey/MTGLeague/live"
	"github.com/JackRamey/MTGLeague/services"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict origins once the frontend domain is settled.
		return true
	},
}

type WebSocketHandler struct {
	hub          *live.Hub
	eventService services.EventService
}

func NewWebSocketHandler(hub *live.Hub, eventService services.EventService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:          hub,
		eventService: eventService,
	}
}

// ServeWs subscribes the caller to live updates for one event.
// Clients connect to /ws/events/{eventID}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// Reject subscriptions to events that don't exist.
	if _, err := h.eventService.GetEvent(r.Context(), eventID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade websocket connection", slog.Int("event_id", eventID), slog.Any("error", err))
		return
	}

	client := &live.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: live.EventRoom(eventID),
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()

	slog.Info("websocket client subscribed", slog.Int("event_id", eventID))
}
