package hub

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 45 * time.Second
)

// PositionSink receives inbound position pushes from carrier connections.
// The fleet service implements it; persisting, the ownership check, and
// broadcasting all happen behind it. actorID is the authenticated
// identity of the connection that sent the push.
type PositionSink interface {
	MovePosition(ctx context.Context, actorID, vehicleID string, lat, lng float64) error
}

// PositionSinkFunc adapts a plain function to PositionSink.
type PositionSinkFunc func(ctx context.Context, actorID, vehicleID string, lat, lng float64) error

func (f PositionSinkFunc) MovePosition(ctx context.Context, actorID, vehicleID string, lat, lng float64) error {
	return f(ctx, actorID, vehicleID, lat, lng)
}

// WSHandler upgrades one connection per client and pumps hub events to
// it. Inbound messages are carrier position pushes.
type WSHandler struct {
	hub  *Hub
	sink PositionSink
	log  *slog.Logger

	upgrader websocket.Upgrader
}

func NewWSHandler(h *Hub, sink PositionSink, log *slog.Logger) *WSHandler {
	return &WSHandler{
		hub:  h,
		sink: sink,
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

type inboundPosition struct {
	VehicleID string  `json:"vehicleId"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

// Serve upgrades one authenticated connection and pumps hub events to
// it. actorID scopes the inbound position pushes the connection may
// make.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request, actorID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "err", err)
		return
	}

	sub := h.hub.Subscribe()
	defer h.hub.Unsubscribe(sub)

	go h.readPump(r.Context(), conn, actorID)
	h.writePump(conn, sub)
}

func (h *WSHandler) readPump(ctx context.Context, conn *websocket.Conn, actorID string) {
	defer conn.Close()

	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inboundPosition
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("websocket read ended", "err", err)
			}
			return
		}
		if msg.VehicleID == "" {
			continue
		}
		if err := h.sink.MovePosition(ctx, actorID, msg.VehicleID, msg.Lat, msg.Lng); err != nil {
			h.log.Warn("position update rejected",
				"actor_id", actorID, "vehicle_id", msg.VehicleID, "err", err)
		}
	}
}

func (h *WSHandler) writePump(conn *websocket.Conn, sub *Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case ev, ok := <-sub.Events():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
