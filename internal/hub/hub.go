package hub

import (
	"log/slog"
	"sync"

	"github.com/entregalabs/entrega/internal/route/domain"
	"github.com/entregalabs/entrega/pkg/metrics"
)

// Hub fans events out to subscribers. Publish never blocks: a subscriber
// whose buffer is full loses the event and is expected to resynchronize
// through recovery, the same path a reconnect takes.
type Hub struct {
	log    *slog.Logger
	m      *metrics.ServerMetrics
	buffer int

	mu   sync.RWMutex
	subs map[*Subscriber]struct{}
}

type Subscriber struct {
	events chan Event
}

// Events is the subscriber's receive side. It is closed on Unsubscribe.
func (s *Subscriber) Events() <-chan Event { return s.events }

func New(log *slog.Logger, m *metrics.ServerMetrics, buffer int) *Hub {
	if buffer < 1 {
		buffer = 64
	}
	return &Hub{
		log:    log,
		m:      m,
		buffer: buffer,
		subs:   make(map[*Subscriber]struct{}),
	}
}

func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{events: make(chan Event, h.buffer)}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	_, ok := h.subs[sub]
	delete(h.subs, sub)
	h.mu.Unlock()

	if ok {
		close(sub.events)
	}
}

func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.m != nil {
		h.m.EventsPublished.WithLabelValues(ev.Kind).Inc()
	}

	for sub := range h.subs {
		select {
		case sub.events <- ev:
		default:
			if h.m != nil {
				h.m.EventsDropped.WithLabelValues(ev.Kind).Inc()
			}
			h.log.Warn("dropping event for slow subscriber", "kind", ev.Kind, "vehicle_id", ev.VehicleID)
		}
	}
}

// PublishPosition satisfies the fleet service's publisher port.
func (h *Hub) PublishPosition(vehicleID string, lat, lng float64) {
	h.Publish(PositionEvent(vehicleID, lat, lng))
}

// PublishRoute and PublishDeliveryCompleted satisfy the order service's
// publisher port.
func (h *Hub) PublishRoute(vehicleID string, waypoints []domain.Point) {
	h.Publish(RouteEvent(vehicleID, waypoints))
}

func (h *Hub) PublishDeliveryCompleted(vehicleID string) {
	h.Publish(DeliveryCompletedEvent(vehicleID))
}
