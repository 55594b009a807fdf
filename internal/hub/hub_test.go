package hub

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/entregalabs/entrega/internal/route/domain"
	"github.com/entregalabs/entrega/pkg/metrics"
)

func newTestHub(buffer int) *Hub {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, metrics.NewServerMetrics(), buffer)
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	h := newTestHub(8)
	a := h.Subscribe()
	b := h.Subscribe()
	defer h.Unsubscribe(a)
	defer h.Unsubscribe(b)

	h.PublishPosition("v1", -23.5, -46.6)

	for _, sub := range []*Subscriber{a, b} {
		select {
		case ev := <-sub.Events():
			require.Equal(t, KindPosition, ev.Kind)
			require.Equal(t, "v1", ev.VehicleID)
			require.Equal(t, -23.5, ev.Lat)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := newTestHub(1)
	slow := h.Subscribe()
	defer h.Unsubscribe(slow)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			h.PublishDeliveryCompleted("v1")
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on slow subscriber")
	}

	// Buffer of one: exactly one event survived, the rest were dropped.
	require.Len(t, slow.Events(), 1)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := newTestHub(4)
	sub := h.Subscribe()
	h.Unsubscribe(sub)

	_, ok := <-sub.Events()
	require.False(t, ok)

	// Publishing after unsubscribe must not panic on the closed channel.
	h.PublishRoute("v1", []domain.Point{{Lat: 1, Lng: 2}})
}
