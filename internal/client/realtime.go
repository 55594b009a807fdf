package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
)

// event mirrors the server's wire envelope.
type event struct {
	Kind      string  `json:"kind"`
	VehicleID string  `json:"vehicleId"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Waypoints []Point `json:"waypoints"`
}

// Realtime consumes the delivery channel over one websocket connection
// and dispatches events from a single goroutine, so handlers never see
// two events at once. A dropped connection triggers an unbounded
// exponential-backoff reconnect; while down, the poller keeps the view
// converging.
type Realtime struct {
	url     string
	token   string
	view    *ViewState
	log     *slog.Logger
	dial    func(ctx context.Context) (*websocket.Conn, error)
	healthy atomic.Bool

	// OnRecover runs after every successful (re)connect. The recovery
	// coordinator hooks in here to rebuild state missed while offline.
	OnRecover func(ctx context.Context)
}

func NewRealtime(baseURL, token string, view *ViewState, log *slog.Logger) *Realtime {
	wsURL := strings.Replace(baseURL, "http", "ws", 1) + "/ws"
	r := &Realtime{
		url:   wsURL,
		token: token,
		view:  view,
		log:   log,
	}
	r.dial = func(ctx context.Context) (*websocket.Conn, error) {
		hdr := http.Header{}
		hdr.Set("Authorization", "Bearer "+r.token)
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, r.url, hdr)
		return conn, err
	}
	return r
}

// Connected reports whether the channel is currently up. The UI shows a
// degraded banner while it is false.
func (r *Realtime) Connected() bool { return r.healthy.Load() }

// Run blocks until ctx is cancelled, reconnecting forever. There is no
// retry cap: the channel is an enhancement, and recovery on reconnect
// makes missed events harmless.
func (r *Realtime) Run(ctx context.Context) {
	policy := backoff.WithContext(newReconnectBackoff(), ctx)

	for {
		err := backoff.Retry(func() error {
			conn, err := r.dial(ctx)
			if err != nil {
				r.log.Debug("realtime dial failed", "err", err)
				return err
			}

			r.healthy.Store(true)
			policy.Reset()
			if r.OnRecover != nil {
				r.OnRecover(ctx)
			}

			err = r.consume(ctx, conn)
			r.healthy.Store(false)
			return err
		}, policy)

		if ctx.Err() != nil {
			return
		}
		if err != nil {
			// Retry only returns with a permanent error or exhausted
			// policy; neither happens with an unbounded backoff, but a
			// fresh policy restarts the loop regardless.
			policy = backoff.WithContext(newReconnectBackoff(), ctx)
		}
	}
}

func newReconnectBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 0
	return b
}

func (r *Realtime) consume(ctx context.Context, conn *websocket.Conn) error {
	defer conn.Close()

	// The watcher unblocks ReadMessage on cancellation and exits with
	// consume, so reconnect cycles do not pile up goroutines.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}

		var ev event
		if err := json.Unmarshal(raw, &ev); err != nil {
			r.log.Warn("bad event payload", "err", err)
			continue
		}
		r.dispatch(ev)
	}
}

func (r *Realtime) dispatch(ev event) {
	switch ev.Kind {
	case "Position":
		r.view.SetVehiclePosition(ev.VehicleID, ev.Lat, ev.Lng)
	case "Route":
		r.view.SetRoute(ev.VehicleID, ev.Waypoints)
	case "DeliveryCompleted":
		r.view.CompleteByVehicle(ev.VehicleID)
	default:
		r.log.Debug("ignoring unknown event kind", "kind", ev.Kind)
	}
}
