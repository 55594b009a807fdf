package client

import (
	"context"
	"log/slog"
	"time"
)

// Poller periodically refreshes the actor's orders into the view. It is
// the fallback that keeps the picture converging while the realtime
// channel is down, and a safety net for dropped events while it is up.
type Poller struct {
	client   *Client
	view     *ViewState
	log      *slog.Logger
	interval time.Duration
	filter   string
}

func NewPoller(c *Client, view *ViewState, filter string, interval time.Duration, log *slog.Logger) *Poller {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Poller{
		client:   c,
		view:     view,
		log:      log,
		interval: interval,
		filter:   filter,
	}
}

// Run polls until ctx is cancelled. Errors are logged and the next tick
// tries again; a flaky server only delays convergence.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	orders, err := p.client.MyOrders(ctx, p.filter)
	if err != nil {
		p.log.Debug("poll failed", "err", err)
		return
	}
	for _, o := range orders {
		p.view.MergeOrder(o)
	}
}
