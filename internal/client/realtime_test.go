package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// Every reconnect cycle must leave zero goroutines behind, or a client
// that stays up for days leaks one per drop.
func TestConsumeLeavesNoWatcherBehind(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer srv.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	rt := NewRealtime(srv.URL, "tok", NewViewState(), log)

	ctx := context.Background()
	before := runtime.NumGoroutine()

	const cycles = 30
	for i := 0; i < cycles; i++ {
		conn, err := rt.dial(ctx)
		require.NoError(t, err)
		require.Error(t, rt.consume(ctx, conn))
	}

	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() < before+cycles/2
	}, 2*time.Second, 20*time.Millisecond)
}
