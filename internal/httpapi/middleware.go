package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	actordom "github.com/entregalabs/entrega/internal/actor/domain"
	"github.com/entregalabs/entrega/pkg/metrics"
)

type ctxKey int

const actorKey ctxKey = 0

// Authenticator resolves a bearer token. The actor service implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (actordom.Actor, error)
}

func actorFrom(ctx context.Context) (actordom.Actor, bool) {
	a, ok := ctx.Value(actorKey).(actordom.Actor)
	return a, ok
}

func requireAuth(auth Authenticator, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		a, err := auth.Authenticate(r.Context(), token)
		if err != nil {
			writeError(w, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), actorKey, a)))
	}
}

// requireRole layers a role check on top of requireAuth.
func requireRole(auth Authenticator, role actordom.Role, next http.HandlerFunc) http.HandlerFunc {
	return requireAuth(auth, func(w http.ResponseWriter, r *http.Request) {
		a, _ := actorFrom(r.Context())
		if a.Role != role {
			writeJSON(w, http.StatusForbidden, errorBody{Error: "wrong role for this operation"})
			return
		}
		next(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func instrument(log *slog.Logger, m *metrics.ServerMetrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)

		m.Requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		m.LatencyMS.WithLabelValues(route, r.Method).Observe(float64(elapsed.Milliseconds()))

		log.Debug("http request",
			"route", route,
			"method", r.Method,
			"status", rec.status,
			"elapsed_ms", elapsed.Milliseconds(),
		)
	})
}
