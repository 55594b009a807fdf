package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	actordom "github.com/entregalabs/entrega/internal/actor/domain"
	orderapp "github.com/entregalabs/entrega/internal/order/app"
	orderdom "github.com/entregalabs/entrega/internal/order/domain"
	routedom "github.com/entregalabs/entrega/internal/route/domain"
	stockdom "github.com/entregalabs/entrega/internal/stock/domain"
)

func statusFor(t *testing.T, err error) (int, errorBody) {
	t.Helper()
	rec := httptest.NewRecorder()
	writeError(rec, err)

	var body errorBody
	if decErr := json.NewDecoder(rec.Body).Decode(&body); decErr != nil {
		t.Fatalf("decode body: %v", decErr)
	}
	return rec.Code, body
}

func TestWriteErrorMapping(t *testing.T) {
	t.Run("insufficient stock -> 409 naming product", func(t *testing.T) {
		code, body := statusFor(t, &stockdom.InsufficientStockError{ProductID: "p1", Requested: 4, Available: 3})
		if code != http.StatusConflict || body.Product != "p1" {
			t.Fatalf("got (%d,%q)", code, body.Product)
		}
	})

	t.Run("invalid transition -> 409 naming statuses", func(t *testing.T) {
		code, body := statusFor(t, &orderdom.InvalidTransitionError{
			From: orderdom.StatusInTransit,
			To:   orderdom.StatusCancelled,
		})
		if code != http.StatusConflict || body.From != "IN_TRANSIT" || body.To != "CANCELLED" {
			t.Fatalf("got (%d,%s->%s)", code, body.From, body.To)
		}
	})

	t.Run("invalid quantity -> 400", func(t *testing.T) {
		code, _ := statusFor(t, stockdom.ErrInvalidQuantity)
		if code != http.StatusBadRequest {
			t.Fatalf("got %d", code)
		}
	})

	t.Run("product in use -> 409", func(t *testing.T) {
		code, _ := statusFor(t, stockdom.ErrProductInUse)
		if code != http.StatusConflict {
			t.Fatalf("got %d", code)
		}
	})

	t.Run("not found -> 404", func(t *testing.T) {
		for _, err := range []error{orderdom.ErrNotFound, stockdom.ErrNotFound, routedom.ErrNotFound} {
			code, _ := statusFor(t, err)
			if code != http.StatusNotFound {
				t.Fatalf("%v: got %d", err, code)
			}
		}
	})

	t.Run("invalid token -> 401", func(t *testing.T) {
		code, _ := statusFor(t, actordom.ErrInvalidToken)
		if code != http.StatusUnauthorized {
			t.Fatalf("got %d", code)
		}
	})

	t.Run("forbidden -> 403", func(t *testing.T) {
		code, _ := statusFor(t, orderapp.ErrForbidden)
		if code != http.StatusForbidden {
			t.Fatalf("got %d", code)
		}
	})

	t.Run("unknown error -> 500 without detail", func(t *testing.T) {
		code, body := statusFor(t, errors.New("boom"))
		if code != http.StatusInternalServerError || body.Error != "internal error" {
			t.Fatalf("got (%d,%q)", code, body.Error)
		}
	})
}
