package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	actordom "github.com/entregalabs/entrega/internal/actor/domain"
	catalogapp "github.com/entregalabs/entrega/internal/catalog/app"
	fleetapp "github.com/entregalabs/entrega/internal/fleet/app"
	fleetdom "github.com/entregalabs/entrega/internal/fleet/domain"
	orderapp "github.com/entregalabs/entrega/internal/order/app"
	orderdom "github.com/entregalabs/entrega/internal/order/domain"
	routedom "github.com/entregalabs/entrega/internal/route/domain"
	stockdom "github.com/entregalabs/entrega/internal/stock/domain"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Product string `json:"product,omitempty"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
}

// writeError maps domain errors to status codes in one place, so every
// handler fails the same way.
func writeError(w http.ResponseWriter, err error) {
	var short *stockdom.InsufficientStockError
	if errors.As(err, &short) {
		writeJSON(w, http.StatusConflict, errorBody{Error: short.Error(), Product: short.ProductID})
		return
	}

	var invalid *orderdom.InvalidTransitionError
	if errors.As(err, &invalid) {
		writeJSON(w, http.StatusConflict, errorBody{
			Error: invalid.Error(),
			From:  string(invalid.From),
			To:    string(invalid.To),
		})
		return
	}

	switch {
	case errors.Is(err, stockdom.ErrProductInUse):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, stockdom.ErrInvalidQuantity),
		errors.Is(err, catalogapp.ErrInvalidInput),
		errors.Is(err, fleetapp.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, orderdom.ErrNotFound),
		errors.Is(err, stockdom.ErrNotFound),
		errors.Is(err, catalogapp.ErrNotFound),
		errors.Is(err, fleetdom.ErrNotFound),
		errors.Is(err, routedom.ErrNotFound),
		errors.Is(err, actordom.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, actordom.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	case errors.Is(err, orderapp.ErrForbidden),
		errors.Is(err, fleetapp.ErrNotOwner):
		writeJSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
