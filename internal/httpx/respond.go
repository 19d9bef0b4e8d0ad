package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ariefcatur/go-restaurant-pos/internal/orders"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, code int, v any) {
	writeJSON(w, code, map[string]any{"data": v})
}

func writeErr(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]any{"error": errorBody{Code: code, Message: msg}})
}

// statusFor maps a core error kind to its HTTP status.
func statusFor(k orders.Kind) int {
	switch k {
	case orders.KindNotFound:
		return http.StatusNotFound
	case orders.KindConflict, orders.KindInsufficientStock:
		return http.StatusConflict
	case orders.KindValidation:
		return http.StatusBadRequest
	case orders.KindRetryable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var oe *orders.Error
	switch {
	case errors.As(err, &oe):
		status := statusFor(oe.Kind)
		if status == http.StatusServiceUnavailable {
			w.Header().Set("Retry-After", "1")
			log.Warn("retryable abort", zap.Error(err))
		}
		writeErr(w, status, oe.Code, oe.Message)
	case errors.Is(err, context.DeadlineExceeded):
		w.Header().Set("Retry-After", "1")
		writeErr(w, http.StatusServiceUnavailable, orders.ErrRetryable.Code, orders.ErrRetryable.Message)
	default:
		log.Error("internal error", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
	}
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
