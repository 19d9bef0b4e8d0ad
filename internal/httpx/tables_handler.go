package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/ariefcatur/go-restaurant-pos/internal/auth"
)

type TableStatusReq struct {
	Status string `json:"status"`
}

func (h *Handler) listTables(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	ts, err := h.Service.ListTables(ctx)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeData(w, http.StatusOK, ts)
}

func (h *Handler) tableOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeErr(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid id")
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	list, err := h.Service.OrdersByTable(ctx, id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeData(w, http.StatusOK, list)
}

func (h *Handler) setTableStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeErr(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid id")
		return
	}
	var req TableStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeErr(w, http.StatusBadRequest, "VALIDATION_ERROR", "status is required")
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	t, err := h.Service.SetTableStatus(ctx, id, req.Status)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeData(w, http.StatusOK, t)
}

// openOrder answers 201 when a new order was created and 200 when the
// table's existing order is returned.
func (h *Handler) openOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeErr(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid id")
		return
	}
	who, _ := auth.FromContext(r.Context())

	ctx, cancel := h.ctx(r)
	defer cancel()
	o, created, err := h.Service.OpenOrder(ctx, id, who.UserID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	writeData(w, code, o)
}
