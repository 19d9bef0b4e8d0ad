package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-restaurant-pos/internal/auth"
	"github.com/ariefcatur/go-restaurant-pos/internal/notify"
	"github.com/ariefcatur/go-restaurant-pos/internal/orders"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxItemQty = 999

type AddItemsReq struct {
	Items []orders.ItemLine `json:"items"`
}

type StatusReq struct {
	Status string `json:"status"`
}

// Handler exposes the coordinator and projections over HTTP and the hub over websocket.
type Handler struct {
	Service *orders.Service
	Hub     *notify.Hub
	Log     *zap.Logger
	Timeout time.Duration
}

func (h *Handler) Register(r chi.Router, v *auth.Verifier) {
	r.With(auth.Authenticate(v)).Get("/ws", h.serveWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Authenticate(v))

		r.Get("/auth/me", h.me)

		r.Get("/tables", h.listTables)
		r.Get("/tables/{id}/orders", h.tableOrders)
		r.With(auth.RequireRole(auth.RoleAdmin, auth.RoleWaiter, auth.RoleCashier)).Patch("/tables/{id}/status", h.setTableStatus)
		r.With(auth.RequireRole(auth.RoleAdmin, auth.RoleWaiter)).Post("/tables/{id}/open-order", h.openOrder)

		r.Get("/products", h.listProducts)

		r.Get("/orders", h.listOrders)
		r.Get("/orders/{id}", h.getOrder)
		r.With(auth.RequireRole(auth.RoleAdmin)).Get("/admin/orders", h.adminOrders)
		r.With(auth.RequireRole(auth.RoleAdmin, auth.RoleWaiter)).Post("/orders/{id}/items", h.addItems)
		r.With(auth.RequireRole(auth.RoleAdmin, auth.RoleKitchen, auth.RoleCashier, auth.RoleWaiter)).Patch("/orders/{id}/status", h.setStatus)
		r.With(auth.RequireRole(auth.RoleAdmin, auth.RoleCashier)).Patch("/orders/{id}/pay", h.pay)
		r.With(auth.RequireRole(auth.RoleAdmin, auth.RoleCashier)).Patch("/orders/{id}/close", h.close)
	})
}

func (h *Handler) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	d := h.Timeout
	if d <= 0 {
		d = 5 * time.Second
	}
	return context.WithTimeout(r.Context(), d)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	f := orders.OrderFilter{Status: orders.Status(r.URL.Query().Get("status"))}
	if s := r.URL.Query().Get("tableId"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			writeErr(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid tableId")
			return
		}
		f.TableID = id
	}

	ctx, cancel := h.ctx(r)
	defer cancel()
	list, err := h.Service.ListOrders(ctx, f)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeData(w, http.StatusOK, list)
}

func (h *Handler) adminOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	list, err := h.Service.AllOrders(ctx)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeData(w, http.StatusOK, list)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeErr(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid id")
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	o, err := h.Service.GetOrder(ctx, id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeData(w, http.StatusOK, o)
}

func (h *Handler) addItems(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeErr(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid id")
		return
	}
	var req AddItemsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json")
		return
	}
	if msg := validateItems(req.Items); msg != "" {
		writeErr(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()
	o, err := h.Service.AddItems(ctx, id, req.Items)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeData(w, http.StatusCreated, o)
}

func validateItems(items []orders.ItemLine) string {
	if len(items) == 0 {
		return "items must contain at least one line"
	}
	for _, it := range items {
		if it.ProductID <= 0 {
			return "productId must be a positive integer"
		}
		if it.Qty <= 0 || it.Qty > maxItemQty {
			return "qty must be between 1 and 999"
		}
	}
	return ""
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeErr(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid id")
		return
	}
	var req StatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeErr(w, http.StatusBadRequest, "VALIDATION_ERROR", "status is required")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()
	o, err := h.Service.SetStatus(ctx, id, req.Status)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeData(w, http.StatusOK, o)
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, h.Service.Pay)
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, h.Service.Close)
}

func (h *Handler) settle(w http.ResponseWriter, r *http.Request, op func(context.Context, int64) (orders.Order, error)) {
	id, ok := idParam(r, "id")
	if !ok {
		writeErr(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid id")
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	o, err := op(ctx, id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeData(w, http.StatusOK, o)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	ps, err := h.Service.ListProducts(ctx)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeData(w, http.StatusOK, ps)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	writeData(w, http.StatusOK, id)
}

func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	h.Hub.ServeWS(w, r, id.Role)
}
