package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"warehouse/internal/service/inventory/application"
	"warehouse/internal/service/inventory/domain"
)

// InventoryHandler exposes the inventory engine over HTTP.
type InventoryHandler struct {
	service *application.InventoryApplicationService
}

func NewInventoryHandler(service *application.InventoryApplicationService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// RegisterRoutes wires every route onto the ServeMux.
func (h *InventoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/api/inventory/check", h.checkAvailability)
	mux.HandleFunc("/api/inventory/reserve", h.reserve)
	mux.HandleFunc("/api/inventory/confirm", h.confirm)
	mux.HandleFunc("/api/inventory/release", h.release)
	mux.HandleFunc("/api/inventory/cancel", h.cancel)
	mux.HandleFunc("/api/inventory/adjust", h.adjust)
	mux.HandleFunc("/api/inventory/bulk", h.bulkUpdate)
	mux.HandleFunc("/api/inventory/low-stock", h.listLowStock)
	mux.HandleFunc("/api/inventory/items", h.items)
	mux.HandleFunc("/api/inventory/items/", h.itemByProductID)
	mux.HandleFunc("/api/inventory/sku/", h.skuSubresource)
	mux.HandleFunc("/api/inventory/reservations/", h.reservationByID)
}

// extract resumes the caller's trace context from the incoming headers.
func extract(r *http.Request) *http.Request {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	return r.WithContext(ctx)
}

func correlationID(r *http.Request) string {
	return r.Header.Get("X-Correlation-ID")
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrItemNotFound), errors.Is(err, domain.ErrReservationNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrItemExists):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientStock):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrReservationExpired):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrOrderMismatch):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, application.ErrUnsupportedMovement):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *InventoryHandler) checkAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r = extract(r)

	var req struct {
		Items []application.StockQuery `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	result, err := h.service.CheckAvailability(r.Context(), req.Items)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *InventoryHandler) reserve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r = extract(r)

	var req application.ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.CorrelationID = correlationID(r)

	result, err := h.service.Reserve(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *InventoryHandler) confirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r = extract(r)

	var req struct {
		ReservationID string `json:"reservation_id"`
		OrderID       string `json:"order_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := h.service.ConfirmReservation(r.Context(), req.ReservationID, req.OrderID, correlationID(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
}

func (h *InventoryHandler) release(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, "released", h.service.ReleaseReservation)
}

func (h *InventoryHandler) cancel(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, "cancelled", h.service.CancelReservation)
}

func (h *InventoryHandler) settle(w http.ResponseWriter, r *http.Request, verb string, fn func(ctx context.Context, reservationID, correlationID string) error) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r = extract(r)

	var req struct {
		ReservationID string `json:"reservation_id"`
		OrderID       string `json:"order_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	// no reservation id means release everything still pending for the order
	if req.ReservationID == "" && req.OrderID != "" {
		released, err := h.service.ReleaseOrder(r.Context(), req.OrderID, correlationID(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": verb, "released": released})
		return
	}

	if err := fn(r.Context(), req.ReservationID, correlationID(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": verb})
}

func (h *InventoryHandler) adjust(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r = extract(r)

	var req application.AdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.CorrelationID = correlationID(r)

	movement, err := h.service.AdjustStock(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movement)
}

func (h *InventoryHandler) bulkUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r = extract(r)

	var req struct {
		Operations []application.BulkOperation `json:"operations"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Operations) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": h.service.BulkUpdate(r.Context(), req.Operations),
	})
}

func (h *InventoryHandler) listLowStock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r = extract(r)

	items, err := h.service.ListLowStockItems(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items, "count": len(items)})
}

// items handles POST /api/inventory/items (create).
func (h *InventoryHandler) items(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r = extract(r)

	var req application.CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.CorrelationID = correlationID(r)

	item, err := h.service.CreateItem(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// itemByProductID handles GET/PUT/DELETE /api/inventory/items/{productID}.
func (h *InventoryHandler) itemByProductID(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	productID := strings.TrimPrefix(r.URL.Path, "/api/inventory/items/")
	if productID == "" || strings.Contains(productID, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		item, err := h.service.GetItemByProductID(r.Context(), productID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	case http.MethodPut:
		var req application.UpdateItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		item, err := h.service.UpdateItem(r.Context(), productID, req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	case http.MethodDelete:
		if err := h.service.DeleteItem(r.Context(), productID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// skuSubresource handles GET /api/inventory/sku/{sku} and
// GET /api/inventory/sku/{sku}/movements.
func (h *InventoryHandler) skuSubresource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r = extract(r)

	rest := strings.TrimPrefix(r.URL.Path, "/api/inventory/sku/")
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		item, err := h.service.GetItemBySKU(r.Context(), parts[0])
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	case len(parts) == 2 && parts[1] == "movements":
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		movements, err := h.service.ListMovements(r.Context(), parts[0], limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"movements": movements, "count": len(movements)})
	default:
		http.NotFound(w, r)
	}
}

// reservationByID handles GET /api/inventory/reservations/{id}.
func (h *InventoryHandler) reservationByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r = extract(r)

	id := strings.TrimPrefix(r.URL.Path, "/api/inventory/reservations/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	res, err := h.service.GetReservation(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
