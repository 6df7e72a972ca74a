package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"food-order-service/internal/models"
	"food-order-service/internal/pricing"
	"food-order-service/internal/service"
	"food-order-service/internal/status"
)

// --- Request / Response DTOs ---

type CreateOrderRequest struct {
	UserID    *int64                `json:"user_id,omitempty"`
	Items     []pricing.ItemRequest `json:"items"`
	PromoCode string                `json:"promo_code,omitempty"`
}

type OrderItemOut struct {
	MenuItemID int64           `json:"menu_item_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
}

type OrderOut struct {
	ID        int64           `json:"id"`
	Number    string          `json:"number"`
	UserID    *int64          `json:"user_id,omitempty"`
	Status    string          `json:"status"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
	PromoCode *string         `json:"promo_code,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	Items     []OrderItemOut  `json:"items,omitempty"`
}

type CreateOrderResponse struct {
	OrderOut
	PromoRejected string `json:"promo_rejected,omitempty"`
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

func orderOut(o *models.Order) OrderOut {
	out := OrderOut{
		ID:        o.ID,
		Number:    o.Number,
		UserID:    o.UserID,
		Status:    string(o.Status),
		Subtotal:  o.Subtotal,
		Discount:  o.Discount,
		Total:     o.Total,
		PromoCode: o.PromoCode,
		CreatedAt: o.CreatedAt,
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, OrderItemOut{
			MenuItemID: it.MenuItemID,
			Name:       it.NameSnapshot,
			UnitPrice:  it.UnitPrice,
			Quantity:   it.Quantity,
		})
	}
	return out
}

// --- Handler ---

type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// CreateOrder handles POST /orders.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items required")
		return
	}

	order, promoRes, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		UserID:    req.UserID,
		Items:     req.Items,
		PromoCode: req.PromoCode,
	})
	if err != nil {
		var closed *service.ClosedError
		switch {
		case errors.As(err, &closed):
			msg := "We are currently closed."
			if closed.Gate.NextOpen != nil {
				msg += " We will be open again at " + closed.Gate.NextOpen.Format("2006-01-02 15:04") + "."
			}
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error":  msg,
				"reason": string(closed.Gate.Reason),
			})
		case errors.Is(err, pricing.ErrInvalidLineItem), errors.Is(err, pricing.ErrInvalidQuantity):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal_error")
		}
		return
	}

	resp := CreateOrderResponse{OrderOut: orderOut(order)}
	if !promoRes.Valid && req.PromoCode != "" {
		resp.PromoRejected = string(promoRes.Reason)
	}
	writeJSON(w, http.StatusCreated, resp)
}

// GetOrder handles GET /orders/{id}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	order, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, orderOut(order))
}

// ListOrders handles GET /orders with optional status and user_id filters.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var st *status.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := status.Status(raw)
		if !status.Known(s) {
			writeError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
		st = &s
	}
	var userID *int64
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user_id filter")
			return
		}
		userID = &id
	}

	orders, err := h.svc.ListOrders(r.Context(), st, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	out := make([]OrderOut, 0, len(orders))
	for i := range orders {
		out = append(out, orderOut(&orders[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": out})
}

// UpdateStatus handles PUT /admin/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	var req StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	order, err := h.svc.UpdateStatus(r.Context(), id, status.Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, status.ErrInvalidTransition):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal_error")
		}
		return
	}
	writeJSON(w, http.StatusOK, orderOut(order))
}
