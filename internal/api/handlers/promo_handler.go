package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"food-order-service/internal/models"
	"food-order-service/internal/repository"
	"food-order-service/internal/service"
)

// --- Request / Response DTOs ---

type ValidatePromoRequest struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
	UserID   *int64          `json:"user_id,omitempty"`
}

type ValidatePromoResponse struct {
	Valid    bool            `json:"valid"`
	Discount decimal.Decimal `json:"discount"`
	Reason   string          `json:"reason,omitempty"`
}

type PromoCreateRequest struct {
	Code           string           `json:"code"`
	Kind           string           `json:"kind"`
	Value          decimal.Decimal  `json:"value"`
	MinSubtotal    *decimal.Decimal `json:"min_subtotal,omitempty"`
	Active         *bool            `json:"active,omitempty"`
	ValidFrom      string           `json:"valid_from,omitempty"` // RFC3339
	ValidTo        string           `json:"valid_to,omitempty"`
	MaxRedemptions *int             `json:"max_redemptions,omitempty"`
	PerUserLimit   *int             `json:"per_user_limit,omitempty"`
}

type PromoUpdateRequest struct {
	Kind           *string          `json:"kind,omitempty"`
	Value          *decimal.Decimal `json:"value,omitempty"`
	MinSubtotal    *decimal.Decimal `json:"min_subtotal,omitempty"`
	Active         *bool            `json:"active,omitempty"`
	ValidFrom      *string          `json:"valid_from,omitempty"`
	ValidTo        *string          `json:"valid_to,omitempty"`
	MaxRedemptions *int             `json:"max_redemptions,omitempty"`
	PerUserLimit   *int             `json:"per_user_limit,omitempty"`
}

type PromoGenerateRequest struct {
	Prefix         string           `json:"prefix"`
	Length         int              `json:"length"`
	Count          int              `json:"count"`
	Kind           string           `json:"kind"`
	Value          decimal.Decimal  `json:"value"`
	MinSubtotal    *decimal.Decimal `json:"min_subtotal,omitempty"`
	ValidFrom      string           `json:"valid_from,omitempty"`
	ValidTo        string           `json:"valid_to,omitempty"`
	MaxRedemptions *int             `json:"max_redemptions,omitempty"`
	PerUserLimit   *int             `json:"per_user_limit,omitempty"`
}

type PromoOut struct {
	ID                 int64            `json:"id"`
	Code               string           `json:"code"`
	Kind               string           `json:"kind"`
	Value              decimal.Decimal  `json:"value"`
	MinSubtotal        *decimal.Decimal `json:"min_subtotal,omitempty"`
	Active             bool             `json:"active"`
	ValidFrom          *time.Time       `json:"valid_from,omitempty"`
	ValidTo            *time.Time       `json:"valid_to,omitempty"`
	MaxRedemptions     *int             `json:"max_redemptions,omitempty"`
	CurrentRedemptions int              `json:"current_redemptions"`
	PerUserLimit       *int             `json:"per_user_limit,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

func promoOut(p *models.PromoCode) PromoOut {
	out := PromoOut{
		ID:                 p.ID,
		Code:               p.Code,
		Kind:               p.Kind,
		Value:              p.Value,
		Active:             p.Active,
		ValidFrom:          p.ValidFrom,
		ValidTo:            p.ValidTo,
		MaxRedemptions:     p.MaxRedemptions,
		CurrentRedemptions: p.CurrentRedemptions,
		PerUserLimit:       p.PerUserLimit,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
	if p.MinSubtotal.Valid {
		d := p.MinSubtotal.Decimal
		out.MinSubtotal = &d
	}
	return out
}

func parseTimeOrEmpty(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// --- Handler ---

type PromoHandler struct {
	svc *service.PromoService
}

func NewPromoHandler(svc *service.PromoService) *PromoHandler {
	return &PromoHandler{svc: svc}
}

// Validate handles POST /promo/validate. Rejections come back with 200 and
// valid=false; only malformed requests are client errors.
func (h *PromoHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidatePromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if req.Subtotal.IsNegative() {
		writeError(w, http.StatusBadRequest, "subtotal must not be negative")
		return
	}

	res, err := h.svc.Validate(r.Context(), req.Code, req.Subtotal, time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, ValidatePromoResponse{
		Valid:    res.Valid,
		Discount: res.Discount,
		Reason:   string(res.Reason),
	})
}

// Create handles POST /admin/promo.
func (h *PromoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PromoCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code required")
		return
	}
	validFrom, err := parseTimeOrEmpty(req.ValidFrom)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid valid_from; use RFC3339")
		return
	}
	validTo, err := parseTimeOrEmpty(req.ValidTo)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid valid_to; use RFC3339")
		return
	}

	p := models.PromoCode{
		Code:           req.Code,
		Kind:           req.Kind,
		Value:          req.Value,
		Active:         true,
		ValidFrom:      validFrom,
		ValidTo:        validTo,
		MaxRedemptions: req.MaxRedemptions,
		PerUserLimit:   req.PerUserLimit,
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if req.MinSubtotal != nil {
		p.MinSubtotal = decimal.NewNullDecimal(*req.MinSubtotal)
	}

	if err := h.svc.Create(r.Context(), &p); err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateCode):
			writeError(w, http.StatusConflict, "promo code already exists")
		case errors.Is(err, service.ErrInvalidPromo):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal_error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, promoOut(&p))
}

// Generate handles POST /admin/promo/generate.
func (h *PromoHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req PromoGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	validFrom, err := parseTimeOrEmpty(req.ValidFrom)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid valid_from; use RFC3339")
		return
	}
	validTo, err := parseTimeOrEmpty(req.ValidTo)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid valid_to; use RFC3339")
		return
	}

	gen := service.GenerateRequest{
		Prefix:         req.Prefix,
		Length:         req.Length,
		Count:          req.Count,
		Kind:           req.Kind,
		Value:          req.Value,
		ValidFrom:      validFrom,
		ValidTo:        validTo,
		MaxRedemptions: req.MaxRedemptions,
		PerUserLimit:   req.PerUserLimit,
	}
	if req.MinSubtotal != nil {
		gen.MinSubtotal = decimal.NewNullDecimal(*req.MinSubtotal)
	}

	created, err := h.svc.Generate(r.Context(), gen)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPromo) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"generated": created, "prefix": req.Prefix, "length": req.Length})
}

// List handles GET /admin/promo with an optional active filter.
func (h *PromoHandler) List(w http.ResponseWriter, r *http.Request) {
	var active *bool
	if raw := r.URL.Query().Get("active"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid active filter")
			return
		}
		active = &b
	}
	promos, err := h.svc.List(r.Context(), active)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	out := make([]PromoOut, 0, len(promos))
	for i := range promos {
		out = append(out, promoOut(&promos[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /admin/promo/{code}.
func (h *PromoHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		if errors.Is(err, service.ErrPromoNotFound) {
			writeError(w, http.StatusNotFound, "promo code not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, promoOut(p))
}

// Update handles PUT /admin/promo/{code}; only supplied fields change.
func (h *PromoHandler) Update(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	var req PromoUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	p, err := h.svc.Get(r.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrPromoNotFound) {
			writeError(w, http.StatusNotFound, "promo code not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	if req.Kind != nil {
		p.Kind = *req.Kind
	}
	if req.Value != nil {
		p.Value = *req.Value
	}
	if req.MinSubtotal != nil {
		p.MinSubtotal = decimal.NewNullDecimal(*req.MinSubtotal)
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if req.ValidFrom != nil {
		t, err := parseTimeOrEmpty(*req.ValidFrom)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid valid_from; use RFC3339")
			return
		}
		p.ValidFrom = t
	}
	if req.ValidTo != nil {
		t, err := parseTimeOrEmpty(*req.ValidTo)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid valid_to; use RFC3339")
			return
		}
		p.ValidTo = t
	}
	if req.MaxRedemptions != nil {
		p.MaxRedemptions = req.MaxRedemptions
	}
	if req.PerUserLimit != nil {
		p.PerUserLimit = req.PerUserLimit
	}

	if err := h.svc.Update(r.Context(), p); err != nil {
		switch {
		case errors.Is(err, service.ErrPromoNotFound):
			writeError(w, http.StatusNotFound, "promo code not found")
		case errors.Is(err, service.ErrInvalidPromo):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal_error")
		}
		return
	}
	writeJSON(w, http.StatusOK, promoOut(p))
}

// Delete handles DELETE /admin/promo/{code}. Redeemed codes cannot be
// deleted; deactivate them instead.
func (h *PromoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Delete(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPromoNotFound):
			writeError(w, http.StatusNotFound, "promo code not found")
		case errors.Is(err, repository.ErrPromoInUse):
			writeError(w, http.StatusBadRequest, "promo code has been redeemed; deactivate it instead of deleting")
		default:
			writeError(w, http.StatusInternalServerError, "internal_error")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "promo code deleted"})
}
