package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"food-order-service/internal/cache"
	"food-order-service/internal/models"
	"food-order-service/internal/promo"
)

var (
	ErrPromoNotFound = errors.New("promo code not found")
	ErrDuplicateCode = errors.New("promo code already exists")
	ErrInvalidPromo  = errors.New("invalid promo definition")
)

const uniqueViolation = "23505"

// PromoStore is the persistence surface the service needs (interface to
// allow mocking).
type PromoStore interface {
	GetByCode(ctx context.Context, code string) (*models.PromoCode, error)
	List(ctx context.Context, active *bool) ([]models.PromoCode, error)
	Create(ctx context.Context, p *models.PromoCode) error
	Update(ctx context.Context, p *models.PromoCode) error
	Delete(ctx context.Context, code string) error
}

// PromoService handles promo validation for clients and promo administration.
// Validation reads go through a short-lived cache; every admin mutation
// invalidates its code.
type PromoService struct {
	repo  PromoStore
	cache *cache.PromoCache
}

func NewPromoService(repo PromoStore, c *cache.PromoCache) *PromoService {
	return &PromoService{repo: repo, cache: c}
}

// Validate evaluates a code against a subtotal without consuming anything.
func (s *PromoService) Validate(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (promo.Result, error) {
	if code == "" {
		return promo.Result{Valid: true, Discount: decimal.Zero}, nil
	}
	p, ok := s.cache.Get(code)
	if !ok {
		var err error
		p, err = s.repo.GetByCode(ctx, code)
		if err != nil {
			return promo.Result{}, fmt.Errorf("promo lookup: %w", err)
		}
		if p != nil {
			s.cache.Set(code, p)
		}
	}
	return promo.Evaluate(p, subtotal, now), nil
}

// Create inserts one promo code after checking its definition.
func (s *PromoService) Create(ctx context.Context, p *models.PromoCode) error {
	if err := checkDefinition(p); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateCode
		}
		return err
	}
	s.cache.Invalidate(p.Code)
	return nil
}

// Get returns one code or ErrPromoNotFound.
func (s *PromoService) Get(ctx context.Context, code string) (*models.PromoCode, error) {
	p, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPromoNotFound
	}
	return p, nil
}

// List returns codes, optionally filtered by active flag.
func (s *PromoService) List(ctx context.Context, active *bool) ([]models.PromoCode, error) {
	return s.repo.List(ctx, active)
}

// Update overwrites the mutable fields of an existing code.
func (s *PromoService) Update(ctx context.Context, p *models.PromoCode) error {
	if err := checkDefinition(p); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPromoNotFound
		}
		return err
	}
	s.cache.Invalidate(p.Code)
	return nil
}

// Delete removes a never-redeemed code; redeemed codes must be retired via
// active=false instead, which repository.ErrPromoInUse signals.
func (s *PromoService) Delete(ctx context.Context, code string) error {
	if err := s.repo.Delete(ctx, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPromoNotFound
		}
		return err
	}
	s.cache.Invalidate(code)
	return nil
}

// GenerateRequest describes a batch of random codes sharing one rule set.
type GenerateRequest struct {
	Prefix         string
	Length         int
	Count          int
	Kind           string
	Value          decimal.Decimal
	MinSubtotal    decimal.NullDecimal
	ValidFrom      *time.Time
	ValidTo        *time.Time
	MaxRedemptions *int
	PerUserLimit   *int
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generate creates up to req.Count random codes, retrying on collisions with
// a bounded attempt budget. Returns how many were actually created.
func (s *PromoService) Generate(ctx context.Context, req GenerateRequest) (int, error) {
	if req.Length <= 0 || req.Count <= 0 {
		return 0, fmt.Errorf("%w: length and count must be positive", ErrInvalidPromo)
	}
	template := models.PromoCode{
		Kind:           req.Kind,
		Value:          req.Value,
		MinSubtotal:    req.MinSubtotal,
		Active:         true,
		ValidFrom:      req.ValidFrom,
		ValidTo:        req.ValidTo,
		MaxRedemptions: req.MaxRedemptions,
		PerUserLimit:   req.PerUserLimit,
	}
	if err := checkDefinition(&template); err != nil {
		return 0, err
	}

	created := 0
	maxAttempts := req.Count * 10
	for attempts := 0; created < req.Count && attempts < maxAttempts; attempts++ {
		p := template
		p.Code = genCode(req.Prefix, req.Length)
		err := s.repo.Create(ctx, &p)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				continue // collision, try another code
			}
			return created, err
		}
		created++
	}
	return created, nil
}

func checkDefinition(p *models.PromoCode) error {
	if p.Kind != "" && !models.KnownKind(p.Kind) {
		return fmt.Errorf("%w: kind must be %q or %q", ErrInvalidPromo, models.KindPercent, models.KindFixedAmount)
	}
	if p.Kind == "" {
		p.Kind = models.KindPercent
	}
	if !p.Value.IsPositive() {
		return fmt.Errorf("%w: value must be greater than 0", ErrInvalidPromo)
	}
	if p.ValidFrom != nil && p.ValidTo != nil && p.ValidTo.Before(*p.ValidFrom) {
		return fmt.Errorf("%w: valid_to precedes valid_from", ErrInvalidPromo)
	}
	return nil
}

func genCode(prefix string, length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return prefix + string(b)
}
