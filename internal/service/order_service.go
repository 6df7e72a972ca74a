package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"food-order-service/internal/hours"
	"food-order-service/internal/models"
	"food-order-service/internal/notify"
	"food-order-service/internal/pricing"
	"food-order-service/internal/promo"
	"food-order-service/internal/status"
)

// ErrOrderNotFound is returned for lookups and status changes on unknown ids.
var ErrOrderNotFound = errors.New("order not found")

// Stores required by the service (interfaces to allow mocking).
type OrderStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, o *models.Order) error
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	List(ctx context.Context, st *status.Status, userID *int64) ([]models.Order, error)
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id int64, s status.Status) error
}

type PromoRedeemer interface {
	RedeemTx(ctx context.Context, tx *sql.Tx, code string, orderID int64, userID *int64) error
}

type ScheduleStore interface {
	LoadWeek(ctx context.Context) (hours.Schedule, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, ev notify.OrderEvent) error
}

// ClosedError rejects order creation outside business hours. It carries the
// gate outcome so handlers can tell the user when the store opens again.
type ClosedError struct {
	Gate hours.Status
}

func (e *ClosedError) Error() string {
	return fmt.Sprintf("store is closed: %s", e.Gate.Reason)
}

// CreateOrderRequest is the service-level input for a new order.
type CreateOrderRequest struct {
	UserID    *int64
	Items     []pricing.ItemRequest
	PromoCode string
}

// OrderService owns the order lifecycle: the business-hours gate, pricing, the
// creation transaction with optional promo redemption accounting, and
// transition-guarded status changes. Event publishing is best-effort and never
// fails a committed write.
type OrderService struct {
	db       *sql.DB // used for transactions
	orders   OrderStore
	promos   PromoRedeemer
	schedule ScheduleStore
	calc     *pricing.Calculator
	gate     *hours.Gate
	events   EventPublisher
}

func NewOrderService(
	db *sql.DB,
	orders OrderStore,
	promos PromoRedeemer,
	schedule ScheduleStore,
	calc *pricing.Calculator,
	gate *hours.Gate,
	events EventPublisher,
) *OrderService {
	return &OrderService{
		db:       db,
		orders:   orders,
		promos:   promos,
		schedule: schedule,
		calc:     calc,
		gate:     gate,
		events:   events,
	}
}

// CreateOrder checks business hours, prices the cart and persists the order
// snapshot. When a valid promo code was applied, the redemption counter is
// bumped in the same transaction as the order insert so concurrent redemptions
// of one code cannot lose updates. A rejected promo does not fail the order;
// its reason is returned alongside so the caller can message the user.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, promo.Result, error) {
	now := time.Now().UTC()

	sched, err := s.schedule.LoadWeek(ctx)
	if err != nil {
		// a misconfigured schedule means closed, not a crash
		log.Printf("order: schedule load failed, rejecting order: %v", err)
		return nil, promo.Result{}, &ClosedError{Gate: hours.Status{Reason: hours.ReasonHoursNotConfigured}}
	}
	if gs := s.gate.Check(sched, now); !gs.Open {
		return nil, promo.Result{}, &ClosedError{Gate: gs}
	}

	quote, err := s.calc.Price(ctx, req.Items, req.PromoCode, now)
	if err != nil {
		return nil, promo.Result{}, err
	}

	order := &models.Order{
		Number:   genOrderNumber(now),
		UserID:   req.UserID,
		Status:   status.New,
		Subtotal: quote.Subtotal,
		Discount: quote.Discount,
		Total:    quote.Total,
	}
	if quote.Promo.Valid && req.PromoCode != "" {
		code := req.PromoCode
		order.PromoCode = &code
	}
	for _, line := range quote.Lines {
		order.Items = append(order.Items, models.OrderItem{
			MenuItemID:   line.MenuItemID,
			NameSnapshot: line.Name,
			UnitPrice:    line.UnitPrice,
			Quantity:     line.Quantity,
		})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, promo.Result{}, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := s.orders.CreateTx(ctx, tx, order); err != nil {
		return nil, promo.Result{}, fmt.Errorf("create order: %w", err)
	}
	if order.PromoCode != nil {
		if err := s.promos.RedeemTx(ctx, tx, *order.PromoCode, order.ID, req.UserID); err != nil {
			return nil, promo.Result{}, fmt.Errorf("redeem promo: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, promo.Result{}, fmt.Errorf("commit: %w", err)
	}
	committed = true

	s.publish(ctx, notify.OrderEvent{
		Type:        notify.EventOrderCreated,
		OrderID:     order.ID,
		OrderNumber: order.Number,
		UserID:      order.UserID,
		NewStatus:   string(order.Status),
		Total:       order.Total.StringFixed(2),
		OccurredAt:  now,
	})
	return order, quote.Promo, nil
}

// UpdateStatus applies a transition-guarded status change. The order row is
// locked while the guard runs so two concurrent updates cannot both pass. The
// locked read also serves as the response snapshot, so nothing is re-read
// after the commit.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, requested status.Status) (*models.Order, error) {
	if !status.Known(requested) {
		return nil, fmt.Errorf("%w: unknown status %q", status.ErrInvalidTransition, requested)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	order, err := s.orders.GetForUpdateTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	next, err := status.Transition(order.Status, requested)
	if err != nil {
		return nil, err
	}
	if err := s.orders.UpdateStatusTx(ctx, tx, orderID, next); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	committed = true

	old := order.Status
	order.Status = next
	s.publish(ctx, notify.OrderEvent{
		Type:        notify.EventOrderStatusChanged,
		OrderID:     order.ID,
		OrderNumber: order.Number,
		UserID:      order.UserID,
		OldStatus:   string(old),
		NewStatus:   string(next),
		Total:       order.Total.StringFixed(2),
		OccurredAt:  time.Now().UTC(),
	})
	return order, nil
}

// GetOrder loads one order with items.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders lists orders with optional status and user filters.
func (s *OrderService) ListOrders(ctx context.Context, st *status.Status, userID *int64) ([]models.Order, error) {
	return s.orders.List(ctx, st, userID)
}

func (s *OrderService) publish(ctx context.Context, ev notify.OrderEvent) {
	if err := s.events.Publish(ctx, ev); err != nil {
		log.Printf("order: publish %s for %s failed: %v", ev.Type, ev.OrderNumber, err)
	}
}

// genOrderNumber builds ORD-<yymmddhhmmss><3 random digits>. The random
// suffix avoids collisions for orders created in the same second.
func genOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s%03d", now.Format("060102150405"), rand.Intn(1000))
}
