package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"food-order-service/internal/api/handlers"
	"food-order-service/internal/cache"
	"food-order-service/internal/hours"
	"food-order-service/internal/notify"
	"food-order-service/internal/pricing"
	"food-order-service/internal/repository"
	"food-order-service/internal/service"
)

// promo records are cached briefly on the validation path; admin mutations
// invalidate eagerly, so staleness only affects externally-modified rows.
const promoCacheTTL = 30 * time.Second

// NewRouter wires repositories, services and handlers into the HTTP router.
// events may be nil when messaging is disabled.
func NewRouter(db *sql.DB, gate *hours.Gate, events *notify.Publisher) http.Handler {
	promoRepo := repository.NewPromoRepo(db)
	catalogRepo := repository.NewCatalogRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	scheduleRepo := repository.NewScheduleRepo(db)

	calc := pricing.NewCalculator(catalogRepo, promoRepo)
	promoSvc := service.NewPromoService(promoRepo, cache.NewPromoCache(promoCacheTTL))
	orderSvc := service.NewOrderService(db, orderRepo, promoRepo, scheduleRepo, calc, gate, events)

	orderHandler := handlers.NewOrderHandler(orderSvc)
	promoHandler := handlers.NewPromoHandler(promoSvc)
	hoursHandler := handlers.NewHoursHandler(scheduleRepo, gate)

	r := chi.NewRouter()

	// Public endpoints
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", orderHandler.CreateOrder)
		r.Get("/", orderHandler.ListOrders)
		r.Get("/{id}", orderHandler.GetOrder)
	})
	r.Post("/promo/validate", promoHandler.Validate)
	r.Get("/business-hours/status", hoursHandler.Status)

	// Admin endpoints
	r.Route("/admin", func(r chi.Router) {
		r.Route("/promo", func(r chi.Router) {
			r.Post("/", promoHandler.Create)
			r.Post("/generate", promoHandler.Generate)
			r.Get("/", promoHandler.List)
			r.Get("/{code}", promoHandler.Get)
			r.Put("/{code}", promoHandler.Update)
			r.Delete("/{code}", promoHandler.Delete)
		})
		r.Put("/orders/{id}/status", orderHandler.UpdateStatus)
		r.Route("/business-hours", func(r chi.Router) {
			r.Get("/weekly", hoursHandler.Weekly)
			r.Put("/{weekday}", hoursHandler.UpdateDay)
		})
	})

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
