package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"food-order-service/internal/api"
	"food-order-service/internal/api/middleware"
	"food-order-service/internal/hours"
	"food-order-service/internal/notify"
	"food-order-service/pkg/db"
)

const defaultTZOffset = 5 // UTC+5

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	dbConn, err := db.Open(db.LoadPostgresConfig())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer dbConn.Close()

	offset := defaultTZOffset
	if raw := os.Getenv("BUSINESS_TZ_OFFSET"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			offset = v
		} else {
			log.Printf("invalid BUSINESS_TZ_OFFSET %q, using UTC+%d", raw, defaultTZOffset)
		}
	}
	gate := hours.NewGate(offset)

	var events *notify.Publisher
	if url := os.Getenv("AMQP_URL"); url != "" {
		events, err = notify.Dial(url)
		if err != nil {
			log.Fatalf("rabbitmq: %v", err)
		}
		defer events.Close()
	} else {
		log.Println("AMQP_URL not set, order events disabled")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: middleware.Logger(api.NewRouter(dbConn, gate, events)),
	}

	go func() {
		log.Printf("listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
