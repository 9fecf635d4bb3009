package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cafe-pos/config"
	"cafe-pos/internal/api"
	"cafe-pos/internal/bus"
	"cafe-pos/internal/catalog"
	"cafe-pos/internal/engine"
	"cafe-pos/internal/reporting"
	"cafe-pos/internal/store"
	"cafe-pos/internal/util"
	"cafe-pos/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-multierror"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting cafe-pos server")

	tp, err := util.InitTracer("cafe-pos", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}

	db, err := store.New(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Database connected")

	if err := db.Migrate(context.Background()); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Schema up to date")

	hub := bus.NewHub()

	orderEngine := engine.New(db, hub)
	catalogService := catalog.New(db, hub)
	reportingService := reporting.New(db, cfg.Venue.UTCOffsetHour)
	realtime := ws.NewServer(hub)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(orderEngine, catalogService, reportingService, db, hub, realtime, cfg.Venue.Name, cfg.Server.Port)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	var errs *multierror.Error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("http server: %w", err))
	}

	hub.Close()

	if err := db.Close(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("database: %w", err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("tracer: %w", err))
	}

	if err := errs.ErrorOrNil(); err != nil {
		log.Printf("Shutdown finished with errors: %v", err)
	} else {
		log.Println("Server exited")
	}
}
