package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beneficencia/almacen/internal/backend"
	"github.com/beneficencia/almacen/internal/config"
	"github.com/beneficencia/almacen/internal/handlers"
	"github.com/beneficencia/almacen/internal/middleware"
	"github.com/beneficencia/almacen/internal/repository"
	"github.com/beneficencia/almacen/internal/service"
	"github.com/beneficencia/almacen/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting warehouse order form server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"backend_url", cfg.Backend.BaseURL,
		"log_level", cfg.LogLevel,
	)

	// Backend client and fallback sample data
	client := backend.NewClient(cfg.Backend.BaseURL, time.Duration(cfg.Backend.RequestTimeout)*time.Second, log)
	samples := repository.NewSampleInventory()

	// Initialize services
	inventoryService := service.NewInventoryService(client, samples, log)
	draftService := service.NewDraftService(inventoryService, client, cfg.Drafts.TTL, log)

	// Expire abandoned drafts in the background
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go draftService.Run(sweepCtx, cfg.Drafts.SweepInterval)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(log)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService, client, log)
	draftHandler := handlers.NewDraftHandler(draftService, log)
	ordersHandler := handlers.NewOrdersHandler(client, log)

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Register health check endpoint
	r.Get("/health", healthHandler.ServeHTTP)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Inventory endpoints
		r.Get("/inventario", inventoryHandler.GetInventory)
		r.Get("/inventario/grupos", inventoryHandler.GetGroups)

		// Order draft endpoints
		r.Route("/ordenes/borradores", func(r chi.Router) {
			r.Post("/", draftHandler.CreateDraft)
			r.Get("/{draftId}", draftHandler.GetDraft)
			r.Post("/{draftId}/items", draftHandler.AddItem)
			r.Put("/{draftId}/items/{itemId}", draftHandler.UpdateItem)
			r.Delete("/{draftId}/items/{itemId}", draftHandler.RemoveItem)
			r.Post("/{draftId}/enviar", draftHandler.SubmitDraft)
		})
	})

	// Outbound order and report endpoints, proxied to the backend
	r.Get("/ordenes-salida/productos", inventoryHandler.GetOutboundProducts)
	r.Delete("/ordenes-salida/eliminar/{id}", ordersHandler.DeleteOutboundOrder)
	r.Get("/ordenes-salida/imprimir/{numeroOrden}", ordersHandler.PrintOutboundOrder)
	r.Get("/descargar-inventario-completo", ordersHandler.DownloadInventoryReport)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	stopSweep()

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server exited")
}
