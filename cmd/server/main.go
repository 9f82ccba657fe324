package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/you/go-flightscan/internal/auth"
	"github.com/you/go-flightscan/internal/config"
	"github.com/you/go-flightscan/internal/httpx"
	"github.com/you/go-flightscan/internal/providers"
	"github.com/you/go-flightscan/internal/service"
)

func main() {

	cfg := config.Load()

	provider := providers.NewFareAPI(cfg)

	scanSvc := service.NewScanService(provider, cfg.ProviderTimeout, cfg.ScanConcurrency, cfg.ProgressEvery)

	publicMux := http.NewServeMux()

	// Public: login to get JWT
	publicMux.HandleFunc("/auth/login", auth.LoginHandler(cfg))

	// Protected group with JWT
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("/flights/on-date", httpx.OnDateHandler(scanSvc))
	protectedMux.HandleFunc("/flights/round-trip", httpx.RoundTripHandler(scanSvc))
	protectedMux.HandleFunc("/flights/range", httpx.RangeHandler(scanSvc))
	protectedMux.HandleFunc("/sse/scan/", httpx.SSEScanHandler(scanSvc)) // /sse/scan/JFK/MIA?start_date=...&end_date=...
	protectedMux.HandleFunc("/ws/scan/", httpx.WSScanHandler(scanSvc))

	root := auth.JWTMiddleware(publicMux, protectedMux, cfg)

	srv := &http.Server{
		Addr:              ":8080",
		Handler:           root,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      0, // range scans and progress streams can run long
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("flightscan listening on http://localhost%s (provider=%s, concurrency=%d)",
			srv.Addr, provider.Name(), cfg.ScanConcurrency)
		if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
			log.Println("TLS enabled")
			log.Fatal(srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile))
		} else {
			log.Fatal(srv.ListenAndServe())
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
