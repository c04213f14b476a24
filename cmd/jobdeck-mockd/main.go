package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobdeck/internal/config"
	"jobdeck/internal/mockserver"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	seed := flag.Int("seed", 24, "number of seeded demo jobs")
	advance := flag.Duration("advance", 3*time.Second, "simulation tick (0 disables)")
	flag.Parse()

	logger, cleanup := config.SetupLogger("tmp/jobdeck-mockd.log", slog.LevelInfo, false)
	defer func() { _ = cleanup() }()
	slog.SetDefault(logger)

	srv := mockserver.New(mockserver.SeedJobs(*seed))
	httpSrv := &http.Server{
		Addr:    *addr,
		Handler: srv.Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *advance > 0 {
		go func() {
			ticker := time.NewTicker(*advance)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					srv.Advance()
				}
			}
		}()
	}

	go func() {
		logger.Info("mock backend listening", "addr", *addr, "jobs", *seed)
		fmt.Printf("jobdeck-mockd listening on %s (%d seeded jobs)\n", *addr, *seed)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
}
