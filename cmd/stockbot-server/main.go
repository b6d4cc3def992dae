package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobmcallan/stockbot/internal/app"
	"github.com/bobmcallan/stockbot/internal/common"
	"github.com/bobmcallan/stockbot/internal/server"
)

func main() {
	// Resolve config path
	configPath := os.Getenv("STOCKBOT_CONFIG")
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	a, err := app.NewApp(configPath)
	if err != nil {
		common.NewLogger("error").Error().Err(err).Msg("Failed to initialize app")
		os.Exit(1)
	}

	common.PrintBanner(a.Config, a.Logger)

	srv := server.NewServer(a)

	// Start HTTP server
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	a.Logger.Info().
		Str("url", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)).
		Str("mcp", fmt.Sprintf("http://localhost:%d/mcp", a.Config.Server.Port)).
		Msg("Server ready")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	common.PrintShutdownBanner(a.Logger)

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	a.Close()
	a.Logger.Info().Msg("Server stopped")
}
