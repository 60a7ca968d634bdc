package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coffeeisafruit/jv-matcher/internal/config"
	"github.com/coffeeisafruit/jv-matcher/internal/infrastructure/container"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	app, err := container.NewContainer(context.Background(), cfg)
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			fmt.Printf("Error closing application: %v\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Server.Start(); err != nil {
			app.Log.WithError(err).Error("server error", nil)
			quit <- syscall.SIGTERM
		}
	}()

	app.Log.Info("server started", map[string]interface{}{
		"host": cfg.Server.Host, "port": cfg.Server.Port,
	})

	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.WithError(err).Error("server shutdown error", nil)
		os.Exit(1)
	}

	app.Log.Info("server exited properly", nil)
}
