// Dishwatchd is the monitoring daemon for a satellite internet terminal.
//
// It loads configuration, starts the HTTP/WebSocket server, and runs the
// link monitor loop — polling the dish, recovering Wi-Fi connectivity from
// the ledger of prior successful connections, and estimating satellite
// visibility from cached orbital elements. Shutdown is handled gracefully
// on SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/macauleyjustin/dishwatch/internal/app"
	"github.com/macauleyjustin/dishwatch/internal/config"
)

func main() {
	var (
		configPath = pflag.StringP("config", "c", "/etc/dishwatch/dishwatch.toml", "Path to config TOML")
		bind       = pflag.String("bind", "", "HTTP bind address (overrides config)")
		demo       = pflag.Bool("demo", false, "Run against a simulated dish and Wi-Fi stack")
	)
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *demo {
		cfg.Demo.Enabled = true
	}

	logger := log.New(os.Stdout, "dishwatchd ", log.LstdFlags|log.Lmicroseconds)

	a := app.New(app.Options{
		Logger:     logger,
		Cfg:        cfg,
		ConfigPath: *configPath,
		Bind:       *bind,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("dishwatchd failed: %v", err)
	}

	// Brief pause so in-flight log writes can flush before exit.
	time.Sleep(50 * time.Millisecond)
}
