package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"toastd/internal/app"
	"toastd/internal/clock"
	"toastd/internal/config"
)

// main starts the notification daemon from one TOML config file.
// Params: CLI flag --config-file.
// Returns: process exit code by startup/run result.
func main() {
	configFile := flag.String("config-file", "", "path to TOML config file")
	flag.Parse()

	path, err := config.FromCLI(*configFile)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	cfg, err := config.Load(path)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "config load failed:", err.Error())
		os.Exit(2)
	}

	service, err := app.NewService(cfg, clock.RealClock{})
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "service init failed:", err.Error())
		os.Exit(1)
	}

	if err := service.Run(context.Background()); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "service run failed:", err.Error())
		os.Exit(1)
	}
}
