// Package main is the entry point for the switchyard application.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/billie-coop/switchyard/internal/app"
	"github.com/billie-coop/switchyard/internal/logging"
	"github.com/billie-coop/switchyard/internal/tui"
)

func main() {
	dir := flag.String("dir", ".", "project directory (config and history live in .switchyard/)")
	metrics := flag.String("metrics", "", "prometheus listener address, overrides the config (e.g. :9090)")
	headless := flag.Bool("headless", false, "run without the dashboard; background jobs and metrics only")
	flag.Parse()

	a, err := app.New(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	a.MetricsAddr = *metrics

	if !*headless {
		// The dashboard owns the terminal, so logs go to a file.
		logFile, err := os.OpenFile(
			filepath.Join(*dir, ".switchyard", "switchyard.log"),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logFile.Close()
		logging.SetOutput(logFile)
	}

	if err := a.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Stop()

	if *headless {
		logging.Log.Info().Str("dir", *dir).Msg("running headless, ctrl+c to stop")
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		return
	}

	p := tea.NewProgram(tui.New(a), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
