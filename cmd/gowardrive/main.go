package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shaunagostinho/gowardrive/internal/capture"
	"github.com/shaunagostinho/gowardrive/internal/config"
	"github.com/shaunagostinho/gowardrive/internal/gps"
	"github.com/shaunagostinho/gowardrive/internal/server"
	"github.com/shaunagostinho/gowardrive/internal/ui"
	"github.com/shaunagostinho/gowardrive/internal/wifi"
	"github.com/shaunagostinho/gowardrive/internal/wigle"
)

const version = "0.3.0"

func main() {
	configPath := flag.String("config", "/etc/gowardrive/config.yaml", "Path to config file")
	demo := flag.Bool("demo", false, "Run with simulated GPS and scan data")
	dir := flag.String("dir", "", "Override capture directory")
	listenAddr := flag.String("listen", "", "Enable the status server on this address (e.g. :8090)")
	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Printf("[main] gowardrive v%s starting", version)

	cfg := config.Load(*configPath)

	if *demo {
		cfg.GPS.Type = "demo"
		cfg.WiFi.Type = "demo"
	}
	if *dir != "" {
		cfg.Capture.Dir = *dir
	}
	if *listenAddr != "" {
		cfg.Server.Enabled = true
		cfg.Server.ListenAddr = *listenAddr
	}

	// Create context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("[main] received %v, shutting down", sig)
		cancel()
	}()

	// GPS provider
	var gpsProv gps.Provider
	switch cfg.GPS.Type {
	case "nmea":
		baud := cfg.GPS.BaudRate
		if baud == 0 {
			baud = gps.BaudForModule(cfg.GPS.Module)
		}
		gpsProv = gps.NewNMEA(gps.NMEAConfig{
			PortPath: cfg.GPS.PortPath,
			BaudRate: baud,
		})
	default:
		gpsProv = gps.NewDemo()
	}

	// Scan driver
	var scanner wifi.Scanner
	switch cfg.WiFi.Type {
	case "iw":
		scanner = wifi.NewIW(cfg.WiFi.Interface)
	default:
		scanner = wifi.NewDemo()
	}

	// Display layer; falls back to headless when no terminal is usable.
	var display ui.Display
	if cfg.UI.Mode == "console" {
		console, err := ui.NewConsole()
		if err != nil {
			log.Printf("[main] console unavailable (%v), running headless", err)
			display = ui.NewHeadless()
		} else {
			display = console
		}
	} else {
		display = ui.NewHeadless()
	}
	defer display.Close()

	// Optional live-status server
	var onStatus func(capture.Status)
	if cfg.Server.Enabled {
		srv := server.New(cfg.Server.ListenAddr)
		go func() {
			if err := srv.Run(ctx); err != nil {
				log.Printf("[server] exited: %v", err)
			}
		}()
		onStatus = srv.Broadcast
	}

	loop := capture.New(capture.Options{
		GPS:        gpsProv,
		Scanner:    scanner,
		Display:    display,
		Dir:        cfg.Capture.Dir,
		Device:     wigle.DefaultDeviceInfo(version),
		BaseYear:   cfg.Capture.BaseYear,
		YearWindow: cfg.Capture.YearWindow,
		OnStatus:   onStatus,
	})

	err := loop.Run(ctx)
	display.Close()
	switch {
	case err == nil:
		log.Printf("[main] session finished")
	case errors.Is(err, capture.ErrGPSUnavailable):
		log.Printf("[main] session aborted: %v", err)
		os.Exit(1)
	default:
		log.Printf("[main] session failed: %v", err)
		os.Exit(1)
	}
}
