// Command readers-sim runs a simulated readers SDK behind a bridge host.
//
// The simulator plays a YAML scenario (reader sightings, access attempts,
// SDK state changes) and serves it to screens over the bridge protocol.
// With -advertise the host announces itself over mDNS so screens started
// with -discover find it without an address.
//
// Usage:
//
//	readers-sim [flags]
//
// Flags:
//
//	-listen string     Listen address (default ":7420")
//	-scenario string   Scenario file or built-in name (default "lobby")
//	-secret string     Pairing secret (empty disables authentication)
//	-name string       Bridge display name (default "Readers Simulator")
//	-advertise         Announce the bridge over mDNS
//	-event-log string  Capture bridge traffic to a .rlog file
//	-log-level string  Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Serve the built-in lobby scenario
//	readers-sim -advertise
//
//	# Serve a custom scenario with a pairing secret
//	readers-sim -scenario ./door.yaml -secret s3cret -log-level debug
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mobile-access/readers-go/pkg/bridge"
	"github.com/mobile-access/readers-go/pkg/discovery"
	rlog "github.com/mobile-access/readers-go/pkg/log"
	"github.com/mobile-access/readers-go/pkg/simulator"
	"github.com/mobile-access/readers-go/pkg/wire"
)

// Config holds the simulator host configuration.
type Config struct {
	Listen    string
	Scenario  string
	Secret    string
	Name      string
	Advertise bool
	EventLog  string
	LogLevel  string
}

var config Config

func init() {
	flag.StringVar(&config.Listen, "listen", fmt.Sprintf(":%d", discovery.DefaultPort), "Listen address")
	flag.StringVar(&config.Scenario, "scenario", "lobby", "Scenario file or built-in name ("+strings.Join(simulator.Builtin(), ", ")+")")
	flag.StringVar(&config.Secret, "secret", "", "Pairing secret (empty disables authentication)")
	flag.StringVar(&config.Name, "name", "Readers Simulator", "Bridge display name")
	flag.BoolVar(&config.Advertise, "advertise", false, "Announce the bridge over mDNS")
	flag.StringVar(&config.EventLog, "event-log", "", "Capture bridge traffic to a .rlog file")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func main() {
	flag.Parse()

	logger := setupLogging(config.LogLevel)

	log.Println("Readers Simulator")
	log.Println("=================")

	sc, err := simulator.LoadScenario(config.Scenario)
	if err != nil {
		log.Fatalf("Failed to load scenario: %v", err)
	}
	log.Printf("Scenario: %s (%d steps, loop: %v)", sc.Name, len(sc.Steps), sc.Loop)

	var events rlog.Logger
	if config.EventLog != "" {
		fl, err := rlog.NewFileLogger(config.EventLog)
		if err != nil {
			log.Fatalf("Failed to open event log: %v", err)
		}
		defer func() {
			written, failed := fl.Stats()
			if err := fl.Close(); err != nil {
				log.Printf("Error closing event log: %v", err)
			}
			log.Printf("Event log: %d events written, %d failed", written, failed)
		}()
		events = fl
	}

	sim := simulator.New(simulator.Config{
		InitialStates: sc.InitialStates,
		Scanning:      sc.Scanning,
		Logger:        logger,
	})
	defer sim.Close()

	srv, err := bridge.NewServer(sim, bridge.ServerConfig{
		Address:     config.Listen,
		Name:        config.Name,
		Secret:      []byte(config.Secret),
		Logger:      logger,
		EventLogger: events,
	})
	if err != nil {
		log.Fatalf("Failed to create bridge: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Failed to start bridge: %v", err)
	}
	log.Printf("Bridge listening on %s", srv.Addr())

	var adv *discovery.MDNSAdvertiser
	if config.Advertise {
		adv = discovery.NewMDNSAdvertiser(discovery.DefaultAdvertiserConfig())
		info := &discovery.BridgeInfo{
			Name:         config.Name,
			Port:         uint16(srv.Port()),
			Version:      wire.ProtocolVersion,
			AuthRequired: config.Secret != "",
			SDK:          "simulator",
		}
		if err := adv.Advertise(ctx, info); err != nil {
			log.Printf("Warning: Failed to advertise: %v", err)
			adv = nil
		} else {
			log.Printf("Advertising %s.%s", config.Name, discovery.ServiceType)
		}
	}

	go func() {
		err := sim.Run(ctx, sc)
		switch {
		case errors.Is(err, context.Canceled):
		case err != nil:
			log.Printf("Scenario stopped: %v", err)
		default:
			log.Printf("Scenario %s finished; serving final state", sc.Name)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	log.Printf("Received signal: %v", sig)
	log.Println("Shutting down...")

	cancel()

	if adv != nil {
		if err := adv.Stop(); err != nil {
			log.Printf("Error stopping advertiser: %v", err)
		}
	}
	if err := srv.Stop(); err != nil {
		log.Printf("Error stopping bridge: %v", err)
	}

	log.Println("Goodbye!")
}

// setupLogging configures the standard logger for console output and
// returns the structured logger handed to the packages.
func setupLogging(level string) *slog.Logger {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	var lvl slog.Level
	switch level {
	case "debug":
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
		lvl = slog.LevelDebug
	case "warn":
		log.SetFlags(log.Ltime)
		lvl = slog.LevelWarn
	case "error":
		log.SetFlags(log.Ltime)
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
