// Command readers is the readers screen: it shows the SDK's status messages
// and the readers in range, with a transient status per reader after an
// access attempt.
//
// The SDK is reached over the bridge protocol (-bridge or -discover) or run
// in-process as a simulator (-simulate).
//
// Usage:
//
//	readers [flags]
//
// Flags:
//
//	-config string          Configuration file path (YAML)
//	-bridge string          Bridge host address (host:port)
//	-discover               Find the bridge host over mDNS
//	-bridge-name string     Only connect to a discovered bridge with this name
//	-simulate string        Run an in-process simulator with this scenario
//	-secret string          Bridge pairing secret
//	-name string            Screen name announced to the bridge
//	-dwell duration         How long an access status stays visible (default 2s)
//	-http string            Serve the screen as JSON on this address
//	-event-log string       Capture events to a .rlog file
//	-history-dsn string     PostgreSQL DSN for the status history
//	-history-driver string  History database driver: pgx, pq, sqlx (default "pgx")
//	-history-size int       Entries kept by the in-memory history (default 1000)
//	-log-level string       Log level: debug, info, warn, error (default "info")
//	-interactive            Enable the interactive screen (default true)
//
// Examples:
//
//	# Watch the built-in lobby scenario
//	readers -simulate lobby
//
//	# Connect to the first bridge on the network and serve JSON
//	readers -discover -secret s3cret -http :8080
//
//	# Keep the status history in PostgreSQL
//	readers -bridge 10.0.0.5:7420 -history-dsn postgres://screen@db/readers
//
// Interactive Commands:
//
//	readers       - Show status messages and readers in range
//	messages      - Show status messages only
//	reader <id>   - Show one reader
//	status        - Show link and synchronizer status
//	history [id]  - Show recent status changes
//	live on|off   - Toggle re-rendering on change
//	quit          - Exit
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mobile-access/readers-go/pkg/bridge"
	"github.com/mobile-access/readers-go/pkg/connection"
	"github.com/mobile-access/readers-go/pkg/discovery"
	"github.com/mobile-access/readers-go/pkg/history"
	"github.com/mobile-access/readers-go/pkg/httpview"
	rlog "github.com/mobile-access/readers-go/pkg/log"
	"github.com/mobile-access/readers-go/pkg/readers"
	"github.com/mobile-access/readers-go/pkg/sdk"
	"github.com/mobile-access/readers-go/pkg/simulator"
	"github.com/mobile-access/readers-go/pkg/wire"
)

func main() {
	config, err := parseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := setupLogging(config.LogLevel)

	log.Println("Readers Screen")
	log.Println("==============")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Event capture
	var events rlog.Logger
	if config.EventLog != "" {
		fl, err := rlog.NewFileLogger(config.EventLog)
		if err != nil {
			log.Fatalf("Failed to open event log: %v", err)
		}
		defer closeEventLog(fl)
		events = fl
		if config.LogLevel == "debug" {
			events = rlog.NewMultiLogger(fl, rlog.NewSlogAdapter(logger))
		}
		log.Printf("Capturing events to %s", config.EventLog)
	}

	// Status history
	store, releaseStore := openHistory(ctx, config, logger)
	defer releaseStore()

	recorder := history.NewRecorder(store, history.RecorderConfig{Logger: logger})

	// SDK source
	source, link, closeSource := openSource(ctx, config, logger, events)
	defer closeSource()

	syncCfg := readers.DefaultConfig()
	syncCfg.DwellTime = config.Dwell
	syncCfg.Logger = logger
	syncCfg.EventLogger = events
	syncCfg.Observer = recorder
	if c, ok := source.(*bridge.Client); ok {
		syncCfg.SessionID = c.SessionID()
	}

	synchronizer := readers.New(source, syncCfg)
	if err := synchronizer.Start(ctx); err != nil {
		log.Fatalf("Failed to start synchronizer: %v", err)
	}
	log.Printf("Session: %s", synchronizer.SessionID())

	// JSON view
	var web *httpview.Server
	if config.HTTP != "" {
		web = httpview.NewServer(httpview.Config{
			Source:  synchronizer,
			History: store,
			Link:    link,
			Logger:  logger,
		})
		if err := web.Start(config.HTTP); err != nil {
			log.Fatalf("Failed to start HTTP view: %v", err)
		}
		log.Printf("HTTP view on http://%s/api/v1/view", web.Addr())
	}

	// Screen
	screen := NewScreen(synchronizer, store, link, os.Stdout)
	if config.Interactive {
		if err := screen.Attach(); err != nil {
			log.Fatalf("Failed to create interactive screen: %v", err)
		}
		log.SetOutput(screen.Stdout())
		go screen.Run(ctx, cancel)
	}
	screen.Follow()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	screen.Stop()

	if web != nil {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := web.Stop(stopCtx); err != nil {
			log.Printf("Error stopping HTTP view: %v", err)
		}
		stopCancel()
	}

	if err := synchronizer.Close(); err != nil {
		log.Printf("Error closing synchronizer: %v", err)
	}
	recorder.Close()
	if n := recorder.Dropped(); n > 0 {
		log.Printf("History: %d entries dropped", n)
	}

	log.Println("Goodbye!")
}

// openSource returns the SDK the screen follows, a link state reporter and
// a release function.
func openSource(ctx context.Context, config Config, logger *slog.Logger, events rlog.Logger) (sdk.SDK, func() string, func()) {
	if config.Simulate != "" {
		sc, err := simulator.LoadScenario(config.Simulate)
		if err != nil {
			log.Fatalf("Failed to load scenario: %v", err)
		}
		log.Printf("Simulating scenario %s", sc.Name)

		sim := simulator.New(simulator.Config{
			InitialStates: sc.InitialStates,
			Scanning:      sc.Scanning,
			Logger:        logger,
		})
		go func() {
			if err := sim.Run(ctx, sc); err != nil && ctx.Err() == nil {
				log.Printf("Scenario stopped: %v", err)
			}
		}()
		return sim, func() string { return "simulated" }, sim.Close
	}

	clientCfg := bridge.ClientConfig{
		Address:     config.Bridge,
		Name:        config.Name,
		Secret:      []byte(config.Secret),
		Logger:      logger,
		EventLogger: events,
		OnStateChange: func(oldState, newState connection.State) {
			log.Printf("[LINK] %s -> %s", oldState, newState)
		},
	}
	if config.Discover {
		filters := []discovery.FilterFunc{discovery.FilterByVersion(wire.ProtocolVersion)}
		if config.Filter != "" {
			filters = append(filters, discovery.FilterByName(config.Filter))
		}
		browser := discovery.NewMDNSBrowser(discovery.BrowserConfig{})
		clientCfg.Resolve = discovery.Resolver(browser, discovery.BrowseTimeout, filters...)
		log.Printf("Browsing for %s", discovery.ServiceType)
	}

	client := bridge.NewClient(clientCfg)
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := client.Connect(connectCtx); err != nil {
		log.Fatalf("Failed to connect to bridge: %v", err)
	}
	log.Printf("Connected to bridge %q", client.HostName())

	release := func() {
		if err := client.Close(); err != nil {
			log.Printf("Error closing bridge client: %v", err)
		}
	}
	return client, func() string { return client.State().String() }, release
}

// openHistory opens the PostgreSQL journal when a DSN is configured and an
// in-memory ring otherwise.
func openHistory(ctx context.Context, config Config, logger *slog.Logger) (history.Store, func()) {
	if config.HistoryDSN == "" {
		return history.NewMemoryStore(config.HistorySize), func() {}
	}

	store, release, err := history.OpenPostgres(ctx, config.HistoryDSN, config.HistoryDriver,
		history.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to open history database: %v", err)
	}
	log.Printf("History stored in table %s (%s)", store.Table(), config.HistoryDriver)
	return store, release
}

func closeEventLog(fl *rlog.FileLogger) {
	written, failed := fl.Stats()
	if err := fl.Close(); err != nil {
		log.Printf("Error closing event log: %v", err)
	}
	log.Printf("Event log: %d events written, %d failed", written, failed)
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

	return slog.New(slog.NewTextHandler(logWriter{}, &slog.HandlerOptions{Level: lvl}))
}

// logWriter forwards to the standard logger's current output, which moves
// to the prompt once the interactive screen is attached.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) { return log.Writer().Write(p) }

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags]\n\n", os.Args[0])
		flag.PrintDefaults()
	}
}
