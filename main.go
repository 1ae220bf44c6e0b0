package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

func main() {
	// Define command-line flags; each overrides its config file counterpart
	configPath := flag.String("config", "config.json", "Path to JSON configuration file")
	host := flag.String("host", "", "API host to listen on")
	port := flag.Int("port", 0, "API port")
	interval := flag.Int("interval", 0, "Metric sampling interval in seconds")
	maxSamples := flag.Int("max-samples", 0, "Maximum retained metric samples")
	logDirs := flag.String("log-dirs", "", "Comma-separated log directories to watch")
	maxEntries := flag.Int("max-entries", 0, "Maximum retained log entries")
	poll := flag.Int("poll", 0, "Log sweep interval in seconds")
	noAPI := flag.Bool("no-api", false, "Run without the HTTP API server")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	version := flag.Bool("version", false, "Print version information and exit")
	flag.Parse()

	if *version {
		showVersion()
	}

	// Load configuration and apply flag overrides
	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *host != "" {
		cfg.API.Host = *host
	}
	if *port != 0 {
		cfg.API.Port = *port
	}
	if *interval != 0 {
		cfg.Metrics.CollectionInterval = *interval
	}
	if *maxSamples != 0 {
		cfg.Metrics.MaxSamples = *maxSamples
	}
	if *logDirs != "" {
		cfg.Logging.Directories = strings.Split(*logDirs, ",")
	}
	if *maxEntries != 0 {
		cfg.Logging.MaxEntries = *maxEntries
	}
	if *poll != 0 {
		cfg.Logging.PollInterval = *poll
	}

	// Invalid configuration is a contract error: refuse to start
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup logging with rotation (console + rotating file)
	setupLogging("log_metrics.log")

	log.Println("=== Log & Metrics Collector ===")
	log.Printf("=== Sampling every %ds, keeping %d samples ===", cfg.Metrics.CollectionInterval, cfg.Metrics.MaxSamples)
	log.Printf("=== Watching %v for *%s, keeping %d entries ===", cfg.Logging.Directories, cfg.Logging.Extension, cfg.Logging.MaxEntries)

	// The store is the single shared state; everything else gets a handle.
	store := NewCollectorStore(cfg.Metrics.MaxSamples, cfg.Logging.MaxEntries)
	samplerHB := &Heartbeat{}
	tailerHB := &Heartbeat{}
	stats := NewStatistics(store, samplerHB, tailerHB, cfg.SampleInterval(), cfg.PollInterval())

	hub := NewHub(cfg.Stream.MaxClients)
	go hub.Run()

	sampler := NewMetricSampler(cfg, store, samplerHB, *verbose)
	sampler.Start()

	tailer := NewLogTailer(cfg, store, hub, tailerHB, *verbose)
	tailer.Start()

	if !*noAPI {
		srv := &apiServer{cfg: cfg, store: store, sampler: sampler, stats: stats, hub: hub}
		app := newHTTPApp(srv)
		go startHTTPServer(cfg.ListenAddr(), app)
	}

	log.Println("=== All monitoring systems active ===")

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("=== Shutting down ===")
	tailer.Stop()
	sampler.Stop()
	printSummary(store)
}

// printSummary reports the session's collection totals on shutdown
func printSummary(store *CollectorStore) {
	fmt.Println("\n=== Monitoring Session Summary ===")
	fmt.Printf("Collected %d metric samples\n", store.MetricCount())

	if recent := store.SnapshotMetrics(1); len(recent) > 0 {
		fmt.Println(recent[0].String())
	}

	counters := store.Counters()
	fmt.Println("Log statistics:")
	fmt.Printf("   Total entries: %d\n", counters.TotalEntries)
	fmt.Printf("   Errors:        %d\n", counters.ErrorCount)
	fmt.Printf("   Warnings:      %d\n", counters.WarningCount)
	fmt.Printf("   Info:          %d\n", counters.InfoCount)
	fmt.Printf("   Debug:         %d\n", counters.DebugCount)
	fmt.Printf("   Unknown:       %d\n", counters.UnknownCount)

	if proc, err := CollectProcStats(); err == nil {
		fmt.Println("Process: " + proc.String())
	}
}
