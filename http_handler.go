package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// apiServer bundles everything the read-only HTTP layer consults. Handlers
// never mutate collector state and never fail because collection did: an
// empty buffer is a valid response.
type apiServer struct {
	cfg     Config
	store   *CollectorStore
	sampler *MetricSampler
	stats   *Statistics
	hub     *Hub
}

// newHTTPApp builds the Fiber application with all REST routes registered
func newHTTPApp(srv *apiServer) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Log & Metrics Collector",
	})

	app.Use(cors.New())

	// API information and available endpoints
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"name":        "Log & Metrics Collector API",
			"version":     Version,
			"description": "REST API for system metrics and log monitoring",
			"endpoints": fiber.Map{
				"GET /":           "API information",
				"GET /health":     "Health check",
				"GET /metrics":    "System metrics (params: ?limit=N, ?current=true)",
				"GET /logs":       "Log entries (params: ?limit=N, ?level=ERROR|WARNING|INFO|DEBUG|UNKNOWN)",
				"GET /logs/stats": "Log statistics",
				"GET /status":     "Application status",
				"GET /config":     "Current configuration",
				"GET /ws":         "WebSocket live log stream",
			},
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   Version,
			"components": fiber.Map{
				"metrics_collector": srv.stats.SamplerAlive(),
				"log_monitor":       srv.stats.TailerAlive(),
			},
		})
	})

	app.Get("/metrics", func(c *fiber.Ctx) error {
		if c.QueryBool("current", false) {
			sample, err := srv.sampler.Current()
			if err != nil {
				log.Printf("Current metrics query failed: %v", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "Could not collect current metrics",
				})
			}
			return c.JSON(fiber.Map{
				"metrics": []MetricSample{sample},
				"count":   1,
				"type":    "current",
			})
		}

		metrics := srv.store.SnapshotMetrics(c.QueryInt("limit", 0))
		return c.JSON(fiber.Map{
			"metrics": metrics,
			"count":   len(metrics),
			"type":    "historical",
		})
	})

	app.Get("/logs", func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 50)
		level := c.Query("level")

		logs := srv.store.SnapshotLogs(limit, level)
		return c.JSON(fiber.Map{
			"logs":  logs,
			"count": len(logs),
			"filter": fiber.Map{
				"level": level,
				"limit": limit,
			},
		})
	})

	app.Get("/logs/stats", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"statistics": srv.stats.Summarize(),
			"timestamp":  time.Now().Format(time.RFC3339),
		})
	})

	app.Get("/status", func(c *fiber.Ctx) error {
		samplerLast, _ := heartbeatRFC3339(srv.stats.samplerHB)
		tailerLast, _ := heartbeatRFC3339(srv.stats.tailerHB)

		status := fiber.Map{
			"status":    "running",
			"timestamp": time.Now().Format(time.RFC3339),
			"components": fiber.Map{
				"metrics_collector": fiber.Map{
					"active":            srv.stats.SamplerAlive(),
					"samples_collected": srv.store.MetricCount(),
					"max_samples":       srv.cfg.Metrics.MaxSamples,
					"last_sample_at":    samplerLast,
				},
				"log_monitor": fiber.Map{
					"active":                srv.stats.TailerAlive(),
					"entries_collected":     srv.store.LogCount(),
					"max_entries":           srv.cfg.Logging.MaxEntries,
					"monitored_directories": srv.cfg.Logging.Directories,
					"last_cycle_at":         tailerLast,
				},
			},
			"configuration": fiber.Map{
				"metrics_interval": srv.cfg.Metrics.CollectionInterval,
				"api_host":         srv.cfg.API.Host,
				"api_port":         srv.cfg.API.Port,
			},
		}

		if srv.hub != nil {
			status["stream"] = srv.hub.GetStats()
		}
		if proc, err := CollectProcStats(); err == nil {
			status["process"] = proc
		}

		return c.JSON(status)
	})

	app.Get("/config", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"configuration": srv.cfg,
			"timestamp":     time.Now().Format(time.RFC3339),
		})
	})

	if srv.hub != nil {
		SetupWebSocketRoutes(app, srv.hub)
	}

	return app
}

// heartbeatRFC3339 formats a heartbeat for JSON, empty string when never marked
func heartbeatRFC3339(hb *Heartbeat) (string, bool) {
	last, ok := hb.Last()
	if !ok {
		return "", false
	}
	return last.Format(time.RFC3339), true
}

// startHTTPServer runs the Fiber app; intended to be called in a goroutine
func startHTTPServer(addr string, app *fiber.App) {
	log.Printf("=== HTTP server starting on %s ===", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("HTTP server error: %v", err)
	}
}
