// Home Hub - Device State & Event Synchronization Engine
//
// This is the main entry point for the hub. It keeps an in-memory device
// registry synchronised with the MQTT bus, persists energy and security
// history to SQLite, and serves a REST API plus a WebSocket event stream
// to user interfaces.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/wrenhall/homehub/migrations"

	"github.com/wrenhall/homehub/internal/api"
	"github.com/wrenhall/homehub/internal/assist"
	"github.com/wrenhall/homehub/internal/bus"
	"github.com/wrenhall/homehub/internal/device"
	"github.com/wrenhall/homehub/internal/history"
	"github.com/wrenhall/homehub/internal/infrastructure/config"
	"github.com/wrenhall/homehub/internal/infrastructure/database"
	"github.com/wrenhall/homehub/internal/infrastructure/influxdb"
	"github.com/wrenhall/homehub/internal/infrastructure/logging"
	"github.com/wrenhall/homehub/internal/infrastructure/mqtt"
	"github.com/wrenhall/homehub/internal/notify"
	"github.com/wrenhall/homehub/internal/state"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Home Hub",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Load device definitions and build the registry
	defs, err := device.LoadDefinitions(cfg.Devices.Path)
	if err != nil {
		return fmt.Errorf("loading device definitions: %w", err)
	}
	registry, err := device.NewRegistry(defs)
	if err != nil {
		return fmt.Errorf("building device registry: %w", err)
	}
	registry.SetLogger(log)
	log.Info("device registry initialised", "devices", registry.Count())

	validator := device.NewValidator(registry)

	// Connect to MQTT broker. An unreachable broker is not fatal: the
	// client keeps retrying in the background and the hub serves cached
	// state meanwhile.
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		if !errors.Is(err, mqtt.ErrBrokerUnreachable) {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		log.Warn("MQTT broker unreachable, starting degraded", "error", err)
	} else {
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()

	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT connected, subscriptions installed")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional energy telemetry mirror)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// History repositories
	energyRepo := history.NewSQLiteEnergyRepository(db)
	securityRepo := history.NewSQLiteSecurityRepository(db)

	// Live notification hub
	hub := notify.NewHub(cfg.WebSocket.SendBuffer)
	hub.SetLogger(log)

	// Bus gateway: inbound device reports, outbound commands
	gateway := bus.NewGateway(mqttClient, byte(cfg.MQTT.QoS))
	gateway.SetLogger(log)
	if startErr := gateway.Start(); startErr != nil {
		return fmt.Errorf("starting bus gateway: %w", startErr)
	}
	log.Info("bus gateway started")

	// State synchronizer: routes inbound reports into the registry,
	// history, and the notification hub.
	syncCfg := state.Config{
		Registry: registry,
		Notifier: hub,
		Energy:   energyRepo,
		Security: securityRepo,
		Logger:   log,
	}
	if influxClient != nil {
		syncCfg.Metrics = influxClient
	}
	synchronizer := state.NewSynchronizer(syncCfg)
	go synchronizer.Run(ctx, gateway.Inbound())
	log.Info("state synchronizer running")

	// Background sweep flips silent devices to offline.
	go staleSweep(ctx, registry, hub, cfg.GetStaleAfter(), cfg.GetStaleSweepInterval(), log)

	// Natural-language command resolver (optional)
	var resolver api.Resolver
	if cfg.Assist.Enabled {
		service := assist.NewService(cfg.Assist)
		resolver = assist.NewResolver(service, registry, validator, gateway, log)
		log.Info("assist resolver enabled", "url", cfg.Assist.URL)
	} else {
		log.Info("assist disabled")
	}

	// API server
	server, err := api.New(api.Deps{
		Config:     cfg.API,
		WS:         cfg.WebSocket,
		Logger:     log,
		Registry:   registry,
		Validator:  validator,
		Dispatcher: gateway,
		Energy:     energyRepo,
		Security:   securityRepo,
		Notify:     hub,
		Resolver:   resolver,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify infrastructure health. MQTT is excluded: an unreachable
	// broker is a degraded state, not a startup failure.
	if err := healthCheck(ctx, db, influxClient, server); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT
	// 4. Database

	log.Info("Home Hub stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses HOMEHUB_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HOMEHUB_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// staleSweep periodically marks devices offline when they have been silent
// longer than the configured window, and pushes the connectivity change to
// live subscribers.
func staleSweep(ctx context.Context, registry *device.Registry, hub *notify.Hub, staleAfter, interval time.Duration, log *logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, id := range registry.MarkStale(staleAfter, now.UTC()) {
				log.Info("device marked offline", "device_id", id, "stale_after", staleAfter)
				hub.Broadcast(notify.DeviceUpdate(id, map[string]any{
					"connectivity": string(device.ConnectivityOffline),
				}, now.UTC()))
			}
		}
	}
}

// healthCheck verifies infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, influxClient *influxdb.Client, server *api.Server) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	return nil
}
