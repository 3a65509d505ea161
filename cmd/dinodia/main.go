// Dinodia Core - Device Access and Command Bridge
//
// This is the main entry point for the Dinodia Core application.
// Dinodia sits between landlord-managed Home Assistant hubs and the
// people allowed to use them:
//   - Owners manage households, members and hub connections
//   - Tenants see and control only the devices their filters allow
//   - Alexa and Google fulfillments ride the same access path
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/dinodia/dinodia-core/migrations"

	"github.com/dinodia/dinodia-core/internal/access"
	"github.com/dinodia/dinodia-core/internal/api"
	"github.com/dinodia/dinodia-core/internal/audit"
	"github.com/dinodia/dinodia-core/internal/auth"
	"github.com/dinodia/dinodia-core/internal/bridge"
	"github.com/dinodia/dinodia-core/internal/device"
	"github.com/dinodia/dinodia-core/internal/hub"
	"github.com/dinodia/dinodia-core/internal/infrastructure/config"
	"github.com/dinodia/dinodia-core/internal/infrastructure/database"
	"github.com/dinodia/dinodia-core/internal/infrastructure/influxdb"
	"github.com/dinodia/dinodia-core/internal/infrastructure/logging"
	"github.com/dinodia/dinodia-core/internal/infrastructure/mqtt"
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
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
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
	log.Info("starting Dinodia Core",
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

	// Repositories
	users := auth.NewUserRepository(db.DB)
	households := access.NewSQLiteHouseholdRepository(db.DB)
	memberships := access.NewSQLiteMembershipRepository(db.DB)
	hubInstances := hub.NewSQLiteInstanceRepository(db.DB)
	auditRepo := audit.NewSQLiteRepository(db.DB)

	// Connect to MQTT broker (optional; commands still work without the
	// event bus, consumers just have to poll the audit API)
	var mqttClient *mqtt.Client
	var events *audit.Publisher
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Host, cfg.MQTT.Port),
			"client_id", cfg.MQTT.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		events = audit.NewPublisher(mqttClient)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB for hub call telemetry (optional)
	var influxClient *influxdb.Client
	var recorder hub.CallRecorder
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
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		recorder = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	// Core pipeline: hub client -> aggregator -> resolver -> bridge
	hubClient := hub.NewClient(hubInstances, cfg.GetHubTimeout(), log, recorder)
	aggregator := device.NewAggregator(hubClient, log)
	resolver := access.NewResolver(households, memberships)
	commandBridge := bridge.NewService(resolver, aggregator, hubClient, auditRepo, events, log)

	// Voice adapters share the command core, scoped to the configured
	// voice household
	alexa := bridge.NewAlexaAdapter(commandBridge, cfg.Voice.HouseholdID, cfg.Voice.Manufacturer, log)
	google := bridge.NewGoogleAdapter(commandBridge, cfg.Voice.HouseholdID, cfg.Voice.AgentUserID, cfg.Voice.Manufacturer, log)

	// HTTP API server
	server, err := api.New(api.Deps{
		Config:       cfg.API,
		Security:     cfg.Security,
		Logger:       log,
		Users:        users,
		Households:   households,
		Memberships:  memberships,
		HubInstances: hubInstances,
		HubPinger:    hubClient,
		Aggregator:   aggregator,
		Resolver:     resolver,
		Bridge:       commandBridge,
		Alexa:        alexa,
		Google:       google,
		Audit:        auditRepo,
		Version:      version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient, server); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("Dinodia Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses DINODIA_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("DINODIA_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheckTimeout bounds the startup health probe.
const healthCheckTimeout = 5 * time.Second

// healthCheck verifies all infrastructure connections are healthy.
// Optional clients may be nil when their subsystem is disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client, server *api.Server) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
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
