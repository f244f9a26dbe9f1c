package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/gray-logic-remote/internal/api"
	"github.com/nerrad567/gray-logic-remote/internal/bridge"
	"github.com/nerrad567/gray-logic-remote/internal/connection"
	"github.com/nerrad567/gray-logic-remote/internal/feedback"
	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-remote/internal/journal"
	"github.com/nerrad567/gray-logic-remote/internal/site"
	"github.com/nerrad567/gray-logic-remote/internal/telemetry"
	"github.com/nerrad567/gray-logic-remote/migrations"
)

// healthCheckInterval is how often run probes the optional integrations.
const healthCheckInterval = time.Minute

// newRunCmd creates the "run" subcommand.
func newRunCmd() *cobra.Command {
	var zone string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the control surface until interrupted",
		Long: "Loads the site, selects the startup zone and keeps its connection,\n" +
			"journal, telemetry, MQTT bridge and local API running until SIGINT/SIGTERM.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if zone != "" {
				cfg.Site.Zone = zone
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&zone, "zone", "z", "", "zone to select at startup (overrides site.zone)")
	return cmd
}

// run wires every component and blocks until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config) error {
	log := logging.New(cfg.Logging, version)
	log.Info("starting Gray Logic Remote",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	st, err := site.Load(cfg.Site.File)
	if err != nil {
		return fmt.Errorf("loading site: %w", err)
	}
	log.Info("site loaded", "path", cfg.Site.File, "zones", len(st.Zones))

	store := feedback.NewStore()
	store.SetLogger(log)

	manager := connection.NewManager(cfg.Connection, store)
	manager.SetLogger(log.With("component", "connection"))
	defer func() {
		log.Info("closing connection")
		manager.Disconnect(true)
	}()

	session := site.NewSession(st, store, manager)
	session.SetLogger(log.With("component", "session"))
	defer session.Close()

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	group, groupCtx := errgroup.WithContext(runCtx)
	notifiers := connection.Notifiers{connection.NotifierFunc(func(s connection.Status) {
		log.Info("connection status", "status", s.Kind.String(), "address", s.Address, "message", s.Message())
	})}

	// Feedback journal (optional)
	var history api.HistoryReader
	if cfg.Database.Enabled {
		db, repo, recorder, openErr := openJournal(groupCtx, cfg.Database, log)
		if openErr != nil {
			return openErr
		}
		history = repo
		detach := recorder.Attach(store)
		session.OnZoneChange(func(z *site.Zone) {
			if z == nil {
				recorder.SetSource("")
				return
			}
			recorder.SetSource(z.Slug)
		})
		group.Go(func() error {
			recorder.Run(groupCtx)
			return nil
		})
		defer func() {
			// The recorder drains its queue once the run context ends.
			stop()
			//nolint:errcheck // workers never return errors
			group.Wait()
			detach()
			written, dropped := recorder.Stats()
			log.Info("closing database", "journal_written", written, "journal_dropped", dropped)
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
	} else {
		log.Info("feedback journal disabled")
	}

	// Telemetry (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		rec := telemetry.NewRecorder(influxClient)
		detach := rec.Attach(store)
		session.OnZoneChange(func(z *site.Zone) {
			if z == nil {
				rec.SetZone("")
				return
			}
			rec.SetZone(z.Slug)
		})
		defer func() {
			detach()
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "org", cfg.InfluxDB.Org, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	// MQTT state bridge (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		mqttClient.SetLogger(log.With("component", "mqtt"))
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		br := bridge.New(mqttClient, store, session)
		br.SetLogger(log.With("component", "bridge"))
		session.OnZoneChange(br.SetZone)
		notifiers = append(notifiers, br)
		group.Go(func() error {
			br.Run(groupCtx)
			return nil
		})
		defer func() {
			br.Close()
			log.Info("disconnecting from MQTT", "bridge_dropped", br.Dropped())
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
			"prefix", mqttClient.Topics().Prefix,
		)
	} else {
		log.Info("MQTT bridge disabled")
	}

	// Local API (optional)
	if cfg.API.Enabled {
		server, apiErr := api.New(api.Deps{
			Config:     cfg.API,
			WS:         cfg.WebSocket,
			Logger:     log.With("component", "api"),
			Session:    session,
			Store:      store,
			Connection: manager,
			History:    history,
			Version:    version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := server.Start(groupCtx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		notifiers = append(notifiers, server)
		defer func() {
			if closeErr := server.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("local API disabled")
	}

	manager.SetNotifier(notifiers)

	if err := selectStartupZone(ctx, cfg, session, manager, log); err != nil {
		log.Warn("startup connection failed, waiting for a zone selection", "error", err)
	}

	group.Go(func() error {
		healthLoop(groupCtx, log, influxClient, mqttClient)
		return nil
	})

	log.Info("Gray Logic Remote started")
	<-groupCtx.Done()
	log.Info("shutdown signal received, stopping...")
	manager.Disconnect(true)
	stop()

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("Gray Logic Remote stopped")
	return nil
}

// openJournal opens the database, applies migrations and prepares the
// recorder.
func openJournal(ctx context.Context, cfg config.DatabaseConfig, log *logging.Logger) (*database.DB, *journal.Repository, *journal.Recorder, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", db.Path())

	repo := journal.NewRepository(db.DB)
	recorder := journal.NewRecorder(repo, 0)
	recorder.SetLogger(log.With("component", "journal"))
	if cfg.RetentionHours > 0 {
		recorder.SetRetention(repo, time.Duration(cfg.RetentionHours)*time.Hour)
	}
	return db, repo, recorder, nil
}

// selectStartupZone selects the configured zone, or connects straight to
// connection.url when no zone is configured.
func selectStartupZone(ctx context.Context, cfg *config.Config, session *site.Session, manager *connection.Manager, log *logging.Logger) error {
	switch {
	case cfg.Site.Zone != "":
		return session.SelectZone(ctx, cfg.Site.Zone)
	case cfg.Connection.URL != "":
		log.Info("no startup zone, connecting to default address", "address", cfg.Connection.URL)
		return manager.Connect(ctx, cfg.Connection.URL)
	default:
		log.Info("no startup zone configured")
		return nil
	}
}

// healthLoop logs failing integrations every healthCheckInterval.
func healthLoop(ctx context.Context, log *logging.Logger, influxClient *influxdb.Client, mqttClient *mqtt.Client) {
	if influxClient == nil && mqttClient == nil {
		return
	}
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if influxClient != nil {
				if err := influxClient.HealthCheck(checkCtx); err != nil {
					log.Warn("InfluxDB health check failed", "error", err)
				}
			}
			if mqttClient != nil {
				if err := mqttClient.HealthCheck(checkCtx); err != nil {
					log.Warn("MQTT health check failed", "error", err)
				}
			}
			cancel()
		}
	}
}
