package server

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/pitgrid/boostrace-service-go/log"
	"github.com/pitgrid/boostrace-service-go/pkg/config"
	"github.com/pitgrid/boostrace-service-go/pkg/db/postgres"
	"github.com/pitgrid/boostrace-service-go/pkg/model"
	racerepo "github.com/pitgrid/boostrace-service-go/pkg/repository/race"
	"github.com/pitgrid/boostrace-service-go/pkg/service"
	"github.com/pitgrid/boostrace-service-go/pkg/transport/natsapi"
	"github.com/pitgrid/boostrace-service-go/pkg/utils"
	"github.com/pitgrid/boostrace-service-go/pkg/utils/broadcast"
)

func NewServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "starts the race simulation server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&config.LogLevel,
		"log-level",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	cmd.Flags().StringVar(&config.SQLLogLevel,
		"sql-log-level",
		"info",
		"controls the log level for sql methods")
	cmd.Flags().StringVar(&config.LogFormat,
		"log-format",
		"json",
		"controls the log output format")
	cmd.Flags().StringVar(&config.LogFilter,
		"log-filter",
		"",
		"zapfilter rules to restrict logger namespaces")
	cmd.Flags().BoolVar(&config.EnableTelemetry,
		"enable-telemetry",
		false,
		"enables telemetry exports")
	cmd.Flags().StringVar(&config.TelemetryEndpoint,
		"telemetry-endpoint",
		"localhost:4317",
		"OTLP grpc endpoint for telemetry")
	return cmd
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

func setupLogger() *log.Logger {
	opts := []log.Option{log.WithCaller(true), log.AddCallerSkip(1)}
	if config.LogFilter != "" {
		opts = append(opts, log.WithFilters(config.LogFilter))
	}
	switch config.LogFormat {
	case "json":
		return log.New(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			opts...)
	default:
		return log.DevLogger(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.DebugLevel),
			opts...)
	}
}

func waitForServices() error {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}
	if err := utils.WaitForTCP(utils.ExtractFromDBURL(config.DB), timeout); err != nil {
		return err
	}
	return utils.WaitForTCP(utils.ExtractFromNatsURL(config.NatsURL), timeout)
}

//nolint:funlen // wiring
func startServer(ctx context.Context) error {
	logger := setupLogger()
	log.ResetDefault(logger)

	log.Debug("Config:",
		log.String("db", config.DB),
		log.String("natsUrl", config.NatsURL),
	)

	var telemetry *config.Telemetry
	if config.EnableTelemetry {
		var err error
		if telemetry, err = config.SetupTelemetry(ctx); err != nil {
			log.Error("Could not setup telemetry", log.ErrorField(err))
		}
	}

	if err := waitForServices(); err != nil {
		log.Error("Required services not ready", log.ErrorField(err))
		return err
	}

	log.Info("Starting server")
	poolOpts := []postgres.PoolConfigOption{
		postgres.WithTracer(logger.Named("sql"),
			parseLogLevel(config.SQLLogLevel, log.InfoLevel)),
	}
	if config.EnableTelemetry {
		poolOpts = []postgres.PoolConfigOption{postgres.WithOtelTracer()}
	}
	pool := postgres.InitWithURL(config.DB, poolOpts...)
	defer postgres.CloseDb()

	turnSink := make(chan service.TurnEvent, 64)
	svc := service.NewRaceService(
		service.WithPool(pool),
		service.WithTurnSink(turnSink),
		service.WithLogger(logger.Named("service")))

	if err := recoverRaces(ctx, svc); err != nil {
		log.Error("server could not be started", log.ErrorField(err))
		return err
	}

	nc, err := nats.Connect(config.NatsURL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second))
	if err != nil {
		log.Error("could not connect to NATS", log.ErrorField(err))
		return err
	}

	endpoint := natsapi.NewEndpoint(nc, svc,
		natsapi.WithLogger(logger.Named("natsapi")))
	if err := endpoint.Start(); err != nil {
		log.Error("server could not be started", log.ErrorField(err))
		return err
	}

	turnEvents := broadcast.NewBroadcastServer("turnevents",
		(<-chan service.TurnEvent)(turnSink))
	publishCh := turnEvents.Subscribe()
	go func() {
		for event := range publishCh {
			if err := endpoint.PublishTurn(event); err != nil {
				log.Error("could not publish turn",
					log.String("raceId", event.RaceID),
					log.ErrorField(err))
			}
		}
	}()

	log.Info("Server started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	v := <-sigChan
	log.Debug("Got signal ", log.Any("signal", v))

	endpoint.Shutdown()
	turnEvents.Close()
	if err := nc.Drain(); err != nil {
		log.Warn("error draining NATS connection", log.ErrorField(err))
	}
	if telemetry != nil {
		telemetry.Shutdown()
	}

	log.Info("Server terminated")
	return nil
}

// recoverRaces repopulates the registry with the unfinished races so
// clients can resume after a restart.
func recoverRaces(ctx context.Context, svc *service.RaceService) error {
	for _, status := range []model.RaceStatus{
		model.RaceStatusWaiting, model.RaceStatusInProgress,
	} {
		races, err := racerepo.LoadByStatus(ctx, postgres.DbPool, status)
		if err != nil {
			return err
		}
		for _, r := range races {
			svc.Lookup().AddRace(r)
			log.Info("race recovered",
				log.String("raceId", r.ID),
				log.String("status", string(r.Status)))
		}
	}
	return nil
}
