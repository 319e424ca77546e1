package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/horse37/corretores-sub000/internal/adapters/assetresolver"
	"github.com/horse37/corretores-sub000/internal/adapters/contentstore"
	"github.com/horse37/corretores-sub000/internal/adapters/imoveisapi"
	logger_adapter "github.com/horse37/corretores-sub000/internal/adapters/logger"
	"github.com/horse37/corretores-sub000/internal/adapters/mediaarchive"
	postgres_adapter "github.com/horse37/corretores-sub000/internal/adapters/postgres"
	rabbitmq_adapter "github.com/horse37/corretores-sub000/internal/adapters/rabbitmq"
	"github.com/horse37/corretores-sub000/internal/adapters/rest"
	"github.com/horse37/corretores-sub000/internal/configs"
	"github.com/horse37/corretores-sub000/internal/constants"
	"github.com/horse37/corretores-sub000/internal/core/port"
	"github.com/horse37/corretores-sub000/internal/core/usecase"
	fluentlogger "github.com/horse37/corretores-sub000/pkg/fluent_logger"
	"github.com/horse37/corretores-sub000/pkg/postgres"
	"github.com/horse37/corretores-sub000/pkg/rabbitmq/rabbitmq_common"
	"github.com/horse37/corretores-sub000/pkg/rabbitmq/rabbitmq_consumer"
	"github.com/horse37/corretores-sub000/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

type App struct {
	config    *configs.AppConfig
	logger    port.LoggerPort
	apiServer *rest.Server

	dbPool       *pgxpool.Pool // nil when neither source nor backup needs it
	fluentClient *fluent.Fluent

	backupProducer *rabbitmq_producer.Publisher
	backupListener port.EventListenerPort
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// Loggers first: everything below reports through them.
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   false,
		UseColor: true,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{
		"service_name": appConfig.AppName,
	})
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	// Postgres pool: needed by the postgres property source and by the
	// backup metadata store.
	var dbPool *pgxpool.Pool
	if appConfig.Database.URL != "" {
		dbPool, err = postgres.NewClient(context.Background(), postgres.Config{DatabaseURL: appConfig.Database.URL})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		appLogger.Info("Connected to PostgreSQL pool", nil)
	}

	// Property source: the local system of record.
	var propertyRepo port.PropertyRepositoryPort
	switch appConfig.PropertySource.Kind {
	case "postgres":
		propertyRepo = postgres_adapter.NewPropertyRepositoryAdapter(dbPool)
	case "api":
		propertyRepo = imoveisapi.NewClient(appConfig.PropertySource.APIURL)
	default:
		return nil, fmt.Errorf("unsupported property source: %s", appConfig.PropertySource.Kind)
	}
	appLogger.Info("Property repository initialized", port.Fields{"source": appConfig.PropertySource.Kind})

	// Outgoing adapters.
	storeClient := contentstore.NewClient(
		appConfig.ContentStore.BaseURL,
		appConfig.ContentStore.APIToken,
		appConfig.ContentStore.Collection,
	)
	resolver := assetresolver.NewResolver(appConfig.Media.PublicBaseURL, appConfig.Media.LocalRoot)
	appLogger.Info("All outgoing adapters initialized.", nil)

	// Media backup side channel: producer, archive worker and its queue
	// topology. Optional as a whole.
	var (
		backupScheduler port.BackupSchedulerPort
		backupProducer  *rabbitmq_producer.Publisher
		backupListener  port.EventListenerPort
	)
	if appConfig.MediaBackup.Enabled {
		connManagerLogger := baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"})
		connManager, err := rabbitmq_common.GetManager(appConfig.RabbitMQ.URL, rabbitmq_adapter.NewPkgLoggerBridge(connManagerLogger))
		if err != nil {
			return nil, fmt.Errorf("failed to create connection manager: %w", err)
		}
		appLogger.Info("RabbitMQ Connection Manager initialized.", nil)

		producerLogger := baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})
		producerCfg := rabbitmq_producer.PublisherConfig{
			Config:                   rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			ExchangeName:             constants.ExchangeName,
			ExchangeType:             "direct",
			DurableExchange:          true,
			DeclareExchangeIfMissing: true,
			Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(producerLogger),
		}
		backupProducer, err = rabbitmq_producer.NewPublisher(producerCfg, connManager)
		if err != nil {
			return nil, fmt.Errorf("failed to create backup producer: %w", err)
		}

		backupScheduler, err = rabbitmq_adapter.NewBackupQueueAdapter(backupProducer, constants.RoutingKeyMediaBackup)
		if err != nil {
			return nil, err
		}

		archive := mediaarchive.NewDiskArchive(appConfig.MediaBackup.ArchiveRoot, dbPool)
		archiveUseCase := usecase.NewArchiveMediaUseCase(resolver, archive)

		consumerLogger := baseLogger.WithFields(port.Fields{"component": "rabbitmq_consumer"})
		consumerCfg := rabbitmq_consumer.ConsumerConfig{
			Config:              rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			QueueName:           constants.QueueMediaBackup,
			DeclareQueue:        true,
			DurableQueue:        true,
			ExchangeNameForBind: constants.ExchangeName,
			RoutingKeyForBind:   constants.RoutingKeyMediaBackup,
			PrefetchCount:       1,
			ConsumerTag:         "media-backup-archiver",

			EnableRetryMechanism: true,
			RetryExchange:        constants.QueueMediaBackup + "_retry_ex",
			RetryQueue:           constants.QueueMediaBackup + "_retry_wait_10s",
			RetryTTL:             10000,
			FinalDLXExchange:     constants.FinalDLXExchange,
			FinalDLQ:             constants.FinalDLQ,
			FinalDLQRoutingKey:   constants.FinalDLQRoutingKey,
			MaxRetries:           3,

			Logger: rabbitmq_adapter.NewPkgLoggerBridge(consumerLogger),
		}
		backupListener, err = rabbitmq_adapter.NewBackupConsumerAdapter(consumerCfg, connManager, archiveUseCase, baseLogger)
		if err != nil {
			return nil, err
		}
		appLogger.Info("Media backup side channel initialized.", nil)
	}

	// Use cases.
	uploadUseCase := usecase.NewUploadMediaUseCase(resolver, storeClient)
	syncPropertyUseCase := usecase.NewSyncPropertyUseCase(propertyRepo, storeClient, uploadUseCase, backupScheduler)
	syncAllUseCase := usecase.NewSyncAllUseCase(propertyRepo, syncPropertyUseCase, appConfig.Sync.DefaultPageSize)
	appLogger.Info("All use cases initialized.", nil)

	// REST API server.
	apiHandlers := rest.NewSyncHandlers(syncPropertyUseCase, syncAllUseCase, appConfig.Sync.ItemDelay)
	apiServer := rest.NewServer(appConfig.Rest.Port, apiHandlers, baseLogger)

	return &App{
		config:         appConfig,
		logger:         appLogger,
		apiServer:      apiServer,
		dbPool:         dbPool,
		fluentClient:   fluentClient,
		backupProducer: backupProducer,
		backupListener: backupListener,
	}, nil
}

// Run starts every component and manages the shutdown sequence.
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())

	var wg sync.WaitGroup

	defer func() {
		a.logger.Info("App: Shutdown sequence initiated...", nil)

		a.logger.Info("App: Waiting for background processes to finish...", nil)
		wg.Wait()
		a.logger.Info("App: All background processes finished.", nil)

		if a.backupListener != nil {
			if err := a.backupListener.Close(); err != nil {
				a.logger.Error("App: Error closing backup listener", err, nil)
			}
		}
		if a.backupProducer != nil {
			if err := a.backupProducer.Close(); err != nil {
				a.logger.Error("App: Error closing backup producer", err, nil)
			}
		}
		if a.apiServer != nil {
			if err := a.apiServer.Stop(context.Background()); err != nil {
				a.logger.Error("App: Error closing api server", err, nil)
			}
		}
		if a.dbPool != nil {
			a.dbPool.Close()
			a.logger.Info("App: PostgreSQL pool closed.", nil)
		}
		if a.fluentClient != nil {
			a.fluentClient.Close()
		}
		a.logger.Info("Application shut down gracefully.", nil)
	}()

	a.logger.Info("Application is starting...", nil)

	componentErrors := make(chan error, 2)

	if a.backupListener != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.logger.Info("App: Starting Media Backup Listener...", nil)
			if err := a.backupListener.Start(appCtx); err != nil {
				a.logger.Error("App: Media Backup Listener stopped with an unexpected error", err, nil)
				componentErrors <- fmt.Errorf("media backup listener error: %w", err)
			} else {
				a.logger.Info("App: Media Backup Listener stopped gracefully.", nil)
			}
		}()
	}

	go func() {
		if err := a.apiServer.Start(); err != nil {
			componentErrors <- fmt.Errorf("api server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or component error...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Info("App: Received signal. Shutting down...", port.Fields{"signal": receivedSignal.String()})
	case err := <-componentErrors:
		a.logger.Error("App: A critical component failed. Shutting down...", err, nil)
	case <-appCtx.Done():
		a.logger.Warn("App: Context was cancelled unexpectedly. Shutting down...", nil)
	}

	cancelApp()

	return nil
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
