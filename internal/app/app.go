package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/openmagecz/roivenue-export/internal/config"
	"github.com/openmagecz/roivenue-export/internal/dal/azure"
	"github.com/openmagecz/roivenue-export/internal/dal/feedstore"
	"github.com/openmagecz/roivenue-export/internal/dal/postgres"
	"github.com/openmagecz/roivenue-export/internal/dal/rabbitmq"
	customerrepo "github.com/openmagecz/roivenue-export/internal/dal/repositories/customer/postgres"
	"github.com/openmagecz/roivenue-export/internal/dal/repositories/notify"
	orderrepo "github.com/openmagecz/roivenue-export/internal/dal/repositories/order/postgres"
	runlogrepo "github.com/openmagecz/roivenue-export/internal/dal/repositories/runlog/postgres"
	"github.com/openmagecz/roivenue-export/internal/encrypt"
	"github.com/openmagecz/roivenue-export/internal/otel"
	"github.com/openmagecz/roivenue-export/internal/service/services/exportsvc"
	"github.com/openmagecz/roivenue-export/internal/service/services/feedsvc"
	"github.com/spf13/viper"
)

// App represents the application: one export run per invocation.
type App struct {
	exportSvc      *exportsvc.ExportService
	postgresClient *postgres.Client
	rabbitMqClient *rabbitmq.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	cfg := config.MustLoadExport()

	otelController := otel.MustInitOtel()
	postgresClient := postgres.MustNewClient()

	encryptor, err := encrypt.NewEncryptorFromFile(cfg.SecretKeyPath)
	if err != nil {
		panic("error while loading encryption key: " + err.Error())
	}

	customerRepo := customerrepo.NewPostgresCustomerRepository(postgresClient)

	feedSvc := feedsvc.MustNewFeedService(
		feedsvc.WithConfig(cfg),
		feedsvc.WithEncryptor(encryptor),
		feedsvc.WithCustomerProvider(customerRepo),
	)

	uploader := azure.MustNewClient(
		cfg.StorageAccount,
		os.Getenv("AZURE_ACCOUNT_KEY"),
		cfg.StorageShare,
		cfg.StorageFolder,
	)

	opts := []exportsvc.Option{
		exportsvc.WithConfig(cfg),
		exportsvc.WithOrderRepository(orderrepo.NewPostgresOrderRepository(postgresClient)),
		exportsvc.WithFeedService(feedSvc),
		exportsvc.WithStore(feedstore.NewStore(cfg.ExportDirectory)),
		exportsvc.WithUploader(uploader),
		exportsvc.WithRunLogRepository(runlogrepo.NewRunLogRepository(postgresClient)),
	}

	var rabbitMqClient *rabbitmq.Client
	if viper.GetBool("notify.enabled") {
		rabbitMqClient = rabbitmq.MustNewClient()
		opts = append(opts, exportsvc.WithNotifier(notify.NewFeedNotifier(rabbitMqClient)))
	}

	return &App{
		exportSvc:      exportsvc.MustNewExportService(opts...),
		postgresClient: postgresClient,
		rabbitMqClient: rabbitMqClient,
		otelController: otelController,
	}
}

// Run executes one export. An interrupt signal cancels the run's context;
// the process exits non-zero when the export fails.
func (a *App) Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := a.exportSvc.Run(ctx)

	a.gracefulShutdown()

	if err != nil {
		os.Exit(1)
	}
}

// gracefulShutdown closes all application clients.
func (a *App) gracefulShutdown() {
	if a.rabbitMqClient != nil {
		if err := a.rabbitMqClient.Close(); err != nil {
			slog.Error("RabbitMQ connection close error", "error", err)
		} else {
			slog.Info("RabbitMQ connection closed gracefully")
		}
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Otel trace provider connection close error", "error", err)
	} else {
		slog.Info("Otel trace provider connection closed gracefully")
	}
}
