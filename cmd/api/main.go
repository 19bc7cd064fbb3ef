package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/altona/sales-kpi-api/infrastructure/database/postgres"
	"github.com/altona/sales-kpi-api/infrastructure/repository"
	"github.com/altona/sales-kpi-api/internal/api"
	"github.com/altona/sales-kpi-api/internal/config"
	"github.com/altona/sales-kpi-api/internal/scheduler"
	"github.com/altona/sales-kpi-api/internal/usecases/aggregating"
	"github.com/altona/sales-kpi-api/internal/usecases/recording"
	"github.com/sirupsen/logrus"
)

func main() {
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nivel de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	saleEventRepo := repository.NewSaleEventRepository(pgConn)
	dailySummaryRepo := repository.NewDailySummaryRepository(pgConn)

	// La máscara de borrado vive lo que vive el proceso: nace vacía y se
	// descarta al apagar
	deletionMask := recording.NewDeletionMask()

	aggregatingService := aggregating.NewService(saleEventRepo, deletionMask)
	recordingService := recording.NewService(saleEventRepo, deletionMask)

	dailySummarySyncService := scheduler.NewDailySummarySyncService(
		aggregatingService,
		dailySummaryRepo,
		cfg,
	)

	if err := dailySummarySyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Error al iniciar el planificador de resúmenes diarios")
	} else {
		logrus.Info("Planificador de resúmenes diarios iniciado con éxito")
	}

	server, err := api.New(
		cfg,
		recordingService,
		aggregatingService,
		dailySummarySyncService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura el formato y comportamiento de los logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn crea la conexión con la base de datos
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Error al conectar con PostgreSQL")
	}

	if err = conn.Ping(ctx); err != nil {
		logrus.WithError(err).Fatal("Error al probar la conexión con PostgreSQL")
	}

	logrus.Info("Conexión con PostgreSQL establecida con éxito")
	return conn
}
