package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/delivery-recon-api/infrastructure/database/postgres"
	"github.com/vfg2006/delivery-recon-api/infrastructure/repository"
	"github.com/vfg2006/delivery-recon-api/internal/api"
	"github.com/vfg2006/delivery-recon-api/internal/config"
	"github.com/vfg2006/delivery-recon-api/internal/scheduler"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/analyzing"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/authenticating"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/ingesting"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/insighting"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/locating"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/resolving"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/suggesting"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	clientRepo := repository.NewClientRepository(pgConn)
	locationRepo := repository.NewLocationRepository(pgConn)
	transactionRepo := repository.NewTransactionRepository(pgConn)
	userRepo := repository.NewUserRepository(pgConn)

	authenticator := authenticating.NewService(userRepo, cfg)

	// O mesmo carregador de diretório e a mesma função de similaridade servem
	// a ingestão e as sugestões de match
	directoryLoader := resolving.NewDirectoryLoader(locationRepo)
	scorer := resolving.NewScorer()

	ingestService := ingesting.NewService(clientRepo, transactionRepo, directoryLoader, scorer, cfg)
	locationService := locating.NewService(clientRepo, locationRepo)
	suggestionService := suggesting.NewService(clientRepo, locationRepo, transactionRepo, directoryLoader, scorer)
	insightService := insighting.NewService(transactionRepo)
	qualityService := analyzing.NewService(clientRepo, insightService)

	// Inicializa os agendadores de sincronização separados
	dataQualitySyncService := scheduler.NewDataQualitySyncService(
		clientRepo,
		qualityService,
		cfg,
	)

	suggestionDigestSyncService := scheduler.NewSuggestionDigestSyncService(
		clientRepo,
		suggestionService,
		cfg,
	)

	// Inicia os agendadores em background
	if err := dataQualitySyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador do scan de qualidade de dados")
	} else {
		logrus.Info("Agendador do scan de qualidade de dados iniciado com sucesso")
	}

	if err := suggestionDigestSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador do resumo de sugestões de match")
	} else {
		logrus.Info("Agendador do resumo de sugestões de match iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		clientRepo,
		ingestService,
		locationService,
		suggestionService,
		insightService,
		qualityService,
		authenticator,
		dataQualitySyncService,
		suggestionDigestSyncService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
