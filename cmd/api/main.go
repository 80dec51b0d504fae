package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/labinsight/labinsight-api/internal/application"
	appanalysis "github.com/labinsight/labinsight-api/internal/application/analysis"
	appchat "github.com/labinsight/labinsight-api/internal/application/chat"
	appfiles "github.com/labinsight/labinsight-api/internal/application/files"
	appprivacy "github.com/labinsight/labinsight-api/internal/application/privacy"
	"github.com/labinsight/labinsight-api/internal/config"
	domchat "github.com/labinsight/labinsight-api/internal/domain/chat"
	domfiles "github.com/labinsight/labinsight-api/internal/domain/files"
	domprofile "github.com/labinsight/labinsight-api/internal/domain/profile"
	domreport "github.com/labinsight/labinsight-api/internal/domain/report"
	aiclient "github.com/labinsight/labinsight-api/internal/infra/ai/openai"
	mysqldb "github.com/labinsight/labinsight-api/internal/infra/db/mysql"
	pgdb "github.com/labinsight/labinsight-api/internal/infra/db/postgres"
	"github.com/labinsight/labinsight-api/internal/infra/httpserver"
	minioStore "github.com/labinsight/labinsight-api/internal/infra/storage"
	"github.com/labinsight/labinsight-api/internal/middleware"
)

type repositories struct {
	results  domreport.Repository
	messages domchat.Repository
	profiles domprofile.Repository
	files    domfiles.Repository
}

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		logger.Fatal().Err(err).Msg("config load error")
	}

	ctx := logger.WithContext(context.Background())

	db, repos, err := connectRepositories(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("database connect error")
	}
	defer db.Close()

	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("minio init error")
	}

	gen := aiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.Temperature, cfg.OpenAI.TopP)
	clock := application.SystemClock{}

	analysisSvc := &appanalysis.Service{
		Gen:     gen,
		Results: repos.results,
		Clock:   clock,
		Model:   cfg.OpenAI.Model,
	}
	chatSvc := &appchat.Service{
		Gen:      gen,
		Messages: repos.messages,
		Results:  repos.results,
		Profiles: repos.profiles,
		Clock:    clock,
		Pending:  domchat.NewPendingTracker(),
	}
	privacySvc := &appprivacy.Service{
		Results:  repos.results,
		Messages: repos.messages,
		Files:    repos.files,
		Profiles: repos.profiles,
		Clock:    clock,
	}
	filesSvc := &appfiles.Service{
		Repo:    repos.files,
		Objects: store,
		Clock:   clock,
	}

	handler := httpserver.NewRouter(httpserver.Deps{
		Analysis:  analysisSvc,
		Chat:      chatSvc,
		Privacy:   privacySvc,
		Files:     filesSvc,
		Profiles:  repos.profiles,
		JWTSecret: []byte(cfg.Auth.JWTSecret),
		Logger:    &logger,
		Health: map[string]middleware.HealthChecker{
			"database":     &middleware.DatabaseHealthChecker{DB: db},
			"object_store": middleware.CheckerFunc(store.Check),
		},
	})

	// retention sweep runs in the background for users who opted into
	// auto-delete; one failed sweep is logged and retried next tick
	sweepInterval := time.Duration(cfg.Retention.SweepIntervalMinutes) * time.Minute
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			privacySvc.SweepExpired(ctx)
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // model calls are slow
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info().Msg("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
}

func connectRepositories(ctx context.Context, cfg *config.Config) (*sql.DB, repositories, error) {
	if cfg.Database.Driver == "postgres" {
		db, err := pgdb.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, repositories{}, err
		}
		return db, repositories{
			results:  pgdb.NewResultRepository(db),
			messages: pgdb.NewMessageRepository(db),
			profiles: pgdb.NewProfileRepository(db),
			files:    pgdb.NewFileRepository(db),
		}, nil
	}

	db, err := mysqldb.Connect(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, repositories{}, err
	}
	return db, repositories{
		results:  mysqldb.NewResultRepository(db),
		messages: mysqldb.NewMessageRepository(db),
		profiles: mysqldb.NewProfileRepository(db),
		files:    mysqldb.NewFileRepository(db),
	}, nil
}
