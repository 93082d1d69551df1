package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gridgames/tictactoe-llm-backend/internal/config"
	"github.com/gridgames/tictactoe-llm-backend/internal/entity"
	"github.com/gridgames/tictactoe-llm-backend/internal/oracle"
	"github.com/gridgames/tictactoe-llm-backend/internal/repository"
	"github.com/gridgames/tictactoe-llm-backend/internal/repository/storage"
	"github.com/gridgames/tictactoe-llm-backend/internal/service"
	"github.com/gridgames/tictactoe-llm-backend/internal/usecase"
	"github.com/gridgames/tictactoe-llm-backend/transport/rest"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedis(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sqliteStorage, err := storage.NewSQLite(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open sqlite storage: %w", err)
	}

	defer func() {
		if err = sqliteStorage.Close(); err != nil {
			log.Error("could not close sqlite storage", "error", err)
		}
	}()

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init sqlite storage: %w", err)
	}

	playerRepo := repository.NewPlayerRepository(redisStorage)
	gameRepo := repository.NewGameRepository(redisStorage)
	userRepo := repository.NewUserRepository(sqliteStorage.Connection)
	statsRepo := repository.NewStatsRepository(sqliteStorage.Connection)

	oracleClient := oracle.New(logger, oracle.Options{
		BaseURL: conf.Oracle.BaseURL,
		APIKey:  conf.Oracle.APIKey,
		Model:   conf.Oracle.Model,
		Timeout: conf.Oracle.Timeout(),
		Temperatures: map[string]float64{
			entity.DifficultyEasy:   conf.Oracle.TempEasy,
			entity.DifficultyMedium: conf.Oracle.TempMedium,
			entity.DifficultyHard:   conf.Oracle.TempHard,
		},
	})

	statsService := service.NewStatsService(statsRepo)
	userService := service.NewUserService(userRepo)
	authService := service.NewAuthService(conf.JWTSecretKey)
	gameManager := usecase.NewGameManager(logger, playerRepo, gameRepo, oracleClient, statsService)

	handlers := rest.NewHandlers(logger, gameManager, statsService, userService, authService, rest.NewOauthConfig(conf))
	server := rest.NewServer(logger, handlers)

	log.Info("Starting HTTP server", "port", conf.HTTPPort)
	if err = server.Start(ctx, conf.HTTPPort); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	return nil
}
