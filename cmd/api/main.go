// Command api serves the timeclock HTTP API.
//
// @title                       Timeclock API
// @version                     1.0
// @description                 Attendance clock with clock-out messages, questions and notification feeds.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/thynetwork/timeclock/internal/api"
	"github.com/thynetwork/timeclock/internal/core/ports"
	mongodb "github.com/thynetwork/timeclock/internal/infrastructure/db/mongo"
	redisdb "github.com/thynetwork/timeclock/internal/infrastructure/db/redis"
	"github.com/thynetwork/timeclock/internal/infrastructure/queue"
	"github.com/thynetwork/timeclock/internal/pkg/config"
	"github.com/thynetwork/timeclock/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		l := logger.Get()
		l.Fatal().Err(err).Msg("api stopped")
	}
}

func run() error {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{Service: "timeclock-api"})
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "timeclock-api",
	})

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	log.Info().Str("database", cfg.Mongo.Database).Bool("transactions", cfg.Mongo.Transactions).Msg("mongo connected")

	// Workers outlive the signal context so in-flight requests drain on shutdown.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	locks, rdb, err := clockSerializer(ctx, workerCtx, cfg, log)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	e := api.NewRouter(api.Deps{
		Log:       log,
		DB:        db,
		Redis:     rdb,
		Tx:        mongodb.NewTransactor(client, cfg.Mongo.Transactions),
		Locks:     locks,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		Location:  loc,
		QuoteTTL:  cfg.QuoteCacheTTL,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("timezone", loc.String()).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}

// clockSerializer returns the per-user serializer selected by CLOCK_LOCK and,
// in redis mode, the client backing it.
func clockSerializer(ctx, workerCtx context.Context, cfg *config.Config, log zerolog.Logger) (ports.KeyedSerializer, *goredis.Client, error) {
	if cfg.Clock.Lock == config.LockRedis {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.LockTTL).Msg("clock lock: redis")
		return redisdb.NewClockLock(rdb, cfg.Redis.LockTTL, 0), rdb, nil
	}

	d := queue.NewDispatcher(cfg.Clock.Workers, log)
	d.Start(workerCtx)
	log.Info().Int("workers", cfg.Clock.Workers).Msg("clock lock: in-process")
	return d, nil, nil
}
