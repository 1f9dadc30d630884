// Command seed creates the administrator account and, optionally, employees
// listed in a YAML fixture file.
//
//	seed -fixtures employees.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/thynetwork/timeclock/internal/core/service"
	mongodb "github.com/thynetwork/timeclock/internal/infrastructure/db/mongo"
	"github.com/thynetwork/timeclock/internal/infrastructure/queue"
	"github.com/thynetwork/timeclock/internal/pkg/config"
	"github.com/thynetwork/timeclock/internal/seed"
	"github.com/thynetwork/timeclock/pkg/logger"
)

func main() {
	fixtures := flag.String("fixtures", "", "optional YAML file with employees to create")
	flag.Parse()

	if err := run(*fixtures); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func run(fixtures string) error {
	_ = godotenv.Load()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "timeclock-seed"})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	users := mongodb.NewUserRepository(db)
	if _, err := seed.EnsureAdmin(ctx, users, seed.Admin{
		Email:    cfg.Seed.AdminEmail,
		Username: cfg.Seed.AdminUsername,
		Password: cfg.Seed.AdminPassword,
	}, log); err != nil {
		return err
	}

	if fixtures == "" {
		return nil
	}

	f, err := os.Open(fixtures)
	if err != nil {
		return fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()

	employees, err := seed.LoadFixtures(f)
	if err != nil {
		return err
	}

	locks := queue.NewDispatcher(1, log)
	locks.Start(ctx)

	userService := service.NewUserService(
		users,
		mongodb.NewClockEventRepository(db),
		mongodb.NewMessageRepository(db),
		mongodb.NewQuestionRepository(db),
		mongodb.NewTransactor(client, cfg.Mongo.Transactions),
		locks,
		log,
	)
	res, err := seed.ApplyEmployees(ctx, userService, employees, log)
	if err != nil {
		return err
	}

	log.Info().Int("created", res.Created).Int("skipped", res.Skipped).Str("file", fixtures).Msg("employees seeded")
	return nil
}
