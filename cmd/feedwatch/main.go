// Command feedwatch logs in to a timeclock API and polls the caller's
// notification feed, logging whenever the unread count changes.
//
//	feedwatch -url http://localhost:8080 -login admin -interval 15s
//
// The password is read from FEEDWATCH_PASSWORD.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/thynetwork/timeclock/pkg/client"
	"github.com/thynetwork/timeclock/pkg/logger"
	"github.com/thynetwork/timeclock/pkg/poller"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "API base URL")
	login := flag.String("login", "", "email or username")
	interval := flag.Duration("interval", 15*time.Second, "poll interval")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	_ = godotenv.Load()
	log := logger.Init(logger.Options{Level: *level, Pretty: true, Service: "feedwatch"})

	if err := run(*baseURL, *login, os.Getenv("FEEDWATCH_PASSWORD"), *interval, log); err != nil {
		log.Error().Err(err).Msg("feedwatch stopped")
		os.Exit(1)
	}
}

func run(baseURL, login, password string, interval time.Duration, log zerolog.Logger) error {
	if login == "" || password == "" {
		return errors.New("-login and FEEDWATCH_PASSWORD are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.New(baseURL, 0)
	user, err := c.Login(ctx, login, password)
	if err != nil {
		return err
	}
	log.Info().Str("user", user.Username).Str("role", user.Role).Dur("interval", interval).Msg("watching feed")

	w := &watcher{client: c, log: log, admin: user.Role == "ADMIN", last: -1}
	poller.New(interval, w.poll, log).Run(ctx)
	return nil
}

type watcher struct {
	client *client.Client
	log    zerolog.Logger
	admin  bool
	last   int
}

func (w *watcher) poll(ctx context.Context) error {
	if w.admin {
		feed, err := w.client.AdminFeed(ctx)
		if err != nil {
			return err
		}
		if feed.Unread == w.last {
			return nil
		}
		w.last = feed.Unread
		for _, it := range feed.Items {
			if !it.Unread {
				continue
			}
			evt := w.log.Info().Str("id", it.ID).Str("owner", it.Owner).Time("at", it.Timestamp)
			if it.Thread != nil {
				evt = evt.Int("open_questions", it.Thread.OpenQuestionCount)
			}
			evt.Msg(it.Content)
		}
		w.log.Info().Int("unread", feed.Unread).Msg("admin feed changed")
		return nil
	}

	feed, err := w.client.EmployeeFeed(ctx)
	if err != nil {
		return err
	}
	if feed.Unread == w.last {
		return nil
	}
	w.last = feed.Unread
	for _, it := range feed.Items {
		if !it.Unread || it.Question.Answer == nil {
			continue
		}
		w.log.Info().Str("question", it.Question.Content).Msgf("answered: %s", *it.Question.Answer)
	}
	w.log.Info().Int("unread", feed.Unread).Msg("answers changed")
	return nil
}
