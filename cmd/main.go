// Package main wires the HTTP server for the repository analytics dashboard.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github-pulse/config"
	"github-pulse/internal/api"
	"github-pulse/internal/dashboard"
	"github-pulse/internal/transport/http/middleware"
	"github-pulse/internal/transport/http/server"
	"github-pulse/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	if !config.TokenLooksValid(cfg.GitHub.Token) {
		log.Warnw("github token format looks unusual; expecting a personal access token")
	}

	var fetcher dashboard.Fetcher
	switch cfg.GitHub.API {
	case "graphql":
		fetcher = api.NewGraphQLClient(cfg.GitHub.Token, log)
	default:
		client := api.NewClient(cfg.GitHub.Token)
		if fullName, err := client.RepositoryName(ctx, cfg.GitHub.Owner, cfg.GitHub.Repo); err != nil {
			log.Warnw("could not verify repository", "repository", cfg.Repository(), "error", err)
		} else {
			log.Infow("repository verified", "repository", fullName)
		}
		fetcher = client
	}

	svc := dashboard.New(log, fetcher, cfg.GitHub.Owner, cfg.GitHub.Repo, cfg.HTTP.RequestTimeout)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTP.RequestTimeout,
		WriteTimeout: cfg.HTTP.RequestTimeout,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(log))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	h := server.NewHandler(log, svc, cfg.DefaultWindow)
	h.Register(app)

	go func() {
		log.Infow("starting server",
			"addr", cfg.ServerAddr(),
			"repository", cfg.Repository(),
			"window_days", cfg.GitHub.WindowDays,
		)
		if err := app.Listen(cfg.ServerAddr()); err != nil {
			log.Errorw("failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = app.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Warnw("server shutdown timeout", "timeout", cfg.Server.ShutdownTimeout)
	}
}
