package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gratefultolord/aid_docs_bot/internal/adminbot"
	"github.com/gratefultolord/aid_docs_bot/internal/api"
	"github.com/gratefultolord/aid_docs_bot/internal/config"
	"github.com/gratefultolord/aid_docs_bot/internal/db"
	"github.com/gratefultolord/aid_docs_bot/internal/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(config.AppConsoleAPI)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	lg := logger.New(logger.Options{Token: cfg.RollbarToken, Env: cfg.Env, Service: string(config.AppConsoleAPI)})

	database, err := db.New(cfg)
	if err != nil {
		lg.Fatal("Error connecting to database", err)
	}
	defer database.Close()

	opts := &api.Options{
		Address: cfg.ConsoleAddr,
		APIKey:  cfg.ConsoleAPIKey,
		Debug:   cfg.Debug,
		Store:   db.NewApplicationRepository(database.Conn),
		Log:     lg,
	}

	// without the applicant bot token decisions are stored but not announced
	if cfg.BotToken != "" {
		applicantBotApi, err := tgbotapi.NewBotAPI(cfg.BotToken)
		if err != nil {
			lg.Fatal("Error creating applicant bot client", err)
		}
		opts.Notifier = adminbot.NewNotifier(applicantBotApi)
	} else {
		lg.Warn("BOT_TOKEN is not set, applicants will not be notified")
	}

	srv := api.NewServer(opts)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		lg.Info("Console API listening on " + cfg.ConsoleAddr)
		serverErrors <- srv.Start()
	}()

	select {
	case err := <-serverErrors:
		if err != nil {
			lg.Fatal("Console API stopped", err)
		}
	case sig := <-shutdown:
		lg.Info("Shutting down", map[string]interface{}{"signal": sig.String()})

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			lg.Error("Graceful shutdown failed", err)
		}
	}
}
