package main

import (
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gratefultolord/aid_docs_bot/internal/adminbot"
	"github.com/gratefultolord/aid_docs_bot/internal/config"
	"github.com/gratefultolord/aid_docs_bot/internal/db"
	"github.com/gratefultolord/aid_docs_bot/internal/logger"
)

func main() {
	cfg, err := config.Load(config.AppAdminBot)
	if err != nil {
		log.Fatalf("Error loading config: %v\n", err)
	}

	lg := logger.New(logger.Options{Token: cfg.RollbarToken, Env: cfg.Env, Service: string(config.AppAdminBot)})

	database, err := db.New(cfg)
	if err != nil {
		lg.Fatal("Error connecting to database", err)
	}
	defer database.Close()

	botApi, err := tgbotapi.NewBotAPI(cfg.AdminBotToken)
	if err != nil {
		lg.Fatal("Error creating Telegram bot", err)
	}
	botApi.Debug = cfg.Debug

	applicantBotApi, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		lg.Fatal("Error creating applicant bot client", err)
	}

	applicationRepo := db.NewApplicationRepository(database.Conn)
	adminRepo := db.NewAdminRepository(database.Conn)

	adminBotService := adminbot.New(
		botApi,
		adminbot.NewNotifier(applicantBotApi),
		applicationRepo,
		adminRepo,
		lg,
	)

	lg.Info("Admin bot started as @" + botApi.Self.UserName)

	adminBotService.Start()
}
