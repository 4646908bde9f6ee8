package main

import (
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gratefultolord/aid_docs_bot/internal/bot"
	"github.com/gratefultolord/aid_docs_bot/internal/config"
	"github.com/gratefultolord/aid_docs_bot/internal/db"
	"github.com/gratefultolord/aid_docs_bot/internal/files"
	"github.com/gratefultolord/aid_docs_bot/internal/logger"
	"github.com/gratefultolord/aid_docs_bot/internal/ocr"
)

func main() {
	cfg, err := config.Load(config.AppSignupBot)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	lg := logger.New(logger.Options{Token: cfg.RollbarToken, Env: cfg.Env, Service: string(config.AppSignupBot)})

	database, err := db.New(cfg)
	if err != nil {
		lg.Fatal("Error connecting to database", err)
	}
	defer database.Close()

	err = db.RunMigrations(database.Conn, "db_scripts/init.sql", "db_scripts/admin.sql")
	if err != nil {
		lg.Fatal("Error running migrations", err)
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		lg.Fatal("Error creating telegram bot", err)
	}
	botAPI.Debug = cfg.Debug

	applicationRepo := db.NewApplicationRepository(database.Conn)
	adminRepo := db.NewAdminRepository(database.Conn)

	fileService, err := files.NewFileService(botAPI, cfg.DocDir)
	if err != nil {
		lg.Fatal("Error creating FileService", err)
	}

	// stays a nil interface when OCR is off
	var validator bot.DocumentChecker
	if cfg.OCREnabled {
		rules, err := ocr.LoadRules(cfg.OCRKeywordsFile)
		if err != nil {
			lg.Fatal("Error loading OCR keywords", err)
		}
		validator = ocr.NewValidator(ocr.NewTesseractRecognizer(cfg.OCRLanguages...), rules)
		lg.Info("OCR checks enabled", map[string]interface{}{"languages": cfg.OCRLanguages})
	}

	botService := bot.New(
		botAPI,
		applicationRepo,
		adminRepo,
		fileService,
		validator,
		lg,
		cfg.MinDwellSeconds,
	)

	lg.Info("Bot started as @" + botAPI.Self.UserName)

	botService.Start()
}
