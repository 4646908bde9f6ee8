package config

import (
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// App names the binary a Config is loaded for. Each binary needs a
// different subset of settings.
type App string

const (
	AppSignupBot  App = "signupbot"
	AppAdminBot   App = "adminbot"
	AppConsoleAPI App = "consoleapi"
)

type Config struct {
	Env   string
	Debug bool

	AdminBotToken string `validate:"required_if=App adminbot"`
	BotToken      string `validate:"required_unless=App consoleapi"`
	ConsoleAPIKey string `validate:"required_if=App consoleapi"`
	ConsoleAddr   string

	DBUser     string `validate:"required"`
	DBPassword string `validate:"required"`
	DBName     string `validate:"required"`
	DBHost     string
	DBPort     string `validate:"numeric"`

	DocDir          string `validate:"required"`
	MinDwellSeconds int    `validate:"gte=0"`

	OCREnabled      bool
	OCRLanguages    []string
	OCRKeywordsFile string

	RollbarToken string

	App App `validate:"oneof=signupbot adminbot consoleapi"`
}

var validate = newValidator()

const ocrLanguagesTag = "ocr_languages"

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(configStructValidation, Config{})
	return v
}

// configStructValidation holds the rules the field tags cannot express.
func configStructValidation(sl validator.StructLevel) {
	if cfg, ok := sl.Current().Interface().(Config); ok {
		if cfg.OCREnabled && len(cfg.OCRLanguages) == 0 {
			sl.ReportError(cfg.OCRLanguages, "OCRLanguages", "OCRLanguages", ocrLanguagesTag, "")
		}
	}
}

func defaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("DEBUG", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("CONSOLE_ADDR", ":8080")
	v.SetDefault("DOC_DIR", "doc_files")
	v.SetDefault("MIN_DWELL_SECONDS", 10)
	v.SetDefault("OCR_ENABLED", false)
	v.SetDefault("OCR_LANGUAGES", "rus,eng")
}

// Load reads the configuration for app from the environment, after loading
// .env if one is present.
func Load(app App) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("config.Load: no .env file found - using env variables")
	}

	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	return fromViper(v, app)
}

func fromViper(v *viper.Viper, app App) (*Config, error) {
	cfg := &Config{
		Env:             v.GetString("ENV"),
		Debug:           v.GetBool("DEBUG"),
		AdminBotToken:   v.GetString("ADMIN_BOT_TOKEN"),
		BotToken:        v.GetString("BOT_TOKEN"),
		ConsoleAPIKey:   v.GetString("CONSOLE_API_KEY"),
		ConsoleAddr:     v.GetString("CONSOLE_ADDR"),
		DBUser:          v.GetString("DB_USER"),
		DBPassword:      v.GetString("DB_PASSWORD"),
		DBName:          v.GetString("DB_NAME"),
		DBHost:          v.GetString("DB_HOST"),
		DBPort:          v.GetString("DB_PORT"),
		DocDir:          v.GetString("DOC_DIR"),
		MinDwellSeconds: v.GetInt("MIN_DWELL_SECONDS"),
		OCREnabled:      v.GetBool("OCR_ENABLED"),
		OCRLanguages:    splitList(v.GetString("OCR_LANGUAGES")),
		OCRKeywordsFile: v.GetString("OCR_KEYWORDS_FILE"),
		RollbarToken:    v.GetString("ROLLBAR_TOKEN"),
		App:             app,
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "config.Load")
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
