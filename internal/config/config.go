package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port string

	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	RunMigrations  bool

	RabbitMQURL string

	MailHost string
	MailPort int
	MailUser string
	MailPass string
	MailFrom string

	KommoAPIToken string
	KommoBaseURL  string

	DuplicateDebounce  time.Duration
	TrashRetention     time.Duration
	TrashPurgeInterval time.Duration

	CORSAllowedOrigins []string

	LogLevel  string
	LogFormat string
}

// Load lê o .env (se existir) e depois as variáveis de ambiente.
// Prioridade: ambiente > .env > default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return &Config{
		Port:               v.GetString("PORT"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		DBMaxOpenConns:     v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:     v.GetInt("DB_MAX_IDLE_CONNS"),
		RunMigrations:      v.GetBool("RUN_MIGRATIONS"),
		RabbitMQURL:        v.GetString("RABBITMQ_URL"),
		MailHost:           v.GetString("MAIL_HOST"),
		MailPort:           v.GetInt("MAIL_PORT"),
		MailUser:           v.GetString("MAIL_USER"),
		MailPass:           v.GetString("MAIL_PASS"),
		MailFrom:           v.GetString("MAIL_FROM"),
		KommoAPIToken:      v.GetString("KOMMO_API_TOKEN"),
		KommoBaseURL:       v.GetString("KOMMO_BASE_URL"),
		DuplicateDebounce:  v.GetDuration("DUPLICATE_DEBOUNCE"),
		TrashRetention:     v.GetDuration("TRASH_RETENTION"),
		TrashPurgeInterval: v.GetDuration("TRASH_PURGE_INTERVAL"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogFormat:          v.GetString("LOG_FORMAT"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("MAIL_PORT", 587)
	v.SetDefault("MAIL_FROM", "nao-responda@liguecursos.com")
	v.SetDefault("KOMMO_BASE_URL", "https://liguemedicina.kommo.com/api/v4")
	v.SetDefault("DUPLICATE_DEBOUNCE", "500ms")
	v.SetDefault("TRASH_RETENTION", "720h")
	v.SetDefault("TRASH_PURGE_INTERVAL", "1h")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
