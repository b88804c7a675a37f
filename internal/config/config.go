package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Port           int      `env:"PORT" env-default:"8080"`
	MongoURI       string   `env:"MONGO_URI"`
	JWTSecret      string   `env:"JWT_SECRET"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" env-separator:","`

	SMTPHost     string `env:"SMTP_HOST" env-default:"smtp.gmail.com"`
	SMTPPort     int    `env:"SMTP_PORT" env-default:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`

	CryptoBotURL  string `env:"CRYPTOBOT_API_URL"`
	BillingAPIURL string `env:"BILLING_API_URL"`
	BillingAPIKey string `env:"BILLING_API_KEY"`

	// Usage reporting fires once a day at this local time.
	ReportHour   int `env:"REPORT_HOUR" env-default:"2"`
	ReportMinute int `env:"REPORT_MINUTE" env-default:"0"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("couldn't read environment variables: %w", err)
	}

	return cfg, nil
}
