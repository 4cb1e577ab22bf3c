package config

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port            int           `env:"PORT" envDefault:"8080"`
	LLMBackend      string        `env:"LLM_BACKEND" envDefault:"openai"`
	OpenAIBaseURL   string        `env:"OPENAI_BASE_URL"`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"50s"`
	MaxSessions     int           `env:"MAX_SESSIONS" envDefault:"1000"`
	SessionIdleTTL  time.Duration `env:"SESSION_IDLE_TTL" envDefault:"2h"`
	DatabaseURL     string        `env:"DATABASE_URL" envDefault:"studio.db"`
	RabbitMQURL     string        `env:"RABBITMQ_URL"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// LoadEnvFile loads the file named by the -env flag into the process
// environment. Without the flag only os.Environ is used.
func LoadEnvFile() {
	var configPath string

	flag.StringVar(&configPath, "env", "", "path to load env from")
	flag.Parse()

	if configPath == "" {
		log.Printf("no env file specified, using os.Environ only")
		return
	}

	log.Printf("loading env from file %s", configPath)
	if err := godotenv.Load(configPath); err != nil {
		log.Fatalf("error loading .env file '%s': %v", configPath, err)
	}
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.ProviderTimeout <= 0 {
		return nil, fmt.Errorf("PROVIDER_TIMEOUT must be positive, got %s", cfg.ProviderTimeout)
	}
	if cfg.MaxSessions <= 0 {
		return nil, fmt.Errorf("MAX_SESSIONS must be positive, got %d", cfg.MaxSessions)
	}

	return &cfg, nil
}
