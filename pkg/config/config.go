package config

import (
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		Env      string `env:"APP_ENV" env-default:"development"`
		Port     string `env:"PORT" env-default:"8080"`
		LogLevel string `env:"LOG_LEVEL" env-default:"info"`
	}
	Postgres struct {
		ConnStr string `env:"POSTGRES_CONN_STR" env-required:"true"`
	}
	Mongo struct {
		URI      string `env:"MONGO_URI" env-required:"true"`
		Database string `env:"MONGO_DATABASE" env-default:"socialmedia"`
	}
	Redis struct {
		Addr     string `env:"REDIS_ADDR"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB" env-default:"0"`
	}
	Auth struct {
		JWTSecret string        `env:"JWT_SECRET" env-default:"supersecretjwtkey"`
		TokenTTL  time.Duration `env:"JWT_TTL" env-default:"72h"`
	}
	Firebase struct {
		CredentialsPath string `env:"FIREBASE_CREDENTIALS_PATH" env-default:"./firebase_credentials.json"`
		StorageBucket   string `env:"FIREBASE_STORAGE_BUCKET"`
	}
	Storage struct {
		// Backend is one of local, gcs, s3.
		Backend   string `env:"STORAGE_BACKEND" env-default:"local"`
		LocalPath string `env:"STORAGE_LOCAL_PATH" env-default:"./uploads"`
		PublicURL string `env:"STORAGE_PUBLIC_URL" env-default:"/uploads"`
		S3Region  string `env:"S3_REGION" env-default:"us-east-1"`
		S3Bucket  string `env:"S3_BUCKET"`
	}
	Sentry struct {
		DSN string `env:"SENTRY_DSN"`
	}
	Metrics struct {
		Port string `env:"METRICS_PORT" env-default:"9090"`
	}
	Stories struct {
		SweepInterval time.Duration `env:"STORY_SWEEP_INTERVAL" env-default:"10m"`
		TTL           time.Duration `env:"STORY_TTL" env-default:"24h"`
	}
	RateLimit struct {
		Requests int           `env:"RATE_LIMIT_REQUESTS" env-default:"30"`
		Per      time.Duration `env:"RATE_LIMIT_PER" env-default:"1m"`
		Burst    int           `env:"RATE_LIMIT_BURST" env-default:"10"`
	}
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		help, _ := cleanenv.GetDescription(cfg, nil)
		return nil, fmt.Errorf("failed to read configuration: %w\n%s", err, help)
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
