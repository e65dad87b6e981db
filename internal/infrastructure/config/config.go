package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime settings, loaded from CONVO_-prefixed env vars.
type Config struct {
	Debug       bool   `envconfig:"debug"`
	Port        int    `envconfig:"port" default:"8080"`
	DatabaseURL string `envconfig:"database_url"`
	RedisURL    string `envconfig:"redis_url"`

	AWSRegion    string `envconfig:"aws_region"`
	AWSAccessKey string `envconfig:"aws_access_key_id"`
	AWSSecretKey string `envconfig:"aws_secret_access_key"`
	MediaBucket  string `envconfig:"media_bucket"`

	// MaxUploadBytes caps a single media upload. Defaults to 25 MiB.
	MaxUploadBytes int64 `envconfig:"max_upload_bytes" default:"26214400"`
}

// Load reads .env (outside release mode) and then the environment.
func Load() (*Config, error) {
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load("./.env"); err != nil {
			log.Printf("couldn't load env vars: %v", err)
		}
	}

	c := &Config{}
	if err := envconfig.Process("convo", c); err != nil {
		return nil, err
	}
	return c, nil
}
