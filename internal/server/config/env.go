package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables, loading a
// local .env file first when one exists. Unset variables leave the current
// value in place.
func parseEnv(config *Config) {
	// missing .env is fine, real env still applies
	_ = godotenv.Load()

	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	setString(&config.EndpointAddrHTTP, "ATELIER_HTTP_ADDR")
	setString(&config.DatabaseDSN, "ATELIER_DATABASE_DSN")
	setString(&config.SecretKey, "ATELIER_SECRET_KEY")
	setString(&config.S3RootUser, "ATELIER_S3_ROOT_USER")
	setString(&config.S3RootPassword, "ATELIER_S3_ROOT_PASSWORD")
	setString(&config.S3Bucket, "ATELIER_S3_BUCKET")
	setString(&config.S3Region, "ATELIER_S3_REGION")
	setString(&config.S3BaseEndpoint, "ATELIER_S3_BASE_ENDPOINT")

	if v, ok := os.LookupEnv("ATELIER_ACCESS_TOKEN_VALIDITY"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.AccessTokenValidityDuration = d
		}
	}
}
