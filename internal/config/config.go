package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port string
	DSN  string

	// AllowBootstrap enables the default-users setup endpoint. Never
	// true in release mode.
	AllowBootstrap bool
}

// Load reads configs/.env when present and resolves the runtime
// configuration with development fallbacks.
func Load() Config {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Debug().Msg("no configs/.env file found, using environment only")
	}

	dbHost := getenv("DB_HOST", "localhost")
	dbPort := getenv("DB_PORT", "5432")
	dbUser := getenv("DB_USER", "postgres")
	dbPassword := getenv("DB_PASSWORD", "postgres")
	dbName := getenv("DB_NAME", "postgres")
	dbSslMode := getenv("DB_SSLMODE", "disable")

	releaseMode := os.Getenv("GIN_MODE") == "release"
	allowBootstrap := !releaseMode
	if v := os.Getenv("ALLOW_BOOTSTRAP"); v != "" {
		allowBootstrap = v == "true" && !releaseMode
	}

	return Config{
		Port:           getenv("PORT", "8080"),
		DSN:            "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode,
		AllowBootstrap: allowBootstrap,
	}
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
