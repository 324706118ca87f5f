package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database Configuration
	MongoURI string
	DBName   string

	// Security Configuration
	JWTSecret string

	// Server Configuration
	Port string
	Env  string

	// Phase timer defaults (seconds), applied to newly created groups.
	DefaultPoolPhaseDurationSeconds   int64
	DefaultVotingPhaseDurationSeconds int64

	// Results scheduler
	ResultsCheckInterval time.Duration

	// Movie catalog seeding
	MovieSeedCSVPath string

	// Usernames provisioned by the seed command for local development.
	SeedUsernames []string
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	env := getEnvOrDefault("GO_ENV", "development")

	poolSeconds, err := getEnvInt64("DEFAULT_POOL_PHASE_SECONDS", 86400)
	if err != nil {
		return nil, err
	}
	votingSeconds, err := getEnvInt64("DEFAULT_VOTING_PHASE_SECONDS", 86400)
	if err != nil {
		return nil, err
	}
	checkSeconds, err := getEnvInt64("RESULTS_CHECK_INTERVAL_SECONDS", 300)
	if err != nil {
		return nil, err
	}

	return &Config{
		// Database Configuration
		MongoURI: getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		DBName:   getEnvOrDefault("DB_NAME", "movienightdb"),

		// Security Configuration
		JWTSecret: getEnvOrDefault("JWT_SECRET", ""),

		// Server Configuration
		Port: getEnvOrDefault("PORT", "8080"),
		Env:  env,

		DefaultPoolPhaseDurationSeconds:   poolSeconds,
		DefaultVotingPhaseDurationSeconds: votingSeconds,
		ResultsCheckInterval:              time.Duration(checkSeconds) * time.Second,

		MovieSeedCSVPath: getEnvOrDefault("MOVIE_SEED_CSV", "IMDB-Movie-Data.csv"),
		SeedUsernames:    getEnvList("SEED_USERNAMES"),
	}, nil
}

// getEnvList splits a comma-separated environment variable, dropping empty
// items. An unset variable is an empty list.
func getEnvList(key string) []string {
	var items []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %v", key, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, parsed)
	}
	return parsed, nil
}
