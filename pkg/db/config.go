package db

import (
	"fmt"
	"os"
	"strconv"
)

type PostgresConfig struct {
	Host          string
	Port          int
	User          string
	Password      string
	DBName        string
	SSLMode       string
	MigrationsDir string
}

func LoadPostgresConfig() (PostgresConfig, error) {
	port, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return PostgresConfig{}, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	return PostgresConfig{
		Host:          getEnv("DB_HOST", "localhost"),
		Port:          port,
		User:          getEnv("DB_USER", "postgres"),
		Password:      os.Getenv("DB_PASSWORD"),
		DBName:        getEnv("DB_NAME", "checkout"),
		SSLMode:       getEnv("DB_SSLMODE", "disable"),
		MigrationsDir: getEnv("DB_MIGRATIONS_DIR", "internal/repository/migrations"),
	}, nil
}

// DSN renders the config as a postgres URL.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
