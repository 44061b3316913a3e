package main

import (
	"errors"
	"os"

	"bookreview/internal/platform/config"
)

const (
	envDSN           = "APP_DB_DSN"
	envMigrationsDir = "APP_MIGRATIONS_DIR"
)

var errMissingDSN = errors.New(envDSN + " is required")

func loadEnvFiles() {
	config.LoadEnvFiles()
}

func databaseDSN() (string, error) {
	dsn := os.Getenv(envDSN)
	if dsn == "" {
		return "", errMissingDSN
	}
	return dsn, nil
}

func migrationsDir() string {
	if v := os.Getenv(envMigrationsDir); v != "" {
		return v
	}
	return "db/migrations"
}
