package main

import (
	"context"
	"flag"
	"os"

	"bookreview/internal/platform/database"
	"bookreview/internal/platform/logger"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	loadEnvFiles()
	logger.Init(logger.Options{Level: os.Getenv("APP_LOG_LEVEL"), Format: "console"})

	dir := migrationsDir()
	if *command == "create" {
		if *name == "" {
			log.Fatal().Msg("name is required for 'create' command")
		}
		if err := goose.Create(nil, dir, *name, "sql"); err != nil {
			log.Fatal().Err(err).Msg("create migration")
		}
		log.Info().Str("name", *name).Msg("migration created")
		return
	}

	dsn, err := databaseDSN()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	ctx := context.Background()
	pool, err := database.Open(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Str("dsn", database.RedactDSN(dsn)).Msg("connect to database")
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal().Err(err).Msg("set dialect")
	}

	switch *command {
	case "up":
		err = goose.UpContext(ctx, db, dir)
	case "down":
		err = goose.DownContext(ctx, db, dir)
	case "status":
		err = goose.StatusContext(ctx, db, dir)
	default:
		log.Fatal().Str("command", *command).Msg("unknown command, use: up, down, status, create")
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", *command).Msg("migration failed")
	}
	log.Info().Str("command", *command).Msg("migrations done")
}
