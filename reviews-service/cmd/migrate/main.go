package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"storereviews/pkg/logger"
	"storereviews/reviews-service/internal/app/reviews/config"
	"storereviews/reviews-service/internal/app/reviews/infrastructure/migration"
	"storereviews/reviews-service/migrations"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	logger.Init("reviews-migrate", logLevel)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	m, err := migration.New(cfg.Database.URL(), migrations.FS)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create migrator")
	}
	defer m.Close()

	switch command {
	case "up":
		err = m.Up()

	case "down":
		err = m.Down()

	case "version":
		var (
			version uint
			dirty   bool
		)
		version, dirty, err = m.Version()
		if err == nil {
			logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("Current migration version")
		}

	case "force":
		if len(args) < 2 {
			logger.Fatal().Msg("Version required. Usage: migrate force <version>")
		}
		version, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			logger.Fatal().Str("value", args[1]).Msg("Invalid version number")
		}
		err = m.Force(version)

	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Fatal().Err(err).Str("command", command).Msg("Migration command failed")
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [flags] <command>

Commands:
  up               apply all pending migrations
  down             roll back all migrations
  version          print current schema version
  force <version>  set version without running migrations (clears dirty flag)

Database connection is taken from DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, DB_SSLMODE.`)
	flag.PrintDefaults()
}
