package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"

	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/service"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/infrastructure/config"
	mongodb "github.com/aslbekqoziboyev536-star/LC-Studio/internal/infrastructure/db/mongo"
	"github.com/aslbekqoziboyev536-star/LC-Studio/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	log := logger.Init(logger.Options{Level: "warn", Pretty: true, Output: os.Stderr, Service: "lcadmin"})

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}

	users := mongodb.NewUserRepository(db)
	cli := commandLine{
		users: service.NewUserService(
			users,
			mongodb.NewCourseRepository(db),
			mongodb.NewStudentRepository(db),
			service.TenantPolicy{AllowUntagged: cfg.LegacyUntaggedVisible},
			log,
		),
		out: os.Stdout,
	}

	runErr := cli.run(ctx, os.Args)
	_ = client.Disconnect(ctx)
	if runErr != nil {
		if !errors.Is(runErr, errHelp) {
			log.Error().Err(runErr).Msg("command failed")
		}
		os.Exit(1)
	}
}
