package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wumpus/internal/config"
	"github.com/robalobadob/wumpus/internal/httpserver"
	"github.com/robalobadob/wumpus/internal/results"
	"github.com/robalobadob/wumpus/internal/store"
	"github.com/robalobadob/wumpus/internal/worldtoken"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	var db *sql.DB
	if cfg.DBPath != "" {
		db, err = results.OpenDB(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open results db")
		}
		defer db.Close()
		if err := results.Migrate(context.Background(), db); err != nil {
			log.Fatal().Err(err).Msg("migrate results db")
		}
	} else {
		log.Warn().Msg("DB_PATH empty; results will not be recorded")
	}

	mem := store.NewMemoryStore()
	tokens := worldtoken.NewIssuer(cfg.TokenSecret, cfg.TokenTTL)
	srv := httpserver.New(mem, db, tokens, httpserver.Options{
		RequestTimeout: cfg.RequestTimeout,
		SolveSteps:     cfg.SolveSteps,
		WorldIdle:      cfg.WorldIdle,
	})
	go srv.RunJanitor(context.Background(), time.Minute)
	log.Info().Str("port", cfg.Port).Msg("starting wumpus-server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
