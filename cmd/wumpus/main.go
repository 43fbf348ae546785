package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/robalobadob/wumpus/internal/cli"
	"github.com/robalobadob/wumpus/internal/config"
	"github.com/robalobadob/wumpus/internal/controller"
	"github.com/robalobadob/wumpus/internal/coords"
	"github.com/robalobadob/wumpus/internal/game"
	"github.com/robalobadob/wumpus/internal/protocol"
	"github.com/robalobadob/wumpus/internal/render"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadClient()

	var in coords.Input
	flag.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "simulation service base URL")
	flag.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "per-request timeout")
	flag.BoolVar(&cfg.Plain, "plain", cfg.Plain, "line-oriented mode instead of the full-screen board")
	flag.StringVar(&in.Size, "size", "4", "grid size")
	flag.StringVar(&in.Wumpus, "wumpus", "", `wumpus position "row,col" (0,0 or empty: random)`)
	flag.StringVar(&in.Gold, "gold", "", `gold position "row,col" (0,0 or empty: random)`)
	flag.StringVar(&in.Pits, "pits", "", `pit positions "row,col;row,col"`)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "wumpus:", err)
		os.Exit(2)
	}

	logger, closeLog, err := openLog(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "wumpus:", err)
		os.Exit(1)
	}
	defer closeLog()

	next := func() game.WorldConfig {
		wc, fb := in.Config()
		for _, field := range fb {
			if raw := in.Field(field); raw != "" {
				logger.Warn().Str("field", field).Str("input", raw).Msg("unparseable value, using fallback")
			}
		}
		return wc
	}

	remote := protocol.New(cfg.ServerURL,
		protocol.WithTimeout(cfg.RequestTimeout),
		protocol.WithLogger(logger.With().Str("component", "protocol").Logger()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.Plain {
		ctl := controller.New(remote, render.NewText(os.Stdout), controller.WithLogger(logger))
		if err := cli.RunPlain(ctx, ctl, next, os.Stdin, os.Stdout, logger); err != nil {
			logger.Error().Err(err).Msg("read input")
		}
		return
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintln(os.Stderr, "wumpus: terminal:", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "wumpus: terminal:", err)
		os.Exit(1)
	}
	defer screen.Fini()

	board := render.NewBoard(screen)
	ctl := controller.New(remote, board, controller.WithLogger(logger))
	logger.Info().Str("server", cfg.ServerURL).Msg("client started")
	cli.RunTUI(ctx, screen, ctl, board, next, logger)
}

// openLog writes to cfg.LogFile so log lines never land on the board.
func openLog(cfg *config.Client) (zerolog.Logger, func(), error) {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	if cfg.LogFile == "" || cfg.LogFile == "-" {
		if !cfg.Plain {
			return zerolog.Nop(), func() {}, nil
		}
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger(), func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}
	l := zerolog.New(f).Level(lvl).With().Timestamp().Logger()
	return l, func() { _ = f.Close() }, nil
}
