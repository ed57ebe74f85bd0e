package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"bunker/internal/app"
	"bunker/internal/config"
	"bunker/internal/domain"
	httpTransport "bunker/internal/transport/http"
)

func main() {
	cobra.CheckErr(newCmd().Execute())
}

func newCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("BUNKER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "bunker-server",
		Short:         "Real-time room coordinator for the bunker party game.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.String("bind", "0.0.0.0", "address to bind to (env: BUNKER_BIND)")
	fs.IntP("port", "p", 8080, "port to listen on (env: BUNKER_PORT)")
	fs.String("log-level", "info", "log level: debug, info, warn, error (env: BUNKER_LOG_LEVEL)")
	fs.String("log-format", "console", "log format: console or json (env: BUNKER_LOG_FORMAT)")
	fs.Int("min-players", 3, "minimum players required to start a game (env: BUNKER_MIN_PLAYERS)")
	fs.Int("max-rounds", 5, "round count before voting starts automatically (env: BUNKER_MAX_ROUNDS)")
	fs.Int("survivor-threshold", 3, "surviving player count that ends the game (env: BUNKER_SURVIVOR_THRESHOLD)")
	fs.Int("room-code-length", 6, "length of generated room codes (env: BUNKER_ROOM_CODE_LENGTH)")
	fs.Duration("voting-delay", 3*time.Second, "pause between the final round and voting (env: BUNKER_VOTING_DELAY)")
	fs.Duration("voting-timeout", 60*time.Second, "time before voting resolves with the votes cast (env: BUNKER_VOTING_TIMEOUT)")
	fs.Duration("teardown-grace", 30*time.Second, "delay before a finished room is removed (env: BUNKER_TEARDOWN_GRACE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg)

	logger.Info().
		Int("port", cfg.Port).
		Int("maxRounds", cfg.MaxRounds).
		Msg("starting bunker server")

	registry := app.NewRegistry(app.Settings{
		Rules: domain.Rules{
			MinPlayers:        cfg.MinPlayers,
			MaxRounds:         cfg.MaxRounds,
			SurvivorThreshold: cfg.SurvivorThreshold,
		},
		RoomCodeLength: cfg.RoomCodeLength,
		VotingDelay:    cfg.VotingDelay,
		VotingTimeout:  cfg.VotingTimeout,
		TeardownGrace:  cfg.TeardownGrace,
	}, logger)
	defer registry.Close()

	server := httpTransport.NewServer(cfg, registry, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.LogFormat == "json" {
		logger = zerolog.New(os.Stdout)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	return logger.Level(level).With().Timestamp().Logger()
}
