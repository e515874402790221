package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/adhan-clock/internal/alert"
	"github.com/smokyabdulrahman/adhan-clock/internal/api"
	"github.com/smokyabdulrahman/adhan-clock/internal/audio"
	"github.com/smokyabdulrahman/adhan-clock/internal/cache"
	"github.com/smokyabdulrahman/adhan-clock/internal/clock"
	"github.com/smokyabdulrahman/adhan-clock/internal/config"
	"github.com/smokyabdulrahman/adhan-clock/internal/engine"
	"github.com/smokyabdulrahman/adhan-clock/internal/geo"
	"github.com/smokyabdulrahman/adhan-clock/internal/schedule"
	"github.com/smokyabdulrahman/adhan-clock/internal/web"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the kiosk clock and HTTP server",
		Long:  "Starts the schedule engine and serves the kiosk page plus the JSON snapshot API.",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := effectiveConfig(cmd)

	setupLogging(FlagDebug)

	store, err := cache.New(cfg.CacheDir)
	if err != nil {
		return err
	}

	resolver := &geo.Resolver{
		Fallback: geo.Location{
			Mode:    geo.ModeCity,
			City:    cfg.City,
			State:   cfg.State,
			Country: cfg.Country,
			Label:   cfg.City + ", " + cfg.Country,
		},
		Store: store,
	}
	if cfg.Latitude != 0 || cfg.Longitude != 0 {
		resolver.Manual = &geo.Location{
			Mode:      geo.ModeCoordinates,
			Latitude:  cfg.Latitude,
			Longitude: cfg.Longitude,
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc := resolver.Resolve(ctx)
	log.Info().Str("location", loc.Label).Msg("resolved location")

	client := api.NewClient()
	fetcher := schedule.NewFetcher(client, store)

	player := newPlayer(cfg)
	dispatcher := alert.NewDispatcher(player, alert.Assets{
		Adhan: cfg.AudioAdhan,
		Fajr:  cfg.AudioFajr,
	})

	eng := engine.New(engine.Options{
		Clock:      clock.System{Offset: FlagTimeOffset},
		Fetcher:    fetcher,
		Dispatcher: dispatcher,
		Alerts:     cfg,
		Rollover:   store,
		Location:   loc,
		Calc: schedule.CalcConfig{
			Method:   cfg.MethodOrDefault(config.DefaultMethod),
			School:   cfg.SchoolOrDefault(config.DefaultSchool),
			Timezone: cfg.Timezone,
		},
	})

	go eng.Run(ctx)

	router := web.NewRouter(eng, FlagDebug)
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("kiosk server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		return err
	}

	dispatcher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	return nil
}

func setupLogging(debug bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

func newPlayer(cfg *config.Config) alert.Player {
	if cfg.AudioAdhan == "" {
		log.Warn().Msg("no adhan audio configured, alerts will be logged only")
		return &audio.NullPlayer{}
	}
	return audio.NewExecPlayer(cfg.AudioPlayer)
}
