package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/rps-frame/internal/config"
	"github.com/robalobadob/rps-frame/internal/frame"
	"github.com/robalobadob/rps-frame/internal/httpserver"
	"github.com/robalobadob/rps-frame/internal/random"
	"github.com/robalobadob/rps-frame/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := newStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create session store")
	}
	rdr, err := frame.NewRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load templates")
	}

	srv := httpserver.New(httpserver.Options{
		Store:        st,
		Random:       random.NewCrypto(),
		Renderer:     rdr,
		BaseURL:      cfg.BaseURL,
		ClientOrigin: cfg.ClientOrigin,
		Timeout:      cfg.RequestTimeout,
	})
	hs := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("base_url", cfg.BaseURL).Str("backend", cfg.StateBackend).Msg("starting rps-frame")
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

func setupLogging(cfg *config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// newStore builds the configured session backend. The memory backend gets a
// janitor that drops sessions idle for longer than STATE_TTL.
func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.StateBackend == config.BackendMemory {
		mem := store.NewMemoryStore()
		go sweep(ctx, mem, cfg.SessionSweep, cfg.StateTTL)
		return mem, nil
	}
	if cfg.InsecureSecret() {
		log.Warn().Msg("STATE_SECRET not set; using the development secret")
	}
	return store.NewTokenStore(cfg.StateSecret, cfg.StateTTL)
}

func sweep(ctx context.Context, mem *store.Memory, every, maxIdle time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := mem.Sweep(maxIdle); n > 0 {
				log.Debug().Int("dropped", n).Int("live", mem.Len()).Msg("swept idle sessions")
			}
		}
	}
}
