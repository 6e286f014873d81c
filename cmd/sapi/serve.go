package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/streamdate/sapi/internal/api"
	"github.com/streamdate/sapi/internal/config"
	"github.com/streamdate/sapi/internal/database"
	"github.com/streamdate/sapi/internal/logger"
	"github.com/streamdate/sapi/internal/metrics"
	"github.com/streamdate/sapi/internal/redisring"
)

func RunServeCommand() *cobra.Command {
	var (
		configDir string
		debugFlag bool
	)

	command := &cobra.Command{
		Use:   "serve",
		Short: "Start the server",
	}

	command.Flags().StringVar(&configDir, "config-dir", "",
		"config directory path (defaults to OS-specific location). Can also be a direct path to a .toml file")
	command.Flags().BoolVar(&debugFlag, "debug", false, "force debug mode regardless of mode.debug")

	command.Run = func(cmd *cobra.Command, args []string) {
		app := &Application{
			version:   Version,
			configDir: configDir,
			debugFlag: debugFlag,
		}
		app.runServer()
	}

	return command
}

func resolveGeneratePath(configDir string) string {
	if configDir == "" {
		return filepath.Join(config.GetDefaultConfigDir(), "config.toml")
	}
	if strings.HasSuffix(strings.ToLower(configDir), ".toml") {
		return configDir
	}
	if info, err := os.Stat(configDir); err == nil && !info.IsDir() {
		return configDir
	}
	return filepath.Join(configDir, "config.toml")
}

type Application struct {
	version   string
	configDir string
	debugFlag bool
}

func (app *Application) runServer() {
	log.Info().Str("version", app.version).Msg("Starting sapi")

	cfg, err := config.New(app.configDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize configuration")
	}

	cur := cfg.Current()
	if app.debugFlag {
		cur.Mode.Debug = true
	}

	channels := logger.Setup(cur.Log, cur.Mode.Debug)
	loggers := logger.NewLive(channels)
	appLog := loggers.App()

	appLog.Info().
		Str("config", cfg.ConfigPath()).
		Bool("debug", cur.Mode.Debug).
		Msg("configuration loaded")
	appLog.Debug().Stringer("effective", cur).Msg("effective configuration")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	pools, err := database.Open(openCtx, cur.DB.MySQL)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer pools.Close()

	ring, err := redisring.New(ctx, cur.DB.Redis, appLog)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize redis ring")
	}
	defer ring.Close()

	metricsManager := metrics.NewManager(app.version)
	metricsManager.RegisterDatabase(pools)
	metricsManager.RegisterRing(ring)

	deps := &api.Dependencies{
		Config:  cfg,
		Loggers: loggers,
		ReadyChecks: []api.ReadyCheck{
			{Name: "mysql", Check: pools.Ping},
			{Name: "redis", Check: func(ctx context.Context) error {
				return ring.Ping(ctx).Err()
			}},
		},
	}

	apiSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cur.Server.HTTPPort),
		Handler:      api.NewRouter(deps),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  180 * time.Second,
	}
	healthSrv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cur.Server.HealthzPort),
		Handler:     api.NewHealthRouter(deps),
		ReadTimeout: 10 * time.Second,
	}
	metricsSrv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cur.Server.MetricsPort),
		Handler:     metricsManager.Handler(),
		ReadTimeout: 10 * time.Second,
	}

	servers := map[string]*http.Server{
		"api":     apiSrv,
		"healthz": healthSrv,
		"metrics": metricsSrv,
	}

	for name, srv := range servers {
		go func(name string, srv *http.Server) {
			appLog.Info().Str("server", name).Str("address", srv.Addr).Msg("starting HTTP server")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal().Err(err).Str("server", name).Msg("Server failed")
			}
		}(name, srv)
	}

	// Reload re-levels the log channels; everything else needs a restart.
	go func() {
		err := cfg.Watch(ctx, appLog, func(newCfg *config.Config) {
			loggers.Swap(logger.Setup(newCfg.Log, newCfg.Mode.Debug || app.debugFlag))
			appLogger := loggers.App()
			appLogger.Info().
				Stringer("effective", newCfg).
				Msg("applied reloaded configuration")
		})
		if err != nil && ctx.Err() == nil {
			appLog.Error().Err(err).Msg("config watcher stopped")
		}
	}()

	<-ctx.Done()
	appLog.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cur.App.ShutdownTimeout)
	defer cancel()

	for name, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLog.Error().Err(err).Str("server", name).Msg("server forced to shutdown")
		}
	}

	appLog.Info().Msg("stopped")
}
