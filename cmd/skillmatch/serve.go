package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gcbaptista/skillmatch/api"
	"github.com/gcbaptista/skillmatch/internal/analytics"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(app *cli) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long:  "Load the skill taxonomy (from cache or by building it) and serve the analysis, extraction, taxonomy, job and analytics endpoints.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port != "" {
				app.settings.Server.Port = port
			}
			return app.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "Port to listen on (overrides SKILLMATCH_PORT)")
	return cmd
}

func (app *cli) serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng, err := app.loadEngine(ctx, false)
	if err != nil {
		return err
	}
	defer eng.Stop()

	tracker := analytics.NewService(eng, app.settings.AnalyticsFile, app.logger)
	defer tracker.Flush()

	gin.SetMode(app.settings.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, api.Dependencies{
		Analyzer:        eng,
		Taxonomy:        eng,
		Jobs:            eng,
		Analytics:       tracker,
		Logger:          app.logger,
		MaxRequestBytes: app.settings.Server.MaxRequestBytes,
	})

	srv := &http.Server{
		Addr:              ":" + app.settings.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.WithFields(logrus.Fields{
			"port":     app.settings.Server.Port,
			"entries":  eng.TaxonomyStats().Entries,
			"gin_mode": app.settings.Server.GinMode,
		}).Info("Starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	app.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
