// Package main provides the skillmatch command line: the HTTP server and
// offline extraction, matching and taxonomy tools.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gcbaptista/skillmatch/config"
	"github.com/gcbaptista/skillmatch/internal/engine"
	"github.com/gcbaptista/skillmatch/internal/logging"
)

const version = "1.0.0"

// cli carries state shared by every subcommand
type cli struct {
	envFile  string
	logLevel string
	settings config.Settings
	logger   *logrus.Logger
	out      io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	app := &cli{out: out}

	rootCmd := &cobra.Command{
		Use:           "skillmatch",
		Short:         "Deterministic skill extraction and job/resume matching",
		Long:          "skillmatch extracts technical skills from job descriptions and resumes using a curated skill taxonomy and scores how well a resume covers a job's requirements.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return app.init()
		},
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVar(&app.envFile, "env-file", "", "Path to a .env file (default: .env when present)")
	rootCmd.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "Override SKILLMATCH_LOG_LEVEL")

	rootCmd.AddCommand(
		newServeCmd(app),
		newExtractCmd(app),
		newMatchCmd(app),
		newTaxonomyCmd(app),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// init loads and validates settings and builds the logger
func (app *cli) init() error {
	var envFiles []string
	if app.envFile != "" {
		envFiles = append(envFiles, app.envFile)
	}
	settings, err := config.Load(envFiles...)
	if err != nil {
		return err
	}
	if app.logLevel != "" {
		settings.Log.Level = app.logLevel
	}
	if problems := settings.ValidateSettings(); len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  %s", strings.Join(problems, "\n  "))
	}

	logger, err := logging.New(settings.Log.Level, settings.Log.Format)
	if err != nil {
		return err
	}
	app.settings = settings
	app.logger = logger
	return nil
}

// loadEngine builds an engine from the settings and loads its taxonomy
func (app *cli) loadEngine(ctx context.Context, force bool) (*engine.Engine, error) {
	eng, err := engine.NewFromSettings(app.settings, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	if _, err := eng.Load(ctx, force || app.settings.Taxonomy.ForceRefresh); err != nil {
		eng.Stop()
		return nil, fmt.Errorf("failed to load skill taxonomy: %w", err)
	}
	return eng, nil
}
