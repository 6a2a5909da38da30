package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/guiguit045/tailored-trainer-coach/internal/logging"
	"github.com/guiguit045/tailored-trainer-coach/internal/workouts"
	"github.com/guiguit045/tailored-trainer-coach/pkg"
)

const (
	defaultDBPath = "./data/trainer.db"
	dbPathEnv     = "TRAINER_DB"
)

var version = "dev"

type rootOptions struct {
	dbPath  string
	output  string
	verbose bool
	now     func() time.Time
}

func newRootCmd() *cobra.Command {
	return buildRootCmd(&rootOptions{now: time.Now})
}

func buildRootCmd(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "trainerctl",
		Short:         "Log workouts and get progression advice from the command line",
		Long:          "trainerctl logs completed workouts into a local SQLite store and runs the progression engine, plateau detector and streak calculator on them.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			logging.Setup(logging.LoggerSetupParams{
				LogToStderr: true,
				LogLevel:    level,
			})
			return validateOutput(opts.output)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Path to the SQLite database file (overrides "+dbPathEnv+" env var)")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", outputText, "Output format: text, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging on stderr")

	rootCmd.AddCommand(
		newLogCmd(opts),
		newPerformanceCmd(opts),
		newSuggestCmd(opts),
		newPlateauCmd(opts),
		newStreakCmd(opts),
		newMigrateCmd(opts),
	)

	return rootCmd
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the TRAINER_DB env var, then the default path.
func (o *rootOptions) resolveDBPath() string {
	if o.dbPath != "" {
		return o.dbPath
	}
	if p := os.Getenv(dbPathEnv); p != "" {
		return p
	}
	return defaultDBPath
}

func (o *rootOptions) openStore(ctx context.Context) (*workouts.SQLiteRepo, error) {
	path := o.resolveDBPath()
	if path != ":memory:" {
		if err := pkg.EnsureDir(filepath.Dir(path)); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	log.Debugf("using sqlite store: [%s]", path)

	store, err := workouts.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func closeStore(store *workouts.SQLiteRepo) {
	if err := store.Close(); err != nil {
		log.Errorf("close sqlite store: %s", err)
	}
}
