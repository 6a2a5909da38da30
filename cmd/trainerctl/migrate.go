package main

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/guiguit045/tailored-trainer-coach/internal/config"
	"github.com/guiguit045/tailored-trainer-coach/internal/db"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	var (
		env            string
		configPath     string
		migrationsPath string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations to the Postgres database",
		Long:  "Apply pending migrations to the Postgres database of the service. Connection settings come from the config file, the password from TRAINER_POSTGRES_PASSWORD.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(env, configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if migrationsPath == "" {
				migrationsPath = cfg.MigrationsPath
			}

			params := db.NewDBPoolParams{
				DBHost:     cfg.PostgresHost,
				DBPort:     cfg.PostgresPort,
				DBUser:     cfg.PostgresUser,
				DBPassword: os.Getenv("TRAINER_POSTGRES_PASSWORD"),
				DBName:     cfg.PostgresDBName,
			}
			log.Debugf("running migrations from [%s] on %s:%s/%s", migrationsPath, cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDBName)

			if err := db.RunMigrations(params.ConnString(), migrationsPath); err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), root.output, map[string]string{"status": "migrated"}, func(w io.Writer) error {
				printTitle(w, "Migrations applied")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&env, "env", "development", "Config environment (development or production)")
	cmd.Flags().StringVar(&configPath, "config", "./config.toml", "Path to the config file")
	cmd.Flags().StringVar(&migrationsPath, "path", "", "Migrations directory (default from config)")

	return cmd
}
