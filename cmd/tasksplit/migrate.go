package main

import (
	"github.com/spf13/cobra"

	"github.com/set-night/tasksplit/internal/repository"
)

var migrateDown int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: `Apply all pending migrations from the embedded migrations directory.
With --down N, roll back the last N migrations instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := migrationsFS()
		if err != nil {
			return err
		}
		if migrateDown > 0 {
			return repository.RollbackMigrations(cfg.DatabaseURL, src, migrateDown)
		}
		return repository.RunMigrations(cfg.DatabaseURL, src)
	},
}

func init() {
	migrateCmd.Flags().IntVar(&migrateDown, "down", 0, "Roll back this many migrations")
}
