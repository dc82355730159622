package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/set-night/tasksplit/internal/repository"
	"github.com/set-night/tasksplit/internal/repository/sqlc"
	"github.com/set-night/tasksplit/internal/service"
)

var (
	tokenEmail string
	tokenLabel string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage API tokens",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a bearer token for a user, creating the user if needed",
	Long: `Issue a new API token. The token is printed once and only its hash is
stored, so keep it somewhere safe.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := repository.NewPool(ctx, cfg.DatabaseURL, repository.PoolOptions{MaxConns: 2, MinConns: 1})
		if err != nil {
			return err
		}
		defer pool.Close()

		users := service.NewUserService(repository.NewStore(pool, sqlc.New(pool)))
		token, user, err := users.IssueToken(ctx, tokenEmail, tokenLabel)
		if err != nil {
			return err
		}

		logger.Info("api token issued", "user_id", user.ID, "label", tokenLabel)
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenIssueCmd.Flags().StringVar(&tokenEmail, "email", "", "User email (required)")
	tokenIssueCmd.Flags().StringVar(&tokenLabel, "label", "", "Label to identify the token")
	tokenIssueCmd.MarkFlagRequired("email")

	tokenCmd.AddCommand(tokenIssueCmd)
}
