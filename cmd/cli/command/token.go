package command

import (
	"errors"
	"fmt"
	"time"

	"manhwahub/cmd/cli/authentication"
	"manhwahub/internal/config"
	"manhwahub/internal/microservices/http-api/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// token.go mints API tokens with the shared JWT secret and keeps the reader's in the OS keyring.

func newTokenCmd(opts *rootOptions) *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Issue and manage API tokens",
	}

	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Mint a token for --user and store it in the keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.userID <= 0 {
				return errors.New("--user is required")
			}
			name, _ := cmd.Flags().GetString("name")
			scopes, _ := cmd.Flags().GetStringSlice("scope")
			printOnly, _ := cmd.Flags().GetBool("print")

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			token, err := service.NewAuthService(cfg).IssueToken(opts.userID, name, scopes...)
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}

			if printOnly {
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			}

			creds := &authentication.StoredCredentials{
				AccessToken: token,
				UserID:      opts.userID,
				Name:        name,
				ExpiresAt:   time.Now().Add(cfg.JWTExpiry).Unix(),
			}
			if err := authentication.StoreTokens(creds); err != nil {
				return fmt.Errorf("failed to store token: %w", err)
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Token for user %d stored in the keyring (expires %s)\n",
				opts.userID, time.Unix(creds.ExpiresAt, 0).Format("2006-01-02 15:04"))
			return nil
		},
	}
	issueCmd.Flags().String("name", "", "display name carried in the token")
	issueCmd.Flags().StringSlice("scope", []string{service.ScopeNotificationsRead}, "token scopes")
	issueCmd.Flags().Bool("print", false, "print the token instead of storing it (for producer services)")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := authentication.GetTokens()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user:    %d (%s)\nexpires: %s\ntoken:   %s\n",
				creds.UserID, creds.Name, time.Unix(creds.ExpiresAt, 0).Format("2006-01-02 15:04"), creds.AccessToken)
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := authentication.DeleteTokens(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Stored token removed")
			return nil
		},
	}

	tokenCmd.AddCommand(issueCmd, showCmd, clearCmd)
	return tokenCmd
}
