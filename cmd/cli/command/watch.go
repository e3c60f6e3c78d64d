package command

import (
	"errors"
	"fmt"

	"manhwahub/cmd/cli/authentication"
	"manhwahub/cmd/cli/command/client"

	"github.com/spf13/cobra"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow live notification events from the API server",
		Long: `Connects to the server's WebSocket feed with the stored token and prints one
line per change event, together with the unread count fetched after it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := authentication.GetTokens()
			if errors.Is(err, authentication.ErrNoCredentials) {
				return errors.New("not authenticated: run `manhwahubCLI token issue --user <id>` first")
			}
			if err != nil {
				return err
			}

			api := client.NewHTTPClient(opts.apiURL)
			api.SetToken(creds.AccessToken)

			ctx := cmd.Context()
			fmt.Fprintf(cmd.OutOrStdout(), "🔌 Watching notifications for user %d (ctrl+c to stop)\n", creds.UserID)
			return client.Watch(ctx, opts.apiURL, creds.AccessToken, func(ev client.Event) {
				// events carry no payload; re-query
				unread, err := api.UnreadCount(ctx)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "failed to fetch unread count: %v\n", err)
				}
				client.PrintEvent(cmd.OutOrStdout(), ev, unread)
			})
		},
	}
}
