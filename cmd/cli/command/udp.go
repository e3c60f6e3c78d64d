package command

import (
	"errors"
	"fmt"
	"os"

	"manhwahub/cmd/cli/authentication"
	"manhwahub/cmd/cli/command/client"

	"github.com/spf13/cobra"
)

// udp.go follows the server's UDP event feed (enabled with UDP_PORT on the server).

func newUDPCmd(opts *rootOptions) *cobra.Command {
	var serverAddr string

	udpCmd := &cobra.Command{
		Use:   "udp",
		Short: "UDP event feed client commands",
	}

	listenCmd := &cobra.Command{
		Use:   "listen",
		Short: "Listen for notification events over UDP",
		Long: `Subscribe to the UDP event feed with the stored token and print every event
together with the fresh unread count.

Press Ctrl+C to unsubscribe and stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := authentication.GetTokens()
			if errors.Is(err, authentication.ErrNoCredentials) {
				return errors.New("no stored token: run `manhwahubCLI token issue --user <id>` first")
			}
			if err != nil {
				return err
			}

			api := client.NewHTTPClient(opts.apiURL)
			api.SetToken(creds.AccessToken)
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "🔌 Listening on %s as user %d\n", serverAddr, creds.UserID)
			return client.ListenUDP(cmd.Context(), serverAddr, creds.AccessToken, func(ev client.Event) {
				unread := 0
				if ev.Type == "event" {
					if count, err := api.UnreadCount(cmd.Context()); err == nil {
						unread = count
					}
				}
				client.PrintEvent(out, ev, unread)
			})
		},
	}

	defaultAddr := "localhost:8082"
	if v := os.Getenv("MANHWAHUB_UDP_ADDR"); v != "" {
		defaultAddr = v
	}
	listenCmd.Flags().StringVar(&serverAddr, "server", defaultAddr, "UDP feed address (host:port)")

	udpCmd.AddCommand(listenCmd)
	return udpCmd
}
