package command

import (
	"context"

	"manhwahub/internal/app"
	"manhwahub/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newInboxCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inbox",
		Short: "Open the interactive inbox",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App, userID int64) error {
				model := tui.NewInboxModel(a.Notifications, a.Settings, userID)
				_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
				return err
			})
		},
	}
}
