package command

import (
	"context"
	"errors"
	"fmt"

	"manhwahub/cmd/cli/authentication"
	"manhwahub/internal/app"
	"manhwahub/internal/config"
	"manhwahub/internal/microservices/alerts"

	"github.com/spf13/cobra"
)

// openApp opens the configured storage as a second browsing context next to the server.
func (o *rootOptions) openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return app.New(cmd.Context(), cfg, o.logger(cmd.ErrOrStderr()), app.Options{
		// the terminal bell stands in for the audio cue
		Sound: alerts.NewBellPlayer(cmd.ErrOrStderr()),
	})
}

// resolveUser returns --user, falling back to the user of the stored token.
func (o *rootOptions) resolveUser() (int64, error) {
	if o.userID != 0 {
		return o.userID, nil
	}
	creds, err := authentication.GetTokens()
	if errors.Is(err, authentication.ErrNoCredentials) {
		return 0, errors.New("no user selected: pass --user or run `manhwahubCLI token issue` first")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read stored credentials: %w", err)
	}
	return creds.UserID, nil
}

// withApp opens storage, runs fn for the resolved user and closes storage.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App, userID int64) error) error {
	userID, err := o.resolveUser()
	if err != nil {
		return err
	}
	a, err := o.openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(cmd.Context(), a, userID)
}
