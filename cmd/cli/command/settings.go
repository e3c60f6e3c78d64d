package command

import (
	"context"
	"fmt"
	"io"

	"manhwahub/internal/app"
	"manhwahub/internal/microservices/http-api/models"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// settings.go handles notification settings commands: get, toggle, set.

func newSettingsCmd(opts *rootOptions) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show and change notification settings",
	}

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Show the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App, userID int64) error {
				s, err := a.Settings.GetSettings(ctx, userID)
				if err != nil {
					return err
				}
				printSettings(cmd.OutOrStdout(), s)
				return nil
			})
		},
	}

	toggleCmd := &cobra.Command{
		Use:       "toggle [enabled|sound|desktop|comment_reply|like|mention]",
		Short:     "Flip one setting",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"enabled", "sound", "desktop", "comment_reply", "like", "mention"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App, userID int64) error {
				var (
					s   models.NotificationSettings
					err error
				)
				switch args[0] {
				case "enabled":
					s, err = a.Settings.ToggleEnabled(ctx, userID)
				case "sound":
					s, err = a.Settings.ToggleSound(ctx, userID)
				case "desktop":
					s, err = a.Settings.ToggleDesktop(ctx, userID)
				default:
					t, perr := models.ParseNotificationType(args[0])
					if perr != nil {
						return fmt.Errorf("%w: %q", perr, args[0])
					}
					s, err = a.Settings.ToggleType(ctx, userID, t)
				}
				if err != nil {
					return err
				}
				printSettings(cmd.OutOrStdout(), s)
				return nil
			})
		},
	}

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Set several settings at once",
		Example: `  manhwahubCLI settings set --sound=true --desktop=false
  manhwahubCLI settings set --type like=false --type mention=true`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := patchFromFlags(cmd)
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app.App, userID int64) error {
				s, err := a.Settings.UpdateSettings(ctx, userID, patch)
				if err != nil {
					return err
				}
				printSettings(cmd.OutOrStdout(), s)
				return nil
			})
		},
	}
	setCmd.Flags().Bool("enabled", true, "master switch")
	setCmd.Flags().Bool("sound", false, "play a sound for new notifications")
	setCmd.Flags().Bool("desktop", false, "raise desktop notifications")
	setCmd.Flags().StringToString("type", nil, "per-type switch, e.g. like=false")

	settingsCmd.AddCommand(getCmd, toggleCmd, setCmd)
	return settingsCmd
}

// patchFromFlags only includes flags the user actually passed.
func patchFromFlags(cmd *cobra.Command) (models.SettingsPatch, error) {
	var patch models.SettingsPatch
	flags := cmd.Flags()

	boolFlag := func(name string) *bool {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetBool(name)
		return &v
	}
	patch.Enabled = boolFlag("enabled")
	patch.Sound = boolFlag("sound")
	patch.Desktop = boolFlag("desktop")

	if flags.Changed("type") {
		raw, _ := flags.GetStringToString("type")
		patch.Types = make(map[models.NotificationType]bool, len(raw))
		for name, value := range raw {
			t, err := models.ParseNotificationType(name)
			if err != nil {
				return patch, fmt.Errorf("%w: %q", err, name)
			}
			switch value {
			case "true", "on", "1":
				patch.Types[t] = true
			case "false", "off", "0":
				patch.Types[t] = false
			default:
				return patch, fmt.Errorf("invalid value %q for type %s", value, name)
			}
		}
	}

	if patch.Enabled == nil && patch.Sound == nil && patch.Desktop == nil && patch.Types == nil {
		return patch, fmt.Errorf("nothing to set: pass at least one of --enabled, --sound, --desktop, --type")
	}
	return patch, nil
}

func printSettings(w io.Writer, s models.NotificationSettings) {
	on := color.New(color.FgGreen)
	off := color.New(color.FgRed)
	row := func(label string, value bool) {
		fmt.Fprintf(w, "%-15s ", label)
		if value {
			on.Fprintln(w, "on")
		} else {
			off.Fprintln(w, "off")
		}
	}

	fmt.Fprintf(w, "Settings for user %d\n", s.UserID)
	row("enabled", s.Enabled)
	row("sound", s.Sound)
	row("desktop", s.Desktop)
	for _, t := range models.NotificationTypes {
		row("  "+string(t), s.Types[t])
	}
}
