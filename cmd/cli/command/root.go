package command

// root.go defines the root command for the manhwahubCLI application.
// set up the global flags and configuration here.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootOptions holds the global flags shared by every subcommand
type rootOptions struct {
	apiURL  string // API server URL, used by watch
	cfgFile string // optional config file
	userID  int64  // reader to act as; defaults to the stored token's user
	verbose bool
}

// NewRootCmd builds the command tree. Each call returns independent flag state.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "manhwahubCLI",
		Short: "manhwahubCLI - ManhwaHub notifications from the terminal",
		Long: `manhwahubCLI reads and manages ManhwaHub notifications. It opens the same
storage as the API server, so changes made here reach open browser tabs and
the server within one poll interval. User can use this application to:
- List, read and clear notifications
- Change notification settings
- Follow the inbox live in a terminal UI or over WebSocket

Use "manhwahubCLI command --help" to see all available commands.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(opts.cfgFile)
		},
	}

	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api", "http://localhost:8084", "API server URL")
	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default $HOME/.manhwahub/config.yaml)")
	rootCmd.PersistentFlags().Int64VarP(&opts.userID, "user", "u", 0, "user id to act as (default: user of the stored token)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log storage activity to stderr")

	rootCmd.AddCommand(
		newNotifyCmd(opts),
		newSettingsCmd(opts),
		newTokenCmd(opts),
		newInboxCmd(opts),
		newWatchCmd(opts),
		newUDPCmd(opts),
	)
	return rootCmd
}

// Execute runs the CLI. This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err) // Print error to standard error
		os.Exit(1)
	}
}

// initConfig reads the optional config file and exports its keys as environment
// variables, so config.LoadConfig sees them. Real environment variables win.
func initConfig(cfgFile string) error {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		v.AddConfigPath(home + "/.manhwahub")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	for _, key := range v.AllKeys() {
		env := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if _, set := os.LookupEnv(env); set {
			continue
		}
		if err := os.Setenv(env, v.GetString(key)); err != nil {
			return err
		}
	}
	return nil
}

func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
