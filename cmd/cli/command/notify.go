package command

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"manhwahub/internal/app"
	"manhwahub/internal/microservices/http-api/models"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// notify.go handles notification commands: list, unread, create, read, read-all, delete, clear.

func newNotifyCmd(opts *rootOptions) *cobra.Command {
	notifyCmd := &cobra.Command{
		Use:     "notify",
		Aliases: []string{"n"},
		Short:   "Read and manage notifications",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			unreadOnly, _ := cmd.Flags().GetBool("unread")
			return opts.withApp(cmd, func(ctx context.Context, a *app.App, userID int64) error {
				list, err := a.Notifications.GetNotifications(ctx, userID)
				if err != nil {
					return fmt.Errorf("failed to fetch notifications: %w", err)
				}
				printNotifications(cmd.OutOrStdout(), list, unreadOnly)
				return nil
			})
		},
	}
	listCmd.Flags().Bool("unread", false, "only show unread notifications")

	unreadCmd := &cobra.Command{
		Use:   "unread",
		Short: "Print the unread count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App, userID int64) error {
				count, err := a.Notifications.GetUnreadCount(ctx, userID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), count)
				return nil
			})
		},
	}

	createCmd := &cobra.Command{
		Use:   "create [message]",
		Short: "Record a notification for a user (as a producer would)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := newNotificationFromFlags(cmd, args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app.App, userID int64) error {
				if input.UserID == 0 {
					input.UserID = userID
				}
				n, created, err := a.Notifications.CreateNotification(ctx, input)
				if err != nil {
					return fmt.Errorf("failed to create notification: %w", err)
				}
				if !created {
					color.New(color.FgYellow).Fprintf(cmd.OutOrStdout(), "Not recorded: %s notifications are off for user %d\n", input.Type, input.UserID)
					return nil
				}
				color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Notification %d created for user %d\n", n.ID, n.UserID)
				return nil
			})
		},
	}
	createCmd.Flags().String("type", string(models.NotificationMention), "comment_reply, like or mention")
	createCmd.Flags().Int64("to", 0, "recipient user id (default: --user)")
	createCmd.Flags().Int64("from-id", 0, "actor user id")
	createCmd.Flags().String("from-name", "", "actor display name")
	createCmd.Flags().Int64("comment", 0, "comment id")
	createCmd.Flags().Int64("manhwa", 0, "manhwa id")
	createCmd.Flags().Int64("chapter", 0, "chapter id")

	readCmd := &cobra.Command{
		Use:   "read [notification-id]",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid notification ID: %w", err)
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app.App, _ int64) error {
				if err := a.Notifications.MarkAsRead(ctx, id); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "✓ Marked as read")
				return nil
			})
		},
	}

	readAllCmd := &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App, userID int64) error {
				if err := a.Notifications.MarkAllAsRead(ctx, userID); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "✓ All notifications marked as read")
				return nil
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [notification-id]",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid notification ID: %w", err)
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app.App, _ int64) error {
				if err := a.Notifications.DeleteNotification(ctx, id); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "✓ Deleted")
				return nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every notification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App, userID int64) error {
				if err := a.Notifications.ClearAll(ctx, userID); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "✓ Inbox cleared")
				return nil
			})
		},
	}

	notifyCmd.AddCommand(listCmd, unreadCmd, createCmd, readCmd, readAllCmd, deleteCmd, clearCmd)
	return notifyCmd
}

func newNotificationFromFlags(cmd *cobra.Command, message string) (models.NewNotification, error) {
	typ, _ := cmd.Flags().GetString("type")
	t, err := models.ParseNotificationType(typ)
	if err != nil {
		return models.NewNotification{}, fmt.Errorf("%w: %q", err, typ)
	}

	input := models.NewNotification{Type: t, Message: message}
	input.UserID, _ = cmd.Flags().GetInt64("to")
	input.FromUser.ID, _ = cmd.Flags().GetInt64("from-id")
	input.FromUser.Name, _ = cmd.Flags().GetString("from-name")
	input.CommentID, _ = cmd.Flags().GetInt64("comment")
	input.ManhwaID, _ = cmd.Flags().GetInt64("manhwa")
	input.ChapterID, _ = cmd.Flags().GetInt64("chapter")
	return input, nil
}

func printNotifications(w io.Writer, list []models.Notification, unreadOnly bool) {
	unread := color.New(color.FgCyan, color.Bold)
	read := color.New(color.FgHiBlack)

	shown := 0
	for _, n := range list {
		if unreadOnly && n.Read {
			continue
		}
		shown++
		from := n.FromUser.Name
		if from == "" {
			from = "someone"
		}
		line := fmt.Sprintf("%d  [%s] %s: %s  (%s)", n.ID, n.Type, from, n.Message, n.CreatedAt.Local().Format("2006-01-02 15:04"))
		if n.Read {
			read.Fprintln(w, "  "+line)
		} else {
			unread.Fprintln(w, "• "+line)
		}
	}
	if shown == 0 {
		fmt.Fprintln(w, "📭 No notifications")
	}
}
