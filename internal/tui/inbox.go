package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"manhwahub/internal/microservices/http-api/models"
)

// inboxPollInterval is how often the inbox checks storage for writes by other processes.
const inboxPollInterval = 3 * time.Second

// NotificationSource is the part of the notification store the inbox drives.
type NotificationSource interface {
	GetNotifications(ctx context.Context, userID int64) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, notificationID int64) error
	MarkAllAsRead(ctx context.Context, userID int64) error
	DeleteNotification(ctx context.Context, notificationID int64) error
	Reload(ctx context.Context) (bool, error)
}

// SettingsSource is the part of the settings store the inbox drives.
type SettingsSource interface {
	GetSettings(ctx context.Context, userID int64) (models.NotificationSettings, error)
	ToggleEnabled(ctx context.Context, userID int64) (models.NotificationSettings, error)
	ToggleSound(ctx context.Context, userID int64) (models.NotificationSettings, error)
	Reload(ctx context.Context) (bool, error)
}

// -- messages --

type inboxLoadedMsg struct {
	notifications []models.Notification
	settings      models.NotificationSettings
	err           error
}

type actionDoneMsg struct {
	status string
	err    error
}

type pollTickMsg time.Time

func pollCmd() tea.Cmd {
	return tea.Tick(inboxPollInterval, func(t time.Time) tea.Msg {
		return pollTickMsg(t)
	})
}

// -- model --

// InboxModel lists one reader's notifications and keeps them fresh by polling.
type InboxModel struct {
	notifications NotificationSource
	settingsSrc   SettingsSource
	userID        int64
	copy          func(string) error

	items    []models.Notification
	settings models.NotificationSettings
	cursor   int
	loading  bool
	status   string
	err      string
	width    int
	height   int
}

func NewInboxModel(notifications NotificationSource, settings SettingsSource, userID int64) InboxModel {
	return InboxModel{
		notifications: notifications,
		settingsSrc:   settings,
		userID:        userID,
		copy:          clipboard.WriteAll,
		loading:       true,
	}
}

func (m InboxModel) Init() tea.Cmd {
	return tea.Batch(m.load(false), pollCmd())
}

// load re-reads the view; with reload it first picks up writes from other processes.
func (m InboxModel) load(reload bool) tea.Cmd {
	notifications, settings, userID := m.notifications, m.settingsSrc, m.userID
	return func() tea.Msg {
		ctx := context.Background()
		if reload {
			if _, err := notifications.Reload(ctx); err != nil {
				return inboxLoadedMsg{err: err}
			}
			if _, err := settings.Reload(ctx); err != nil {
				return inboxLoadedMsg{err: err}
			}
		}
		list, err := notifications.GetNotifications(ctx, userID)
		if err != nil {
			return inboxLoadedMsg{err: err}
		}
		s, err := settings.GetSettings(ctx, userID)
		return inboxLoadedMsg{notifications: list, settings: s, err: err}
	}
}

func (m InboxModel) act(status string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{status: status, err: fn(context.Background())}
	}
}

func (m InboxModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case inboxLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.err = ""
		m.items = msg.notifications
		m.settings = msg.settings
		if m.cursor >= len(m.items) {
			m.cursor = max(len(m.items)-1, 0)
		}

	case actionDoneMsg:
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.status = msg.status
		return m, m.load(false)

	case pollTickMsg:
		return m, tea.Batch(m.load(true), pollCmd())

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m InboxModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter", " ":
		if n, ok := m.selected(); ok && !n.Read {
			return m, m.act("marked as read", func(ctx context.Context) error {
				return m.notifications.MarkAsRead(ctx, n.ID)
			})
		}
	case "a":
		return m, m.act("all marked as read", func(ctx context.Context) error {
			return m.notifications.MarkAllAsRead(ctx, m.userID)
		})
	case "d", "x":
		if n, ok := m.selected(); ok {
			return m, m.act("deleted", func(ctx context.Context) error {
				return m.notifications.DeleteNotification(ctx, n.ID)
			})
		}
	case "c":
		if n, ok := m.selected(); ok {
			copyFn := m.copy
			return m, func() tea.Msg {
				if err := copyFn(n.Message); err != nil {
					return actionDoneMsg{err: fmt.Errorf("copy: %w", err)}
				}
				return actionDoneMsg{status: "copied to clipboard"}
			}
		}
	case "s":
		return m, m.act("sound toggled", func(ctx context.Context) error {
			_, err := m.settingsSrc.ToggleSound(ctx, m.userID)
			return err
		})
	case "e":
		return m, m.act("notifications toggled", func(ctx context.Context) error {
			_, err := m.settingsSrc.ToggleEnabled(ctx, m.userID)
			return err
		})
	case "r":
		m.loading = true
		return m, m.load(true)
	}
	return m, nil
}

func (m InboxModel) selected() (models.Notification, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return models.Notification{}, false
	}
	return m.items[m.cursor], true
}

func (m InboxModel) unread() int {
	count := 0
	for _, n := range m.items {
		if !n.Read {
			count++
		}
	}
	return count
}

func (m InboxModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Inbox · %d unread", m.unread())))
	b.WriteString("  ")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("notifications %s · sound %s · desktop %s",
		onOff(m.settings.Enabled), onOff(m.settings.Sound), onOff(m.settings.Desktop))))
	b.WriteString("\n\n")

	switch {
	case m.loading && len(m.items) == 0:
		b.WriteString(mutedStyle.Render("loading..."))
		b.WriteString("\n")
	case len(m.items) == 0:
		b.WriteString(mutedStyle.Render("no notifications yet"))
		b.WriteString("\n")
	default:
		for i, n := range m.items {
			b.WriteString(m.renderRow(i, n))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.err != "" {
		b.WriteString(errorStyle.Render("error: " + m.err))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render("↑/↓ move · enter read · a read all · d delete · c copy · s sound · e on/off · r refresh · q quit"))
	return b.String()
}

func (m InboxModel) renderRow(i int, n models.Notification) string {
	pointer := "  "
	if i == m.cursor {
		pointer = cursorStyle.Render("> ")
	}
	dot := " "
	text := n.Message
	if !n.Read {
		dot = cursorStyle.Render("•")
		text = unreadStyle.Render(text)
	}
	from := n.FromUser.Name
	if from == "" {
		from = "someone"
	}
	return fmt.Sprintf("%s%s %s %s %s %s",
		pointer, dot,
		TypeStyle(n.Type).Render(string(n.Type)),
		from, text,
		mutedStyle.Render(relativeTime(n.CreatedAt)))
}

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("2006-01-02")
	}
}
