package tui

import (
	"github.com/charmbracelet/lipgloss"

	"manhwahub/internal/microservices/http-api/models"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F472B6"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	unreadStyle = lipgloss.NewStyle().Bold(true)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F472B6")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ADE80"))
	badgeStyle  = lipgloss.NewStyle().Padding(0, 1).Bold(true)
)

var typeColors = map[models.NotificationType]string{
	models.NotificationCommentReply: "#60A5FA",
	models.NotificationLike:         "#F87171",
	models.NotificationMention:      "#FBBF24",
}

// TypeStyle returns the badge style for a notification type.
func TypeStyle(t models.NotificationType) lipgloss.Style {
	if c, ok := typeColors[t]; ok {
		return badgeStyle.Foreground(lipgloss.Color(c))
	}
	return badgeStyle.Foreground(lipgloss.Color("#9CA3AF"))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
