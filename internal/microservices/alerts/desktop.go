package alerts

import (
	"context"
	"os/exec"
	"strings"

	"manhwahub/internal/microservices/http-api/service"
)

// CommandNotifier raises desktop notifications through a command such as
// notify-send, called as `<command> <title> <body>`.
type CommandNotifier struct {
	name       string
	args       []string
	permission service.Permission
	run        runFunc
}

// NewCommandNotifier resolves the effective permission: a granted permission
// is downgraded to denied when the command is not installed.
func NewCommandNotifier(command string, permission service.Permission) *CommandNotifier {
	return newCommandNotifier(command, permission, exec.LookPath)
}

func newCommandNotifier(command string, permission service.Permission, lookPath func(string) (string, error)) *CommandNotifier {
	fields := strings.Fields(command)
	n := &CommandNotifier{permission: permission, run: runCommand}
	if len(fields) == 0 {
		n.permission = service.PermissionDenied
		return n
	}
	n.name, n.args = fields[0], fields[1:]
	if permission == service.PermissionGranted {
		if _, err := lookPath(n.name); err != nil {
			n.permission = service.PermissionDenied
		}
	}
	return n
}

func (n *CommandNotifier) Permission() service.Permission {
	return n.permission
}

func (n *CommandNotifier) Notify(ctx context.Context, title, body string) error {
	if title == "" {
		title = "ManhwaHub"
	}
	args := append(append([]string{}, n.args...), title, body)
	return n.run(ctx, n.name, args, nil)
}
