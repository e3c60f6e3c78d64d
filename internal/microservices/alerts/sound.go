package alerts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// runFunc starts an external program with stdin attached and waits for it.
type runFunc func(ctx context.Context, name string, args []string, stdin io.Reader) error

func runCommand(ctx context.Context, name string, args []string, stdin io.Reader) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// CommandPlayer plays the cue by piping it to an audio command such as
// "aplay -q" or "paplay".
type CommandPlayer struct {
	name string
	args []string
	cue  []byte
	run  runFunc
}

// NewCommandPlayer splits command on whitespace; the first field is the program.
func NewCommandPlayer(command string) (*CommandPlayer, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errors.New("sound command is empty")
	}
	return &CommandPlayer{
		name: fields[0],
		args: fields[1:],
		cue:  Cue(),
		run:  runCommand,
	}, nil
}

func (p *CommandPlayer) Play(ctx context.Context) error {
	return p.run(ctx, p.name, p.args, bytes.NewReader(p.cue))
}

// BellPlayer rings the terminal bell. Used by the CLI.
type BellPlayer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewBellPlayer(w io.Writer) *BellPlayer {
	return &BellPlayer{w: w}
}

func (p *BellPlayer) Play(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := io.WriteString(p.w, "\a")
	return err
}
