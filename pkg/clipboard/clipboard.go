// Package clipboard copies exported report text to the tmux buffer, the
// system clipboard and the terminal via OSC52.
package clipboard

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Target selects a clipboard destination.
type Target uint8

const (
	TargetTmux Target = 1 << iota
	TargetSystem
	TargetOSC52

	TargetAll = TargetTmux | TargetSystem | TargetOSC52
)

// ErrNoSystemTool is returned when no clipboard command is installed.
var ErrNoSystemTool = errors.New("no system clipboard tool available")

// command is a clipboard program and the arguments that make it read stdin.
type command struct {
	name string
	args []string
}

// runFunc runs name with args, feeding stdin.
type runFunc func(stdin, name string, args ...string) error

// Option configures a Clipboard
type Option func(*Clipboard)

// Clipboard writes text to every enabled target.
type Clipboard struct {
	targets  Target
	output   io.Writer
	getenv   func(string) string
	lookPath func(string) (string, error)
	run      runFunc
}

// New creates a Clipboard writing to all targets, OSC52 on stderr.
func New(opts ...Option) *Clipboard {
	c := &Clipboard{
		targets:  TargetAll,
		output:   os.Stderr,
		getenv:   os.Getenv,
		lookPath: exec.LookPath,
		run:      runCommand,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTargets restricts the destinations.
func WithTargets(t Target) Option {
	return func(c *Clipboard) {
		c.targets = t
	}
}

// WithOutput sets the output destination for OSC52 sequences
func WithOutput(w io.Writer) Option {
	return func(c *Clipboard) {
		c.output = w
	}
}

// Copy writes text to all enabled targets. A target that is not present,
// like tmux outside a tmux session, is skipped. Failures are joined.
func (c *Clipboard) Copy(text string) error {
	var errs []error

	if c.targets&TargetTmux != 0 && c.inTmux() {
		if err := c.run(text, "tmux", "load-buffer", "-"); err != nil {
			errs = append(errs, fmt.Errorf("tmux: %w", err))
		}
	}

	if c.targets&TargetSystem != 0 {
		if err := c.copyToSystem(text); err != nil {
			errs = append(errs, fmt.Errorf("system: %w", err))
		}
	}

	if c.targets&TargetOSC52 != 0 {
		if _, err := io.WriteString(c.output, osc52(text, c.inTmux())); err != nil {
			errs = append(errs, fmt.Errorf("osc52: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Available reports which targets can be used right now.
func (c *Clipboard) Available() Target {
	t := TargetOSC52
	if c.inTmux() {
		t |= TargetTmux
	}
	if _, ok := c.systemTool(); ok {
		t |= TargetSystem
	}
	return t & c.targets
}

func (c *Clipboard) inTmux() bool {
	return c.getenv("TMUX") != ""
}

func (c *Clipboard) copyToSystem(text string) error {
	tool, ok := c.systemTool()
	if !ok {
		return ErrNoSystemTool
	}
	return c.run(text, tool.name, tool.args...)
}

func (c *Clipboard) systemTool() (command, bool) {
	for _, tool := range systemTools(runtime.GOOS) {
		if _, err := c.lookPath(tool.name); err == nil {
			return tool, true
		}
	}
	return command{}, false
}

// systemTools returns platform-specific clipboard tools in preference order.
func systemTools(goos string) []command {
	switch goos {
	case "darwin":
		return []command{{name: "pbcopy"}}
	case "linux", "freebsd", "openbsd":
		return []command{
			{name: "wl-copy"},
			{name: "xclip", args: []string{"-selection", "clipboard"}},
			{name: "xsel", args: []string{"--clipboard", "--input"}},
		}
	case "windows":
		return []command{{name: "clip"}}
	default:
		return nil
	}
}

// osc52 builds the escape sequence, wrapped in a DCS passthrough under tmux.
func osc52(text string, tmux bool) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	if tmux {
		return "\033Ptmux;\033\033]52;c;" + encoded + "\007\033\\"
	}
	return "\033]52;c;" + encoded + "\007"
}

func runCommand(stdin, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	return cmd.Run()
}

// Copy is a convenience function for quick clipboard operations
func Copy(text string) error {
	return New().Copy(text)
}
