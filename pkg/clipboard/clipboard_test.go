package clipboard

import (
	"bytes"
	"encoding/base64"
	"errors"
	"os/exec"
	"strings"
	"testing"
)

type call struct {
	stdin string
	argv  string
}

type fakeEnv struct {
	env   map[string]string
	tools map[string]bool
	calls []call
	fail  map[string]error
}

func (f *fakeEnv) options() []Option {
	return []Option{func(c *Clipboard) {
		c.getenv = func(k string) string { return f.env[k] }
		c.lookPath = func(name string) (string, error) {
			if f.tools[name] {
				return "/usr/bin/" + name, nil
			}
			return "", exec.ErrNotFound
		}
		c.run = func(stdin, name string, args ...string) error {
			f.calls = append(f.calls, call{stdin, strings.Join(append([]string{name}, args...), " ")})
			return f.fail[name]
		}
	}}
}

func TestCopy_OSC52Only(t *testing.T) {
	var buf bytes.Buffer
	f := &fakeEnv{}

	c := New(append(f.options(), WithTargets(TargetOSC52), WithOutput(&buf))...)
	if err := c.Copy("Hb\t10.1"); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}

	encoded := base64.StdEncoding.EncodeToString([]byte("Hb\t10.1"))
	expected := "\033]52;c;" + encoded + "\007"
	if buf.String() != expected {
		t.Errorf("Expected %q, got %q", expected, buf.String())
	}
	if len(f.calls) != 0 {
		t.Errorf("Expected no commands, got %+v", f.calls)
	}
}

func TestCopy_TmuxSession(t *testing.T) {
	var buf bytes.Buffer
	f := &fakeEnv{
		env:   map[string]string{"TMUX": "/tmp/tmux-1000/default,1,0"},
		tools: map[string]bool{"xclip": true, "pbcopy": true, "clip": true},
	}

	c := New(append(f.options(), WithOutput(&buf))...)
	if err := c.Copy("text"); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}

	if !strings.HasPrefix(buf.String(), "\033Ptmux;") {
		t.Errorf("Expected DCS passthrough under tmux, got %q", buf.String())
	}

	if len(f.calls) != 2 {
		t.Fatalf("Expected tmux and system calls, got %+v", f.calls)
	}
	if f.calls[0].argv != "tmux load-buffer -" || f.calls[0].stdin != "text" {
		t.Errorf("Unexpected tmux call %+v", f.calls[0])
	}
	if f.calls[1].stdin != "text" {
		t.Errorf("Unexpected system call %+v", f.calls[1])
	}
}

func TestCopy_NoTmuxOutsideSession(t *testing.T) {
	f := &fakeEnv{}

	c := New(append(f.options(), WithTargets(TargetTmux))...)
	if err := c.Copy("text"); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	if len(f.calls) != 0 {
		t.Errorf("Expected tmux to be skipped, got %+v", f.calls)
	}
}

func TestCopy_NoSystemTool(t *testing.T) {
	f := &fakeEnv{}

	c := New(append(f.options(), WithTargets(TargetSystem))...)
	if err := c.Copy("text"); !errors.Is(err, ErrNoSystemTool) {
		t.Errorf("Expected ErrNoSystemTool, got %v", err)
	}
}

func TestCopy_JoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	f := &fakeEnv{
		env:  map[string]string{"TMUX": "1"},
		fail: map[string]error{"tmux": boom},
	}

	var buf bytes.Buffer
	c := New(append(f.options(), WithTargets(TargetTmux|TargetOSC52), WithOutput(&buf))...)

	err := c.Copy("text")
	if !errors.Is(err, boom) {
		t.Errorf("Expected tmux failure to be reported, got %v", err)
	}
	if buf.Len() == 0 {
		t.Error("OSC52 should still be written after a tmux failure")
	}
}

func TestAvailable(t *testing.T) {
	f := &fakeEnv{env: map[string]string{"TMUX": "1"}}

	c := New(f.options()...)
	got := c.Available()
	if got&TargetTmux == 0 || got&TargetOSC52 == 0 {
		t.Errorf("Expected tmux and osc52, got %b", got)
	}
	if got&TargetSystem != 0 {
		t.Errorf("Expected no system tool, got %b", got)
	}

	c = New(append(f.options(), WithTargets(TargetOSC52))...)
	if c.Available() != TargetOSC52 {
		t.Errorf("Expected targets to be masked, got %b", c.Available())
	}
}

func TestSystemTools(t *testing.T) {
	tests := []struct {
		goos     string
		expected string
	}{
		{"darwin", "pbcopy"},
		{"linux", "wl-copy"},
		{"windows", "clip"},
	}

	for _, tt := range tests {
		tools := systemTools(tt.goos)
		if len(tools) == 0 || tools[0].name != tt.expected {
			t.Errorf("%s: expected first tool %q, got %+v", tt.goos, tt.expected, tools)
		}
	}

	if tools := systemTools("plan9"); len(tools) != 0 {
		t.Errorf("Expected no tools for plan9, got %+v", tools)
	}
}
