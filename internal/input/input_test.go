package input

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"single line", "Hb  10.1", "Hb  10.1"},
		{"trailing newline", "Hb  10.1\nK  2.6\n", "Hb  10.1\nK  2.6"},
		{"crlf", "Hb  10.1\r\nK  2.6\r\n", "Hb  10.1\nK  2.6"},
		{"blank lines kept", "a\n\nb", "a\n\nb"},
		{"ansi colors", "\x1b[31mK\x1b[0m  2.6  \x1b[1mL\x1b[0m", "K  2.6  L"},
	}

	for _, tt := range tests {
		got, err := Read(strings.NewReader(tt.input), 0)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.expected, got)
		}
	}
}

func TestRead_TooLarge(t *testing.T) {
	input := strings.Repeat("x", 11)

	if _, err := Read(strings.NewReader(input), 10); !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("Expected ErrInputTooLarge, got %v", err)
	}

	got, err := Read(strings.NewReader(input[:10]), 10)
	if err != nil {
		t.Fatalf("Expected an exact fit to pass, got %v", err)
	}
	if got != input[:10] {
		t.Errorf("Expected %q, got %q", input[:10], got)
	}
}

func TestStripANSI(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain", "plain"},
		{"\x1b[32mAST\x1b[0m", "AST"},
		{"\x1b[38;5;196m45\x1b[0m H", "45 H"},
	}

	for _, tt := range tests {
		if got := StripANSI(tt.input); got != tt.expected {
			t.Errorf("StripANSI(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	if err := os.WriteFile(path, []byte("001  Hb  10.1  L\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, err := ReadFile(path, 0)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if got != "001  Hb  10.1  L" {
		t.Errorf("Unexpected content %q", got)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.txt"), 0); err == nil {
		t.Error("Expected an error for a missing file")
	}
}
