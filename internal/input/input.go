// Package input reads report text from files or stdin.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leaanthony/go-ansi-parser"
)

const (
	defaultSize = 4096

	// DefaultMaxBytes bounds a single report.
	DefaultMaxBytes int64 = 1 << 20
)

// ErrInputTooLarge is returned when the input exceeds the configured limit.
var ErrInputTooLarge = errors.New("input too large")

// ReadFile reads the report at path, or stdin when path is empty or "-".
func ReadFile(path string, maxBytes int64) (string, error) {
	if path == "" || path == "-" {
		return Read(os.Stdin, maxBytes)
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening input file: %w", err)
	}
	defer file.Close() // nolint: errcheck

	return Read(file, maxBytes)
}

// Read reads r line by line, dropping carriage returns and ANSI escape
// sequences. maxBytes <= 0 means DefaultMaxBytes.
func Read(r io.Reader, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	// One extra byte tells an exact fit from an overflow.
	bufferedReader := bufio.NewReaderSize(io.LimitReader(r, maxBytes+1), defaultSize)

	var (
		lines []string
		total int64
	)
	for {
		line, err := bufferedReader.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("reading input: %w", err)
		}

		total += int64(len(line))
		if total > maxBytes {
			return "", fmt.Errorf("%w: more than %d bytes", ErrInputTooLarge, maxBytes)
		}

		if line != "" {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			lines = append(lines, StripANSI(line))
		}

		if err == io.EOF {
			break
		}
	}

	return strings.Join(lines, "\n"), nil
}

// StripANSI returns the visible text of line. Lines the ANSI parser rejects
// are returned unchanged.
func StripANSI(line string) string {
	if !strings.ContainsRune(line, '\x1b') {
		return line
	}

	elements, err := ansi.Parse(line, ansi.WithIgnoreInvalidCodes())
	if err != nil {
		return line
	}

	var b strings.Builder
	for _, element := range elements {
		b.WriteString(element.Label)
	}
	return b.String()
}
