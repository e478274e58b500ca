// Package ui prints user-facing status lines to the console.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Status writes styled one-line messages. Debug lines only appear when verbose.
type Status struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

// NewStatus creates a status printer writing to out (stdout when nil).
func NewStatus(out io.Writer, verbose bool) *Status {
	if out == nil {
		out = os.Stdout
	}
	return &Status{out: out, verbose: verbose}
}

func (s *Status) print(style lipgloss.Style, prefix, format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, style.Render(prefix+fmt.Sprintf(format, args...)))
}

// Info prints a progress line.
func (s *Status) Info(format string, args ...any) {
	s.print(infoStyle, " => ", format, args...)
}

// Success prints a success line.
func (s *Status) Success(format string, args ...any) {
	s.print(successStyle, "[+] ", format, args...)
}

// Warn prints a warning line.
func (s *Status) Warn(format string, args ...any) {
	s.print(warnStyle, "[!] ", format, args...)
}

// Error prints an error line.
func (s *Status) Error(format string, args ...any) {
	s.print(errorStyle, "[-] ", format, args...)
}

// Debug prints a line only in verbose mode.
func (s *Status) Debug(format string, args ...any) {
	if !s.verbose {
		return
	}
	s.print(debugStyle, " .. ", format, args...)
}

// Preview shortens text for a status line, appending "..." when cut.
func Preview(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n]) + "..."
}
