// Package console provides raw keystroke input from the controlling terminal.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/muesli/cancelreader"
	"golang.org/x/term"

	"github.com/linanwx/minichat/logger"
)

// ErrNotTerminal is returned when stdin is not an interactive terminal.
var ErrNotTerminal = errors.New("stdin is not a terminal")

// ErrCanceled is returned by ReadRune after Cancel interrupted a pending read.
var ErrCanceled = cancelreader.ErrCanceled

// Console reads runes from stdin and toggles the terminal's raw mode.
type Console struct {
	fd     int
	reader cancelreader.CancelReader
	runes  *bufio.Reader
}

// New opens a console on stdin. Stdin must be a terminal.
func New() (*Console, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	cr, err := cancelreader.NewReader(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("console: open stdin: %w", err)
	}
	return &Console{
		fd:     fd,
		reader: cr,
		runes:  bufio.NewReader(cr),
	}, nil
}

// MakeRaw puts the terminal in raw mode and returns the function that
// restores the previous mode.
func (c *Console) MakeRaw() (func() error, error) {
	old, err := term.MakeRaw(c.fd)
	if err != nil {
		return nil, fmt.Errorf("console: enter raw mode: %w", err)
	}
	logger.Debug("terminal raw mode on")
	return func() error {
		logger.Debug("terminal raw mode off")
		return term.Restore(c.fd, old)
	}, nil
}

// ReadRune blocks until one rune is available.
func (c *Console) ReadRune() (rune, int, error) {
	return c.runes.ReadRune()
}

// Cancel interrupts a pending ReadRune, which then returns ErrCanceled.
func (c *Console) Cancel() bool {
	return c.reader.Cancel()
}

// Close releases the stdin reader.
func (c *Console) Close() error {
	return c.reader.Close()
}
