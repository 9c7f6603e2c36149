// Package editor implements a raw-mode line editor confined to a fixed
// rectangle of the screen.
//
// Text is typed left to right and wraps at the region width. Only trailing
// edits are possible: runes are appended at the end or removed from the end
// with backspace. Once width x height runes have been typed further input
// is discarded until something is deleted.
package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/linanwx/minichat/logger"
	"github.com/linanwx/minichat/screen"
)

// ErrCancelled is returned by Capture when the user pressed Ctrl+C.
// It aborts the current prompt only.
var ErrCancelled = errors.New("editor: input cancelled")

// Input is a keyboard that can be switched to raw mode.
type Input interface {
	// MakeRaw switches to unbuffered, unechoed input and returns the
	// function restoring the previous mode.
	MakeRaw() (restore func() error, err error)
	ReadRune() (r rune, size int, err error)
}

// Capture reads keystrokes until Enter and returns the typed text.
// The terminal is in raw mode for the duration of the call and is restored
// on every return path.
func Capture(ctx context.Context, in Input, d screen.Drawer, region screen.Region) (string, error) {
	if region.Width <= 0 || region.Height <= 0 {
		return "", fmt.Errorf("editor: invalid region %dx%d", region.Width, region.Height)
	}

	restore, err := in.MakeRaw()
	if err != nil {
		return "", err
	}
	defer func() {
		if err := restore(); err != nil {
			logger.Warn("restore terminal mode failed", "err", err)
		}
	}()

	st := NewState(region)
	d.MoveCursor(region.Row, region.Col)

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		r, _, err := in.ReadRune()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			return "", fmt.Errorf("editor: read input: %w", err)
		}

		switch st.Handle(r, d) {
		case Submit:
			logger.Debug("input captured", "runes", st.Len())
			return st.Text(), nil
		case Cancel:
			logger.Debug("input cancelled", "runes", st.Len())
			return "", ErrCancelled
		}
	}
}
