// Package screen provides cursor positioning and clearing primitives for
// an ANSI terminal, plus an in-memory recorder with the same surface.
package screen

import (
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Drawer is the minimal surface the editor and the renderer draw on.
type Drawer interface {
	// MoveCursor places the cursor at (row, col), both 1-indexed.
	MoveCursor(row, col int)
	// Print writes s at the cursor; the cursor advances by one cell per rune.
	Print(s string)
}

// Surface adds the clearing primitives used by the session shell.
type Surface interface {
	Drawer
	ClearRect(x, y, width, height int)
	ClearToEnd()
	ClearScreen()
}

// Screen writes ANSI control sequences to an output stream.
// Terminal write failures are not reported.
type Screen struct {
	w io.Writer
}

// New creates a Screen writing to w.
func New(w io.Writer) *Screen {
	return &Screen{w: w}
}

func (s *Screen) MoveCursor(row, col int) {
	s.write(ansi.CursorPosition(col, row))
}

func (s *Screen) Print(text string) {
	s.write(text)
}

// ClearRect blanks width cells on each of height rows starting at column x,
// row y.
func (s *Screen) ClearRect(x, y, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	blank := strings.Repeat(" ", width)
	var b strings.Builder
	for i := 0; i < height; i++ {
		b.WriteString(ansi.CursorPosition(x, y+i))
		b.WriteString(blank)
	}
	s.write(b.String())
}

// ClearToEnd erases from the cursor to the end of the screen.
func (s *Screen) ClearToEnd() {
	s.write(ansi.EraseScreenBelow)
}

// ClearScreen erases the whole screen and homes the cursor.
func (s *Screen) ClearScreen() {
	s.write(ansi.EraseEntireScreen + ansi.CursorPosition(1, 1))
}

func (s *Screen) write(text string) {
	_, _ = io.WriteString(s.w, text)
}
