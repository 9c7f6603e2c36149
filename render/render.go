// Package render lays a stream of text fragments into a fixed rectangle of
// the screen, one rune at a time.
package render

import (
	"github.com/linanwx/minichat/logger"
	"github.com/linanwx/minichat/screen"
	"github.com/linanwx/minichat/textnorm"
)

// Source yields text fragments. It follows the iterator shape of the SDK
// streams: Next blocks until a fragment is available or the stream ends.
type Source interface {
	Next() bool
	Current() string
	Err() error
	Close() error
}

// Result describes how a render ended.
type Result struct {
	// Halted is set when the region filled up before the source ended.
	Halted bool
	// Written counts the runes drawn.
	Written int
	Cursor  Cursor
}

// Render drains src into region. Fragments are accent-stripped before they
// are laid out. When the region overflows the rest of the stream is dropped.
// src is closed before Render returns. The returned error is the source's
// own failure, if any.
func Render(d screen.Drawer, region screen.Region, src Source) (Result, error) {
	defer func() {
		if err := src.Close(); err != nil {
			logger.Warn("close response stream failed", "err", err)
		}
	}()

	cur := NewCursor(region)
	res := Result{}
	d.MoveCursor(cur.Cell())

	for src.Next() {
		if !drawFragment(d, &cur, textnorm.Strip(src.Current()), &res.Written) {
			res.Halted = true
			res.Cursor = cur
			logger.Debug("response truncated", "written", res.Written)
			return res, nil
		}
	}
	res.Cursor = cur
	return res, src.Err()
}

// Text renders a single string the same way a stream is rendered.
func Text(d screen.Drawer, region screen.Region, text string) Result {
	res, _ := Render(d, region, &stringSource{parts: []string{text}})
	return res
}

// drawFragment writes text at cur and reports whether the cursor is still
// inside the region.
func drawFragment(d screen.Drawer, cur *Cursor, text string, written *int) bool {
	for _, r := range text {
		switch {
		case r == '\n':
			// Only an untouched first row swallows a newline; after text it advances.
			if !cur.Newline() {
				return false
			}
			d.MoveCursor(cur.Cell())
			continue
		case r == '\t':
			r = ' '
		case r < ' ' || r == 0x7f:
			continue
		}

		d.Print(string(r))
		*written++
		if !cur.Advance() {
			return false
		}
		if cur.Col == 0 {
			d.MoveCursor(cur.Cell())
		}
	}
	return true
}

type stringSource struct {
	parts []string
	cur   string
}

func (s *stringSource) Next() bool {
	if len(s.parts) == 0 {
		return false
	}
	s.cur, s.parts = s.parts[0], s.parts[1:]
	return true
}

func (s *stringSource) Current() string { return s.cur }
func (s *stringSource) Err() error      { return nil }
func (s *stringSource) Close() error    { return nil }
