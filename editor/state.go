package editor

import "github.com/linanwx/minichat/screen"

// Action is the outcome of a single keystroke.
type Action int

const (
	Continue Action = iota
	Submit
	Cancel
)

const (
	keyCtrlC     = 0x03
	keyBackspace = 0x08
	keyLF        = '\n'
	keyCR        = '\r'
	keyEscape    = 0x1b
	keyDelete    = 0x7f
)

type escapeState int

const (
	escNone  escapeState = iota
	escStart             // ESC
	escCSI               // ESC [ params... final
	escSS3               // ESC O x
)

// State is the editor's buffer and cursor for one prompt.
// The cursor is derived from the buffer length, so it never leaves the region.
type State struct {
	region screen.Region
	buf    []rune
	esc    escapeState
}

// NewState returns an empty editor over region.
func NewState(region screen.Region) *State {
	return &State{
		region: region,
		buf:    make([]rune, 0, region.Capacity()),
	}
}

// Capacity is the maximum number of runes the region holds.
func (s *State) Capacity() int {
	return s.region.Capacity()
}

// Len is the number of runes typed so far.
func (s *State) Len() int {
	return len(s.buf)
}

// Text returns the typed text.
func (s *State) Text() string {
	return string(s.buf)
}

// Cursor returns the absolute screen cell where the next rune goes.
// A full buffer parks the cursor on the last cell.
func (s *State) Cursor() (row, col int) {
	return s.cellAt(len(s.buf))
}

func (s *State) cellAt(i int) (row, col int) {
	w := s.region.Width
	if w <= 0 {
		return s.region.Row, s.region.Col
	}
	if c := s.Capacity(); i >= c {
		i = c - 1
	}
	if i < 0 {
		i = 0
	}
	return s.region.Row + i/w, s.region.Col + i%w
}

// Handle applies one keystroke and draws its effect on d.
func (s *State) Handle(r rune, d screen.Drawer) Action {
	if s.esc != escNone && s.escape(r) {
		return Continue
	}

	switch {
	case r == keyCR || r == keyLF:
		return Submit
	case r == keyCtrlC:
		return Cancel
	case r == keyBackspace || r == keyDelete:
		s.backspace(d)
	case r == keyEscape:
		s.esc = escStart
	case r >= ' ':
		s.insert(r, d)
	}
	return Continue
}

// escape consumes r as part of an escape sequence. It returns false when r
// does not belong to the sequence and must be handled as a regular key.
func (s *State) escape(r rune) bool {
	switch s.esc {
	case escStart:
		switch r {
		case '[':
			s.esc = escCSI
			return true
		case 'O':
			s.esc = escSS3
			return true
		}
		s.esc = escNone
		return false
	case escCSI:
		switch {
		case r >= 0x20 && r <= 0x3f:
			return true
		case r >= 0x40 && r <= 0x7e:
			s.esc = escNone
			return true
		}
		s.esc = escNone
		return false
	case escSS3:
		s.esc = escNone
		return r >= 0x20 && r <= 0x7e
	}
	return false
}

func (s *State) insert(r rune, d screen.Drawer) {
	if len(s.buf) >= s.Capacity() {
		return
	}
	row, col := s.Cursor()
	s.buf = append(s.buf, r)
	d.Print(string(r))

	// The terminal advanced one cell; only wraps and the parked cursor of
	// a full buffer need an explicit move.
	if nrow, ncol := s.Cursor(); nrow != row || ncol != col+1 {
		d.MoveCursor(nrow, ncol)
	}
}

func (s *State) backspace(d screen.Drawer) {
	if len(s.buf) == 0 {
		return
	}
	s.buf = s.buf[:len(s.buf)-1]
	row, col := s.Cursor()
	d.MoveCursor(row, col)
	d.Print(" ")
	d.MoveCursor(row, col)
}
