package screen

import "strings"

// Recorder is an in-memory terminal of fixed size. It keeps a cell grid and
// a cursor and follows the same auto-advance rules as a real terminal, which
// makes it suitable for asserting what a Drawer user put on screen.
type Recorder struct {
	rows, cols int
	cells      [][]rune
	row, col   int
	moves      int
	printed    int
}

// NewRecorder creates a blank rows x cols recorder with the cursor at (1, 1).
func NewRecorder(rows, cols int) *Recorder {
	r := &Recorder{rows: rows, cols: cols, row: 1, col: 1}
	r.cells = make([][]rune, rows)
	for i := range r.cells {
		r.cells[i] = []rune(strings.Repeat(" ", cols))
	}
	return r
}

func (r *Recorder) MoveCursor(row, col int) {
	r.moves++
	r.row = clamp(row, 1, r.rows)
	r.col = clamp(col, 1, r.cols)
}

func (r *Recorder) Print(s string) {
	for _, ch := range s {
		if ch == '\n' {
			r.row = clamp(r.row+1, 1, r.rows)
			r.col = 1
			continue
		}
		if r.col > r.cols {
			r.row = clamp(r.row+1, 1, r.rows)
			r.col = 1
		}
		r.cells[r.row-1][r.col-1] = ch
		r.col++
		r.printed++
	}
}

func (r *Recorder) ClearRect(x, y, width, height int) {
	for row := y; row < y+height; row++ {
		for col := x; col < x+width; col++ {
			r.set(row, col, ' ')
		}
	}
	r.row = clamp(y+height-1, 1, r.rows)
	r.col = clamp(x+width, 1, r.cols+1)
}

func (r *Recorder) ClearToEnd() {
	for col := r.col; col <= r.cols; col++ {
		r.set(r.row, col, ' ')
	}
	for row := r.row + 1; row <= r.rows; row++ {
		for col := 1; col <= r.cols; col++ {
			r.set(row, col, ' ')
		}
	}
}

func (r *Recorder) ClearScreen() {
	for row := 1; row <= r.rows; row++ {
		for col := 1; col <= r.cols; col++ {
			r.set(row, col, ' ')
		}
	}
	r.row, r.col = 1, 1
}

// Cursor returns the current cursor position.
func (r *Recorder) Cursor() (row, col int) {
	return r.row, r.col
}

// Cell returns the rune at (row, col), or 0 outside the grid.
func (r *Recorder) Cell(row, col int) rune {
	if row < 1 || row > r.rows || col < 1 || col > r.cols {
		return 0
	}
	return r.cells[row-1][col-1]
}

// Line returns row with trailing blanks removed.
func (r *Recorder) Line(row int) string {
	if row < 1 || row > r.rows {
		return ""
	}
	return strings.TrimRight(string(r.cells[row-1]), " ")
}

// Text returns the cells of region row by row, trailing blanks trimmed.
func (r *Recorder) Text(reg Region) []string {
	lines := make([]string, 0, reg.Height)
	for row := reg.Row; row < reg.Bottom(); row++ {
		var b strings.Builder
		for col := reg.Col; col < reg.Right(); col++ {
			if ch := r.Cell(row, col); ch != 0 {
				b.WriteRune(ch)
			}
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	return lines
}

// Printed is the number of runes written so far.
func (r *Recorder) Printed() int {
	return r.printed
}

// Moves is the number of explicit cursor moves so far.
func (r *Recorder) Moves() int {
	return r.moves
}

func (r *Recorder) set(row, col int, ch rune) {
	if row < 1 || row > r.rows || col < 1 || col > r.cols {
		return
	}
	r.cells[row-1][col-1] = ch
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
