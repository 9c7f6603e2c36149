package render

import "github.com/linanwx/minichat/screen"

// Cursor is the write position of a render, relative to its region.
type Cursor struct {
	Row    int
	Col    int
	Region screen.Region
}

// NewCursor returns a cursor at the region's top-left cell.
func NewCursor(region screen.Region) Cursor {
	return Cursor{Region: region}
}

// InBounds reports whether the cursor row is still inside the region.
func (c *Cursor) InBounds() bool {
	return c.Row < c.Region.Height
}

// Cell returns the absolute screen cell of the cursor.
func (c *Cursor) Cell() (row, col int) {
	return c.Region.Row + c.Row, c.Region.Col + c.Col
}

// Newline moves to the start of the next row. A newline on an untouched
// first row only resets the column, so leading blank lines cost nothing.
func (c *Cursor) Newline() bool {
	if c.Row != 0 || c.Col != 0 {
		c.Row++
	}
	c.Col = 0
	return c.InBounds()
}

// Advance moves one cell right, wrapping at the region width.
func (c *Cursor) Advance() bool {
	c.Col++
	if c.Col >= c.Region.Width {
		c.Row++
		c.Col = 0
	}
	return c.InBounds()
}
