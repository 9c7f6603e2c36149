package screen

// Region is a fixed rectangle of the screen, 1-indexed at its top-left cell.
type Region struct {
	Row    int
	Col    int
	Width  int
	Height int
}

// Capacity is the number of cells in the region.
func (r Region) Capacity() int {
	return r.Width * r.Height
}

// Bottom is the first row below the region.
func (r Region) Bottom() int {
	return r.Row + r.Height
}

// Right is the first column right of the region.
func (r Region) Right() int {
	return r.Col + r.Width
}
