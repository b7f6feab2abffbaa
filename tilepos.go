package tiled

// GridSize is the width and height of a tile grid, in tiles.
type GridSize struct {
	W, H uint32
}

// Len returns the number of cells in the grid.
func (s GridSize) Len() int {
	return int(s.W) * int(s.H)
}

// TilePos is a cell position in a tile grid. The origin is the top-left cell
// and rows are stored one after another.
type TilePos struct {
	X, Y uint32
}

// ToIndex flattens p into a row-major index for a grid of the given size.
// The result is only meaningful when p.WithinBounds(size).
func (p TilePos) ToIndex(size GridSize) int {
	return int(p.Y)*int(size.W) + int(p.X)
}

// WithinBounds reports whether p addresses a cell of a grid of the given size.
func (p TilePos) WithinBounds(size GridSize) bool {
	return p.X < size.W && p.Y < size.H
}

// TilePosFromIndex is the inverse of ToIndex. It returns the zero position for
// a zero-width grid.
func TilePosFromIndex(index int, size GridSize) TilePos {
	if size.W == 0 || index < 0 {
		return TilePos{}
	}
	w := int(size.W)
	return TilePos{X: uint32(index % w), Y: uint32(index / w)}
}
