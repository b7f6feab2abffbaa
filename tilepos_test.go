package tiled

import "testing"

func TestTilePosToIndex(t *testing.T) {
	tests := []struct {
		name string
		pos  TilePos
		size GridSize
		want int
	}{
		{"origin", TilePos{0, 0}, GridSize{4, 2}, 0},
		{"end of first row", TilePos{3, 0}, GridSize{4, 2}, 3},
		{"start of second row", TilePos{0, 1}, GridSize{4, 2}, 4},
		{"last cell", TilePos{3, 1}, GridSize{4, 2}, 7},
		{"single column", TilePos{0, 5}, GridSize{1, 6}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pos.ToIndex(tt.size); got != tt.want {
				t.Errorf("ToIndex = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTilePosWithinBounds(t *testing.T) {
	size := GridSize{3, 2}
	tests := []struct {
		pos  TilePos
		want bool
	}{
		{TilePos{0, 0}, true},
		{TilePos{2, 1}, true},
		{TilePos{3, 0}, false},
		{TilePos{0, 2}, false},
		{TilePos{10, 10}, false},
	}
	for _, tt := range tests {
		if got := tt.pos.WithinBounds(size); got != tt.want {
			t.Errorf("WithinBounds(%v) = %v, want %v", tt.pos, got, tt.want)
		}
	}
	if (TilePos{}).WithinBounds(GridSize{}) {
		t.Error("empty grid should contain no positions")
	}
}

func TestTilePosIndexRoundTrip(t *testing.T) {
	for _, size := range []GridSize{{1, 1}, {4, 2}, {2, 4}, {7, 3}, {16, 16}} {
		seen := make(map[int]bool, size.Len())
		for y := range size.H {
			for x := range size.W {
				p := TilePos{x, y}
				i := p.ToIndex(size)
				if i < 0 || i >= size.Len() {
					t.Fatalf("%v in %v: index %d out of range", p, size, i)
				}
				if seen[i] {
					t.Fatalf("%v in %v: index %d produced twice", p, size, i)
				}
				seen[i] = true
				if back := TilePosFromIndex(i, size); back != p {
					t.Errorf("TilePosFromIndex(%d, %v) = %v, want %v", i, size, back, p)
				}
				if again := TilePosFromIndex(i, size).ToIndex(size); again != i {
					t.Errorf("round trip of %d = %d", i, again)
				}
			}
		}
		if len(seen) != size.Len() {
			t.Errorf("%v: %d distinct indices, want %d", size, len(seen), size.Len())
		}
	}
}

func TestTilePosFromIndexZeroWidth(t *testing.T) {
	if got := TilePosFromIndex(3, GridSize{}); got != (TilePos{}) {
		t.Errorf("TilePosFromIndex on empty grid = %v, want zero", got)
	}
}
