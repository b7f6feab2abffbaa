package tiled

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestAtlasBuilderEmpty(t *testing.T) {
	b := NewAtlasBuilder[TileID](256, 256, 0)
	if _, _, err := b.Finish(); !errors.Is(err, ErrAtlasEmpty) {
		t.Errorf("Finish on empty builder err = %v, want ErrAtlasEmpty", err)
	}
}

func TestAtlasBuilderPreservesPixels(t *testing.T) {
	colors := map[TileID]color.RGBA{
		3: {255, 0, 0, 255},
		7: {0, 255, 0, 255},
		9: {0, 0, 255, 255},
	}
	b := NewAtlasBuilder[TileID](256, 256, 1)
	b.Add(3, solidImage(16, 16, colors[3]))
	b.Add(7, solidImage(32, 8, colors[7]))
	b.Add(9, solidImage(8, 24, colors[9]))

	atlas, slots, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if len(slots) != 3 || atlas.Len() != 3 {
		t.Fatalf("slots = %v, atlas.Len = %d", slots, atlas.Len())
	}
	used := map[int]bool{}
	for id, slot := range slots {
		if used[slot] {
			t.Errorf("slot %d assigned twice", slot)
		}
		used[slot] = true
		sub, ok := atlas.SubImage(slot)
		if !ok {
			t.Fatalf("SubImage(%d) missing", slot)
		}
		b := sub.Bounds()
		got := color.RGBAModel.Convert(sub.At(b.Min.X, b.Min.Y)).(color.RGBA)
		if got != colors[id] {
			t.Errorf("tile %d pixel = %v, want %v", id, got, colors[id])
		}
		gotEnd := color.RGBAModel.Convert(sub.At(b.Max.X-1, b.Max.Y-1)).(color.RGBA)
		if gotEnd != colors[id] {
			t.Errorf("tile %d last pixel = %v, want %v", id, gotEnd, colors[id])
		}
	}
}

func TestAtlasBuilderRegionsDoNotOverlap(t *testing.T) {
	b := NewAtlasBuilder[int](128, 128, 2)
	sizes := [][2]int{{10, 30}, {20, 5}, {16, 16}, {40, 12}, {7, 7}, {30, 30}, {3, 20}}
	for i, s := range sizes {
		b.Add(i, solidImage(s[0], s[1], color.RGBA{uint8(i * 30), 0, 0, 255}))
	}
	atlas, slots, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	page := atlas.Page().Bounds()
	var rects []image.Rectangle
	for key, slot := range slots {
		r, _ := atlas.Region(slot)
		rect := r.Rect()
		if rect.Dx() != sizes[key][0] || rect.Dy() != sizes[key][1] {
			t.Errorf("key %d region %v, want %dx%d", key, rect, sizes[key][0], sizes[key][1])
		}
		if !rect.In(page) {
			t.Errorf("key %d region %v outside page %v", key, rect, page)
		}
		for _, other := range rects {
			if rect.Overlaps(other) {
				t.Errorf("region %v overlaps %v", rect, other)
			}
		}
		rects = append(rects, rect)
	}
}

func TestAtlasBuilderReordersByHeight(t *testing.T) {
	b := NewAtlasBuilder[string](256, 256, 0)
	b.Add("short", solidImage(8, 4, color.RGBA{A: 255}))
	b.Add("tall", solidImage(8, 32, color.RGBA{A: 255}))
	_, slots, err := b.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if slots["tall"] != 0 || slots["short"] != 1 {
		t.Errorf("slots = %v, want tall first", slots)
	}
}

func TestAtlasBuilderTooSmall(t *testing.T) {
	tests := []struct {
		name  string
		sizes [][2]int
	}{
		{"single image wider than max", [][2]int{{65, 8}}},
		{"single image taller than max", [][2]int{{8, 65}}},
		{"total area exceeds max", [][2]int{{64, 64}, {64, 64}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewAtlasBuilder[int](64, 64, 0)
			for i, s := range tt.sizes {
				b.Add(i, solidImage(s[0], s[1], color.RGBA{A: 255}))
			}
			if _, _, err := b.Finish(); !errors.Is(err, ErrAtlasTooSmall) {
				t.Errorf("err = %v, want ErrAtlasTooSmall", err)
			}
		})
	}
}

func TestAtlasBuilderReplaceKey(t *testing.T) {
	b := NewAtlasBuilder[int](64, 64, 0)
	b.Add(1, solidImage(8, 8, color.RGBA{R: 255, A: 255}))
	b.Add(1, solidImage(4, 4, color.RGBA{G: 255, A: 255}))
	if b.Len() != 1 {
		t.Fatalf("Len = %d, want 1", b.Len())
	}
	atlas, slots, err := b.Finish()
	if err != nil {
		t.Fatal(err)
	}
	r, _ := atlas.Region(slots[1])
	if r.Width != 4 || r.Height != 4 {
		t.Errorf("region = %+v, want the replacement 4x4", r)
	}
}

func TestAtlasBuilderPageIsPowerOfTwo(t *testing.T) {
	b := NewAtlasBuilder[int](1024, 1024, 0)
	for i := range 10 {
		b.Add(i, solidImage(20, 20, color.RGBA{A: 255}))
	}
	atlas, _, err := b.Finish()
	if err != nil {
		t.Fatal(err)
	}
	sz := atlas.Page().Bounds().Size()
	if sz.X != nextPow2(sz.X) || sz.Y != nextPow2(sz.Y) {
		t.Errorf("page size %v is not a power of two", sz)
	}
}
