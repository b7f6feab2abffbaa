package tiled

import (
	"image"
	"image/color"
	"testing"
)

// gridPage returns a w x h page where each 16x16 cell is filled with a color
// encoding its row-major cell index in the red channel.
func gridPage(w, h, tile int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	cols := w / tile
	for y := range h {
		for x := range w {
			idx := (y/tile)*cols + x/tile
			img.SetRGBA(x, y, color.RGBA{R: uint8(idx), A: 255})
		}
	}
	return img
}

func TestNewGridAtlasSlotEqualsTileID(t *testing.T) {
	page := gridPage(64, 32, 16)
	a := NewGridAtlas(page, GridSpec{TileWidth: 16, TileHeight: 16, Columns: 4, Rows: 2})
	if a.Len() != 8 {
		t.Fatalf("Len = %d, want 8", a.Len())
	}
	for id := range 8 {
		r, ok := a.Region(id)
		if !ok {
			t.Fatalf("Region(%d) missing", id)
		}
		wantX, wantY := uint16(id%4*16), uint16(id/4*16)
		if r.X != wantX || r.Y != wantY || r.Width != 16 || r.Height != 16 {
			t.Errorf("Region(%d) = %+v, want (%d,%d) 16x16", id, r, wantX, wantY)
		}
		sub, _ := a.SubImage(id)
		got := color.RGBAModel.Convert(sub.At(sub.Bounds().Min.X, sub.Bounds().Min.Y)).(color.RGBA)
		if int(got.R) != id {
			t.Errorf("slot %d shows cell %d", id, got.R)
		}
	}
}

func TestNewGridAtlasSpacingAndOrigin(t *testing.T) {
	a := NewGridAtlas(image.NewRGBA(image.Rect(0, 0, 40, 40)), GridSpec{
		TileWidth: 8, TileHeight: 8, Columns: 3, Rows: 3, Spacing: 2, OriginX: 1, OriginY: 1,
	})
	r, _ := a.Region(4)
	if r.X != 11 || r.Y != 11 {
		t.Errorf("Region(4) = (%d,%d), want (11,11)", r.X, r.Y)
	}
	r, _ = a.Region(8)
	if r.X != 21 || r.Y != 21 {
		t.Errorf("Region(8) = (%d,%d), want (21,21)", r.X, r.Y)
	}
}

func TestAtlasRegionOutOfRange(t *testing.T) {
	a := NewGridAtlas(image.NewRGBA(image.Rect(0, 0, 16, 16)), GridSpec{TileWidth: 16, TileHeight: 16, Columns: 1, Rows: 1})
	for _, slot := range []int{-1, 1, 100} {
		if _, ok := a.Region(slot); ok {
			t.Errorf("Region(%d) should be missing", slot)
		}
		if _, ok := a.SubImage(slot); ok {
			t.Errorf("SubImage(%d) should be missing", slot)
		}
	}
}

func TestTextureRegionRect(t *testing.T) {
	r := TextureRegion{X: 4, Y: 8, Width: 16, Height: 2}
	if got, want := r.Rect(), image.Rect(4, 8, 20, 10); got != want {
		t.Errorf("Rect = %v, want %v", got, want)
	}
}
