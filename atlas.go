package tiled

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// TextureRegion describes a sub-rectangle of an atlas page.
type TextureRegion struct {
	X, Y          uint16 // top-left corner within the page
	Width, Height uint16
}

// Rect returns the region as an image.Rectangle.
func (r TextureRegion) Rect() image.Rectangle {
	return image.Rect(int(r.X), int(r.Y), int(r.X)+int(r.Width), int(r.Y)+int(r.Height))
}

// Atlas is a single packed page plus one region per slot.
type Atlas struct {
	page    image.Image
	regions []TextureRegion

	ebitenPage *ebiten.Image // created on first EbitenPage call
}

// NewAtlas wraps an already-packed page.
func NewAtlas(page image.Image, regions []TextureRegion) *Atlas {
	return &Atlas{page: page, regions: regions}
}

// GridSpec describes how an image-backed tileset is sliced.
type GridSpec struct {
	TileWidth, TileHeight int
	Columns, Rows         int
	Spacing               int // gap between cells, both axes
	OriginX, OriginY      int // top-left of the first cell
}

// NewGridAtlas slices page into Columns*Rows regions in row-major order, so
// slot == tile id. Cells that fall outside the page are still recorded; the
// page is trusted to match the declared grid.
func NewGridAtlas(page image.Image, g GridSpec) *Atlas {
	regions := make([]TextureRegion, 0, g.Columns*g.Rows)
	for row := range g.Rows {
		for col := range g.Columns {
			regions = append(regions, TextureRegion{
				X:      uint16(g.OriginX + col*(g.TileWidth+g.Spacing)),
				Y:      uint16(g.OriginY + row*(g.TileHeight+g.Spacing)),
				Width:  uint16(g.TileWidth),
				Height: uint16(g.TileHeight),
			})
		}
	}
	return &Atlas{page: page, regions: regions}
}

// Len returns the number of slots.
func (a *Atlas) Len() int {
	return len(a.regions)
}

// Region returns the region of slot.
func (a *Atlas) Region(slot int) (TextureRegion, bool) {
	if slot < 0 || slot >= len(a.regions) {
		return TextureRegion{}, false
	}
	return a.regions[slot], true
}

// Page returns the packed page.
func (a *Atlas) Page() image.Image {
	return a.page
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// SubImage returns the pixels of slot. Pages that cannot be sub-sliced are
// returned whole.
func (a *Atlas) SubImage(slot int) (image.Image, bool) {
	r, ok := a.Region(slot)
	if !ok {
		return nil, false
	}
	if si, ok := a.page.(subImager); ok {
		return si.SubImage(r.Rect()), true
	}
	return a.page, true
}

// EbitenPage returns the page as an *ebiten.Image, uploading it on first use.
func (a *Atlas) EbitenPage() *ebiten.Image {
	if a.ebitenPage == nil {
		if img, ok := a.page.(*ebiten.Image); ok {
			a.ebitenPage = img
		} else {
			a.ebitenPage = ebiten.NewImageFromImage(a.page)
		}
	}
	return a.ebitenPage
}

// EbitenRegion returns the sub-image of slot, or a 1x1 magenta placeholder
// when the slot does not exist.
func (a *Atlas) EbitenRegion(slot int) *ebiten.Image {
	r, ok := a.Region(slot)
	if !ok {
		return ensureMagentaImage()
	}
	return a.EbitenPage().SubImage(r.Rect()).(*ebiten.Image)
}

// magenta placeholder singleton (no sync.Once, drawing is single-threaded)
var magentaImage *ebiten.Image

func ensureMagentaImage() *ebiten.Image {
	if magentaImage == nil {
		magentaImage = ebiten.NewImage(1, 1)
		magentaImage.Fill(color.RGBA{R: 255, G: 0, B: 255, A: 255})
	}
	return magentaImage
}
