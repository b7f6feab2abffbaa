package tiled

import (
	"errors"
	"image"
	"slices"

	"golang.org/x/image/draw"
)

var (
	ErrAtlasEmpty    = errors.New("tiled: atlas has no images")
	ErrAtlasTooSmall = errors.New("tiled: images do not fit in the maximum atlas size")
)

type packEntry[K comparable] struct {
	key  K
	img  image.Image
	w, h int
}

// AtlasBuilder packs many images into one atlas page. Slots are assigned in
// packing order, which is not insertion order: use the map returned by Finish
// to find where each key landed.
type AtlasBuilder[K comparable] struct {
	MaxWidth, MaxHeight int
	Padding             int

	entries []packEntry[K]
	index   map[K]int
}

// NewAtlasBuilder returns a builder limited to maxW x maxH pixels.
func NewAtlasBuilder[K comparable](maxW, maxH, padding int) *AtlasBuilder[K] {
	return &AtlasBuilder[K]{
		MaxWidth:  maxW,
		MaxHeight: maxH,
		Padding:   padding,
		index:     make(map[K]int),
	}
}

// Add queues img under key. Adding a key twice replaces the first image.
func (b *AtlasBuilder[K]) Add(key K, img image.Image) {
	bounds := img.Bounds()
	e := packEntry[K]{key: key, img: img, w: bounds.Dx(), h: bounds.Dy()}
	if i, ok := b.index[key]; ok {
		b.entries[i] = e
		return
	}
	b.index[key] = len(b.entries)
	b.entries = append(b.entries, e)
}

// Len returns the number of queued images.
func (b *AtlasBuilder[K]) Len() int {
	return len(b.entries)
}

// Finish packs the queued images and returns the atlas and the slot of each
// key. The page is the smallest power-of-two size (clamped to the maximum)
// that fits every image.
func (b *AtlasBuilder[K]) Finish() (*Atlas, map[K]int, error) {
	if len(b.entries) == 0 {
		return nil, nil, ErrAtlasEmpty
	}

	sorted := slices.Clone(b.entries)
	slices.SortStableFunc(sorted, func(x, y packEntry[K]) int {
		if x.h != y.h {
			return y.h - x.h
		}
		return y.w - x.w
	})

	maxEntryW, area := 0, 0
	for _, e := range sorted {
		maxEntryW = max(maxEntryW, e.w)
		area += (e.w + b.Padding) * (e.h + b.Padding)
	}
	if maxEntryW > b.MaxWidth || sorted[0].h > b.MaxHeight {
		return nil, nil, ErrAtlasTooSmall
	}

	w := min(nextPow2(maxEntryW), b.MaxWidth)
	h := min(nextPow2(sorted[0].h), b.MaxHeight)
	for w*h < area && (w < b.MaxWidth || h < b.MaxHeight) {
		w, h = growPage(w, h, b.MaxWidth, b.MaxHeight)
	}

	var placements []image.Point
	for {
		var ok bool
		placements, ok = shelfPack(sorted, w, h, b.Padding)
		if ok {
			break
		}
		if w == b.MaxWidth && h == b.MaxHeight {
			return nil, nil, ErrAtlasTooSmall
		}
		w, h = growPage(w, h, b.MaxWidth, b.MaxHeight)
	}

	page := image.NewRGBA(image.Rect(0, 0, w, h))
	regions := make([]TextureRegion, len(sorted))
	slots := make(map[K]int, len(sorted))
	for i, e := range sorted {
		p := placements[i]
		draw.Copy(page, p, e.img, e.img.Bounds(), draw.Src, nil)
		regions[i] = TextureRegion{
			X: uint16(p.X), Y: uint16(p.Y),
			Width: uint16(e.w), Height: uint16(e.h),
		}
		slots[e.key] = i
	}
	return NewAtlas(page, regions), slots, nil
}

func growPage(w, h, maxW, maxH int) (int, int) {
	if w < maxW && (w <= h || h >= maxH) {
		return min(w*2, maxW), h
	}
	return w, min(h*2, maxH)
}

type shelf struct {
	y, height, x int
}

// shelfPack places entries (sorted tallest first) on horizontal shelves,
// choosing for each the open shelf that wastes the least height.
func shelfPack[K comparable](entries []packEntry[K], w, h, padding int) ([]image.Point, bool) {
	placements := make([]image.Point, len(entries))
	var shelves []shelf
	nextY := 0
	for i, e := range entries {
		best, bestWaste := -1, h+1
		for si, s := range shelves {
			if s.height < e.h || s.x+e.w > w {
				continue
			}
			if waste := s.height - e.h; waste < bestWaste {
				best, bestWaste = si, waste
			}
		}
		if best < 0 {
			if e.w > w || nextY+e.h > h {
				return nil, false
			}
			shelves = append(shelves, shelf{y: nextY, height: e.h})
			best = len(shelves) - 1
			nextY += e.h + padding
		}
		s := &shelves[best]
		placements[i] = image.Pt(s.x, s.y)
		s.x += e.w + padding
	}
	return placements, true
}

func nextPow2(v int) int {
	p := 1
	for p < v {
		p <<= 1
	}
	return p
}
