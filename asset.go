package tiled

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// MapHandle identifies a map asset, normally by its path.
type MapHandle string

var (
	ErrMissingTexture = errors.New("tiled: tileset has no matching texture")
	ErrImageNotLoaded = errors.New("tiled: image not loaded")
	ErrBadTileset     = errors.New("tiled: tileset has no usable grid")
)

// TilesetError reports a failure confined to one tileset.
type TilesetError struct {
	Tileset TilesetIndex
	Name    string
	Err     error
}

func (e *TilesetError) Error() string {
	return fmt.Sprintf("tiled: tileset %d (%s): %v", e.Tileset, e.Name, e.Err)
}

func (e *TilesetError) Unwrap() error {
	return e.Err
}

// PackConfig bounds the atlases built for collection tilesets.
type PackConfig struct {
	MaxWidth, MaxHeight int
	Padding             int
}

// MapAsset is one loaded version of a map together with its packed atlases.
// Textures and TileImageOffsets are fixed at creation; Atlases and
// AtlasOffsets are rebuilt by PackAtlases.
type MapAsset struct {
	Handle  MapHandle
	Version uint64
	Map     *Map

	Dependencies     []ImageHandle
	Textures         map[TilesetIndex]TilemapTexture
	TileImageOffsets TileImageOffsets

	Atlases       map[TilesetIndex]*Atlas
	AtlasOffsets  map[TilesetIndex]map[TileID]int
	AtlasesLoaded bool
}

// NewMapAsset resolves the textures of m.
func NewMapAsset(h MapHandle, m *Map) *MapAsset {
	set := ResolveTextures(m)
	return &MapAsset{
		Handle:           h,
		Map:              m,
		Dependencies:     set.Dependencies,
		Textures:         set.Textures,
		TileImageOffsets: set.Offsets,
		Atlases:          make(map[TilesetIndex]*Atlas),
		AtlasOffsets:     make(map[TilesetIndex]map[TileID]int),
	}
}

// Invalidate marks the atlases as needing a rebuild.
func (a *MapAsset) Invalidate() {
	a.AtlasesLoaded = false
}

// AtlasSlot maps a tile to its atlas slot. Tilesets without an offset table
// use the tile id itself; ok is false when a table exists but has no entry
// for id (the tile's image was skipped during packing).
func (a *MapAsset) AtlasSlot(ts TilesetIndex, id TileID) (slot int, ok bool) {
	offsets, has := a.AtlasOffsets[ts]
	if !has {
		return int(id), true
	}
	slot, ok = offsets[id]
	return slot, ok
}

// DependenciesSettled reports whether every dependency has finished loading,
// successfully or not. Missing dependencies are requested.
func (a *MapAsset) DependenciesSettled(p ImageProvider) bool {
	settled := true
	for _, h := range a.Dependencies {
		switch p.State(h) {
		case LoadLoaded, LoadFailed:
		case LoadNotRequested:
			p.Request(h)
			if s := p.State(h); s != LoadLoaded && s != LoadFailed {
				settled = false
			}
		default:
			settled = false
		}
	}
	return settled
}

// PackAtlases discards any previous atlases and builds one per tileset, in
// tileset order. A failing tileset is reported and left without an atlas;
// the others still complete. AtlasesLoaded is set once every tileset has
// been attempted.
func (a *MapAsset) PackAtlases(images ImageSource, cfg PackConfig, log logrus.FieldLogger) error {
	if log == nil {
		log = logrus.StandardLogger()
	}
	clear(a.Atlases)
	clear(a.AtlasOffsets)

	var errs []error
	for i, ts := range a.Map.Tilesets {
		idx := TilesetIndex(i)
		var err error
		if ts.IsCollection() {
			err = a.packCollection(idx, ts, images, cfg, log)
		} else {
			err = a.packGrid(idx, ts, images)
		}
		if err != nil {
			errs = append(errs, &TilesetError{Tileset: idx, Name: ts.Name, Err: err})
		}
	}
	a.AtlasesLoaded = true
	return errors.Join(errs...)
}

func (a *MapAsset) packGrid(idx TilesetIndex, ts *Tileset, images ImageSource) error {
	h, ok := a.Textures[idx].Single()
	if !ok {
		return ErrMissingTexture
	}
	img, ok := images.Image(h)
	if !ok {
		return fmt.Errorf("%w: %s", ErrImageNotLoaded, h)
	}
	if ts.TileWidth == 0 || ts.TileHeight == 0 {
		return fmt.Errorf("%w: zero tile size", ErrBadTileset)
	}

	imgW, imgH := ts.Image.Width, ts.Image.Height
	if imgW <= 0 || imgH <= 0 {
		imgW, imgH = img.Bounds().Dx(), img.Bounds().Dy()
	}
	margin, spacing := int(ts.Margin), int(ts.Spacing)
	tw, th := int(ts.TileWidth), int(ts.TileHeight)

	// The last row and column have no trailing spacing.
	rows := (imgH - 2*margin + spacing) / (th + spacing)
	cols := int(ts.Columns)
	if cols == 0 {
		cols = (imgW - 2*margin + spacing) / (tw + spacing)
	}
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("%w: %dx%d image holds no %dx%d tiles", ErrBadTileset, imgW, imgH, tw, th)
	}

	a.Atlases[idx] = NewGridAtlas(img, GridSpec{
		TileWidth:  tw,
		TileHeight: th,
		Columns:    cols,
		Rows:       rows,
		Spacing:    spacing,
		OriginX:    margin,
		OriginY:    margin,
	})
	return nil
}

func (a *MapAsset) packCollection(idx TilesetIndex, ts *Tileset, images ImageSource, cfg PackConfig, log logrus.FieldLogger) error {
	handles, ok := a.Textures[idx].Vector()
	if !ok {
		return ErrMissingTexture
	}

	b := NewAtlasBuilder[TileID](cfg.MaxWidth, cfg.MaxHeight, cfg.Padding)
	for _, tile := range ts.Tiles {
		pos, ok := a.TileImageOffsets[TileKey{idx, tile.ID}]
		if !ok {
			continue
		}
		img, ok := images.Image(handles[pos])
		if !ok {
			log.WithFields(logrus.Fields{
				"map":     a.Handle,
				"tileset": idx,
				"tile":    tile.ID,
				"image":   handles[pos],
			}).Warn("skipping tile, image not loaded")
			continue
		}
		b.Add(tile.ID, img)
	}

	atlas, slots, err := b.Finish()
	if err != nil {
		return err
	}

	// Packing reorders images, so walk the declared tiles again to record
	// where each one landed.
	offsets := make(map[TileID]int, len(slots))
	for _, tile := range ts.Tiles {
		if slot, ok := slots[tile.ID]; ok {
			offsets[tile.ID] = slot
		}
	}
	a.Atlases[idx] = atlas
	a.AtlasOffsets[idx] = offsets
	return nil
}
