package tiled

// ImageHandle identifies an image asset, normally by its path.
type ImageHandle string

// TextureKind tags a TilemapTexture.
type TextureKind uint8

const (
	TextureSingle TextureKind = iota // one shared image
	TextureVector                    // one image per tile
)

// TilemapTexture describes how a tileset's images map to image assets.
type TilemapTexture struct {
	kind   TextureKind
	single ImageHandle
	vector []ImageHandle
}

// SingleTexture returns a texture backed by one shared image.
func SingleTexture(h ImageHandle) TilemapTexture {
	return TilemapTexture{kind: TextureSingle, single: h}
}

// VectorTexture returns a texture backed by one image per tile, in
// first-seen order.
func VectorTexture(hs []ImageHandle) TilemapTexture {
	return TilemapTexture{kind: TextureVector, vector: hs}
}

// Kind returns the variant tag.
func (t TilemapTexture) Kind() TextureKind { return t.kind }

// Single returns the shared image of a TextureSingle texture.
func (t TilemapTexture) Single() (ImageHandle, bool) {
	return t.single, t.kind == TextureSingle
}

// Vector returns the per-tile images of a TextureVector texture.
func (t TilemapTexture) Vector() ([]ImageHandle, bool) {
	return t.vector, t.kind == TextureVector
}

// TileKey addresses one tile definition across the whole map.
type TileKey struct {
	Tileset TilesetIndex
	Tile    TileID
}

// TileImageOffsets maps a tile to its position in its tileset's Vector list.
type TileImageOffsets map[TileKey]int

// TextureSet is the output of ResolveTextures.
type TextureSet struct {
	Dependencies []ImageHandle
	Textures     map[TilesetIndex]TilemapTexture
	Offsets      TileImageOffsets
}

// ResolveTextures walks the tilesets in enumeration order and records which
// images each one needs. Collection tiles without an image are skipped.
// Dependencies are unique and keep first-seen order.
func ResolveTextures(m *Map) TextureSet {
	set := TextureSet{
		Textures: make(map[TilesetIndex]TilemapTexture, len(m.Tilesets)),
		Offsets:  make(TileImageOffsets),
	}
	seen := make(map[ImageHandle]bool)
	addDep := func(h ImageHandle) {
		if !seen[h] {
			seen[h] = true
			set.Dependencies = append(set.Dependencies, h)
		}
	}

	for i, ts := range m.Tilesets {
		idx := TilesetIndex(i)
		if ts.Image != nil {
			addDep(ts.Image.Source)
			set.Textures[idx] = SingleTexture(ts.Image.Source)
			continue
		}
		var handles []ImageHandle
		for _, tile := range ts.Tiles {
			if tile.Image == nil {
				continue
			}
			addDep(tile.Image.Source)
			set.Offsets[TileKey{idx, tile.ID}] = len(handles)
			handles = append(handles, tile.Image.Source)
		}
		set.Textures[idx] = VectorTexture(handles)
	}
	return set
}
