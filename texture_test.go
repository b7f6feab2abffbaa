package tiled

import "testing"

func collectionTileset(ids ...TileID) *Tileset {
	ts := &Tileset{Name: "props", TileWidth: 16, TileHeight: 16}
	for _, id := range ids {
		ts.Tiles = append(ts.Tiles, &Tile{
			ID:    id,
			Image: &Image{Source: ImageHandle("props/" + string(rune('a'+id)) + ".png"), Width: 16, Height: 16},
		})
	}
	return ts
}

func TestResolveTexturesSingle(t *testing.T) {
	m := &Map{Tilesets: []*Tileset{{
		Name: "terrain", TileWidth: 16, TileHeight: 16,
		Image: &Image{Source: "terrain.png", Width: 64, Height: 32},
	}}}
	set := ResolveTextures(m)
	h, ok := set.Textures[0].Single()
	if !ok || h != "terrain.png" {
		t.Fatalf("Textures[0].Single() = (%q, %v), want (terrain.png, true)", h, ok)
	}
	if len(set.Dependencies) != 1 || set.Dependencies[0] != "terrain.png" {
		t.Errorf("Dependencies = %v", set.Dependencies)
	}
	if len(set.Offsets) != 0 {
		t.Errorf("Offsets = %v, want empty", set.Offsets)
	}
}

func TestResolveTexturesCollectionOrder(t *testing.T) {
	ts := collectionTileset(9, 3, 7)
	// A tile without an image contributes nothing.
	ts.Tiles = append(ts.Tiles, &Tile{ID: 4})
	m := &Map{Tilesets: []*Tileset{
		{Name: "terrain", Image: &Image{Source: "terrain.png"}},
		ts,
	}}

	set := ResolveTextures(m)
	vec, ok := set.Textures[1].Vector()
	if !ok {
		t.Fatal("tileset 1 should be a Vector texture")
	}
	if len(vec) != 3 {
		t.Fatalf("len(Vector) = %d, want 3", len(vec))
	}
	wantPos := map[TileID]int{9: 0, 3: 1, 7: 2}
	for id, pos := range wantPos {
		got, ok := set.Offsets[TileKey{1, id}]
		if !ok || got != pos {
			t.Errorf("Offsets[1,%d] = (%d, %v), want (%d, true)", id, got, ok, pos)
		}
		if vec[pos] != ts.Tiles[pos].Image.Source {
			t.Errorf("Vector[%d] = %q, want %q", pos, vec[pos], ts.Tiles[pos].Image.Source)
		}
	}
	if _, ok := set.Offsets[TileKey{1, 4}]; ok {
		t.Error("tile without image should have no offset")
	}
	if len(set.Dependencies) != 4 {
		t.Errorf("Dependencies = %v, want 4 entries", set.Dependencies)
	}
}

func TestResolveTexturesDeduplicatesDependencies(t *testing.T) {
	m := &Map{Tilesets: []*Tileset{
		{Image: &Image{Source: "shared.png"}},
		{Image: &Image{Source: "shared.png"}},
		{Tiles: []*Tile{{ID: 0, Image: &Image{Source: "shared.png"}}}},
	}}
	set := ResolveTextures(m)
	if len(set.Dependencies) != 1 {
		t.Errorf("Dependencies = %v, want one entry", set.Dependencies)
	}
	if len(set.Textures) != 3 {
		t.Errorf("len(Textures) = %d, want 3", len(set.Textures))
	}
}

func TestTilemapTextureAccessors(t *testing.T) {
	s := SingleTexture("a.png")
	if _, ok := s.Vector(); ok {
		t.Error("Single texture reported a vector")
	}
	v := VectorTexture([]ImageHandle{"a.png", "b.png"})
	if _, ok := v.Single(); ok {
		t.Error("Vector texture reported a single image")
	}
	if v.Kind() != TextureVector || s.Kind() != TextureSingle {
		t.Error("Kind mismatch")
	}
}
