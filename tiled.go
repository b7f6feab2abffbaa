package tiled

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// WithAlpha returns c with its alpha component replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// Vec2 is a 2D vector used for positions, offsets and sizes.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle with its origin at the top-left.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// TilesetIndex is the position of a tileset in Map.Tilesets. It is assigned
// once, by enumeration order, and is the join key for textures, atlases and
// offset tables.
type TilesetIndex int

// TileID is a tileset-local tile identifier. IDs are not guaranteed to be
// contiguous or increasing.
type TileID uint32

// LayerIndex is the position of a layer in Map.Layers.
type LayerIndex int

// Entity references a scene-graph entity. Storages reference entities, they
// never own them.
type Entity uint32

// NoEntity is the zero Entity and marks an empty slot.
const NoEntity Entity = 0

// Valid reports whether e refers to an entity at all. It does not report
// whether that entity is still alive; ask the SceneGraph for that.
func (e Entity) Valid() bool {
	return e != NoEntity
}

// Transform is the local placement requested for a spawned entity. Z orders
// siblings when drawing (layers use their layer index).
type Transform struct {
	X, Y, Z float64
}
