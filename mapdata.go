package tiled

import (
	"fmt"
	"time"
)

// Orientation is the map projection. Only OrientationOrthogonal is spawned.
type Orientation uint8

const (
	OrientationOrthogonal Orientation = iota
	OrientationIsometric
	OrientationStaggered
	OrientationHexagonal
)

var orientationNames = [...]string{"orthogonal", "isometric", "staggered", "hexagonal"}

func (o Orientation) String() string {
	if int(o) < len(orientationNames) {
		return orientationNames[o]
	}
	return fmt.Sprintf("Orientation(%d)", o)
}

// ParseOrientation maps the document name of an orientation to its value.
func ParseOrientation(name string) (Orientation, bool) {
	for i, n := range orientationNames {
		if n == name {
			return Orientation(i), true
		}
	}
	return 0, false
}

// Map is a parsed map. It is immutable once handed to an AssetServer; a
// reload produces a new Map.
type Map struct {
	Width, Height         uint32 // in tiles
	TileWidth, TileHeight uint32 // in pixels
	Orientation           Orientation
	Tilesets              []*Tileset
	Layers                []*Layer
	Properties            Properties
}

// Tileset returns the tileset at idx.
func (m *Map) Tileset(idx TilesetIndex) (*Tileset, bool) {
	if idx < 0 || int(idx) >= len(m.Tilesets) {
		return nil, false
	}
	return m.Tilesets[idx], true
}

// PixelSize returns the map size in pixels.
func (m *Map) PixelSize() (w, h float64) {
	return float64(m.Width * m.TileWidth), float64(m.Height * m.TileHeight)
}

// Image is an image reference with its declared size.
type Image struct {
	Source        ImageHandle
	Width, Height int
}

// Tileset is either image-backed (Image set, tiles sliced from one grid) or
// collection-backed (Image nil, each tile carries its own image).
type Tileset struct {
	Name                  string
	TileWidth, TileHeight uint32
	Spacing, Margin       uint32
	Columns               uint32
	TileCount             uint32
	OffsetX, OffsetY      int32
	Image                 *Image
	Tiles                 []*Tile // declaration order
	Properties            Properties
}

// IsCollection reports whether the tileset has no shared image.
func (ts *Tileset) IsCollection() bool {
	return ts.Image == nil
}

// Tile returns the tile definition with the given id. Image-backed tilesets
// only declare tiles that carry extra data, so a missing definition is normal.
func (ts *Tileset) Tile(id TileID) (*Tile, bool) {
	for _, t := range ts.Tiles {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Tile is a tile definition inside a tileset.
type Tile struct {
	ID         TileID
	Class      string
	Image      *Image // collection-backed tilesets only
	Properties Properties
	Animation  []Frame
	Collision  []Shape
}

// Frame is one step of a tile animation.
type Frame struct {
	TileID   TileID
	Duration time.Duration
}

// LayerKind distinguishes the four layer variants.
type LayerKind uint8

const (
	LayerTiles LayerKind = iota
	LayerObjects
	LayerImage
	LayerGroup
)

var layerKindNames = [...]string{"tiles", "objects", "image", "group"}

func (k LayerKind) String() string {
	if int(k) < len(layerKindNames) {
		return layerKindNames[k]
	}
	return fmt.Sprintf("LayerKind(%d)", k)
}

// ParseLayerKind maps the document name of a layer type to its value.
func ParseLayerKind(name string) (LayerKind, bool) {
	for i, n := range layerKindNames {
		if n == name {
			return LayerKind(i), true
		}
	}
	return 0, false
}

// Layer is one sheet of the map. Tiles is set for LayerTiles, Objects for
// LayerObjects; image and group layers carry no spawnable data.
type Layer struct {
	Name       string
	Kind       LayerKind
	Opacity    float64
	Visible    bool
	Properties Properties
	Tiles      *TileLayer
	Objects    []*Object
}

// TileLayer is a finite grid of tile references, row-major from the top-left.
type TileLayer struct {
	Width, Height uint32
	Infinite      bool
	Cells         []*LayerTile // nil = empty cell
}

// Size returns the grid size of the layer.
func (l *TileLayer) Size() GridSize {
	return GridSize{l.Width, l.Height}
}

// At returns the tile at (x, y), or nil for an empty or out-of-range cell.
func (l *TileLayer) At(pos TilePos) *LayerTile {
	size := l.Size()
	if !pos.WithinBounds(size) {
		return nil
	}
	i := pos.ToIndex(size)
	if i >= len(l.Cells) {
		return nil
	}
	return l.Cells[i]
}

// LayerTile references a tile of a tileset from a layer cell or tile object.
type LayerTile struct {
	Tileset             TilesetIndex
	ID                  TileID
	FlipH, FlipV, FlipD bool
}

// Object is a freely placed object of an object layer. Tile objects have Tile
// set and are anchored at their bottom-left corner.
type Object struct {
	ID                  uint32
	Name, Class         string
	X, Y, Width, Height float64
	Visible             bool
	Tile                *LayerTile
	Shape               Shape
	Properties          Properties
}

// ShapeKind is the geometry of an object or collision shape.
type ShapeKind uint8

const (
	ShapeRect ShapeKind = iota
	ShapeEllipse
	ShapePolygon
	ShapePolyline
	ShapePoint
	ShapeText
)

var shapeKindNames = [...]string{"rect", "ellipse", "polygon", "polyline", "point", "text"}

func (k ShapeKind) String() string {
	if int(k) < len(shapeKindNames) {
		return shapeKindNames[k]
	}
	return fmt.Sprintf("ShapeKind(%d)", k)
}

// ParseShapeKind maps the document name of a shape to its value.
func ParseShapeKind(name string) (ShapeKind, bool) {
	for i, n := range shapeKindNames {
		if n == name {
			return ShapeKind(i), true
		}
	}
	return 0, false
}

// Shape is a collision or object shape. X and Y are relative to the owning
// tile's top-left corner; Points are relative to (X, Y).
type Shape struct {
	Kind          ShapeKind
	X, Y          float64
	Width, Height float64
	Points        []Vec2
}
