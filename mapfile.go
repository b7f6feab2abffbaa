package tiled

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// GID flag bits (same convention as Tiled TMX format).
const (
	gidFlipH    uint32 = 1 << 31 // horizontal flip
	gidFlipV    uint32 = 1 << 30 // vertical flip
	gidFlipD    uint32 = 1 << 29 // diagonal flip (90° rotation)
	gidFlagMask uint32 = gidFlipH | gidFlipV | gidFlipD
)

type docMap struct {
	Width       uint32       `yaml:"width"`
	Height      uint32       `yaml:"height"`
	TileWidth   uint32       `yaml:"tilewidth"`
	TileHeight  uint32       `yaml:"tileheight"`
	Orientation string       `yaml:"orientation"`
	Properties  []docProp    `yaml:"properties"`
	Tilesets    []docTileset `yaml:"tilesets"`
	Layers      []docLayer   `yaml:"layers"`
}

type docProp struct {
	Name  string    `yaml:"name"`
	Type  string    `yaml:"type"`
	Value yaml.Node `yaml:"value"`
}

type docImage struct {
	Source string `yaml:"source"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type docTileset struct {
	FirstGID   uint32    `yaml:"firstgid"`
	Name       string    `yaml:"name"`
	TileWidth  uint32    `yaml:"tilewidth"`
	TileHeight uint32    `yaml:"tileheight"`
	Spacing    uint32    `yaml:"spacing"`
	Margin     uint32    `yaml:"margin"`
	Columns    uint32    `yaml:"columns"`
	TileCount  uint32    `yaml:"tilecount"`
	Offset     struct {
		X int32 `yaml:"x"`
		Y int32 `yaml:"y"`
	} `yaml:"offset"`
	Image      *docImage `yaml:"image"`
	Tiles      []docTile `yaml:"tiles"`
	Properties []docProp `yaml:"properties"`
}

type docTile struct {
	ID         uint32     `yaml:"id"`
	Class      string     `yaml:"class"`
	Image      *docImage  `yaml:"image"`
	Properties []docProp  `yaml:"properties"`
	Animation  []docFrame `yaml:"animation"`
	Collision  []docShape `yaml:"collision"`
}

type docFrame struct {
	Tile     uint32 `yaml:"tile"`
	Duration int64  `yaml:"duration"` // milliseconds
}

type docShape struct {
	Shape  string       `yaml:"shape"`
	X      float64      `yaml:"x"`
	Y      float64      `yaml:"y"`
	Width  float64      `yaml:"width"`
	Height float64      `yaml:"height"`
	Points [][2]float64 `yaml:"points"`
}

type docLayer struct {
	Name       string      `yaml:"name"`
	Type       string      `yaml:"type"`
	Opacity    *float64    `yaml:"opacity"`
	Visible    *bool       `yaml:"visible"`
	Width      uint32      `yaml:"width"`
	Height     uint32      `yaml:"height"`
	Infinite   bool        `yaml:"infinite"`
	Data       []uint32    `yaml:"data"`
	Objects    []docObject `yaml:"objects"`
	Properties []docProp   `yaml:"properties"`
}

type docObject struct {
	ID         uint32       `yaml:"id"`
	Name       string       `yaml:"name"`
	Class      string       `yaml:"class"`
	X          float64      `yaml:"x"`
	Y          float64      `yaml:"y"`
	Width      float64      `yaml:"width"`
	Height     float64      `yaml:"height"`
	Visible    *bool        `yaml:"visible"`
	GID        uint32       `yaml:"gid"`
	Shape      string       `yaml:"shape"`
	Points     [][2]float64 `yaml:"points"`
	Properties []docProp    `yaml:"properties"`
}

// DecodeMap parses a YAML map document. Tile references use global tile ids
// (GIDs) with the flip flags in the top three bits; 0 marks an empty cell.
// Image sources are resolved relative to the directory of base, the path the
// document was read from.
func DecodeMap(data []byte, base string) (*Map, error) {
	var doc docMap
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("tiled: decode map %s: %w", base, err)
	}
	d := decoder{dir: path.Dir(base)}
	m, err := d.decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("tiled: decode map %s: %w", base, err)
	}
	return m, nil
}

type decoder struct {
	dir  string
	gids []gidRange // sorted by first
}

type gidRange struct {
	first   uint32
	tileset TilesetIndex
	count   uint32 // 0 = unbounded
}

func (d *decoder) decode(doc *docMap) (*Map, error) {
	m := &Map{
		Width:      doc.Width,
		Height:     doc.Height,
		TileWidth:  doc.TileWidth,
		TileHeight: doc.TileHeight,
	}
	if doc.Orientation != "" {
		o, ok := ParseOrientation(doc.Orientation)
		if !ok {
			return nil, fmt.Errorf("unknown orientation %q", doc.Orientation)
		}
		m.Orientation = o
	}
	var err error
	if m.Properties, err = d.properties(doc.Properties); err != nil {
		return nil, err
	}

	for i := range doc.Tilesets {
		ts, err := d.tileset(&doc.Tilesets[i])
		if err != nil {
			return nil, fmt.Errorf("tileset %d (%s): %w", i, doc.Tilesets[i].Name, err)
		}
		m.Tilesets = append(m.Tilesets, ts)
		r := gidRange{first: doc.Tilesets[i].FirstGID, tileset: TilesetIndex(i)}
		if !ts.IsCollection() {
			r.count = ts.TileCount
		}
		d.gids = append(d.gids, r)
	}
	sort.SliceStable(d.gids, func(i, j int) bool { return d.gids[i].first < d.gids[j].first })

	for i := range doc.Layers {
		l, err := d.layer(&doc.Layers[i])
		if err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i, doc.Layers[i].Name, err)
		}
		m.Layers = append(m.Layers, l)
	}
	return m, nil
}

func (d *decoder) image(img *docImage) *Image {
	if img == nil || img.Source == "" {
		return nil
	}
	return &Image{
		Source: ImageHandle(path.Join(d.dir, img.Source)),
		Width:  img.Width,
		Height: img.Height,
	}
}

func (d *decoder) tileset(doc *docTileset) (*Tileset, error) {
	if doc.FirstGID == 0 {
		return nil, fmt.Errorf("firstgid must be at least 1")
	}
	ts := &Tileset{
		Name:       doc.Name,
		TileWidth:  doc.TileWidth,
		TileHeight: doc.TileHeight,
		Spacing:    doc.Spacing,
		Margin:     doc.Margin,
		Columns:    doc.Columns,
		TileCount:  doc.TileCount,
		OffsetX:    doc.Offset.X,
		OffsetY:    doc.Offset.Y,
		Image:      d.image(doc.Image),
	}
	var err error
	if ts.Properties, err = d.properties(doc.Properties); err != nil {
		return nil, err
	}
	for _, dt := range doc.Tiles {
		tile := &Tile{
			ID:    TileID(dt.ID),
			Class: dt.Class,
			Image: d.image(dt.Image),
		}
		if tile.Properties, err = d.properties(dt.Properties); err != nil {
			return nil, fmt.Errorf("tile %d: %w", dt.ID, err)
		}
		for _, f := range dt.Animation {
			tile.Animation = append(tile.Animation, Frame{
				TileID:   TileID(f.Tile),
				Duration: time.Duration(f.Duration) * time.Millisecond,
			})
		}
		for _, s := range dt.Collision {
			shape, err := decodeShape(s.Shape, s.X, s.Y, s.Width, s.Height, s.Points)
			if err != nil {
				return nil, fmt.Errorf("tile %d: %w", dt.ID, err)
			}
			tile.Collision = append(tile.Collision, shape)
		}
		ts.Tiles = append(ts.Tiles, tile)
	}
	return ts, nil
}

func (d *decoder) layer(doc *docLayer) (*Layer, error) {
	kind := LayerTiles
	if doc.Type != "" {
		k, ok := ParseLayerKind(doc.Type)
		if !ok {
			return nil, fmt.Errorf("unknown layer type %q", doc.Type)
		}
		kind = k
	}
	l := &Layer{
		Name:    doc.Name,
		Kind:    kind,
		Opacity: 1,
		Visible: true,
	}
	if doc.Opacity != nil {
		l.Opacity = *doc.Opacity
	}
	if doc.Visible != nil {
		l.Visible = *doc.Visible
	}
	var err error
	if l.Properties, err = d.properties(doc.Properties); err != nil {
		return nil, err
	}

	switch kind {
	case LayerTiles:
		tl := &TileLayer{Width: doc.Width, Height: doc.Height, Infinite: doc.Infinite}
		if !doc.Infinite {
			want := tl.Size().Len()
			if len(doc.Data) != want {
				return nil, fmt.Errorf("data has %d cells, want %d", len(doc.Data), want)
			}
			tl.Cells = make([]*LayerTile, want)
			for i, gid := range doc.Data {
				if tl.Cells[i], err = d.tileRef(gid); err != nil {
					return nil, fmt.Errorf("cell %d: %w", i, err)
				}
			}
		}
		l.Tiles = tl
	case LayerObjects:
		for _, o := range doc.Objects {
			obj, err := d.object(&o)
			if err != nil {
				return nil, fmt.Errorf("object %d: %w", o.ID, err)
			}
			l.Objects = append(l.Objects, obj)
		}
	}
	return l, nil
}

func (d *decoder) object(doc *docObject) (*Object, error) {
	obj := &Object{
		ID:      doc.ID,
		Name:    doc.Name,
		Class:   doc.Class,
		X:       doc.X,
		Y:       doc.Y,
		Width:   doc.Width,
		Height:  doc.Height,
		Visible: true,
	}
	if doc.Visible != nil {
		obj.Visible = *doc.Visible
	}
	var err error
	if obj.Tile, err = d.tileRef(doc.GID); err != nil {
		return nil, err
	}
	if obj.Shape, err = decodeShape(doc.Shape, 0, 0, doc.Width, doc.Height, doc.Points); err != nil {
		return nil, err
	}
	if obj.Properties, err = d.properties(doc.Properties); err != nil {
		return nil, err
	}
	return obj, nil
}

// tileRef resolves a GID. It returns nil for the empty GID 0.
func (d *decoder) tileRef(gid uint32) (*LayerTile, error) {
	flags := gid & gidFlagMask
	id := gid &^ gidFlagMask
	if id == 0 {
		return nil, nil
	}
	i := sort.Search(len(d.gids), func(i int) bool { return d.gids[i].first > id }) - 1
	if i < 0 {
		return nil, fmt.Errorf("gid %d is below every tileset", id)
	}
	r := d.gids[i]
	local := id - r.first
	if r.count > 0 && local >= r.count {
		return nil, fmt.Errorf("gid %d is outside tileset %d", id, r.tileset)
	}
	return &LayerTile{
		Tileset: r.tileset,
		ID:      TileID(local),
		FlipH:   flags&gidFlipH != 0,
		FlipV:   flags&gidFlipV != 0,
		FlipD:   flags&gidFlipD != 0,
	}, nil
}

func decodeShape(kind string, x, y, w, h float64, points [][2]float64) (Shape, error) {
	s := Shape{Kind: ShapeRect, X: x, Y: y, Width: w, Height: h}
	if kind != "" {
		k, ok := ParseShapeKind(kind)
		if !ok {
			return Shape{}, fmt.Errorf("unknown shape %q", kind)
		}
		s.Kind = k
	}
	for _, p := range points {
		s.Points = append(s.Points, Vec2{p[0], p[1]})
	}
	return s, nil
}

func (d *decoder) properties(props []docProp) (Properties, error) {
	if len(props) == 0 {
		return nil, nil
	}
	out := make(Properties, len(props))
	for _, p := range props {
		v, err := d.property(p)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", p.Name, err)
		}
		out[p.Name] = v
	}
	return out, nil
}

func (d *decoder) property(p docProp) (PropertyValue, error) {
	kind := PropertyString
	if p.Type != "" {
		k, ok := ParsePropertyKind(p.Type)
		if !ok {
			return PropertyValue{}, fmt.Errorf("unknown type %q", p.Type)
		}
		kind = k
	}
	if p.Value.Kind == 0 {
		return PropertyValue{Kind: kind}, nil
	}
	var err error
	switch kind {
	case PropertyBool:
		var b bool
		err = p.Value.Decode(&b)
		return BoolProperty(b), err
	case PropertyFloat:
		var f float64
		err = p.Value.Decode(&f)
		return FloatProperty(f), err
	case PropertyInt:
		var i int64
		err = p.Value.Decode(&i)
		return IntProperty(i), err
	case PropertyObject:
		var id uint32
		err = p.Value.Decode(&id)
		return ObjectProperty(id), err
	case PropertyColor:
		c, err := parseColor(p.Value.Value)
		return ColorProperty(c), err
	case PropertyFile:
		if p.Value.Value == "" {
			return FileProperty(""), nil
		}
		return FileProperty(path.Join(d.dir, p.Value.Value)), nil
	}
	return StringProperty(p.Value.Value), nil
}

// parseColor reads "#RRGGBB" or "#AARRGGBB".
func parseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("bad color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("bad color %q: %w", s, err)
	}
	a := uint64(0xff)
	if len(hex) == 8 {
		a = v >> 24
	}
	return Color{
		R: float64(v>>16&0xff) / 255,
		G: float64(v>>8&0xff) / 255,
		B: float64(v&0xff) / 255,
		A: float64(a&0xff) / 255,
	}, nil
}
