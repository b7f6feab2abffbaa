package tiled

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrNoAtlas reports tiles skipped because their tileset has no atlas.
var ErrNoAtlas = errors.New("tiled: no atlas for tileset")

// spawnCtx carries the per-spawn state shared by the layer walkers.
type spawnCtx struct {
	inst  *MapInstance
	asset *MapAsset
	log   logrus.FieldLogger

	mapH    float64
	noAtlas map[TilesetIndex]bool
}

func (c *spawnCtx) diag(err error) {
	c.inst.diagnostics = append(c.inst.diagnostics, err)
}

func (l *Loader) spawn(inst *MapInstance, asset *MapAsset) {
	m := asset.Map
	c := &spawnCtx{
		inst:    inst,
		asset:   asset,
		log:     l.instanceLog(inst),
		noAtlas: make(map[TilesetIndex]bool),
	}
	_, c.mapH = m.PixelSize()
	inst.diagnostics = nil

	if m.Orientation != OrientationOrthogonal {
		err := &UnsupportedError{Feature: "orientation", Map: inst.Handle, Detail: m.Orientation.String()}
		c.log.WithError(err).Warn("map not spawned")
		c.diag(err)
		return
	}

	for i, layer := range m.Layers {
		li := LayerIndex(i)
		if err := unsupportedLayer(layer); err != nil {
			err.Map = inst.Handle
			c.log.WithError(err).WithField("layer", layer.Name).Warn("layer skipped")
			c.diag(err)
			continue
		}

		root := l.spawnLayerRoot(c, li, layer)
		switch layer.Kind {
		case LayerTiles:
			l.spawnTileLayer(c, li, layer, root)
		case LayerObjects:
			for _, obj := range layer.Objects {
				l.spawnObject(c, li, layer, root, obj)
			}
		}
	}
}

func unsupportedLayer(layer *Layer) *UnsupportedError {
	switch layer.Kind {
	case LayerTiles:
		if layer.Tiles == nil || layer.Tiles.Infinite {
			return &UnsupportedError{Feature: "infinite layer", Layer: layer.Name}
		}
	case LayerImage:
		return &UnsupportedError{Feature: "image layer", Layer: layer.Name}
	case LayerGroup:
		return &UnsupportedError{Feature: "group layer", Layer: layer.Name}
	}
	return nil
}

func (l *Loader) spawnLayerRoot(c *spawnCtx, li LayerIndex, layer *Layer) Entity {
	root := l.graph.Spawn(layer.Name, Transform{Z: float64(li)})
	l.graph.AddChild(c.inst.Entity, root)
	switch {
	case !layer.Visible:
		l.graph.SetAlpha(root, 0)
	case l.cfg.LayerFadeIn > 0:
		l.graph.SetAlpha(root, 0)
		c.inst.fades = append(c.inst.fades, NewFade(root, 0, 1, l.cfg.LayerFadeIn, nil))
	}
	if prev, replaced := c.inst.Layers.Insert(layer.Name, root); replaced {
		c.log.WithFields(logrus.Fields{
			"layer":    layer.Name,
			"previous": prev,
		}).Warn("duplicate layer name, lookup returns the last one")
	}
	return root
}

func (l *Loader) spawnTileLayer(c *spawnCtx, li LayerIndex, layer *Layer, root Entity) {
	size := layer.Tiles.Size()
	if err := c.inst.Tiles.InitLayer(li, size); err != nil {
		c.log.WithError(err).WithField("layer", layer.Name).Warn("tile layer skipped")
		c.diag(fmt.Errorf("tiled: layer %q: %w", layer.Name, err))
		return
	}
	m := c.asset.Map
	tw, th := float64(m.TileWidth), float64(m.TileHeight)
	for i := range size.Len() {
		pos := TilePosFromIndex(i, size)
		cell := layer.Tiles.At(pos)
		if cell == nil {
			continue
		}
		row := pos.Y
		if l.cfg.YUp {
			row = size.H - 1 - pos.Y
		}
		center := Vec2{
			X: float64(pos.X)*tw + tw/2,
			Y: float64(row)*th + th/2,
		}
		e, ok := l.spawnTile(c, layer, root, cell, center, tw, th)
		if !ok {
			continue
		}
		l.graph.Insert(e, TileRef{Layer: li, Pos: pos, Tileset: cell.Tileset, ID: cell.ID})
		if err := c.inst.Tiles.Set(li, pos, e); err != nil {
			c.log.WithError(err).Warn("tile not stored")
		}
	}
}

// spawnTile creates the sprite entity for a tile reference centered at
// center (layer space) and attaches its animation, colliders and class data.
func (l *Loader) spawnTile(c *spawnCtx, layer *Layer, parent Entity, ref *LayerTile, center Vec2, w, h float64) (Entity, bool) {
	log := c.log.WithFields(logrus.Fields{"layer": layer.Name, "tileset": ref.Tileset, "tile": ref.ID})
	atlas, ok := c.asset.Atlases[ref.Tileset]
	if !ok {
		if !c.noAtlas[ref.Tileset] {
			c.noAtlas[ref.Tileset] = true
			log.Warnf("no atlas for tileset index %d", ref.Tileset)
			c.diag(&TilesetError{Tileset: ref.Tileset, Name: tilesetName(c.asset.Map, ref.Tileset), Err: ErrNoAtlas})
		}
		return NoEntity, false
	}
	slot, ok := c.asset.AtlasSlot(ref.Tileset, ref.ID)
	if !ok {
		log.Warn("tile has no atlas slot")
		return NoEntity, false
	}

	ts := c.asset.Map.Tilesets[ref.Tileset]
	center.X += float64(ts.OffsetX)
	if l.cfg.YUp {
		center.Y -= float64(ts.OffsetY)
	} else {
		center.Y += float64(ts.OffsetY)
	}

	e := l.graph.Spawn(layer.Name, Transform{X: center.X, Y: center.Y})
	l.graph.AddChild(parent, e)
	l.graph.SetSprite(e, Sprite{
		Atlas: atlas,
		Slot:  slot,
		FlipH: ref.FlipH,
		FlipV: ref.FlipV,
		FlipD: ref.FlipD,
		Color: ColorWhite.WithAlpha(layer.Opacity),
	})

	def, ok := ts.Tile(ref.ID)
	if !ok {
		return e, true
	}
	if anim := NewAnimation(def.Animation, c.asset.AtlasOffsets[ref.Tileset]); anim != nil {
		l.graph.SetSpriteSlot(e, anim.Slot())
		c.inst.animations.Add(e, anim)
	}
	world := Vec2{c.inst.Transform.X + center.X, c.inst.Transform.Y + center.Y}
	l.attachColliders(c, e, world, def.Collision, w, h, layer.Name, ref)
	l.applyClass(c, e, def.Class, def.Properties, layer.Name)
	return e, true
}

func (l *Loader) spawnObject(c *spawnCtx, li LayerIndex, layer *Layer, root Entity, obj *Object) {
	center := Vec2{X: obj.X + obj.Width/2, Y: obj.Y + obj.Height/2}
	if obj.Tile != nil {
		center.Y = obj.Y - obj.Height/2
	}
	if l.cfg.YUp {
		center.Y = c.mapH - center.Y
	}

	var e Entity
	if obj.Tile != nil {
		var ok bool
		e, ok = l.spawnTile(c, layer, root, obj.Tile, center, obj.Width, obj.Height)
		if !ok {
			return
		}
	} else {
		e = l.graph.Spawn(objectName(obj), Transform{X: center.X, Y: center.Y})
		l.graph.AddChild(root, e)
		if obj.Shape.Kind != ShapePoint && obj.Shape.Kind != ShapeText {
			shape := obj.Shape
			shape.X, shape.Y = 0, 0
			world := Vec2{c.inst.Transform.X + center.X, c.inst.Transform.Y + center.Y}
			l.attachColliders(c, e, world, []Shape{shape}, obj.Width, obj.Height, layer.Name, nil)
		}
	}
	if !obj.Visible {
		l.graph.SetAlpha(e, 0)
	}
	l.graph.Insert(e, ObjectRef{Layer: li, Object: obj})
	l.applyClass(c, e, obj.Class, obj.Properties, layer.Name)
}

func (l *Loader) attachColliders(c *spawnCtx, e Entity, world Vec2, shapes []Shape, w, h float64, layer string, ref *LayerTile) {
	if l.physics == nil || len(shapes) == 0 {
		return
	}
	colliders, err := CollidersFor(shapes, w, h, l.cfg.YUp)
	if err != nil {
		for _, skipped := range unwrapJoined(err) {
			var u *UnsupportedError
			if errors.As(skipped, &u) {
				u.Map = c.inst.Handle
				u.Layer = layer
				if ref != nil {
					u.Tileset, u.Tile = ref.Tileset, ref.ID
				}
			}
			c.log.WithError(skipped).WithField("layer", layer).Warn("collider skipped")
			c.diag(skipped)
		}
	}
	if len(colliders) == 0 {
		return
	}
	if err := l.physics.AttachFixedBody(e, world, colliders); err != nil {
		c.log.WithError(err).WithField("layer", layer).Warn("attach body failed")
		c.diag(err)
		return
	}
	c.inst.bodies = append(c.inst.bodies, e)
}

func (l *Loader) applyClass(c *spawnCtx, e Entity, class string, props Properties, layer string) {
	for _, err := range l.classes.Apply(l.graph, e, class, props) {
		c.log.WithError(err).WithFields(logrus.Fields{"layer": layer, "class": class}).Warn("class handler failed")
		c.diag(fmt.Errorf("tiled: class %q: %w", class, err))
	}
}

func tilesetName(m *Map, idx TilesetIndex) string {
	if ts, ok := m.Tileset(idx); ok {
		return ts.Name
	}
	return ""
}

func objectName(obj *Object) string {
	if obj.Name != "" {
		return obj.Name
	}
	return fmt.Sprintf("object %d", obj.ID)
}
