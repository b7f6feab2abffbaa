package ecs

import (
	"reflect"
	"slices"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"

	"github.com/phanxgames/tiled"
)

// Node links an entity into the map hierarchy.
type Node struct {
	ID       tiled.Entity
	Name     string
	Parent   tiled.Entity
	Children []tiled.Entity
	Alpha    float64
}

// Bag holds the components inserted through tiled.SceneGraph.Insert, at
// most one value per concrete type.
type Bag struct {
	Values []any
}

var (
	NodeComponent      = donburi.NewComponentType[Node]()
	TransformComponent = donburi.NewComponentType[tiled.Transform]()
	SpriteComponent    = donburi.NewComponentType[tiled.Sprite]()
	BagComponent       = donburi.NewComponentType[Bag]()
)

// SpawnedEvent is published for every entity the loader creates.
type SpawnedEvent struct {
	Entity tiled.Entity
	Name   string
}

// DespawnedEvent is published for every destroyed entity, children first.
type DespawnedEvent struct {
	Entity tiled.Entity
}

var (
	SpawnedEventType   = events.NewEventType[SpawnedEvent]()
	DespawnedEventType = events.NewEventType[DespawnedEvent]()
)

// World is a tiled.SceneGraph that stores map entities in a donburi world.
// Map entities get their own ids; Entry translates them to donburi entries.
type World struct {
	world   donburi.World
	next    tiled.Entity
	entries map[tiled.Entity]donburi.Entity
	sprites *donburi.Query
}

var _ tiled.SceneGraph = (*World)(nil)

// NewWorld wraps world.
func NewWorld(world donburi.World) *World {
	return &World{
		world:   world,
		entries: make(map[tiled.Entity]donburi.Entity),
		sprites: donburi.NewQuery(filter.Contains(NodeComponent, SpriteComponent)),
	}
}

// Donburi returns the wrapped world.
func (w *World) Donburi() donburi.World {
	return w.world
}

// Entry returns the donburi entry of e.
func (w *World) Entry(e tiled.Entity) (*donburi.Entry, bool) {
	de, ok := w.entries[e]
	if !ok || !w.world.Valid(de) {
		return nil, false
	}
	return w.world.Entry(de), true
}

// Len returns the number of live map entities.
func (w *World) Len() int {
	return len(w.entries)
}

func (w *World) node(e tiled.Entity) *Node {
	entry, ok := w.Entry(e)
	if !ok {
		return nil
	}
	return NodeComponent.Get(entry)
}

func (w *World) Spawn(name string, t tiled.Transform) tiled.Entity {
	w.next++
	id := w.next
	de := w.world.Create(NodeComponent, TransformComponent, BagComponent)
	entry := w.world.Entry(de)
	NodeComponent.SetValue(entry, Node{ID: id, Name: name, Alpha: 1})
	TransformComponent.SetValue(entry, t)
	w.entries[id] = de
	SpawnedEventType.Publish(w.world, SpawnedEvent{Entity: id, Name: name})
	return id
}

func (w *World) AddChild(parent, child tiled.Entity) {
	p, c := w.node(parent), w.node(child)
	if p == nil || c == nil || parent == child {
		return
	}
	if c.Parent == parent {
		return
	}
	for anc := p; anc != nil; anc = w.node(anc.Parent) {
		if anc.ID == child {
			return
		}
	}
	w.detach(c)
	c.Parent = parent
	p.Children = append(p.Children, child)
}

func (w *World) detach(c *Node) {
	if old := w.node(c.Parent); old != nil {
		if i := slices.Index(old.Children, c.ID); i >= 0 {
			old.Children = slices.Delete(old.Children, i, i+1)
		}
	}
	c.Parent = tiled.NoEntity
}

func (w *World) SetSprite(e tiled.Entity, s tiled.Sprite) {
	entry, ok := w.Entry(e)
	if !ok {
		return
	}
	if !entry.HasComponent(SpriteComponent) {
		entry.AddComponent(SpriteComponent)
	}
	SpriteComponent.SetValue(entry, s)
}

func (w *World) SetSpriteSlot(e tiled.Entity, slot int) {
	entry, ok := w.Entry(e)
	if !ok || !entry.HasComponent(SpriteComponent) {
		return
	}
	SpriteComponent.Get(entry).Slot = slot
}

func (w *World) SetAlpha(e tiled.Entity, alpha float64) {
	if n := w.node(e); n != nil {
		n.Alpha = alpha
	}
}

func (w *World) Insert(e tiled.Entity, component any) {
	entry, ok := w.Entry(e)
	if !ok {
		return
	}
	bag := BagComponent.Get(entry)
	t := reflect.TypeOf(component)
	for i, v := range bag.Values {
		if reflect.TypeOf(v) == t {
			bag.Values[i] = component
			return
		}
	}
	bag.Values = append(bag.Values, component)
}

// Despawn removes e. Without recursive, its children become roots.
func (w *World) Despawn(e tiled.Entity, recursive bool) {
	n := w.node(e)
	if n == nil {
		return
	}
	w.detach(n)
	children := slices.Clone(n.Children)
	for _, c := range children {
		if recursive {
			w.Despawn(c, true)
		} else if cn := w.node(c); cn != nil {
			cn.Parent = tiled.NoEntity
		}
	}
	w.world.Remove(w.entries[e])
	delete(w.entries, e)
	DespawnedEventType.Publish(w.world, DespawnedEvent{Entity: e})
}

func (w *World) Alive(e tiled.Entity) bool {
	_, ok := w.Entry(e)
	return ok
}

// Get returns the component of type T inserted on e.
func Get[T any](w *World, e tiled.Entity) (T, bool) {
	var zero T
	entry, ok := w.Entry(e)
	if !ok {
		return zero, false
	}
	for _, v := range BagComponent.Get(entry).Values {
		if c, ok := v.(T); ok {
			return c, true
		}
	}
	return zero, false
}

// Parent returns the parent of e, or NoEntity for a root.
func (w *World) Parent(e tiled.Entity) tiled.Entity {
	if n := w.node(e); n != nil {
		return n.Parent
	}
	return tiled.NoEntity
}

// Children returns the children of e in insertion order.
func (w *World) Children(e tiled.Entity) []tiled.Entity {
	if n := w.node(e); n != nil {
		return slices.Clone(n.Children)
	}
	return nil
}

// WorldPosition sums the translations of e and its ancestors and multiplies
// their alphas.
func (w *World) WorldPosition(e tiled.Entity) (x, y, alpha float64) {
	alpha = 1
	for cur := e; cur != tiled.NoEntity; {
		entry, ok := w.Entry(cur)
		if !ok {
			break
		}
		t := TransformComponent.Get(entry)
		n := NodeComponent.Get(entry)
		x += t.X
		y += t.Y
		alpha *= n.Alpha
		cur = n.Parent
	}
	return x, y, alpha
}

// EachSprite calls fn for every entity carrying a sprite.
func (w *World) EachSprite(fn func(e tiled.Entity, s *tiled.Sprite)) {
	w.sprites.Each(w.world, func(entry *donburi.Entry) {
		fn(NodeComponent.Get(entry).ID, SpriteComponent.Get(entry))
	})
}

// ProcessEvents delivers the queued spawn and despawn events.
func (w *World) ProcessEvents() {
	SpawnedEventType.ProcessEvents(w.world)
	DespawnedEventType.ProcessEvents(w.world)
}
