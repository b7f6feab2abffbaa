package tiled

import (
	"iter"
	"slices"
)

// TileStorageError is returned by TileStorage operations. All values are
// recoverable; callers log and skip.
type TileStorageError uint8

const (
	ErrLayerAlreadyInitialized TileStorageError = iota + 1 // InitLayer called twice for one layer
	ErrNoLayerWithIndex                                    // layer was never initialized
	ErrTileCellEmpty                                       // slot holds no entity
	ErrTileOutOfLayer                                      // position outside the layer grid
)

func (e TileStorageError) Error() string {
	switch e {
	case ErrLayerAlreadyInitialized:
		return "tiled: layer already initialized"
	case ErrNoLayerWithIndex:
		return "tiled: no layer with index"
	case ErrTileCellEmpty:
		return "tiled: tile cell empty"
	case ErrTileOutOfLayer:
		return "tiled: tile out of layer"
	default:
		return "tiled: tile storage error"
	}
}

type layerSlots struct {
	size  GridSize
	slots []Entity
}

// TileStorage maps a layer index to a fixed-size grid of entity references.
// A layer's size is fixed by InitLayer and cannot be changed afterwards.
type TileStorage struct {
	layers map[LayerIndex]*layerSlots
}

// NewTileStorage returns an empty storage.
func NewTileStorage() *TileStorage {
	return &TileStorage{layers: make(map[LayerIndex]*layerSlots)}
}

// InitLayer allocates size.W*size.H empty slots for layer. It fails with
// ErrLayerAlreadyInitialized, leaving the existing allocation untouched, if
// the layer already exists.
func (s *TileStorage) InitLayer(layer LayerIndex, size GridSize) error {
	if _, ok := s.layers[layer]; ok {
		return ErrLayerAlreadyInitialized
	}
	s.layers[layer] = &layerSlots{size: size, slots: make([]Entity, size.Len())}
	return nil
}

func (s *TileStorage) slot(layer LayerIndex, pos TilePos) (*Entity, error) {
	l, ok := s.layers[layer]
	if !ok {
		return nil, ErrNoLayerWithIndex
	}
	if !pos.WithinBounds(l.size) {
		return nil, ErrTileOutOfLayer
	}
	return &l.slots[pos.ToIndex(l.size)], nil
}

// Get returns the entity stored at pos.
func (s *TileStorage) Get(layer LayerIndex, pos TilePos) (Entity, error) {
	p, err := s.slot(layer, pos)
	if err != nil {
		return NoEntity, err
	}
	if *p == NoEntity {
		return NoEntity, ErrTileCellEmpty
	}
	return *p, nil
}

// Set stores e at pos, overwriting any previous occupant.
func (s *TileStorage) Set(layer LayerIndex, pos TilePos, e Entity) error {
	p, err := s.slot(layer, pos)
	if err != nil {
		return err
	}
	*p = e
	return nil
}

// Remove empties the slot at pos and returns its previous occupant, if any.
// Removing from an empty slot is not an error.
func (s *TileStorage) Remove(layer LayerIndex, pos TilePos) (Entity, bool, error) {
	p, err := s.slot(layer, pos)
	if err != nil {
		return NoEntity, false, err
	}
	prev := *p
	*p = NoEntity
	return prev, prev != NoEntity, nil
}

// LayerSize returns the grid size of an initialized layer.
func (s *TileStorage) LayerSize(layer LayerIndex) (GridSize, bool) {
	l, ok := s.layers[layer]
	if !ok {
		return GridSize{}, false
	}
	return l.size, true
}

// Layers returns the initialized layer indices in ascending order.
func (s *TileStorage) Layers() []LayerIndex {
	out := make([]LayerIndex, 0, len(s.layers))
	for idx := range s.layers {
		out = append(out, idx)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of initialized layers.
func (s *TileStorage) Len() int {
	return len(s.layers)
}

// IterLayer yields every slot of layer in storage order, empty slots included
// (as NoEntity). An uninitialized layer yields nothing.
func (s *TileStorage) IterLayer(layer LayerIndex) iter.Seq2[TilePos, Entity] {
	return func(yield func(TilePos, Entity) bool) {
		l, ok := s.layers[layer]
		if !ok {
			return
		}
		for i, e := range l.slots {
			if !yield(TilePosFromIndex(i, l.size), e) {
				return
			}
		}
	}
}

// IterLayerMut is IterLayer with writable slots.
func (s *TileStorage) IterLayerMut(layer LayerIndex) iter.Seq2[TilePos, *Entity] {
	return func(yield func(TilePos, *Entity) bool) {
		l, ok := s.layers[layer]
		if !ok {
			return
		}
		for i := range l.slots {
			if !yield(TilePosFromIndex(i, l.size), &l.slots[i]) {
				return
			}
		}
	}
}

// IterAll yields every slot of every initialized layer. Layers are visited in
// ascending index order, but callers should not depend on that.
func (s *TileStorage) IterAll() iter.Seq2[LayerIndex, Entity] {
	return func(yield func(LayerIndex, Entity) bool) {
		for _, idx := range s.Layers() {
			for _, e := range s.layers[idx].slots {
				if !yield(idx, e) {
					return
				}
			}
		}
	}
}

// IterAllMut is IterAll with writable slots.
func (s *TileStorage) IterAllMut() iter.Seq2[LayerIndex, *Entity] {
	return func(yield func(LayerIndex, *Entity) bool) {
		for _, idx := range s.Layers() {
			slots := s.layers[idx].slots
			for i := range slots {
				if !yield(idx, &slots[i]) {
					return
				}
			}
		}
	}
}

// Clear drops every layer.
func (s *TileStorage) Clear() {
	clear(s.layers)
}

// LayerStorage maps layer names to layer root entities. Lookup by name is
// last-wins; Roots still reports every inserted root so a teardown never
// misses a layer whose name was reused.
type LayerStorage struct {
	byName map[string]Entity
	roots  []Entity
}

// NewLayerStorage returns an empty storage.
func NewLayerStorage() *LayerStorage {
	return &LayerStorage{byName: make(map[string]Entity)}
}

// Insert records root under name and returns the root previously registered
// under that name, if any.
func (s *LayerStorage) Insert(name string, root Entity) (Entity, bool) {
	prev, replaced := s.byName[name]
	s.byName[name] = root
	s.roots = append(s.roots, root)
	return prev, replaced
}

// Get returns the root registered under name.
func (s *LayerStorage) Get(name string) (Entity, bool) {
	e, ok := s.byName[name]
	return e, ok
}

// Roots returns every inserted root in insertion order. The returned slice
// must not be mutated.
func (s *LayerStorage) Roots() []Entity {
	return s.roots
}

// Len returns the number of distinct names.
func (s *LayerStorage) Len() int {
	return len(s.byName)
}

// Clear drops every entry.
func (s *LayerStorage) Clear() {
	clear(s.byName)
	s.roots = s.roots[:0]
}
