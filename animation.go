package tiled

import (
	"maps"
	"time"
)

// Animation is the per-entity state of a tile animation. It owns a copy of
// its tileset's atlas offsets, so a re-pack of the asset never changes a
// running animation.
type Animation struct {
	Frames       []Frame
	CurrentFrame int
	Offsets      map[TileID]int // nil = slot is the tile id

	elapsed  time.Duration
	duration time.Duration
}

// NewAnimation starts at frame 0. It returns nil when frames is empty.
func NewAnimation(frames []Frame, offsets map[TileID]int) *Animation {
	if len(frames) == 0 {
		return nil
	}
	return &Animation{
		Frames:   frames,
		Offsets:  maps.Clone(offsets),
		duration: frames[0].Duration,
	}
}

// Slot returns the atlas slot of the current frame.
func (a *Animation) Slot() int {
	id := a.Frames[a.CurrentFrame].TileID
	if slot, ok := a.Offsets[id]; ok {
		return slot
	}
	return int(id)
}

// Tick advances the frame timer by dt. When the timer expires the animation
// moves to the next frame (wrapping), the timer takes that frame's duration,
// and changed is true. At most one frame is advanced per Tick; leftover time
// carries into the next frame.
func (a *Animation) Tick(dt time.Duration) (slot int, changed bool) {
	a.elapsed += dt
	if a.elapsed < a.duration {
		return a.Slot(), false
	}
	if a.duration > 0 {
		a.elapsed -= a.duration
	} else {
		a.elapsed = 0
	}
	a.CurrentFrame = (a.CurrentFrame + 1) % len(a.Frames)
	a.duration = a.Frames[a.CurrentFrame].Duration
	return a.Slot(), true
}

// Animator drives the animations of one map instance.
type Animator struct {
	anims map[Entity]*Animation
}

// NewAnimator returns an empty animator.
func NewAnimator() *Animator {
	return &Animator{anims: make(map[Entity]*Animation)}
}

// Add starts driving anim on e, replacing any previous animation.
func (a *Animator) Add(e Entity, anim *Animation) {
	if anim == nil {
		return
	}
	a.anims[e] = anim
}

// Remove stops driving e. Removing is the only way to cancel an animation.
func (a *Animator) Remove(e Entity) {
	delete(a.anims, e)
}

// Get returns the animation of e.
func (a *Animator) Get(e Entity) (*Animation, bool) {
	anim, ok := a.anims[e]
	return anim, ok
}

// Len returns the number of running animations.
func (a *Animator) Len() int {
	return len(a.anims)
}

// Clear stops every animation.
func (a *Animator) Clear() {
	clear(a.anims)
}

// Tick advances every animation and pushes changed slots to g. Entities
// that are no longer alive are dropped.
func (a *Animator) Tick(dt time.Duration, g SceneGraph) {
	for e, anim := range a.anims {
		if !g.Alive(e) {
			delete(a.anims, e)
			continue
		}
		if slot, changed := anim.Tick(dt); changed {
			g.SetSpriteSlot(e, slot)
		}
	}
}
