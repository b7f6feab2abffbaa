package tiled

import (
	"image"
	"testing"
	"time"
)

func TestAnimationIdentityFallback(t *testing.T) {
	anim := NewAnimation([]Frame{
		{TileID: 5, Duration: 100 * time.Millisecond},
		{TileID: 9, Duration: 200 * time.Millisecond},
	}, nil)
	if anim.Slot() != 5 {
		t.Fatalf("initial Slot = %d, want 5", anim.Slot())
	}

	if slot, changed := anim.Tick(60 * time.Millisecond); changed || slot != 5 {
		t.Errorf("Tick(60ms) = (%d, %v), want (5, false)", slot, changed)
	}
	if slot, changed := anim.Tick(40 * time.Millisecond); !changed || slot != 9 {
		t.Errorf("Tick to 100ms = (%d, %v), want (9, true)", slot, changed)
	}
	if slot, changed := anim.Tick(150 * time.Millisecond); changed || slot != 9 {
		t.Errorf("Tick(150ms) into 200ms frame = (%d, %v), want (9, false)", slot, changed)
	}
	if slot, changed := anim.Tick(50 * time.Millisecond); !changed || slot != 5 {
		t.Errorf("wrap = (%d, %v), want (5, true)", slot, changed)
	}
	if anim.CurrentFrame != 0 {
		t.Errorf("CurrentFrame = %d, want 0", anim.CurrentFrame)
	}
}

func TestAnimationUsesOffsets(t *testing.T) {
	offsets := map[TileID]int{5: 2, 9: 0}
	anim := NewAnimation([]Frame{
		{TileID: 5, Duration: 10 * time.Millisecond},
		{TileID: 9, Duration: 10 * time.Millisecond},
	}, offsets)
	offsets[9] = 7 // the animation keeps its own copy
	if anim.Slot() != 2 {
		t.Errorf("Slot = %d, want 2", anim.Slot())
	}
	if slot, _ := anim.Tick(10 * time.Millisecond); slot != 0 {
		t.Errorf("Slot after advance = %d, want 0", slot)
	}
}

func TestAnimationAdvancesOneFramePerTick(t *testing.T) {
	anim := NewAnimation([]Frame{
		{TileID: 0, Duration: 10 * time.Millisecond},
		{TileID: 1, Duration: 10 * time.Millisecond},
		{TileID: 2, Duration: 10 * time.Millisecond},
	}, nil)
	anim.Tick(time.Second)
	if anim.CurrentFrame != 1 {
		t.Errorf("CurrentFrame = %d, want 1", anim.CurrentFrame)
	}
}

func TestAnimationZeroDuration(t *testing.T) {
	anim := NewAnimation([]Frame{{TileID: 1}, {TileID: 2}}, nil)
	for i := range 4 {
		if _, changed := anim.Tick(0); !changed {
			t.Errorf("tick %d: zero-duration frame did not advance", i)
		}
	}
}

func TestNewAnimationEmpty(t *testing.T) {
	if NewAnimation(nil, nil) != nil {
		t.Error("NewAnimation(nil) should be nil")
	}
	a := NewAnimator()
	a.Add(1, nil)
	if a.Len() != 0 {
		t.Error("nil animation was added")
	}
}

func TestAnimatorTickUpdatesSprites(t *testing.T) {
	g := NewNodeGraph()
	atlas := NewGridAtlas(image.NewRGBA(image.Rect(0, 0, 64, 16)), GridSpec{TileWidth: 16, TileHeight: 16, Columns: 4, Rows: 1})
	e := g.Spawn("water", Transform{})
	g.SetSprite(e, Sprite{Atlas: atlas, Slot: 1})
	dead := g.Spawn("gone", Transform{})

	frames := []Frame{{TileID: 1, Duration: 50 * time.Millisecond}, {TileID: 3, Duration: 50 * time.Millisecond}}
	a := NewAnimator()
	a.Add(e, NewAnimation(frames, nil))
	a.Add(dead, NewAnimation(frames, nil))
	g.Despawn(dead, true)

	a.Tick(50*time.Millisecond, g)
	n, _ := g.Node(e)
	if n.Sprite.Slot != 3 {
		t.Errorf("Slot = %d, want 3", n.Sprite.Slot)
	}
	if a.Len() != 1 {
		t.Errorf("Len = %d, want 1 after dead entity dropped", a.Len())
	}
	a.Remove(e)
	a.Tick(50*time.Millisecond, g)
	if n.Sprite.Slot != 3 {
		t.Error("removed animation still drives the sprite")
	}
}

func TestAnimatorTickDoesNotAllocate(t *testing.T) {
	g := NewNodeGraph()
	atlas := NewGridAtlas(image.NewRGBA(image.Rect(0, 0, 64, 16)), GridSpec{TileWidth: 16, TileHeight: 16, Columns: 4, Rows: 1})
	frames := []Frame{{TileID: 0, Duration: 10 * time.Millisecond}, {TileID: 2, Duration: 10 * time.Millisecond}}
	a := NewAnimator()
	for range 32 {
		e := g.Spawn("water", Transform{})
		g.SetSprite(e, Sprite{Atlas: atlas})
		a.Add(e, NewAnimation(frames, nil))
	}
	if allocs := testing.AllocsPerRun(50, func() { a.Tick(10*time.Millisecond, g) }); allocs != 0 {
		t.Errorf("Tick allocates %v times per run", allocs)
	}
}
