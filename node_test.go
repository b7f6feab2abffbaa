package tiled

import (
	"math"
	"testing"
)

func TestNewNodeDefaults(t *testing.T) {
	n := NewNode("test")
	if n.ID == NoEntity {
		t.Error("ID should be non-zero")
	}
	if n.Name != "test" {
		t.Errorf("Name = %q, want %q", n.Name, "test")
	}
	if n.ScaleX != 1 || n.ScaleY != 1 {
		t.Errorf("Scale = (%v, %v), want (1, 1)", n.ScaleX, n.ScaleY)
	}
	if n.Alpha != 1 {
		t.Errorf("Alpha = %v, want 1", n.Alpha)
	}
	if !n.Visible {
		t.Error("Visible should be true")
	}
	if !n.transformDirty {
		t.Error("transformDirty should be true")
	}
}

func TestUniqueIDs(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	if a.ID == b.ID {
		t.Errorf("IDs should differ: %d == %d", a.ID, b.ID)
	}
}

func TestAddChildReparents(t *testing.T) {
	p1 := NewNode("p1")
	p2 := NewNode("p2")
	c := NewNode("c")
	p1.AddChild(c)
	p2.AddChild(c)
	if c.Parent != p2 {
		t.Error("child should belong to p2")
	}
	if p1.NumChildren() != 0 || p2.NumChildren() != 1 {
		t.Errorf("children = (%d, %d), want (0, 1)", p1.NumChildren(), p2.NumChildren())
	}
}

func TestAddChildPanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"nil child", func() { NewNode("p").AddChild(nil) }},
		{"self", func() {
			n := NewNode("n")
			n.AddChild(n)
		}},
		{"cycle", func() {
			a, b := NewNode("a"), NewNode("b")
			a.AddChild(b)
			b.AddChild(a)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn()
		})
	}
}

func TestRemoveFromParent(t *testing.T) {
	p := NewNode("p")
	a, b, c := NewNode("a"), NewNode("b"), NewNode("c")
	p.AddChild(a)
	p.AddChild(b)
	p.AddChild(c)
	b.RemoveFromParent()
	if b.Parent != nil {
		t.Error("Parent should be nil")
	}
	if got := p.Children(); len(got) != 2 || got[0] != a || got[1] != c {
		t.Errorf("children = %v, want [a c]", got)
	}
	b.RemoveFromParent() // no-op
}

func TestDisposeRecursive(t *testing.T) {
	p := NewNode("p")
	c := NewNode("c")
	gc := NewNode("gc")
	p.AddChild(c)
	c.AddChild(gc)
	c.Dispose()
	if !c.IsDisposed() || !gc.IsDisposed() {
		t.Error("child and grandchild should be disposed")
	}
	if p.NumChildren() != 0 {
		t.Error("disposed child still attached")
	}
	if c.ID != NoEntity {
		t.Error("disposed ID should be cleared")
	}
	c.Dispose() // idempotent
}

type health struct{ HP int }
type tag string

func TestNodeComponents(t *testing.T) {
	n := NewNode("n")
	n.Insert(health{HP: 3})
	n.Insert(tag("enemy"))
	n.Insert(health{HP: 5})
	h, ok := Component[health](n)
	if !ok || h.HP != 5 {
		t.Errorf("Component[health] = (%v, %v), want replaced value 5", h, ok)
	}
	if len(n.components) != 2 {
		t.Errorf("components = %d, want 2", len(n.components))
	}
	if _, ok := Component[*Sprite](n); ok {
		t.Error("unexpected *Sprite component")
	}
}

func TestWorldTransformInheritance(t *testing.T) {
	root := NewNode("root")
	layer := NewNode("layer")
	tile := NewNode("tile")
	root.AddChild(layer)
	layer.AddChild(tile)
	layer.SetPosition(100, 50)
	layer.SetAlpha(0.5)
	tile.SetPosition(8, 8)
	tile.SetAlpha(0.5)

	updateWorldTransform(root, identityTransform, 1, false)
	x, y := tile.LocalToWorld(0, 0)
	if x != 108 || y != 58 {
		t.Errorf("world position = (%v, %v), want (108, 58)", x, y)
	}
	if math.Abs(tile.WorldAlpha()-0.25) > 1e-9 {
		t.Errorf("WorldAlpha = %v, want 0.25", tile.WorldAlpha())
	}

	layer.SetScale(2, 2)
	updateWorldTransform(root, identityTransform, 1, false)
	x, y = tile.LocalToWorld(0, 0)
	if x != 116 || y != 66 {
		t.Errorf("scaled world position = (%v, %v), want (116, 66)", x, y)
	}
}

func TestMultiplyAffineIdentity(t *testing.T) {
	m := [6]float64{2, 0, 0, 3, 5, 7}
	if got := multiplyAffine(identityTransform, m); got != m {
		t.Errorf("I * m = %v, want %v", got, m)
	}
	if got := multiplyAffine(m, identityTransform); got != m {
		t.Errorf("m * I = %v, want %v", got, m)
	}
}
