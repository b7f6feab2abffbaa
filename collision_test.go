package tiled

import (
	"errors"
	"testing"
)

func TestCollidersForRect(t *testing.T) {
	// 8x4 box in the top-left quarter of a 16x16 tile.
	shapes := []Shape{{Kind: ShapeRect, X: 0, Y: 0, Width: 8, Height: 4}}
	tests := []struct {
		name       string
		yUp        bool
		wantOffset Vec2
	}{
		{"y up", true, Vec2{-4, 6}},
		{"y down", false, Vec2{-4, -6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, err := CollidersFor(shapes, 16, 16, tt.yUp)
			if err != nil {
				t.Fatal(err)
			}
			if len(cs) != 1 || cs[0].Kind != ColliderCuboid {
				t.Fatalf("colliders = %+v", cs)
			}
			if cs[0].HalfExtents != (Vec2{4, 2}) {
				t.Errorf("HalfExtents = %v, want {4 2}", cs[0].HalfExtents)
			}
			if cs[0].Offset != tt.wantOffset {
				t.Errorf("Offset = %v, want %v", cs[0].Offset, tt.wantOffset)
			}
		})
	}
}

func TestCollidersForFullTileIsCentered(t *testing.T) {
	cs, err := CollidersFor([]Shape{{Kind: ShapeRect, Width: 16, Height: 16}}, 16, 16, false)
	if err != nil {
		t.Fatal(err)
	}
	if cs[0].Offset != (Vec2{}) {
		t.Errorf("Offset = %v, want zero", cs[0].Offset)
	}
}

func TestCollidersForCircle(t *testing.T) {
	cs, err := CollidersFor([]Shape{{Kind: ShapeEllipse, X: 4, Y: 4, Width: 8, Height: 8}}, 16, 16, false)
	if err != nil {
		t.Fatal(err)
	}
	if cs[0].Kind != ColliderBall || cs[0].Radius != 4 {
		t.Errorf("collider = %+v, want ball radius 4", cs[0])
	}
	if cs[0].Offset != (Vec2{}) {
		t.Errorf("Offset = %v, want zero for a centered circle", cs[0].Offset)
	}
}

func TestCollidersForPolygon(t *testing.T) {
	poly := Shape{Kind: ShapePolygon, X: 8, Y: 0, Points: []Vec2{{0, 0}, {8, 16}, {-8, 16}}}
	up, err := CollidersFor([]Shape{poly}, 16, 16, true)
	if err != nil {
		t.Fatal(err)
	}
	if up[0].Offset != (Vec2{0, 8}) {
		t.Errorf("y-up Offset = %v, want {0 8}", up[0].Offset)
	}
	if up[0].Points[1] != (Vec2{8, -16}) {
		t.Errorf("y-up point = %v, want {8 -16}", up[0].Points[1])
	}

	down, _ := CollidersFor([]Shape{poly}, 16, 16, false)
	if down[0].Offset != (Vec2{0, -8}) {
		t.Errorf("y-down Offset = %v, want {0 -8}", down[0].Offset)
	}
	if down[0].Points[1] != (Vec2{8, 16}) {
		t.Errorf("y-down point = %v, want {8 16}", down[0].Points[1])
	}
}

func TestCollidersForUnsupported(t *testing.T) {
	shapes := []Shape{
		{Kind: ShapeRect, Width: 16, Height: 16},
		{Kind: ShapeEllipse, Width: 8, Height: 4},
		{Kind: ShapePolyline, Points: []Vec2{{0, 0}, {1, 1}}},
		{Kind: ShapePoint},
		{Kind: ShapePolygon, Points: []Vec2{{0, 0}, {1, 1}}},
	}
	cs, err := CollidersFor(shapes, 16, 16, false)
	if len(cs) != 1 {
		t.Errorf("len(colliders) = %d, want the rect only", len(cs))
	}
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) || len(joined.Unwrap()) != 4 {
		t.Errorf("err = %v, want 4 joined errors", err)
	}
	var ue *UnsupportedError
	if !errors.As(err, &ue) || ue.Feature != "ellipse collider" {
		t.Errorf("first UnsupportedError = %+v", ue)
	}
}
