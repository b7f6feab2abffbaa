package tiled

import (
	"errors"
	"fmt"
)

// ColliderKind is the primitive a Collider describes.
type ColliderKind uint8

const (
	ColliderCuboid     ColliderKind = iota // axis-aligned box, HalfExtents
	ColliderBall                           // circle, Radius
	ColliderConvexHull                     // Points, hull taken by the backend
)

// Collider is a collision primitive positioned relative to the center of
// the tile or object that owns it.
type Collider struct {
	Kind        ColliderKind
	HalfExtents Vec2
	Radius      float64
	Points      []Vec2
	Offset      Vec2
}

// PhysicsBackend attaches colliders to spawned entities.
type PhysicsBackend interface {
	// AttachFixedBody creates an immovable body at pos (world space, scene
	// axes) carrying colliders.
	AttachFixedBody(e Entity, pos Vec2, colliders []Collider) error
	// DetachBody removes the body of e, if any.
	DetachBody(e Entity)
}

// CollidersFor converts collision shapes declared on a tile into colliders
// relative to the center of a cw x ch container. Rectangles, circles and
// polygons are supported; any other shape yields an UnsupportedError and
// is left out while the rest are still returned. With yUp the offsets and
// points use a Y-up axis.
func CollidersFor(shapes []Shape, cw, ch float64, yUp bool) ([]Collider, error) {
	var (
		out  []Collider
		errs []error
	)
	sy := 1.0
	if !yUp {
		sy = -1
	}
	for _, s := range shapes {
		switch s.Kind {
		case ShapeRect, ShapeEllipse:
			offset := Vec2{
				X: -((cw/2 - s.Width/2) - s.X),
				Y: sy * ((ch/2 - s.Height/2) - s.Y),
			}
			if s.Kind == ShapeRect {
				out = append(out, Collider{
					Kind:        ColliderCuboid,
					HalfExtents: Vec2{s.Width / 2, s.Height / 2},
					Offset:      offset,
				})
				continue
			}
			if s.Width != s.Height {
				errs = append(errs, &UnsupportedError{
					Feature: "ellipse collider",
					Detail:  fmt.Sprintf("%gx%g is not a circle", s.Width, s.Height),
				})
				continue
			}
			out = append(out, Collider{Kind: ColliderBall, Radius: s.Width / 2, Offset: offset})
		case ShapePolygon:
			if len(s.Points) < 3 {
				errs = append(errs, &UnsupportedError{
					Feature: "polygon collider",
					Detail:  fmt.Sprintf("%d points", len(s.Points)),
				})
				continue
			}
			pts := make([]Vec2, len(s.Points))
			for i, p := range s.Points {
				pts[i] = Vec2{p.X, -sy * p.Y}
			}
			out = append(out, Collider{
				Kind:   ColliderConvexHull,
				Points: pts,
				Offset: Vec2{X: -(cw/2 - s.X), Y: sy * (ch/2 - s.Y)},
			})
		default:
			errs = append(errs, &UnsupportedError{Feature: s.Kind.String() + " collider"})
		}
	}
	return out, errors.Join(errs...)
}
