// Package physics attaches map colliders to a Chipmunk space.
package physics

import (
	"fmt"

	"github.com/jakecoffman/cp"

	"github.com/phanxgames/tiled"
)

type body struct {
	body   *cp.Body
	shapes []*cp.Shape
}

// Space is a tiled.PhysicsBackend backed by a cp.Space. Every attached
// entity gets its own static body.
type Space struct {
	space  *cp.Space
	bodies map[tiled.Entity]*body
}

var _ tiled.PhysicsBackend = (*Space)(nil)

// New returns an empty space with the given gravity.
func New(gravityX, gravityY float64) *Space {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{X: gravityX, Y: gravityY})
	return &Space{
		space:  space,
		bodies: make(map[tiled.Entity]*body),
	}
}

// CP returns the underlying space, for adding dynamic bodies.
func (s *Space) CP() *cp.Space {
	return s.space
}

// AttachFixedBody creates a static body for e at pos. Attaching to an entity
// that already has a body replaces it.
func (s *Space) AttachFixedBody(e tiled.Entity, pos tiled.Vec2, colliders []tiled.Collider) error {
	s.DetachBody(e)

	b := cp.NewStaticBody()
	b.SetPosition(cp.Vector{X: pos.X, Y: pos.Y})
	b.UserData = e

	shapes := make([]*cp.Shape, 0, len(colliders))
	for i, c := range colliders {
		shape, err := newShape(b, c)
		if err != nil {
			return fmt.Errorf("physics: entity %d collider %d: %w", e, i, err)
		}
		shape.UserData = e
		shapes = append(shapes, shape)
	}

	s.space.AddBody(b)
	for _, shape := range shapes {
		s.space.AddShape(shape)
	}
	s.bodies[e] = &body{body: b, shapes: shapes}
	return nil
}

func newShape(b *cp.Body, c tiled.Collider) (*cp.Shape, error) {
	offset := cp.Vector{X: c.Offset.X, Y: c.Offset.Y}
	switch c.Kind {
	case tiled.ColliderCuboid:
		bb := cp.BB{
			L: offset.X - c.HalfExtents.X,
			B: offset.Y - c.HalfExtents.Y,
			R: offset.X + c.HalfExtents.X,
			T: offset.Y + c.HalfExtents.Y,
		}
		return cp.NewBox2(b, bb, 0), nil
	case tiled.ColliderBall:
		return cp.NewCircle(b, c.Radius, offset), nil
	case tiled.ColliderConvexHull:
		if len(c.Points) < 3 {
			return nil, fmt.Errorf("hull needs 3 points, got %d", len(c.Points))
		}
		verts := make([]cp.Vector, len(c.Points))
		for i, p := range c.Points {
			verts[i] = cp.Vector{X: p.X, Y: p.Y}
		}
		return cp.NewPolyShape(b, len(verts), verts, cp.NewTransformTranslate(offset), 0), nil
	}
	return nil, fmt.Errorf("unknown collider kind %d", c.Kind)
}

// DetachBody removes the body of e and its shapes.
func (s *Space) DetachBody(e tiled.Entity) {
	b, ok := s.bodies[e]
	if !ok {
		return
	}
	for _, shape := range b.shapes {
		s.space.RemoveShape(shape)
	}
	s.space.RemoveBody(b.body)
	delete(s.bodies, e)
}

// Body returns the body attached to e.
func (s *Space) Body(e tiled.Entity) (*cp.Body, bool) {
	b, ok := s.bodies[e]
	if !ok {
		return nil, false
	}
	return b.body, true
}

// Shapes returns the shapes attached to e.
func (s *Space) Shapes(e tiled.Entity) []*cp.Shape {
	if b, ok := s.bodies[e]; ok {
		return b.shapes
	}
	return nil
}

// Bodies returns the number of attached entities.
func (s *Space) Bodies() int {
	return len(s.bodies)
}

// Step advances the simulation by dt seconds.
func (s *Space) Step(dt float64) {
	s.space.Step(dt)
}
