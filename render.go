package tiled

import (
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
)

// Draw refreshes transforms and draws every visible sprite. Siblings are
// drawn in ascending Z, ties in insertion order.
func (g *NodeGraph) Draw(screen *ebiten.Image) {
	g.Update()
	drawNode(screen, g.root)
}

func drawNode(dst *ebiten.Image, n *Node) {
	if !n.Visible {
		return
	}
	if n.Sprite != nil && n.Sprite.Atlas != nil {
		drawSprite(dst, n)
	}
	children := n.children
	if !slices.IsSortedFunc(children, compareZ) {
		children = slices.Clone(children)
		slices.SortStableFunc(children, compareZ)
	}
	for _, child := range children {
		drawNode(dst, child)
	}
}

func compareZ(a, b *Node) int {
	switch {
	case a.Z < b.Z:
		return -1
	case a.Z > b.Z:
		return 1
	}
	return 0
}

// spriteGeoM returns the matrix that centers the region on the node origin,
// applies the Tiled flip flags, then the node's world transform.
func spriteGeoM(n *Node, w, h float64) ebiten.GeoM {
	var m ebiten.GeoM
	m.Translate(-w/2, -h/2)
	if n.Sprite.FlipD {
		// Diagonal flip swaps the x and y axes.
		var d ebiten.GeoM
		d.SetElement(0, 0, 0)
		d.SetElement(0, 1, 1)
		d.SetElement(1, 0, 1)
		d.SetElement(1, 1, 0)
		m.Concat(d)
	}
	if n.Sprite.FlipH {
		m.Scale(-1, 1)
	}
	if n.Sprite.FlipV {
		m.Scale(1, -1)
	}

	wt := n.worldTransform
	var world ebiten.GeoM
	world.SetElement(0, 0, wt[0])
	world.SetElement(0, 1, wt[2])
	world.SetElement(0, 2, wt[4])
	world.SetElement(1, 0, wt[1])
	world.SetElement(1, 1, wt[3])
	world.SetElement(1, 2, wt[5])
	m.Concat(world)
	return m
}

func drawSprite(dst *ebiten.Image, n *Node) {
	s := n.Sprite
	img := s.Atlas.EbitenRegion(s.Slot)
	b := img.Bounds()

	op := &ebiten.DrawImageOptions{}
	op.GeoM = spriteGeoM(n, float64(b.Dx()), float64(b.Dy()))
	op.ColorScale.Scale(float32(s.Color.R), float32(s.Color.G), float32(s.Color.B), 1)
	op.ColorScale.ScaleAlpha(float32(s.Color.A * n.worldAlpha))
	dst.DrawImage(img, op)
}
