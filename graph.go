package tiled

// Sprite is the image-region descriptor attached to tiles and tile objects.
type Sprite struct {
	Atlas               *Atlas
	Slot                int
	FlipH, FlipV, FlipD bool
	Color               Color // tint; alpha carries layer opacity
}

// TileRef is attached to every spawned tile entity.
type TileRef struct {
	Layer   LayerIndex
	Pos     TilePos
	Tileset TilesetIndex
	ID      TileID
}

// ObjectRef is attached to every spawned object entity.
type ObjectRef struct {
	Layer  LayerIndex
	Object *Object
}

// SceneGraph is the entity API the loader spawns into. Operations on entities
// that are no longer alive are no-ops.
type SceneGraph interface {
	// Spawn creates a parentless entity.
	Spawn(name string, t Transform) Entity
	// AddChild parents child under parent, detaching it from any previous parent.
	AddChild(parent, child Entity)
	SetSprite(e Entity, s Sprite)
	SetSpriteSlot(e Entity, slot int)
	SetAlpha(e Entity, alpha float64)
	// Insert attaches an arbitrary component value.
	Insert(e Entity, component any)
	// Despawn destroys e, and its descendants when recursive is set.
	Despawn(e Entity, recursive bool)
	Alive(e Entity) bool
}

// NodeGraph is the default SceneGraph: a retained tree of Nodes drawn with
// Ebitengine.
type NodeGraph struct {
	root  *Node
	nodes map[Entity]*Node
}

// NewNodeGraph creates an empty graph with a root container.
func NewNodeGraph() *NodeGraph {
	return &NodeGraph{
		root:  NewNode("root"),
		nodes: make(map[Entity]*Node),
	}
}

// Root returns the graph's root node. Spawned entities hang off it until
// they are parented elsewhere.
func (g *NodeGraph) Root() *Node {
	return g.root
}

// Node returns the node of e.
func (g *NodeGraph) Node(e Entity) (*Node, bool) {
	n, ok := g.nodes[e]
	return n, ok
}

// Len returns the number of live entities.
func (g *NodeGraph) Len() int {
	return len(g.nodes)
}

func (g *NodeGraph) Spawn(name string, t Transform) Entity {
	n := NewNode(name)
	n.X, n.Y, n.Z = t.X, t.Y, t.Z
	g.root.AddChild(n)
	g.nodes[n.ID] = n
	return n.ID
}

func (g *NodeGraph) AddChild(parent, child Entity) {
	p, ok := g.nodes[parent]
	if !ok {
		return
	}
	c, ok := g.nodes[child]
	if !ok {
		return
	}
	p.AddChild(c)
}

func (g *NodeGraph) SetSprite(e Entity, s Sprite) {
	if n, ok := g.nodes[e]; ok {
		n.Sprite = &s
	}
}

func (g *NodeGraph) SetSpriteSlot(e Entity, slot int) {
	if n, ok := g.nodes[e]; ok && n.Sprite != nil {
		n.Sprite.Slot = slot
	}
}

func (g *NodeGraph) SetAlpha(e Entity, alpha float64) {
	if n, ok := g.nodes[e]; ok {
		n.SetAlpha(alpha)
	}
}

func (g *NodeGraph) Insert(e Entity, component any) {
	if n, ok := g.nodes[e]; ok {
		n.Insert(component)
	}
}

// Despawn destroys e. Without recursive, e's children are moved to the root.
func (g *NodeGraph) Despawn(e Entity, recursive bool) {
	n, ok := g.nodes[e]
	if !ok {
		return
	}
	if recursive {
		n.walk(func(d *Node) { delete(g.nodes, d.ID) })
	} else {
		for len(n.children) > 0 {
			g.root.AddChild(n.children[0])
		}
		delete(g.nodes, e)
	}
	n.Dispose()
}

func (g *NodeGraph) Alive(e Entity) bool {
	_, ok := g.nodes[e]
	return ok
}

// Update refreshes world transforms and alphas.
func (g *NodeGraph) Update() {
	updateWorldTransform(g.root, identityTransform, 1.0, false)
}

// ComponentOf returns the component of type T attached to e.
func ComponentOf[T any](g *NodeGraph, e Entity) (T, bool) {
	n, ok := g.nodes[e]
	if !ok {
		var zero T
		return zero, false
	}
	return Component[T](n)
}
