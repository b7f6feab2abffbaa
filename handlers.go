package tiled

// EntityBuilder lets a class handler decorate a freshly spawned entity.
type EntityBuilder struct {
	graph  SceneGraph
	entity Entity
	class  string
}

// Entity returns the entity being built.
func (b *EntityBuilder) Entity() Entity {
	return b.entity
}

// Class returns the class name the handler was matched against.
func (b *EntityBuilder) Class() string {
	return b.class
}

// Insert attaches a component to the entity.
func (b *EntityBuilder) Insert(component any) *EntityBuilder {
	b.graph.Insert(b.entity, component)
	return b
}

// Graph returns the scene graph the entity lives in.
func (b *EntityBuilder) Graph() SceneGraph {
	return b.graph
}

// ClassHandler attaches extra data to tiles and objects whose class it
// matches.
type ClassHandler interface {
	Matches(class string) bool
	Apply(b *EntityBuilder, props Properties) error
}

type classFunc struct {
	name string
	fn   func(*EntityBuilder, Properties) error
}

func (c classFunc) Matches(class string) bool { return class == c.name }

func (c classFunc) Apply(b *EntityBuilder, props Properties) error { return c.fn(b, props) }

// HandleClass returns a handler that runs fn for the exact class name.
func HandleClass(name string, fn func(*EntityBuilder, Properties) error) ClassHandler {
	return classFunc{name: name, fn: fn}
}

// ClassRegistry is an ordered list of class handlers.
type ClassRegistry struct {
	handlers []ClassHandler
}

// Register appends h. Handlers run in registration order.
func (r *ClassRegistry) Register(h ...ClassHandler) {
	r.handlers = append(r.handlers, h...)
}

// Len returns the number of registered handlers.
func (r *ClassRegistry) Len() int {
	return len(r.handlers)
}

// Apply runs every handler matching class against e. A failing handler does
// not stop the ones after it; the errors are returned in order.
func (r *ClassRegistry) Apply(g SceneGraph, e Entity, class string, props Properties) []error {
	if class == "" {
		return nil
	}
	var errs []error
	b := &EntityBuilder{graph: g, entity: e, class: class}
	for _, h := range r.handlers {
		if !h.Matches(class) {
			continue
		}
		if err := h.Apply(b, props); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
