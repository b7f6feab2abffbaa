package tiled

import (
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"
)

// Phase is the state of the loader as a whole.
type Phase uint8

const (
	// PhaseIdle: every tracked instance is spawned or waiting for nothing.
	PhaseIdle Phase = iota
	// PhaseRebuildingAtlases: some instance waits for its asset's atlases.
	PhaseRebuildingAtlases
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRebuildingAtlases:
		return "rebuilding-atlases"
	}
	return fmt.Sprintf("Phase(%d)", p)
}

// InstanceState is the lifecycle state of one MapInstance.
type InstanceState uint8

const (
	InstanceLoading    InstanceState = iota // waiting for asset, images or atlases
	InstanceNeedsSpawn                      // atlases ready, spawn on this tick
	InstanceSpawned
	InstanceDespawned
)

func (s InstanceState) String() string {
	switch s {
	case InstanceLoading:
		return "loading"
	case InstanceNeedsSpawn:
		return "needs-spawn"
	case InstanceSpawned:
		return "spawned"
	case InstanceDespawned:
		return "despawned"
	}
	return fmt.Sprintf("InstanceState(%d)", s)
}

// MapInstance is one placement of a map in the scene. Its storages are owned
// by the instance and rebuilt on every spawn.
type MapInstance struct {
	Entity    Entity // root; layer roots are its children
	Handle    MapHandle
	Transform Transform
	Tiles     *TileStorage
	Layers    *LayerStorage

	state       InstanceState
	version     uint64 // asset version last spawned
	despawn     bool
	animations  *Animator
	fades       []*Fade
	bodies      []Entity
	diagnostics []error
}

// State returns the lifecycle state.
func (i *MapInstance) State() InstanceState {
	return i.state
}

// Diagnostics returns the skipped content of the last spawn: unsupported
// layers and shapes, tiles without an atlas, failed class handlers.
func (i *MapInstance) Diagnostics() []error {
	return i.diagnostics
}

// Animations returns the animator driving the instance's animated tiles.
func (i *MapInstance) Animations() *Animator {
	return i.animations
}

// Option configures a Loader.
type Option func(*Loader)

// WithConfig replaces DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(l *Loader) { l.cfg = cfg }
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(l *Loader) { l.log = log }
}

// WithPhysics attaches colliders through p.
func WithPhysics(p PhysicsBackend) Option {
	return func(l *Loader) { l.physics = p }
}

// WithClassHandlers registers class handlers, run in the given order.
func WithClassHandlers(h ...ClassHandler) Option {
	return func(l *Loader) { l.classes.Register(h...) }
}

// Loader turns map assets into entities. It is driven by Tick, once per
// frame, and is not safe for concurrent use.
type Loader struct {
	cfg     Config
	log     logrus.FieldLogger
	assets  *AssetServer
	events  *EventReader
	graph   SceneGraph
	physics PhysicsBackend
	classes ClassRegistry

	phase     Phase
	instances []*MapInstance
}

// NewLoader returns a loader spawning assets from assets into graph.
func NewLoader(assets *AssetServer, graph SceneGraph, opts ...Option) *Loader {
	l := &Loader{
		cfg:    DefaultConfig(),
		assets: assets,
		events: assets.Subscribe(),
		graph:  graph,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = logrus.StandardLogger()
	}
	return l
}

// Close releases the loader's subscription to asset events. Spawned
// instances are left in place.
func (l *Loader) Close() {
	l.events.Close()
}

// Phase returns the loader phase.
func (l *Loader) Phase() Phase {
	return l.phase
}

// Instances returns the tracked instances in creation order.
func (l *Loader) Instances() []*MapInstance {
	return slices.Clone(l.instances)
}

// Spawn places the map h at t. The entities appear on a later Tick, once the
// asset and its atlases are ready.
func (l *Loader) Spawn(h MapHandle, t Transform) *MapInstance {
	inst := &MapInstance{
		Entity:     l.graph.Spawn(string(h), t),
		Handle:     h,
		Transform:  t,
		Tiles:      NewTileStorage(),
		Layers:     NewLayerStorage(),
		animations: NewAnimator(),
	}
	l.instances = append(l.instances, inst)
	l.setPhase(PhaseRebuildingAtlases)
	return inst
}

// RequestDespawn schedules inst for removal on the next Tick. Repeated
// requests are no-ops.
func (l *Loader) RequestDespawn(inst *MapInstance) {
	if inst.state == InstanceDespawned {
		return
	}
	inst.despawn = true
}

// Tick advances the loader by dt. The phases run in a fixed order: despawn
// requests, asset changes, atlas packing, spawning, then animations.
func (l *Loader) Tick(dt time.Duration) {
	l.processDespawns()
	l.processAssetChanges()
	l.setupAtlases()
	l.spawnReady()
	l.animate(dt)
}

func (l *Loader) setPhase(p Phase) {
	if l.phase == p {
		return
	}
	l.log.WithFields(logrus.Fields{"from": l.phase, "to": p}).Debug("loader phase")
	l.phase = p
}

func (l *Loader) instanceLog(inst *MapInstance) logrus.FieldLogger {
	return l.log.WithFields(logrus.Fields{"map": inst.Handle, "instance": inst.Entity})
}

func (l *Loader) processDespawns() {
	kept := l.instances[:0]
	for _, inst := range l.instances {
		if !inst.despawn {
			kept = append(kept, inst)
			continue
		}
		l.remove(inst)
	}
	clear(l.instances[len(kept):])
	l.instances = kept
}

// remove tears inst down and destroys its root. The caller drops it from
// l.instances.
func (l *Loader) remove(inst *MapInstance) {
	l.teardown(inst)
	l.graph.Despawn(inst.Entity, true)
	inst.state = InstanceDespawned
	inst.despawn = false
	l.instanceLog(inst).Debug("map instance despawned")
}

func (l *Loader) processAssetChanges() {
	removed := make(map[MapHandle]bool)
	for _, ev := range l.events.Read() {
		switch ev.Kind {
		case AssetCreated, AssetModified:
			l.setPhase(PhaseRebuildingAtlases)
		case AssetRemoved:
			removed[ev.Handle] = true
		}
	}

	kept := l.instances[:0]
	for _, inst := range l.instances {
		asset, ok := l.assets.Get(inst.Handle)
		// An instance spawned after the removal has nothing to tear down and
		// waits for the handle to be inserted again.
		fresh := inst.state == InstanceLoading && inst.version == 0
		if removed[inst.Handle] && !ok && !fresh {
			l.remove(inst)
			continue
		}
		kept = append(kept, inst)
		if inst.state == InstanceLoading {
			continue
		}
		if ok && asset.Version == inst.version {
			continue
		}
		// Old entities go before the instance reports that it is rebuilding.
		l.teardown(inst)
		inst.state = InstanceLoading
		l.setPhase(PhaseRebuildingAtlases)
		l.instanceLog(inst).Debug("map asset changed, rebuilding")
	}
	clear(l.instances[len(kept):])
	l.instances = kept
}

func (l *Loader) setupAtlases() {
	if l.phase != PhaseRebuildingAtlases {
		return
	}
	ready := true
	for _, inst := range l.instances {
		if inst.state != InstanceLoading {
			continue
		}
		asset, ok := l.assets.Get(inst.Handle)
		if !ok || !l.pack(asset) {
			ready = false
			continue
		}
		if l.cfg.IndependentInstances {
			l.markReady(inst, asset)
		}
	}
	if !ready {
		return
	}
	if !l.cfg.IndependentInstances {
		for _, inst := range l.instances {
			if inst.state != InstanceLoading {
				continue
			}
			asset, _ := l.assets.Get(inst.Handle)
			l.markReady(inst, asset)
		}
	}
	l.setPhase(PhaseIdle)
}

// pack builds the atlases of a once its images have settled and reports
// whether they are available.
func (l *Loader) pack(a *MapAsset) bool {
	if a.AtlasesLoaded {
		return true
	}
	if !l.assets.DependenciesReady(a) {
		return false
	}
	log := l.log.WithFields(logrus.Fields{"map": a.Handle, "version": a.Version})
	if err := a.PackAtlases(l.assets.Images(), l.cfg.PackConfig(), log); err != nil {
		for _, e := range unwrapJoined(err) {
			log.WithError(e).Warn("atlas packing failed")
		}
	}
	log.Debug("atlases packed")
	return a.AtlasesLoaded
}

func (l *Loader) markReady(inst *MapInstance, a *MapAsset) {
	inst.state = InstanceNeedsSpawn
	inst.version = a.Version
}

func (l *Loader) spawnReady() {
	for _, inst := range l.instances {
		if inst.state != InstanceNeedsSpawn {
			continue
		}
		asset, ok := l.assets.Get(inst.Handle)
		if !ok || asset.Version != inst.version {
			inst.state = InstanceLoading
			l.setPhase(PhaseRebuildingAtlases)
			continue
		}
		l.spawn(inst, asset)
		inst.state = InstanceSpawned
		l.instanceLog(inst).WithField("tiles", inst.Tiles.Len()).Debug("map instance spawned")
	}
}

func (l *Loader) animate(dt time.Duration) {
	for _, inst := range l.instances {
		if inst.state != InstanceSpawned {
			continue
		}
		inst.animations.Tick(dt, l.graph)
		live := inst.fades[:0]
		for _, f := range inst.fades {
			f.Update(dt, l.graph)
			if !f.Done {
				live = append(live, f)
			}
		}
		clear(inst.fades[len(live):])
		inst.fades = live
	}
}

// teardown destroys every entity spawned for inst and empties its storages.
// The root entity stays.
func (l *Loader) teardown(inst *MapInstance) {
	if l.physics != nil {
		for _, e := range inst.bodies {
			l.physics.DetachBody(e)
		}
	}
	for _, root := range inst.Layers.Roots() {
		l.graph.Despawn(root, true)
	}
	inst.Tiles.Clear()
	inst.Layers.Clear()
	inst.animations.Clear()
	inst.fades = nil
	inst.bodies = nil
}

func unwrapJoined(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
