// Package tiled loads Tiled maps and spawns them as entity trees for
// [Ebitengine] games.
//
// A map goes through three stages. The [AssetServer] holds decoded [Map]
// documents keyed by [MapHandle] and tracks the images they depend on. Once
// every image is loaded, the map's tilesets are packed into [Atlas] pages.
// The [Loader] then spawns each requested [MapInstance] into a [SceneGraph]:
// a root entity per map, a root per layer, and one entity per tile or object.
//
// # Quick start
//
//	images, _ := tiled.NewFileImages(os.DirFS("assets"), 0, log)
//	assets := tiled.NewAssetServer(os.DirFS("assets"), images, log)
//	assets.Load("maps/level.yaml")
//
//	graph := tiled.NewNodeGraph()
//	loader := tiled.NewLoader(assets, graph, tiled.WithLogger(log))
//	inst := loader.Spawn("maps/level.yaml", tiled.Transform{})
//
// Call [Loader.Tick] once per frame and [NodeGraph.Draw] to render. The
// instance moves from loading to spawned once its images arrive; a reload
// or image change respawns it in place.
//
// # Storage
//
// Spawned tiles are indexed per layer in a [TileStorage] keyed by [TilePos];
// layer roots are indexed by name in a [LayerStorage]. Every tile entity
// carries a [TileRef] and every object a [ObjectRef].
//
// # Textures
//
// Each tileset resolves to a [TilemapTexture]: a single grid image, or one
// image per tile for collection tilesets. Collection images are packed into
// atlas pages with [PackConfig] limits, and [TileImageOffsets] maps tile ids
// to atlas slots.
//
// # Extensions
//
// Tile and object classes are dispatched to [ClassHandler] values, collision
// shapes become [Collider] values handed to a [PhysicsBackend], animated
// tiles cycle atlas slots, and layers may fade in with [gween] tweens.
// Subpackage physics binds colliders to a Chipmunk space; subpackage ecs
// spawns maps into a [Donburi] world.
//
// Maps are read from YAML documents with [DecodeMap]. [LoadConfig] reads
// loader settings with viper, and [NewWatcher] feeds file changes into
// [AssetServer.Poll] for hot reload.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package tiled
