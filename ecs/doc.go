// Package ecs spawns maps into a [Donburi] world.
//
// [NewWorld] wraps a donburi world in a tiled.SceneGraph. Every entity the
// loader creates carries a [Node] and a transform; tiles and tile objects
// also carry a sprite, and inserted components (TileRef, ObjectRef, class
// handler data) live in a [Bag]. Subscribe to [SpawnedEventType] and
// [DespawnedEventType] to follow map entities from ECS systems.
//
// Usage:
//
//	world := ecs.NewWorld(donburi.NewWorld())
//	loader := tiled.NewLoader(assets, world)
//	loader.Spawn("maps/level.yaml", tiled.Transform{})
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
