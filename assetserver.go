package tiled

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
)

// AssetEventKind tags an AssetEvent.
type AssetEventKind uint8

const (
	AssetCreated AssetEventKind = iota
	AssetModified
	AssetRemoved
)

func (k AssetEventKind) String() string {
	switch k {
	case AssetCreated:
		return "created"
	case AssetModified:
		return "modified"
	case AssetRemoved:
		return "removed"
	}
	return fmt.Sprintf("AssetEventKind(%d)", k)
}

// AssetEvent reports a change to a map asset.
type AssetEvent struct {
	Kind   AssetEventKind
	Handle MapHandle
}

// AssetServer owns the map assets and the image provider they depend on.
// Every Insert or Reload replaces the asset with a new version; loaders
// compare versions to notice changes they missed as events.
type AssetServer struct {
	fsys    fs.FS
	images  ImageProvider
	log     logrus.FieldLogger
	assets  map[MapHandle]*MapAsset
	version uint64

	// events[0] has sequence number base; each reader holds its own cursor.
	events  []AssetEvent
	base    uint64
	readers []*EventReader

	watcher   *Watcher
	watchRoot string
}

// NewAssetServer returns a server reading map documents from fsys. fsys may
// be nil when maps are only inserted directly.
func NewAssetServer(fsys fs.FS, images ImageProvider, log logrus.FieldLogger) *AssetServer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AssetServer{
		fsys:   fsys,
		images: images,
		log:    log,
		assets: make(map[MapHandle]*MapAsset),
	}
}

// Images returns the image provider.
func (s *AssetServer) Images() ImageProvider {
	return s.images
}

// Insert adds m under h, replacing any previous version.
func (s *AssetServer) Insert(h MapHandle, m *Map) *MapAsset {
	kind := AssetCreated
	if _, ok := s.assets[h]; ok {
		kind = AssetModified
	}
	s.version++
	a := NewMapAsset(h, m)
	a.Version = s.version
	s.assets[h] = a
	s.emit(AssetEvent{Kind: kind, Handle: h})
	s.log.WithFields(logrus.Fields{
		"map":     h,
		"version": a.Version,
		"event":   kind,
	}).Debug("map asset stored")
	return a
}

// Load reads and decodes the map document at h.
func (s *AssetServer) Load(h MapHandle) (*MapAsset, error) {
	if s.fsys == nil {
		return nil, fmt.Errorf("tiled: load %s: no file system", h)
	}
	data, err := fs.ReadFile(s.fsys, string(h))
	if err != nil {
		return nil, fmt.Errorf("tiled: load %s: %w", h, err)
	}
	m, err := DecodeMap(data, string(h))
	if err != nil {
		return nil, err
	}
	return s.Insert(h, m), nil
}

// Reload reads h again. The previous version stays in place if the new
// document fails to decode.
func (s *AssetServer) Reload(h MapHandle) (*MapAsset, error) {
	if _, ok := s.assets[h]; !ok {
		return nil, fmt.Errorf("tiled: reload %s: not loaded", h)
	}
	return s.Load(h)
}

// Remove drops the asset of h.
func (s *AssetServer) Remove(h MapHandle) {
	if _, ok := s.assets[h]; !ok {
		return
	}
	delete(s.assets, h)
	s.emit(AssetEvent{Kind: AssetRemoved, Handle: h})
}

// Get returns the current version of h.
func (s *AssetServer) Get(h MapHandle) (*MapAsset, bool) {
	a, ok := s.assets[h]
	return a, ok
}

// DependenciesReady reports whether every image of a has settled, requesting
// the ones not asked for yet.
func (s *AssetServer) DependenciesReady(a *MapAsset) bool {
	return a.DependenciesSettled(s.images)
}

// EventReader is one consumer's view of the asset events. Every reader sees
// every event emitted after it was created.
type EventReader struct {
	s    *AssetServer
	next uint64
}

// Subscribe returns a reader starting at the next event.
func (s *AssetServer) Subscribe() *EventReader {
	r := &EventReader{s: s, next: s.base + uint64(len(s.events))}
	s.readers = append(s.readers, r)
	return r
}

// Read returns the events emitted since the last Read.
func (r *EventReader) Read() []AssetEvent {
	s := r.s
	if s == nil {
		return nil
	}
	end := s.base + uint64(len(s.events))
	events := slices.Clone(s.events[r.next-s.base:])
	r.next = end
	s.compact()
	return events
}

// Close detaches the reader; events it has not read are released.
func (r *EventReader) Close() {
	s := r.s
	if s == nil {
		return
	}
	r.s = nil
	s.readers = slices.DeleteFunc(s.readers, func(o *EventReader) bool { return o == r })
	s.compact()
}

func (s *AssetServer) emit(ev AssetEvent) {
	if len(s.readers) == 0 {
		s.base++
		return
	}
	s.events = append(s.events, ev)
}

// compact drops the events every reader has consumed.
func (s *AssetServer) compact() {
	end := s.base + uint64(len(s.events))
	low := end
	for _, r := range s.readers {
		low = min(low, r.next)
	}
	if low == s.base {
		return
	}
	n := copy(s.events, s.events[low-s.base:])
	clear(s.events[n:])
	s.events = s.events[:n]
	s.base = low
}

// Watch feeds file changes from w into Poll. Paths reported by w are made
// relative to root before they are matched against handles.
func (s *AssetServer) Watch(w *Watcher, root string) {
	s.watcher = w
	s.watchRoot = root
}

// Poll applies the file changes reported since the last call. A changed map
// document is reloaded; a changed image is invalidated and every map using
// it gets a new version.
func (s *AssetServer) Poll() error {
	if s.watcher == nil {
		return nil
	}
	var errs []error
	for {
		select {
		case name, ok := <-s.watcher.Events:
			if !ok {
				s.watcher = nil
				return errors.Join(errs...)
			}
			if err := s.fileChanged(s.relative(name)); err != nil {
				errs = append(errs, err)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				s.watcher = nil
				return errors.Join(errs...)
			}
			s.log.WithError(err).Warn("file watcher error")
		default:
			return errors.Join(errs...)
		}
	}
}

func (s *AssetServer) relative(name string) string {
	if s.watchRoot == "" {
		return name
	}
	rel, err := filepath.Rel(s.watchRoot, filepath.FromSlash(name))
	if err != nil || strings.HasPrefix(rel, "..") {
		return name
	}
	return filepath.ToSlash(rel)
}

func (s *AssetServer) fileChanged(name string) error {
	log := s.log.WithField("file", name)
	if isMapFile(name) {
		if _, ok := s.assets[MapHandle(name)]; !ok {
			return nil
		}
		log.Info("reloading map")
		if _, err := s.Reload(MapHandle(name)); err != nil {
			log.WithError(err).Warn("map reload failed")
			return err
		}
		return nil
	}

	img := ImageHandle(name)
	s.images.Invalidate(img)
	for _, h := range s.sortedHandles() {
		a := s.assets[h]
		if slices.Contains(a.Dependencies, img) {
			log.WithField("map", h).Info("image changed, repacking map")
			s.Insert(h, a.Map)
		}
	}
	return nil
}

func (s *AssetServer) sortedHandles() []MapHandle {
	hs := make([]MapHandle, 0, len(s.assets))
	for h := range s.assets {
		hs = append(hs, h)
	}
	slices.Sort(hs)
	return hs
}
