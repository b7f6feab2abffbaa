package tiled

import (
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io/fs"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/sirupsen/logrus"
)

// LoadState is the loading state of an image asset.
type LoadState uint8

const (
	LoadNotRequested LoadState = iota
	LoadPending
	LoadLoaded
	LoadFailed
)

func (s LoadState) String() string {
	switch s {
	case LoadNotRequested:
		return "not-requested"
	case LoadPending:
		return "pending"
	case LoadLoaded:
		return "loaded"
	case LoadFailed:
		return "failed"
	}
	return fmt.Sprintf("LoadState(%d)", s)
}

// ImageSource resolves loaded images.
type ImageSource interface {
	Image(h ImageHandle) (image.Image, bool)
}

// ImageProvider is an ImageSource that loads images on request.
type ImageProvider interface {
	ImageSource
	Request(h ImageHandle)
	State(h ImageHandle) LoadState
	Invalidate(h ImageHandle)
}

// MemoryImages is an ImageProvider over images inserted by the caller.
// Requested but not yet inserted images stay pending.
type MemoryImages struct {
	images    map[ImageHandle]image.Image
	requested map[ImageHandle]bool
}

// NewMemoryImages returns an empty store.
func NewMemoryImages() *MemoryImages {
	return &MemoryImages{
		images:    make(map[ImageHandle]image.Image),
		requested: make(map[ImageHandle]bool),
	}
}

// Insert adds or replaces an image.
func (m *MemoryImages) Insert(h ImageHandle, img image.Image) {
	m.images[h] = img
}

func (m *MemoryImages) Image(h ImageHandle) (image.Image, bool) {
	img, ok := m.images[h]
	return img, ok
}

func (m *MemoryImages) Request(h ImageHandle) {
	m.requested[h] = true
}

func (m *MemoryImages) State(h ImageHandle) LoadState {
	if _, ok := m.images[h]; ok {
		return LoadLoaded
	}
	if m.requested[h] {
		return LoadPending
	}
	return LoadNotRequested
}

// Invalidate drops the image; a later Insert provides the new version.
func (m *MemoryImages) Invalidate(h ImageHandle) {
	delete(m.images, h)
}

// FileImages decodes images from a file system. Decoded images are kept in a
// cost-bounded cache (cost = bytes of RGBA pixels); an evicted image is
// decoded again on the next lookup.
type FileImages struct {
	fsys   fs.FS
	cache  *ristretto.Cache[string, image.Image]
	states map[ImageHandle]LoadState
	log    logrus.FieldLogger
}

// NewFileImages returns a provider reading from fsys, caching up to maxBytes
// of decoded pixels.
func NewFileImages(fsys fs.FS, maxBytes int64, log logrus.FieldLogger) (*FileImages, error) {
	if maxBytes <= 0 {
		maxBytes = defaultImageCacheBytes
	}
	cache, err := ristretto.NewCache[string, image.Image](&ristretto.Config[string, image.Image]{
		NumCounters: 10000,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("tiled: image cache: %w", err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FileImages{
		fsys:   fsys,
		cache:  cache,
		states: make(map[ImageHandle]LoadState),
		log:    log,
	}, nil
}

// Request decodes h now. Failures are logged and recorded as LoadFailed.
func (f *FileImages) Request(h ImageHandle) {
	if f.states[h] == LoadLoaded {
		return
	}
	if _, err := f.load(h); err != nil {
		f.states[h] = LoadFailed
		f.log.WithError(err).WithField("image", h).Warn("image load failed")
		return
	}
	f.states[h] = LoadLoaded
}

func (f *FileImages) State(h ImageHandle) LoadState {
	return f.states[h]
}

func (f *FileImages) Image(h ImageHandle) (image.Image, bool) {
	if f.states[h] != LoadLoaded {
		return nil, false
	}
	if img, ok := f.cache.Get(string(h)); ok {
		return img, true
	}
	img, err := f.load(h)
	if err != nil {
		f.states[h] = LoadFailed
		f.log.WithError(err).WithField("image", h).Warn("image reload failed")
		return nil, false
	}
	return img, true
}

// Invalidate forgets h so the next Request decodes the file again.
func (f *FileImages) Invalidate(h ImageHandle) {
	f.cache.Del(string(h))
	delete(f.states, h)
}

// Close releases the cache.
func (f *FileImages) Close() {
	f.cache.Close()
}

func (f *FileImages) load(h ImageHandle) (image.Image, error) {
	file, err := f.fsys.Open(string(h))
	if err != nil {
		return nil, fmt.Errorf("tiled: open image %s: %w", h, err)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("tiled: decode image %s: %w", h, err)
	}
	b := img.Bounds()
	f.cache.Set(string(h), img, int64(b.Dx()*b.Dy()*4))
	f.cache.Wait()
	return img, nil
}
