package tiled

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Fade tweens an entity's alpha. The loader uses it to fade freshly spawned
// layers in from transparent to their opacity. If the entity is despawned
// the fade stops immediately.
type Fade struct {
	tween  *gween.Tween
	target Entity
	Done   bool
}

// NewFade creates a fade of e from one alpha to another over d.
func NewFade(e Entity, from, to float64, d time.Duration, fn ease.TweenFunc) *Fade {
	if fn == nil {
		fn = ease.Linear
	}
	return &Fade{
		tween:  gween.New(float32(from), float32(to), float32(d.Seconds()), fn),
		target: e,
	}
}

// Update advances the fade by dt and writes the alpha to g.
func (f *Fade) Update(dt time.Duration, g SceneGraph) {
	if f.Done {
		return
	}
	if !g.Alive(f.target) {
		f.Done = true
		return
	}
	val, finished := f.tween.Update(float32(dt.Seconds()))
	g.SetAlpha(f.target, float64(val))
	f.Done = finished
}
