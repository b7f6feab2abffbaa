package tiled

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported matches every UnsupportedError with errors.Is.
var ErrUnsupported = errors.New("tiled: unsupported")

// UnsupportedError reports map content this package declines to spawn. The
// affected layer, tile or shape is skipped; the rest of the map still loads.
type UnsupportedError struct {
	Feature string // e.g. "infinite layer", "orientation"
	Map     MapHandle
	Layer   string
	Tileset TilesetIndex
	Tile    TileID
	Detail  string
}

func (e *UnsupportedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tiled: unsupported %s", e.Feature)
	if e.Map != "" {
		fmt.Fprintf(&b, " in map %s", e.Map)
	}
	if e.Layer != "" {
		fmt.Fprintf(&b, " layer %q", e.Layer)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}
