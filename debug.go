package tiled

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// globalDebug enables tree sanity checks on every node operation.
var globalDebug bool

// debugLog receives the warnings of the tree checks.
var debugLog logrus.FieldLogger = logrus.StandardLogger()

// SetDebugMode turns the node tree checks on or off. Warnings go to log, or
// to the standard logrus logger when log is nil.
func SetDebugMode(enabled bool, log logrus.FieldLogger) {
	globalDebug = enabled
	if log == nil {
		log = logrus.StandardLogger()
	}
	debugLog = log
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("tiled debug: %s on disposed node %q", op, n.Name))
	}
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		debugLog.WithFields(logrus.Fields{"node": n.Name, "depth": depth}).
			Warnf("tree depth exceeds %d", debugMaxTreeDepth)
	}
}

// debugCheckChildCount warns if a node has more than the threshold of
// children. Tile layers legitimately exceed it on large maps.
const debugMaxChildCount = 1 << 16

func debugCheckChildCount(n *Node) {
	if len(n.children) == debugMaxChildCount+1 {
		debugLog.WithFields(logrus.Fields{"node": n.Name, "children": len(n.children)}).
			Warnf("node has more than %d children", debugMaxChildCount)
	}
}
