package bml

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// globalDebug mirrors the most recently set Graph debug flag so that node
// operations (which lack a Graph pointer) can check it cheaply. Only valid
// with a single Graph; multiple Graphs with differing debug modes will
// reflect whichever called SetDebugMode last.
var (
	globalDebug    bool
	globalDebugLog = zap.NewNop()
)

// frameStats holds per-frame timing and command metrics.
// Only populated when the scene is in debug mode.
type frameStats struct {
	mutations    int
	tickTime     time.Duration
	renderTime   time.Duration
	commandCount int
}

func (s *Scene) debugLog(stats frameStats) {
	if !s.debug {
		return
	}
	s.log.Debug("frame",
		zap.Uint64("frame", s.frames),
		zap.Int("mutations", stats.mutations),
		zap.Duration("tick", stats.tickTime),
		zap.Duration("render", stats.renderTime),
		zap.Int("commands", stats.commandCount),
	)
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. In release mode callers skip this entirely.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("bml debug: %s on disposed node %q", op, n.Name))
	}
}

// debugMaxTreeDepth is the depth past which debugCheckTreeDepth warns.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		globalDebugLog.Warn("tree depth exceeds threshold",
			zap.Int("depth", depth), zap.Int("threshold", debugMaxTreeDepth), zap.String("node", n.Name))
	}
}

// debugMaxChildCount is the child count past which debugCheckChildCount warns.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		globalDebugLog.Warn("child count exceeds threshold",
			zap.String("node", n.Name), zap.Int("children", len(n.children)), zap.Int("threshold", debugMaxChildCount))
	}
}
