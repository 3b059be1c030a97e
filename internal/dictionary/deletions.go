package dictionary

import (
	"fmt"

	apperrors "github.com/Adithya-Monish-Kumar-K/fastspell/pkg/errors"
)

// Action tells Deletions how to continue once a variant has been visited.
type Action int

const (
	// Descend continues with the deletions of the visited variant.
	Descend Action = iota
	// Prune skips the deletions of the visited variant but keeps walking
	// its siblings.
	Prune
	// Stop abandons the walk.
	Stop
)

// Variant is one string reachable from the walked text by deleting Depth
// bytes. Text aliases scratch storage and is only valid during the visit.
type Variant struct {
	Text  []byte
	Depth int
	// Deletions holds, for the first Depth entries, the position of each
	// deletion in the coordinates of Text. Positions are non-decreasing.
	Deletions [MaxDistance]uint8
}

// LastDeletion returns the position of the most recent deletion, or -1 for
// the source word.
func (v *Variant) LastDeletion() int {
	if v.Depth == 0 {
		return -1
	}
	return int(v.Deletions[v.Depth-1])
}

// VisitFunc is called once per generated variant.
type VisitFunc func(v *Variant) Action

type generator struct {
	bufs     [MaxDistance + 1][MaxWordLen]byte
	variant  Variant
	maxDepth int
	visit    VisitFunc
}

// Deletions walks, depth first, every variant of text obtained by deleting
// between 0 and maxDepth bytes. Each subset of deleted positions is visited
// exactly once: the next deletion is always taken at or after the previous
// one in the already shortened buffer. It reports false if the walk was
// stopped by the visitor.
//
// Text of MaxWordLen bytes or more fails with ErrWordTooLong and a maxDepth
// outside [0, MaxDistance] with ErrInvalidDistance; nothing is visited.
func Deletions(text string, maxDepth int, visit VisitFunc) (bool, error) {
	if len(text) >= MaxWordLen {
		return false, fmt.Errorf("%w: length %d, must be below %d", apperrors.ErrWordTooLong, len(text), MaxWordLen)
	}
	if maxDepth < 0 || maxDepth > MaxDistance {
		return false, fmt.Errorf("%w: depth %d outside 0..%d", apperrors.ErrInvalidDistance, maxDepth, MaxDistance)
	}
	g := &generator{maxDepth: maxDepth, visit: visit}
	n := copy(g.bufs[0][:], text)
	return g.walk(n, 0, 0), nil
}

func (g *generator) walk(n, start, depth int) bool {
	cur := g.bufs[depth][:n]
	g.variant.Text = cur
	g.variant.Depth = depth
	switch g.visit(&g.variant) {
	case Stop:
		return false
	case Prune:
		return true
	}
	if depth >= g.maxDepth {
		return true
	}

	// Each depth owns its own buffer, so a child never has to undo its edit.
	next := g.bufs[depth+1][:]
	for i := start; i < n; i++ {
		copy(next, cur[:i])
		copy(next[i:], cur[i+1:])
		g.variant.Deletions[depth] = uint8(i)
		if !g.walk(n-1, i, depth+1) {
			return false
		}
	}
	g.variant.Deletions[depth] = 0
	return true
}
