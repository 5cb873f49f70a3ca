package repository

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/okian/cragcast/internal/domain/types"
	"github.com/okian/cragcast/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: score DESC, then cragID ASC (deterministic).
// "less" means ranks earlier, so in-order traversal yields the ranking
// from best to worst. Every node keeps its subtree size, which lets Rank
// count better crags in O(log n).

// scoreScale keeps scores as fixed point; scores carry two decimals.
const scoreScale = 1_000_000

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	return scoreFP(math.Round(x * scoreScale))
}

func toFloat(x scoreFP) float64 {
	return float64(x) / scoreScale
}

type node struct {
	id    string
	score scoreFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aID) should appear before (bScore, bID).
func less(aScore scoreFP, aID string, bScore scoreFP, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n, nn *node) *node {
	if n == nil {
		return nn
	}
	if less(nn.score, nn.id, n.score, n.id) {
		n.left = insert(n.left, nn)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, nn)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score scoreFP) *node {
	if n == nil {
		return nil
	}
	switch {
	case score == n.score && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	case less(score, id, n.score, n.id):
		n.left = deleteNode(n.left, id, score)
	default:
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// countAbove returns how many nodes have a score strictly greater than score.
func countAbove(n *node, score scoreFP) int {
	count := 0
	for n != nil {
		if n.score > score {
			count += 1 + nsize(n.left)
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

// collectTopN appends up to limit nodes in rank order.
func collectTopN(n *node, limit int, out *[]*node) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

type TreapStore struct {
	mu   sync.RWMutex
	root *node
	byID map[string]types.CragEntry
	seed uint64
	rng  *rand.Rand
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		byID: make(map[string]types.CragEntry),
		seed: uint64(time.Now().UnixNano()), //nolint:gosec // priorities only
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rng = rand.New(rand.NewPCG(s.seed, s.seed^0x9e3779b97f4a7c15)) //nolint:gosec // priorities only
	return s
}

// Upsert implements Store.Upsert with O(log n) expected time.
func (s *TreapStore) Upsert(_ context.Context, e types.CragEntry) error {
	if e.CragID == "" || math.IsNaN(e.Score) || math.IsInf(e.Score, 0) {
		metrics.RecordErrorByComponent("repository", "invalid_entry")
		return fmt.Errorf("%w: %q", ErrInvalidEntry, e.CragID)
	}
	ns := toFixedPoint(e.Score)
	e.Score = toFloat(ns)
	e.Rank = 0

	s.mu.Lock()
	if old, ok := s.byID[e.CragID]; ok {
		s.root = deleteNode(s.root, e.CragID, toFixedPoint(old.Score))
	}
	s.byID[e.CragID] = e
	s.root = insert(s.root, &node{id: e.CragID, score: ns, prio: s.rng.Uint64(), size: 1})
	count := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateRankedCrags(count)
	return nil
}

// Remove implements Store.Remove.
func (s *TreapStore) Remove(_ context.Context, cragID string) error {
	s.mu.Lock()
	old, ok := s.byID[cragID]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.root = deleteNode(s.root, cragID, toFixedPoint(old.Score))
	delete(s.byID, cragID)
	count := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateRankedCrags(count)
	return nil
}

// Rank returns the current rank and score for a crag in O(log n).
// Crags with equal scores share a rank.
func (s *TreapStore) Rank(_ context.Context, cragID string) (types.CragEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byID[cragID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return types.CragEntry{}, ErrNotFound
	}
	e.Rank = 1 + countAbove(s.root, toFixedPoint(e.Score))
	return e, nil
}

// TopN returns the top N crags ordered by score desc, then id asc.
func (s *TreapStore) TopN(_ context.Context, n int) ([]types.CragEntry, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*node, 0, min(n, len(s.byID)))
	collectTopN(s.root, n, &nodes)

	out := make([]types.CragEntry, len(nodes))
	for i, nd := range nodes {
		out[i] = s.byID[nd.id]
		if i > 0 && nodes[i-1].score == nd.score {
			out[i].Rank = out[i-1].Rank
		} else {
			out[i].Rank = i + 1
		}
	}
	return out, nil
}

// Count returns the number of ranked crags.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
