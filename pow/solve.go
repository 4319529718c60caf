// Copyright (c) 2025 The kukad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pow

import (
	"sort"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// MaxSolveSizeShift bounds the graph size the reference solver is willing to
// materialize.  Production graph sizes are far beyond what an exhaustive
// search can handle anyway; the solver exists for simulation networks and
// tests.
const MaxSolveSizeShift = 18

// Solve searches the graph keyed by powHash for a cycle of proofSize edges
// and returns the proof nonces in ascending order.  The boolean return is
// false when the graph holds no such cycle or the size shift exceeds what the
// reference solver supports.
func Solve(powHash *chainhash.Hash, sizeShift uint8, proofSize int) ([]uint32, bool) {
	if sizeShift > MaxSolveSizeShift || proofSize < 4 || proofSize%2 != 0 {
		return nil, false
	}

	numEdges := uint32(1) << uint(sizeShift)
	edgeMask := uint64(numEdges) - 1
	k0, k1 := siphashKeys(powHash)

	// Materialize the whole graph.
	us := make([]uint64, numEdges)
	vs := make([]uint64, numEdges)
	adjU := make(map[uint64][]uint32, numEdges)
	adjV := make(map[uint64][]uint32, numEdges)
	for nonce := uint32(0); nonce < numEdges; nonce++ {
		us[nonce] = sipnode(k0, k1, nonce, 0, edgeMask)
		vs[nonce] = sipnode(k0, k1, nonce, 1, edgeMask)
		adjU[us[nonce]] = append(adjU[us[nonce]], nonce)
		adjV[vs[nonce]] = append(adjV[vs[nonce]], nonce)
	}

	s := &solver{
		us:        us,
		vs:        vs,
		adjU:      adjU,
		adjV:      adjV,
		proofSize: proofSize,
		used:      make(map[uint32]bool, proofSize),
		visU:      make(map[uint64]bool, proofSize/2),
		visV:      make(map[uint64]bool, proofSize/2),
	}

	// Try every edge as the cycle's first edge.  Every cycle contains its
	// own lowest nonce, so trying each edge in turn misses nothing.
	for start := uint32(0); start < numEdges; start++ {
		s.path = s.path[:0]
		s.path = append(s.path, start)
		s.used[start] = true
		s.visU[us[start]] = true
		s.visV[vs[start]] = true

		if s.search(us[start], vs[start], 1, 1) {
			proof := append([]uint32(nil), s.path...)
			sort.Slice(proof, func(i, j int) bool {
				return proof[i] < proof[j]
			})
			return proof, true
		}

		delete(s.used, start)
		delete(s.visU, us[start])
		delete(s.visV, vs[start])
	}
	return nil, false
}

// solver holds the state of a depth-first search for a simple cycle.
type solver struct {
	us, vs     []uint64
	adjU, adjV map[uint64][]uint32
	proofSize  int
	path       []uint32
	used       map[uint32]bool
	visU, visV map[uint64]bool
}

// search extends the current path from the node cur, which lies on the given
// side of the graph (0 for u, 1 for v), looking for a way back to home with
// exactly proofSize-depth more edges.  Nodes may not repeat, so only simple
// cycles are found.
func (s *solver) search(home, cur uint64, side uint8, depth int) bool {
	adj := s.adjU
	other := s.vs
	vis := s.visV
	if side == 1 {
		adj = s.adjV
		other = s.us
		vis = s.visU
	}

	for _, nonce := range adj[cur] {
		if s.used[nonce] {
			continue
		}
		next := other[nonce]

		if depth == s.proofSize-1 {
			// The final edge must close the cycle back at the
			// starting node.  It always pivots on the v side since
			// the proof size is even.
			if next == home {
				s.path = append(s.path, nonce)
				return true
			}
			continue
		}
		if vis[next] {
			continue
		}

		s.used[nonce] = true
		s.path = append(s.path, nonce)
		vis[next] = true
		if s.search(home, next, 1-side, depth+1) {
			return true
		}
		delete(vis, next)
		s.path = s.path[:len(s.path)-1]
		delete(s.used, nonce)
	}
	return false
}
