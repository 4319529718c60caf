// Copyright (c) 2025 The kukad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pow

import (
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/dchest/siphash"
)

// Cuckoo Cycle proofs are cycles in a bipartite graph whose edges are
// generated pseudorandomly from a keyed SipHash-2-4.  A proof is the set of
// edge nonces forming a single cycle of the consensus-required length.  The
// verifier below rebuilds the named edges and walks the cycle; it never
// materializes the full graph, so verification cost is proportional to the
// proof length regardless of the graph size.

// siphashKeys derives the SipHash keys for the graph from a header pow hash.
func siphashKeys(powHash *chainhash.Hash) (uint64, uint64) {
	k0 := binary.LittleEndian.Uint64(powHash[0:8])
	k1 := binary.LittleEndian.Uint64(powHash[8:16])
	return k0, k1
}

// sipnode computes the node on one side of the bipartite graph that the edge
// with the given nonce is incident to.  Side 0 nodes and side 1 nodes live in
// separate partitions.
func sipnode(k0, k1 uint64, nonce uint32, side uint8, edgeMask uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], 2*uint64(nonce)+uint64(side))
	return siphash.Hash(k0, k1, b[:]) & edgeMask
}

// verifyCycle checks that the proof nonces are canonical (strictly ascending
// and within the edge space of the graph) and that the edges they name form a
// single cycle of exactly proofSize length.
func verifyCycle(powHash *chainhash.Hash, sizeShift uint8, proofSize int,
	proof []uint32) bool {

	if proofSize < 4 || proofSize%2 != 0 {
		return false
	}
	if len(proof) != proofSize {
		return false
	}

	numEdges := uint64(1) << uint(sizeShift)
	edgeMask := numEdges - 1
	for i, nonce := range proof {
		if uint64(nonce) >= numEdges {
			return false
		}
		if i > 0 && nonce <= proof[i-1] {
			return false
		}
	}

	// Rebuild the endpoints of every named edge.
	k0, k1 := siphashKeys(powHash)
	us := make([]uint64, proofSize)
	vs := make([]uint64, proofSize)
	for i, nonce := range proof {
		us[i] = sipnode(k0, k1, nonce, 0, edgeMask)
		vs[i] = sipnode(k0, k1, nonce, 1, edgeMask)
	}

	// In a single cycle every node is incident to exactly two of the
	// proof's edges, so each edge has a unique partner on each side.
	partnerU := matchPartners(us)
	if partnerU == nil {
		return false
	}
	partnerV := matchPartners(vs)
	if partnerV == nil {
		return false
	}

	// Walk the cycle edge by edge, alternating the side the step pivots
	// on.  A walk that returns to the first edge early found a shorter
	// sub-cycle; one that returns exactly after proofSize steps traced a
	// single full cycle.
	cur, steps := 0, 0
	for {
		if steps%2 == 0 {
			cur = partnerV[cur]
		} else {
			cur = partnerU[cur]
		}
		steps++
		if cur == 0 {
			break
		}
		if steps >= proofSize {
			return false
		}
	}
	return steps == proofSize
}

// matchPartners pairs up edges that share a node on one side of the graph.
// It returns nil when any node is not incident to exactly two edges.
func matchPartners(nodes []uint64) []int {
	byNode := make(map[uint64][]int, len(nodes))
	for i, n := range nodes {
		byNode[n] = append(byNode[n], i)
		if len(byNode[n]) > 2 {
			return nil
		}
	}

	partner := make([]int, len(nodes))
	for _, pair := range byNode {
		if len(pair) != 2 {
			return nil
		}
		partner[pair[0]] = pair[1]
		partner[pair[1]] = pair[0]
	}
	return partner
}
