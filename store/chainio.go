// Copyright (c) 2025 The kukad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"encoding/binary"
	"fmt"

	"github.com/kukanet/kukad/chain"
	"github.com/kukanet/kukad/consensus"
)

// The chain head is serialized as follows:
//
//   [0:8]   height (little endian)
//   [8:16]  total difficulty (little endian)
//   [16:48] last block hash
//   [48:80] previous block hash
const tipSerializedLen = 80

// serializeTip returns the serialization of the given tip suitable for
// storage.
func serializeTip(tip chain.Tip) []byte {
	var buf [tipSerializedLen]byte
	binary.LittleEndian.PutUint64(buf[0:8], tip.Height)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(tip.TotalDifficulty))
	copy(buf[16:48], tip.LastBlock[:])
	copy(buf[48:80], tip.PrevBlock[:])
	return buf[:]
}

// deserializeTip decodes a tip from its serialized form.
func deserializeTip(data []byte) (chain.Tip, error) {
	if len(data) != tipSerializedLen {
		return chain.Tip{}, fmt.Errorf("store: corrupt chain head: "+
			"%d bytes", len(data))
	}

	var tip chain.Tip
	tip.Height = binary.LittleEndian.Uint64(data[0:8])
	tip.TotalDifficulty = consensus.Difficulty(
		binary.LittleEndian.Uint64(data[8:16]))
	copy(tip.LastBlock[:], data[16:48])
	copy(tip.PrevBlock[:], data[48:80])
	return tip, nil
}
