// Copyright (c) 2025 The kukad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// CommitmentSize is the size in bytes of a serialized Pedersen
	// commitment, a compressed secp256k1 point.
	CommitmentSize = 33

	// maxSigLen is the maximum length of a DER encoded ECDSA signature.
	maxSigLen = 72

	// maxBodyElements is the maximum number of inputs, outputs or kernels
	// a serialized block body is allowed to carry.  It only bounds
	// allocations when deserializing untrusted data.
	maxBodyElements = 1 << 20
)

// Commitment is a Pedersen commitment to a transaction value, serialized as a
// compressed secp256k1 point.
type Commitment [CommitmentSize]byte

// KernelFeatures identifies the variant of a transaction kernel.
type KernelFeatures uint8

const (
	// KernelPlain is a regular transaction kernel.
	KernelPlain KernelFeatures = 0

	// KernelCoinbase marks the kernel whose excess absorbs the block
	// subsidy.
	KernelCoinbase KernelFeatures = 1
)

// TxKernel carries the public excess of an aggregated transaction along with
// a signature proving the excess is a commitment to zero value.
type TxKernel struct {
	// Features identifies the kernel variant.
	Features KernelFeatures

	// Fee absorbed by this kernel, in the smallest currency unit.
	Fee uint64

	// Excess is the remainder commitment after summing the transaction's
	// outputs minus its inputs.
	Excess Commitment

	// ExcessSig is a DER encoded ECDSA signature over the kernel signing
	// hash made with the blinding factor behind Excess.
	ExcessSig []byte
}

// SignHash computes the hash the excess signature commits to.  It covers
// every kernel field except the signature itself.
func (k *TxKernel) SignHash() chainhash.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, 1+8+CommitmentSize))
	_ = writeElements(buf, uint8(k.Features), k.Fee, &k.Excess)

	return chainhash.DoubleHashH(buf.Bytes())
}

// Block describes a full kukad block: a header along with the aggregated
// transaction body the chain validates against it.  Blocks are treated as
// immutable once constructed.
type Block struct {
	Header BlockHeader

	// Inputs are commitments to outputs of previous blocks being spent.
	Inputs []Commitment

	// Outputs are the commitments created by this block.
	Outputs []Commitment

	// Kernels carry the excesses and signatures balancing the body.
	Kernels []TxKernel
}

// BlockHash computes the block identifier hash, which is the hash of the
// block's header.
func (b *Block) BlockHash() chainhash.Hash {
	return b.Header.BlockHash()
}

// Serialize encodes the block into w using a format that is suitable for
// long-term storage such as a database.
func (b *Block) Serialize(w io.Writer) error {
	err := writeBlockHeader(w, &b.Header)
	if err != nil {
		return err
	}

	err = writeVarInt(w, uint64(len(b.Inputs)))
	if err != nil {
		return err
	}
	for i := range b.Inputs {
		err = writeElement(w, &b.Inputs[i])
		if err != nil {
			return err
		}
	}

	err = writeVarInt(w, uint64(len(b.Outputs)))
	if err != nil {
		return err
	}
	for i := range b.Outputs {
		err = writeElement(w, &b.Outputs[i])
		if err != nil {
			return err
		}
	}

	err = writeVarInt(w, uint64(len(b.Kernels)))
	if err != nil {
		return err
	}
	for i := range b.Kernels {
		err = writeTxKernel(w, &b.Kernels[i])
		if err != nil {
			return err
		}
	}
	return nil
}

// Deserialize decodes a block from r into the receiver using a format that is
// suitable for long-term storage such as a database.
func (b *Block) Deserialize(r io.Reader) error {
	err := readBlockHeader(r, &b.Header)
	if err != nil {
		return err
	}

	b.Inputs, err = readCommitments(r)
	if err != nil {
		return err
	}
	b.Outputs, err = readCommitments(r)
	if err != nil {
		return err
	}

	count, err := readVarInt(r)
	if err != nil {
		return err
	}
	if count > maxBodyElements {
		return messageError("Block.Deserialize", "too many kernels")
	}
	b.Kernels = make([]TxKernel, count)
	for i := uint64(0); i < count; i++ {
		err = readTxKernel(r, &b.Kernels[i])
		if err != nil {
			return err
		}
	}
	return nil
}

// Bytes returns the serialized block.
func (b *Block) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	err := b.Serialize(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromBytes deserializes a block byte slice.
func (b *Block) FromBytes(buf []byte) error {
	return b.Deserialize(bytes.NewReader(buf))
}

// readCommitments reads a varint-counted list of commitments from r.
func readCommitments(r io.Reader) ([]Commitment, error) {
	count, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	if count > maxBodyElements {
		return nil, messageError("readCommitments", "too many commitments")
	}
	commits := make([]Commitment, count)
	for i := uint64(0); i < count; i++ {
		err = readElement(r, &commits[i])
		if err != nil {
			return nil, err
		}
	}
	return commits, nil
}

// writeTxKernel writes a transaction kernel to w.
func writeTxKernel(w io.Writer, k *TxKernel) error {
	err := writeElements(w, uint8(k.Features), k.Fee, &k.Excess)
	if err != nil {
		return err
	}
	err = writeVarInt(w, uint64(len(k.ExcessSig)))
	if err != nil {
		return err
	}
	_, err = w.Write(k.ExcessSig)
	return err
}

// readTxKernel reads a transaction kernel from r.
func readTxKernel(r io.Reader, k *TxKernel) error {
	var features uint8
	err := readElements(r, &features, &k.Fee, &k.Excess)
	if err != nil {
		return err
	}
	k.Features = KernelFeatures(features)

	sigLen, err := readVarInt(r)
	if err != nil {
		return err
	}
	if sigLen > maxSigLen {
		return messageError("readTxKernel", "signature too long")
	}
	k.ExcessSig = make([]byte, sigLen)
	_, err = io.ReadFull(r, k.ExcessSig)
	return err
}
