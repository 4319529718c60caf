// Copyright (c) 2025 The kukad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"io"
	"math"
)

// readElement reads the next sequence of bytes from r using little endian
// depending on the concrete type of element pointed to.
func readElement(r io.Reader, element interface{}) error {
	return binary.Read(r, binary.LittleEndian, element)
}

// readElements reads multiple items from r.  It is equivalent to multiple
// calls to readElement.
func readElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		err := readElement(r, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// writeElement writes the little endian representation of element to w.
func writeElement(w io.Writer, element interface{}) error {
	return binary.Write(w, binary.LittleEndian, element)
}

// writeElements writes multiple items to w.  It is equivalent to multiple
// calls to writeElement.
func writeElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		err := writeElement(w, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// readVarInt reads a variable length integer from r and returns it as a
// uint64.
func readVarInt(r io.Reader) (uint64, error) {
	var b [1]byte
	_, err := io.ReadFull(r, b[:])
	if err != nil {
		return 0, err
	}

	var rv uint64
	discriminant := b[0]
	switch discriminant {
	case 0xff:
		var u uint64
		err = readElement(r, &u)
		if err != nil {
			return 0, err
		}
		rv = u

	case 0xfe:
		var u uint32
		err = readElement(r, &u)
		if err != nil {
			return 0, err
		}
		rv = uint64(u)

	case 0xfd:
		var u uint16
		err = readElement(r, &u)
		if err != nil {
			return 0, err
		}
		rv = uint64(u)

	default:
		rv = uint64(discriminant)
	}

	return rv, nil
}

// writeVarInt serializes val to w using a variable number of bytes depending
// on its value.
func writeVarInt(w io.Writer, val uint64) error {
	if val > math.MaxUint32 {
		err := writeElements(w, []byte{0xff}, uint64(val))
		if err != nil {
			return err
		}
		return nil
	}
	if val > math.MaxUint16 {
		err := writeElements(w, []byte{0xfe}, uint32(val))
		if err != nil {
			return err
		}
		return nil
	}
	if val >= 0xfd {
		err := writeElements(w, []byte{0xfd}, uint16(val))
		if err != nil {
			return err
		}
		return nil
	}
	return writeElement(w, uint8(val))
}
