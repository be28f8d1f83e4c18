// This file contains the Bits blob: an owned, bit-length-tagged byte buffer
// used to pass nested payloads between parsing layers.

package bitstream

// Bits is an owned byte buffer whose logical length is measured in bits.
// When trailingBits is nonzero the last byte holds that many bits in its
// low-order positions; readers must not observe bits past the logical
// length.
type Bits struct {
	data         []byte
	trailingBits uint8
}

// FromBytes wraps a fully byte-aligned buffer.
func FromBytes(data []byte) Bits {
	return Bits{data: data}
}

// CopyInto copies the next count bits out of the reader into an owned Bits
// value. Whole bytes are read bit-wise so the copy is correct even when the
// reader is not byte-aligned; a trailing sub-byte group is stored in the low
// bits of one extra byte.
func CopyInto(r *BitReader, count int) (Bits, error) {
	if !r.HasRemaining(count) {
		return Bits{}, &InsufficientBits{Requested: count, Available: r.RemainingBits()}
	}

	trailing := uint8(count % 8)
	wholeBytes := count / 8

	size := wholeBytes
	if trailing != 0 {
		size++
	}
	data := make([]byte, 0, size)

	for i := 0; i < wholeBytes; i++ {
		b, err := r.ReadU8()
		if err != nil {
			return Bits{}, err
		}

		data = append(data, b)
	}

	if trailing != 0 {
		v, err := r.ReadBits(trailing)
		if err != nil {
			return Bits{}, err
		}

		data = append(data, byte(v))
	}

	return Bits{data: data, trailingBits: trailing}, nil
}

// Reader returns a fresh BitReader over the stored bytes. Callers must
// respect Len: the trailing byte, if any, is only meaningful up to the
// trailing bit count.
func (b Bits) Reader() *BitReader {
	return NewBitReader(b.data)
}

// Len returns the logical length in bits.
func (b Bits) Len() int {
	if b.trailingBits == 0 {
		return len(b.data) * 8
	}

	return (len(b.data)-1)*8 + int(b.trailingBits)
}

// TrailingBits returns the sub-byte width of the final byte; zero means the
// buffer is fully byte-aligned.
func (b Bits) TrailingBits() uint8 {
	return b.trailingBits
}

// RawBytes returns the backing buffer.
func (b Bits) RawBytes() []byte {
	return b.data
}
