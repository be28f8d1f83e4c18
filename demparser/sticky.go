// This file contains a sticky-error wrapper over the bit reader. The nested
// bit formats read dozens of fields in sequence; the wrapper lets a decoder
// read a whole record and check for failure once, before any state is
// mutated.

package demparser

import (
	"github.com/coderbot16/demoman/demparser/bitstream"
)

// stickyReader wraps a BitReader and latches the first error. After a
// failure every further read returns the zero value.
type stickyReader struct {
	r   *bitstream.BitReader
	err error
}

func (s *stickyReader) bit() bool {
	if s.err != nil {
		return false
	}

	v, err := s.r.ReadBit()
	s.err = err

	return v
}

func (s *stickyReader) bits(count uint8) uint32 {
	if s.err != nil {
		return 0
	}

	v, err := s.r.ReadBits(count)
	s.err = err

	return v
}

func (s *stickyReader) u8() uint8 {
	return uint8(s.bits(8))
}

func (s *stickyReader) u16() uint16 {
	return uint16(s.bits(16))
}

func (s *stickyReader) u32() uint32 {
	return s.bits(32)
}

func (s *stickyReader) i16() int16 {
	return int16(s.bits(16))
}

func (s *stickyReader) i32() int32 {
	return int32(s.bits(32))
}

func (s *stickyReader) f32() float32 {
	if s.err != nil {
		return 0
	}

	v, err := s.r.ReadF32()
	s.err = err

	return v
}

func (s *stickyReader) str() string {
	if s.err != nil {
		return ""
	}

	v, err := s.r.ReadString()
	s.err = err

	return v
}

func (s *stickyReader) varU32() uint32 {
	if s.err != nil {
		return 0
	}

	v, err := s.r.ReadVarU32()
	s.err = err

	return v
}

func (s *stickyReader) vec3() [3]float32 {
	if s.err != nil {
		return [3]float32{}
	}

	v, err := s.r.ReadVec3()
	s.err = err

	return v
}

func (s *stickyReader) bytes(count int) []byte {
	if s.err != nil {
		return nil
	}

	v, err := s.r.ReadBytes(count)
	s.err = err

	return v
}

func (s *stickyReader) blob(count int) bitstream.Bits {
	if s.err != nil {
		return bitstream.Bits{}
	}

	v, err := bitstream.CopyInto(s.r, count)
	s.err = err

	return v
}
