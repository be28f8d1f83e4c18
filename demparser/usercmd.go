// This file contains the decoder for the delta-encoded user commands stored
// opaquely at the frame layer.

package demparser

import (
	"github.com/coderbot16/demoman/dem"
	"github.com/coderbot16/demoman/demparser/bitstream"
)

// ParseUserCmd decodes the payload of a UserCmdFrame: a fixed sequence of
// presence bits, each gating a fixed-width field. Absent fields keep their
// previous-tick value, so the result carries nil for them.
func ParseUserCmd(data []byte) (*dem.UserCmdDelta, error) {
	s := &stickyReader{r: bitstream.NewBitReader(data)}

	delta := &dem.UserCmdDelta{
		CommandNumber: optionalU32(s),
		TickCount:     optionalU32(s),
		ViewAngles:    [3]*float32{optionalF32(s), optionalF32(s), optionalF32(s)},
		Forward:       optionalF32(s),
		Side:          optionalF32(s),
		Up:            optionalF32(s),
		Buttons:       optionalU32(s),
		Impulse:       optionalU8(s),
	}

	if s.bit() {
		selection := &dem.WeaponSelect{Weapon: uint16(s.bits(11))}
		if s.bit() {
			subtype := uint8(s.bits(6))
			selection.Subtype = &subtype
		}

		delta.WeaponSelect = selection
	}

	delta.MouseDeltaX = optionalI16(s)
	delta.MouseDeltaY = optionalI16(s)

	if s.err != nil {
		return nil, s.err
	}

	return delta, nil
}

func optionalU32(s *stickyReader) *uint32 {
	if !s.bit() {
		return nil
	}

	v := s.u32()
	return &v
}

func optionalF32(s *stickyReader) *float32 {
	if !s.bit() {
		return nil
	}

	v := s.f32()
	return &v
}

func optionalU8(s *stickyReader) *uint8 {
	if !s.bit() {
		return nil
	}

	v := s.u8()
	return &v
}

func optionalI16(s *stickyReader) *int16 {
	if !s.bit() {
		return nil
	}

	v := s.i16()
	return &v
}
