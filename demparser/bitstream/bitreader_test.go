package bitstream

import (
	"errors"
	"math"
	"testing"
)

func TestReadBitsNibbles(t *testing.T) {
	r := NewBitReader([]byte{0xAB, 0xCD})

	for i, expected := range []uint32{0xB, 0xA, 0xD, 0xC} {
		got, err := r.ReadBits(4)
		if err != nil {
			t.Fatalf("read %d: unexpected error: %v", i, err)
		}
		if got != expected {
			t.Errorf("read %d: expected %X, got %X", i, expected, got)
		}
	}

	_, err := r.ReadBit()
	var insufficient *InsufficientBits
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientBits, got %v", err)
	}
	if insufficient.Requested != 1 || insufficient.Available != 0 {
		t.Errorf("expected {1, 0}, got {%d, %d}", insufficient.Requested, insufficient.Available)
	}
}

func TestReadBit(t *testing.T) {
	r := NewBitReader([]byte{0xAA, 0xAA})

	for expected := false; r.RemainingBits() > 0; expected = !expected {
		got, err := r.ReadBit()
		if err != nil {
			t.Fatal(err)
		}
		if got != expected {
			t.Errorf("expected %v, got %v", expected, got)
		}
	}
}

func TestReadBitsFullRegister(t *testing.T) {
	r := NewBitReader([]byte{0x78, 0x56, 0x34, 0x12, 0xFF})

	got, err := r.ReadBits(32)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x12345678 {
		t.Errorf("expected 12345678, got %X", got)
	}

	// The register must be refilled and ready after a full-width read.
	b, err := r.ReadU8()
	if err != nil {
		t.Fatal(err)
	}
	if b != 0xFF {
		t.Errorf("expected FF, got %X", b)
	}
}

func TestReadBitsStraddle(t *testing.T) {
	// 3 bits, then 32 bits spanning the register refill boundary.
	r := NewBitReader([]byte{0xFF, 0x00, 0x00, 0x00, 0xE0, 0x01})

	if _, err := r.ReadBits(3); err != nil {
		t.Fatal(err)
	}

	got, err := r.ReadBits(32)
	if err != nil {
		t.Fatal(err)
	}
	// Low 29 bits of 0x000000FF >> 3, high 3 bits from 0xE0's low end.
	expected := uint32(0x1F) | uint32(0)<<5 | uint32(0)<<13 | uint32(0)<<21 | uint32(0xE0&0x07)<<29
	if got != expected {
		t.Errorf("expected %08X, got %08X", expected, got)
	}

	remaining, err := r.ReadBits(13)
	if err != nil {
		t.Fatal(err)
	}
	if remaining != (uint32(0xE0)>>3)|uint32(0x01)<<5 {
		t.Errorf("unexpected trailing value %X", remaining)
	}
}

func TestReadBitsUnderflow(t *testing.T) {
	r := NewBitReader([]byte{0xFF})

	if _, err := r.ReadBits(3); err != nil {
		t.Fatal(err)
	}

	_, err := r.ReadBits(9)
	var insufficient *InsufficientBits
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientBits, got %v", err)
	}
	if insufficient.Requested != 9 || insufficient.Available != 5 {
		t.Errorf("expected {9, 5}, got {%d, %d}", insufficient.Requested, insufficient.Available)
	}

	// The failed read must not have consumed the remaining bits.
	got, err := r.ReadBits(5)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x1F {
		t.Errorf("expected 1F, got %X", got)
	}
}

func TestRemainingBits(t *testing.T) {
	data := make([]byte, 9)
	r := NewBitReader(data)

	consumed := 0
	for _, n := range []uint8{1, 7, 3, 32, 13} {
		if _, err := r.ReadBits(n); err != nil {
			t.Fatal(err)
		}
		consumed += int(n)

		if got := r.RemainingBits(); got != len(data)*8-consumed {
			t.Errorf("after %d bits: expected %d remaining, got %d", consumed, len(data)*8-consumed, got)
		}
	}
}

func TestReadVarU32(t *testing.T) {
	cases := []struct {
		data     []byte
		expected uint32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x7F}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xE5, 0x8E, 0x26}, 624485},
		{[]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}, 0xFFFFFFFF},
	}

	for _, c := range cases {
		r := NewBitReader(c.data)

		got, err := r.ReadVarU32()
		if err != nil {
			t.Fatal(err)
		}
		if got != c.expected {
			t.Errorf("% x: expected %d, got %d", c.data, c.expected, got)
		}
		if r.RemainingBits() != 0 {
			t.Errorf("% x: %d bits left unconsumed", c.data, r.RemainingBits())
		}
	}
}

func TestReadVar(t *testing.T) {
	// Selector 0: 4-bit value 9. Bits on the wire, LSB first:
	// 00 (selector), 1001 (value).
	r := NewBitReader([]byte{0x24})
	got, err := r.ReadVar()
	if err != nil {
		t.Fatal(err)
	}
	if got != 9 {
		t.Errorf("expected 9, got %d", got)
	}

	// Selector 3: full 32-bit follow-up.
	r = NewBitReader([]byte{0x03, 0x12, 0x00, 0x00, 0x00, 0x00})
	got, err = r.ReadVar()
	if err != nil {
		t.Fatal(err)
	}
	if got != uint32(0x12)<<6 {
		t.Errorf("unexpected value %d", got)
	}
}

func TestReadCoordZero(t *testing.T) {
	// Both presence flags clear: +0.0, no sign bit consumed.
	r := NewBitReader([]byte{0x00})

	got, err := r.ReadCoord()
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 || math.Signbit(float64(got)) {
		t.Errorf("expected +0.0, got %v", got)
	}
	if r.RemainingBits() != 6 {
		t.Errorf("expected 6 bits remaining, got %d", r.RemainingBits())
	}
}

func TestReadCoord(t *testing.T) {
	// integral=1, fractional=1, sign=1, integer=2 (wire 1), fraction=16.
	// Wire bits LSB first: 1 1 1, then 14 bits of 1, then 5 bits of 16.
	value := uint32(1) | 1<<1 | 1<<2 | 1<<3 | 16<<17
	data := []byte{byte(value), byte(value >> 8), byte(value >> 16)}

	r := NewBitReader(data)
	got, err := r.ReadCoord()
	if err != nil {
		t.Fatal(err)
	}
	if got != -2.5 {
		t.Errorf("expected -2.5, got %v", got)
	}
}

func TestReadCoordFractionalOnly(t *testing.T) {
	// integral=0, fractional=1, sign=0, fraction=1 -> 1/32.
	value := uint32(0) | 1<<1 | 0<<2 | 1<<3
	r := NewBitReader([]byte{byte(value)})

	got, err := r.ReadCoord()
	if err != nil {
		t.Fatal(err)
	}
	if got != 0.03125 {
		t.Errorf("expected 0.03125, got %v", got)
	}
}

func TestReadVec3(t *testing.T) {
	// Presence x only, then coord with integral=1, sign=0, integer=4 (wire 3).
	value := uint32(1) | 0<<1 | 0<<2 | 1<<3 | 0<<4 | 0<<5 | 3<<6
	data := []byte{byte(value), byte(value >> 8), byte(value >> 16)}

	r := NewBitReader(data)
	v, err := r.ReadVec3()
	if err != nil {
		t.Fatal(err)
	}
	if v[0] != 4 || v[1] != 0 || v[2] != 0 {
		t.Errorf("expected (4, 0, 0), got %v", v)
	}
}

func TestReadString(t *testing.T) {
	r := NewBitReader([]byte{'a', 'b', 'c', 0, 'd'})

	got, err := r.ReadString()
	if err != nil {
		t.Fatal(err)
	}
	if got != "abc" {
		t.Errorf("expected abc, got %q", got)
	}
	// Terminator consumed, following byte intact.
	b, err := r.ReadU8()
	if err != nil {
		t.Fatal(err)
	}
	if b != 'd' {
		t.Errorf("expected d, got %c", b)
	}
}

func TestReadStringInvalidUTF8(t *testing.T) {
	r := NewBitReader([]byte{0xFF, 0xFE, 0})

	_, err := r.ReadString()
	var invalid *InvalidUTF8
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidUTF8, got %v", err)
	}
}

func TestReadBytesUnaligned(t *testing.T) {
	r := NewBitReader([]byte{0x0F, 0xF0, 0xAA})

	if _, err := r.ReadBits(4); err != nil {
		t.Fatal(err)
	}

	data, err := r.ReadBytes(2)
	if err != nil {
		t.Fatal(err)
	}
	if data[0] != 0x00 || data[1] != 0xAF {
		t.Errorf("expected 00 af, got % x", data)
	}
}

func TestReadF32(t *testing.T) {
	bits := math.Float32bits(1.5)
	r := NewBitReader([]byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)})

	got, err := r.ReadF32()
	if err != nil {
		t.Fatal(err)
	}
	if got != 1.5 {
		t.Errorf("expected 1.5, got %v", got)
	}
}
