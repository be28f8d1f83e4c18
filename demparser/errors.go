// This file contains the error taxonomy of the parser. The bit layer only
// produces bitstream.InsufficientBits; every layer above wraps lower-layer
// errors with the context of the payload being decoded.

package demparser

import (
	"errors"
	"fmt"

	"github.com/coderbot16/demoman/dem"
	"github.com/coderbot16/demoman/dem/demmsg"
)

var (
	// ErrNotDemoFile indicates the given file (or byte slice) is not a
	// valid demo file.
	ErrNotDemoFile = errors.New("not a demo file")

	// ErrParsing indicates that an unexpected error occurred, which may
	// be due to a corrupt / invalid demo file, or some implementation
	// error.
	ErrParsing = errors.New("parsing")

	// ErrCompressedSizeTooSmall is returned when a compressed
	// string-table block is too small to carry its compression magic.
	ErrCompressedSizeTooSmall = errors.New("compressed string table block is smaller than its magic")
)

// BadFrameKindError is returned when a frame tag falls outside the closed
// set 1..=8. Frame tags are byte-layer framing, so this is fatal.
type BadFrameKindError struct {
	Tag byte
}

func (e *BadFrameKindError) Error() string {
	return fmt.Sprintf("bad frame kind tag %d", e.Tag)
}

// BadMessageKindError is returned when a message tag falls outside the
// closed set 0..=31. With a correct tag width this is arithmetically
// impossible, so it terminates the dispatcher.
type BadMessageKindError struct {
	Tag byte
}

func (e *BadMessageKindError) Error() string {
	return fmt.Sprintf("bad message kind tag %d", e.Tag)
}

// UnsupportedMessageError is returned for wire tags that are valid but that
// the decoder does not claim to support (Disconnect, DataTable,
// HltvControl, TerrainMod, GetCvar, and ClassInfo bodies carried inline).
type UnsupportedMessageError struct {
	Kind demmsg.Kind
}

func (e *UnsupportedMessageError) Error() string {
	return fmt.Sprintf("message kind %v is not supported", e.Kind)
}

// BadEnumIndexError is returned when an on-wire value falls outside a
// closed enum set.
type BadEnumIndexError struct {
	Enum  string
	Value uint32
}

func (e *BadEnumIndexError) Error() string {
	return fmt.Sprintf("bad %s index %d", e.Enum, e.Value)
}

// OutOfBoundsError is returned when a structurally valid field references a
// slot outside its declared range, such as a string-table row index or a
// history back-reference.
type OutOfBoundsError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("%s %d outside range %d..=%d", e.Field, e.Value, e.Min, e.Max)
}

// BadCompressionTypeError is returned when a compressed string-table block
// carries neither the SNAP nor the LZSS magic.
type BadCompressionTypeError struct {
	FourCC uint32
}

func (e *BadCompressionTypeError) Error() string {
	return fmt.Sprintf("expected string table compression magic 'SNAP' or 'LZSS', got %08X", e.FourCC)
}

// DecompressionError wraps a failure inside the decompression codec itself.
type DecompressionError struct {
	Err error
}

func (e *DecompressionError) Error() string {
	return "decompressing string table block: " + e.Err.Error()
}

func (e *DecompressionError) Unwrap() error {
	return e.Err
}

// UnknownEventIndexError is returned when a game event references an index
// the schema does not define, or arrives before any schema at all.
type UnknownEventIndexError struct {
	Index uint16
}

func (e *UnknownEventIndexError) Error() string {
	return fmt.Sprintf("unknown game event index %d", e.Index)
}

// UnsupportedEventPropertyError is returned when a live game event would
// require decoding a property kind that never carries data.
type UnsupportedEventPropertyError struct {
	Kind dem.GameEventPropKind
}

func (e *UnsupportedEventPropertyError) Error() string {
	return fmt.Sprintf("game event property kind %v carries no decodable data", e.Kind)
}

// EventTooSmallError is returned when a game-event payload is too short to
// carry its 9-bit event index. The payload is not looked up against the
// schema.
type EventTooSmallError struct {
	Bits int
}

func (e *EventTooSmallError) Error() string {
	return fmt.Sprintf("game event payload of %d bits cannot carry an event index", e.Bits)
}
