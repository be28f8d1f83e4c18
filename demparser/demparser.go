/*

Package demparser implements Source-engine demo file parsing, as recorded by
Team Fortress 2 and related titles.

The package is safe for concurrent use: parsing shares no state between
invocations.

Information sources:

Valve developer wiki on the DEM format:

https://developer.valvesoftware.com/wiki/DEM_(file_format)

Source 2007/2013 demo and network message handling:

https://github.com/ValveSoftware/source-sdk-2013

*/
package demparser

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"unicode/utf8"

	"github.com/coderbot16/demoman/dem"
	"github.com/coderbot16/demoman/dem/demmsg"
	"golang.org/x/text/encoding/charmap"
)

const (
	// Version is a Semver2 compatible version of the parser.
	Version = "v1.0.0"
)

// DefaultDecalModelCutoff is the network protocol from which Decal messages
// carry a 13-bit model index instead of a 12-bit one. The exact cutoff is
// not pinned down by surviving demos, so Config can override it.
const DefaultDecalModelCutoff = demmsg.ProtocolVersion(24)

// Config holds parser configuration.
type Config struct {
	// Messages tells if update-frame blobs are to be decoded into
	// messages.
	Messages bool

	// StringTables tells if the live string-table registry is to be
	// maintained from create/update messages. Requires Messages.
	StringTables bool

	// GameEvents tells if game-event instances are to be decoded against
	// the session schema. Requires Messages.
	GameEvents bool

	// DecalModelCutoff overrides the protocol version from which Decal
	// model indices are 13 bits wide. Zero means DefaultDecalModelCutoff.
	DecalModelCutoff demmsg.ProtocolVersion

	_ struct{} // To prevent unkeyed literals
}

func (cfg Config) decalCutoff() demmsg.ProtocolVersion {
	if cfg.DecalModelCutoff == 0 {
		return DefaultDecalModelCutoff
	}

	return cfg.DecalModelCutoff
}

// ParseFile parses a demo file, decoding messages, string tables and game
// events.
func ParseFile(name string) (*dem.Demo, error) {
	return ParseFileConfig(name, Config{Messages: true, StringTables: true, GameEvents: true})
}

// ParseFileConfig parses a demo file based on the given parser
// configuration. The header and frames are always parsed.
func ParseFileConfig(name string, cfg Config) (*dem.Demo, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}

	return parseProtected(data, cfg)
}

// Parse parses a demo from the given byte slice, decoding messages, string
// tables and game events.
func Parse(data []byte) (*dem.Demo, error) {
	return ParseConfig(data, Config{Messages: true, StringTables: true, GameEvents: true})
}

// ParseConfig parses a demo from the given byte slice based on the given
// parser configuration. The header and frames are always parsed.
func ParseConfig(data []byte, cfg Config) (*dem.Demo, error) {
	return parseProtected(data, cfg)
}

// parseProtected calls parse(), but protects the function call from panics,
// in which case it returns ErrParsing.
func parseProtected(data []byte, cfg Config) (d *dem.Demo, err error) {
	// Input is untrusted data, protect the parsing logic.
	// It also protects against implementation bugs.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Parsing error: %v", r)
			buf := make([]byte, 2000)
			n := runtime.Stack(buf, false)
			log.Printf("Stack: %s", buf[:n])
			err = ErrParsing
		}
	}()

	return parse(data, cfg)
}

// parse parses a demo from the given byte slice.
func parse(data []byte, cfg Config) (*dem.Demo, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	d := &dem.Demo{Header: header}

	state := &sessionState{
		cfg:     cfg,
		version: demmsg.ProtocolVersion(header.NetworkProtocol),
		demo:    d,
	}

	fr := NewFrameReader(data[dem.HeaderLength:])

	for {
		frame, err := fr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("frame at byte offset %d: %w", dem.HeaderLength+fr.Offset(), err)
		}

		if update, ok := frame.Payload.(*dem.UpdateFrame); ok && cfg.Messages {
			if err := state.handleUpdate(frame.Tick, update); err != nil {
				return nil, fmt.Errorf("update frame at tick %d: %w", frame.Tick, err)
			}
		}

		d.Frames = append(d.Frames, *frame)

		if frame.Payload.Kind() == dem.FrameStop {
			break
		}
	}

	return d, nil
}

// ParseHeader parses the fixed 1072-byte header at the start of the given
// slice. ErrNotDemoFile is returned when the magic does not match.
func ParseHeader(data []byte) (*dem.Header, error) {
	if len(data) < dem.HeaderLength {
		return nil, ErrNotDemoFile
	}

	br := &byteReader{b: data[:dem.HeaderLength]}

	magic, _ := br.getSlice(len(dem.Magic))
	if string(magic) != dem.Magic {
		return nil, ErrNotDemoFile
	}

	h := new(dem.Header)
	h.DemoProtocol, _ = br.getInt32()
	h.NetworkProtocol, _ = br.getInt32()

	for _, field := range []*string{&h.ServerName, &h.ClientName, &h.MapName, &h.GameDirectory} {
		raw, _ := br.getSlice(dem.PathLength)
		*field = cString(raw)
	}

	h.PlaybackSeconds, _ = br.getFloat32()
	h.Ticks, _ = br.getInt32()
	h.Frames, _ = br.getInt32()
	h.SignonLength, _ = br.getInt32()

	return h, nil
}

// FrameReader reads frames one at a time from a byte slice positioned just
// past the demo header.
type FrameReader struct {
	br *byteReader
}

// NewFrameReader returns a FrameReader over the given slice.
func NewFrameReader(data []byte) *FrameReader {
	return &FrameReader{br: &byteReader{b: data}}
}

// Offset returns the byte position of the reader relative to the start of
// its slice.
func (fr *FrameReader) Offset() int {
	return fr.br.pos
}

// Next reads the next frame. io.EOF is returned at the end of the slice;
// any other error is fatal, as the byte-level cursor can no longer be
// trusted.
func (fr *FrameReader) Next() (*dem.Frame, error) {
	if fr.br.remaining() == 0 {
		return nil, io.EOF
	}

	tag, err := fr.br.getByte()
	if err != nil {
		return nil, err
	}

	kind := dem.FrameKind(tag)
	if !kind.Valid() {
		return nil, &BadFrameKindError{Tag: tag}
	}

	// The terminal Stop frame carries a 24-bit tick; every other frame a
	// 32-bit one.
	var tick uint32
	if kind == dem.FrameStop {
		tick, err = fr.br.getUint24()
	} else {
		tick, err = fr.br.getUint32()
	}
	if err != nil {
		return nil, err
	}

	payload, err := fr.readPayload(kind)
	if err != nil {
		return nil, fmt.Errorf("%v frame body: %w", kind, err)
	}

	return &dem.Frame{Tick: tick, Payload: payload}, nil
}

func (fr *FrameReader) readPayload(kind dem.FrameKind) (dem.FramePayload, error) {
	switch kind {
	case dem.FrameSignonUpdate, dem.FrameUpdate:
		return fr.readUpdate(kind == dem.FrameSignonUpdate)

	case dem.FrameTickSync:
		return dem.TickSyncFrame{}, nil

	case dem.FrameConsoleCommand:
		buf, err := fr.readSizedSlice()
		if err != nil {
			return nil, err
		}

		return dem.ConsoleCommandFrame{Command: cString(buf)}, nil

	case dem.FrameUserCmd:
		sequence, err := fr.br.getUint32()
		if err != nil {
			return nil, err
		}

		data, err := fr.readSizedSlice()
		if err != nil {
			return nil, err
		}

		return dem.UserCmdFrame{Sequence: sequence, Data: data}, nil

	case dem.FrameDataTables:
		data, err := fr.readSizedSlice()
		if err != nil {
			return nil, err
		}

		return dem.DataTablesFrame{Data: data}, nil

	case dem.FrameStop:
		return dem.StopFrame{}, nil

	case dem.FrameStringTables:
		data, err := fr.readSizedSlice()
		if err != nil {
			return nil, err
		}

		return dem.StringTablesFrame{Data: data}, nil
	}

	return nil, &BadFrameKindError{Tag: byte(kind)}
}

// readUpdate reads an update body: the position record, two sequence
// numbers and the length-prefixed opaque message blob.
func (fr *FrameReader) readUpdate(signon bool) (*dem.UpdateFrame, error) {
	update := &dem.UpdateFrame{Signon: signon}

	position, err := fr.br.getSlice(dem.PositionUpdateLength)
	if err != nil {
		return nil, err
	}
	update.Position = readPositionUpdate(position)

	if update.SequenceIn, err = fr.br.getUint32(); err != nil {
		return nil, err
	}
	if update.SequenceOut, err = fr.br.getUint32(); err != nil {
		return nil, err
	}

	if update.Packets, err = fr.readSizedSlice(); err != nil {
		return nil, err
	}

	return update, nil
}

// readSizedSlice reads a u32 length followed by that many raw bytes.
func (fr *FrameReader) readSizedSlice() ([]byte, error) {
	size, err := fr.br.getUint32()
	if err != nil {
		return nil, err
	}

	return fr.br.getSlice(int(size))
}

// readPositionUpdate decodes the 76-byte position record of an update body.
func readPositionUpdate(data []byte) dem.PositionUpdate {
	br := &byteReader{b: data}

	var p dem.PositionUpdate
	p.Flags, _ = br.getUint32()
	p.Original = readPosition(br)
	p.Resampled = readPosition(br)

	return p
}

func readPosition(br *byteReader) dem.Position {
	var p dem.Position

	for _, group := range []*[3]float32{&p.ViewOrigin, &p.ViewAngles, &p.LocalViewAngles} {
		for i := range group {
			group[i], _ = br.getFloat32()
		}
	}

	return p
}

// cString returns a 0x00 byte terminated string from the given buffer.
// Content that is not valid UTF-8 is re-decoded as Windows-1252, the
// codepage of legacy server and player names.
func cString(data []byte) string {
	for i, ch := range data {
		if ch == 0 {
			data = data[:i]
			break
		}
	}

	if utf8.Valid(data) {
		return string(data)
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		// Windows-1252 decoding cannot fail; fall back to raw bytes.
		return string(data)
	}

	return string(decoded)
}
