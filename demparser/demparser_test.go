package demparser

import (
	"errors"
	"io"
	"testing"

	"github.com/coderbot16/demoman/dem"
)

// buildHeader returns a minimal valid 1072-byte header.
func buildHeader(networkProtocol int32, signonLength int32) []byte {
	b := &byteBuilder{}
	b.bytes([]byte(dem.Magic))
	b.u32(3) // demo protocol
	b.u32(uint32(networkProtocol))

	names := []string{"equinox.example.net:27015", "coderbot", "ctf_2fort", "tf"}
	for _, name := range names {
		b.bytes([]byte(name))
		b.pad(dem.PathLength - len(name))
	}

	b.u32(0) // playback seconds (f32 bits)
	b.u32(0) // ticks
	b.u32(0) // frames
	b.u32(uint32(signonLength))

	return b.data
}

func TestParseHeader(t *testing.T) {
	h, err := ParseHeader(buildHeader(24, 0))
	if err != nil {
		t.Fatal(err)
	}

	if h.DemoProtocol != 3 {
		t.Errorf("expected demo protocol 3, got %d", h.DemoProtocol)
	}
	if h.NetworkProtocol != 24 {
		t.Errorf("expected network protocol 24, got %d", h.NetworkProtocol)
	}
	if h.ServerName != "equinox.example.net:27015" {
		t.Errorf("unexpected server name %q", h.ServerName)
	}
	if h.ClientName != "coderbot" || h.MapName != "ctf_2fort" || h.GameDirectory != "tf" {
		t.Errorf("unexpected header strings: %q %q %q", h.ClientName, h.MapName, h.GameDirectory)
	}
	if h.PlaybackSeconds != 0 || h.Ticks != 0 || h.Frames != 0 || h.SignonLength != 0 {
		t.Error("expected zero playback fields")
	}
}

func TestParseHeaderBadMagic(t *testing.T) {
	data := buildHeader(24, 0)
	data[0] = 'X'

	if _, err := ParseHeader(data); err != ErrNotDemoFile {
		t.Fatalf("expected ErrNotDemoFile, got %v", err)
	}
}

func TestParseHeaderShort(t *testing.T) {
	if _, err := ParseHeader([]byte(dem.Magic)); err != ErrNotDemoFile {
		t.Fatalf("expected ErrNotDemoFile, got %v", err)
	}
}

func TestParseHeaderNonUTF8(t *testing.T) {
	data := buildHeader(24, 0)
	// Overwrite the client name with a Windows-1252 e-acute.
	copy(data[276:], []byte{0xE9, 0x00})

	h, err := ParseHeader(data)
	if err != nil {
		t.Fatal(err)
	}

	if h.ClientName != "é" {
		t.Errorf("expected Windows-1252 fallback decoding, got %q", h.ClientName)
	}
}

func TestParseStopOnly(t *testing.T) {
	b := &byteBuilder{data: buildHeader(24, 0)}
	b.u8(byte(dem.FrameStop))
	b.u24(0)

	d, err := Parse(b.data)
	if err != nil {
		t.Fatal(err)
	}

	if len(d.Frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(d.Frames))
	}
	frame := d.Frames[0]
	if frame.Tick != 0 {
		t.Errorf("expected tick 0, got %d", frame.Tick)
	}
	if _, ok := frame.Payload.(dem.StopFrame); !ok {
		t.Errorf("expected StopFrame, got %T", frame.Payload)
	}
}

func TestFrameReaderStopTick(t *testing.T) {
	// The Stop frame carries a 24-bit tick.
	b := &byteBuilder{}
	b.u8(byte(dem.FrameStop))
	b.u24(0x00ABCDEF & 0xFFFFFF)

	fr := NewFrameReader(b.data)

	frame, err := fr.Next()
	if err != nil {
		t.Fatal(err)
	}
	if frame.Tick != 0xABCDEF {
		t.Errorf("expected tick ABCDEF, got %X", frame.Tick)
	}

	if _, err := fr.Next(); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestFrameReaderBadKind(t *testing.T) {
	for _, tag := range []byte{0, 9, 200} {
		fr := NewFrameReader([]byte{tag, 0, 0, 0, 0})

		_, err := fr.Next()
		var bad *BadFrameKindError
		if !errors.As(err, &bad) {
			t.Fatalf("tag %d: expected BadFrameKindError, got %v", tag, err)
		}
		if bad.Tag != tag {
			t.Errorf("expected tag %d, got %d", tag, bad.Tag)
		}
	}
}

func TestFrameReaderConsoleCommand(t *testing.T) {
	b := &byteBuilder{}
	b.u8(byte(dem.FrameConsoleCommand))
	b.u32(100)
	// The buffer is truncated at its first 0x00 byte.
	b.sized([]byte("exec autoexec\x00garbage"))

	fr := NewFrameReader(b.data)

	frame, err := fr.Next()
	if err != nil {
		t.Fatal(err)
	}
	if frame.Tick != 100 {
		t.Errorf("expected tick 100, got %d", frame.Tick)
	}

	payload, ok := frame.Payload.(dem.ConsoleCommandFrame)
	if !ok {
		t.Fatalf("expected ConsoleCommandFrame, got %T", frame.Payload)
	}
	if payload.Command != "exec autoexec" {
		t.Errorf("unexpected command %q", payload.Command)
	}
}

func TestFrameReaderUpdate(t *testing.T) {
	b := &byteBuilder{}
	b.u8(byte(dem.FrameUpdate))
	b.u32(42)

	// Position record: flags, then 18 floats.
	b.u32(7)
	for i := 0; i < 18; i++ {
		b.u32(0x3F800000) // 1.0
	}

	b.u32(10) // sequence in
	b.u32(11) // sequence out
	b.sized([]byte{0xAA, 0xBB})

	fr := NewFrameReader(b.data)

	frame, err := fr.Next()
	if err != nil {
		t.Fatal(err)
	}

	update, ok := frame.Payload.(*dem.UpdateFrame)
	if !ok {
		t.Fatalf("expected UpdateFrame, got %T", frame.Payload)
	}
	if update.Signon {
		t.Error("expected non-signon update")
	}
	if update.Position.Flags != 7 {
		t.Errorf("expected flags 7, got %d", update.Position.Flags)
	}
	if update.Position.Original.ViewOrigin != [3]float32{1, 1, 1} {
		t.Errorf("unexpected view origin %v", update.Position.Original.ViewOrigin)
	}
	if update.Position.Resampled.LocalViewAngles != [3]float32{1, 1, 1} {
		t.Errorf("unexpected local view angles %v", update.Position.Resampled.LocalViewAngles)
	}
	if update.SequenceIn != 10 || update.SequenceOut != 11 {
		t.Errorf("unexpected sequences %d/%d", update.SequenceIn, update.SequenceOut)
	}
	if len(update.Packets) != 2 || update.Packets[0] != 0xAA {
		t.Errorf("unexpected packets % x", update.Packets)
	}
}

func TestFrameReaderUserCmd(t *testing.T) {
	b := &byteBuilder{}
	b.u8(byte(dem.FrameUserCmd))
	b.u32(7)
	b.u32(1234) // sequence
	b.sized([]byte{0, 0})

	fr := NewFrameReader(b.data)

	frame, err := fr.Next()
	if err != nil {
		t.Fatal(err)
	}

	payload, ok := frame.Payload.(dem.UserCmdFrame)
	if !ok {
		t.Fatalf("expected UserCmdFrame, got %T", frame.Payload)
	}
	if payload.Sequence != 1234 {
		t.Errorf("expected sequence 1234, got %d", payload.Sequence)
	}
	if len(payload.Data) != 2 {
		t.Errorf("expected 2 opaque bytes, got %d", len(payload.Data))
	}
}

func TestFrameReaderTruncatedBody(t *testing.T) {
	b := &byteBuilder{}
	b.u8(byte(dem.FrameStringTables))
	b.u32(3)
	b.u32(1000) // declared length far past the end

	fr := NewFrameReader(b.data)

	if _, err := fr.Next(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}

// TestParseEndToEnd drives the whole pipeline: header, signon boundary, an
// update frame carrying a schema and an event, and the stop frame.
func TestParseEndToEnd(t *testing.T) {
	// Schema: one event {index 42, name "x", props [(Str, "n")]}.
	schema := &bitWriter{}
	schema.writeBits(42, 9)
	schema.writeString("x")
	schema.writeBits(uint32(dem.PropStr), 3)
	schema.writeString("n")
	schema.writeBits(uint32(dem.PropEnd), 3)

	// Event instance: index 42, value "ok".
	instance := &bitWriter{}
	instance.writeBits(42, 9)
	instance.writeString("ok")

	// Message blob: GameEventList, then GameEvent, 6-bit tags.
	packets := &bitWriter{}
	packets.writeBits(30, 6) // GameEventList
	packets.writeBits(1, 9)
	packets.writeBits(uint32(schema.bits), 20)
	packets.writeBytes(schema.data[:schema.bits/8])
	if rem := schema.bits % 8; rem != 0 {
		packets.writeBits(uint32(schema.data[len(schema.data)-1]), uint8(rem))
	}
	packets.writeBits(25, 6) // GameEvent
	packets.writeBits(uint32(instance.bits), 11)
	packets.writeBytes(instance.data[:instance.bits/8])
	if rem := instance.bits % 8; rem != 0 {
		packets.writeBits(uint32(instance.data[len(instance.data)-1]), uint8(rem))
	}

	update := &byteBuilder{}
	update.u32(0)
	update.pad(2 * dem.PositionLength)
	update.u32(1)
	update.u32(1)
	update.sized(packets.data)

	b := &byteBuilder{data: buildHeader(24, 0)}
	b.u8(byte(dem.FrameUpdate))
	b.u32(5)
	b.bytes(update.data)
	b.u8(byte(dem.FrameStop))
	b.u24(5)

	d, err := Parse(b.data)
	if err != nil {
		t.Fatal(err)
	}

	if len(d.DecodeErrors) != 0 {
		t.Fatalf("unexpected decode errors: %v", d.DecodeErrors)
	}
	if d.EventList == nil || len(d.EventList.Events) != 1 {
		t.Fatal("expected one schema record")
	}
	if len(d.GameEvents) != 1 {
		t.Fatalf("expected 1 game event, got %d", len(d.GameEvents))
	}

	event := d.GameEvents[0]
	if event.Name != "x" || event.Index != 42 || event.Tick != 5 {
		t.Errorf("unexpected event %+v", event)
	}
	if v, ok := event.Values.Str("n"); !ok || v != "ok" {
		t.Errorf("expected value ok, got %v", event.Values["n"])
	}
}
