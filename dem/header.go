package dem

// PathLength is the size of the fixed, zero-padded string fields in the
// demo header.
const PathLength = 260

// HeaderLength is the size of the fixed demo header:
// magic + 2 protocol ints + 4 path strings + seconds + 3 trailing ints.
const HeaderLength = 8 + 4 + 4 + 4*PathLength + 4 + 4 + 4 + 4

// Magic is the first 8 bytes of every valid demo file.
const Magic = "HL2DEMO\x00"

// Header models the fixed 1072-byte prefix of a demo file.
type Header struct {
	// DemoProtocol is the demo file format version, typically 3.
	DemoProtocol int32

	// NetworkProtocol is the network protocol the demo was recorded
	// under. It drives several bit-width switches in the message layer.
	NetworkProtocol int32

	// ServerName is the address or name of the recording server.
	ServerName string

	// ClientName is the name of the recording player.
	ClientName string

	// MapName is the map the session was played on, e.g. "ctf_2fort".
	MapName string

	// GameDirectory is the mod directory, "tf" for Team Fortress 2.
	GameDirectory string

	// PlaybackSeconds is the wall-clock length of the recording.
	PlaybackSeconds float32

	// Ticks is the number of simulation ticks covered.
	Ticks int32

	// Frames is the number of playback frames recorded.
	Frames int32

	// SignonLength is the byte length of the signon block that follows
	// the header. Byte offset HeaderLength+SignonLength is the end of
	// the connection-establishment phase.
	SignonLength int32
}
