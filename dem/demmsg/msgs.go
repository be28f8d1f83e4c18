// This file contains the message variants decoded from update-frame blobs.
// Layouts are described in demparser/messages.go where they are read.

package demmsg

import (
	"github.com/coderbot16/demoman/dem"
	"github.com/coderbot16/demoman/demparser/bitstream"
)

// Msg is the closed sum of message variants. The set is fixed by the wire
// format, so consumers switch on the concrete type.
type Msg interface {
	dem.Msg

	// Kind returns the wire tag of the message.
	Kind() Kind
}

// Nop is an empty keep-alive message.
type Nop struct{}

func (Nop) Kind() Kind      { return KindNop }
func (Nop) MsgName() string { return KindNop.String() }

// TransferFile requests or denies a file transfer.
type TransferFile struct {
	TransferID uint32
	Name       string

	// Request is set for a request and clear for a denial.
	Request bool
}

func (*TransferFile) Kind() Kind      { return KindTransferFile }
func (*TransferFile) MsgName() string { return KindTransferFile.String() }

// Tick announces the server tick and its timing statistics.
type Tick struct {
	// Number is the server-side tick number.
	Number uint32

	// FixedTime is the tick time in seconds, times 100000.
	FixedTime uint16

	// FixedTimeStdev is its standard deviation, times 100000.
	FixedTimeStdev uint16
}

func (*Tick) Kind() Kind      { return KindTick }
func (*Tick) MsgName() string { return KindTick.String() }

// StringCommand executes a console command on the client.
type StringCommand struct {
	Command string
}

func (*StringCommand) Kind() Kind      { return KindStringCommand }
func (*StringCommand) MsgName() string { return KindStringCommand.String() }

// Cvar is one name/value pair of a SetCvars message.
type Cvar struct {
	Name  string
	Value string
}

// SetCvars transmits console variable values.
type SetCvars struct {
	Cvars []Cvar
}

func (*SetCvars) Kind() Kind      { return KindSetCvars }
func (*SetCvars) MsgName() string { return KindSetCvars.String() }

// SignonStateKind is the connection-establishment stage carried by a
// SignonState message.
type SignonStateKind uint8

// SignonStateKinds
const (
	SignonNone SignonStateKind = iota
	SignonChallenge
	SignonConnected
	SignonNew
	SignonPreSpawn
	SignonSpawn
	SignonFull
	SignonChangeLevel
)

var signonStateNames = [...]string{
	"None", "Challenge", "Connected", "New", "PreSpawn", "Spawn", "Full",
	"ChangeLevel",
}

// Known reports whether the stage is one of the named values. Out-of-range
// values are retained raw.
func (k SignonStateKind) Known() bool {
	return int(k) < len(signonStateNames)
}

func (k SignonStateKind) String() string {
	if k.Known() {
		return signonStateNames[k]
	}

	return "Unknown"
}

// SignonState announces a connection-establishment stage transition.
type SignonState struct {
	State       SignonStateKind
	ServerCount uint32
}

func (*SignonState) Kind() Kind      { return KindSignonState }
func (*SignonState) MsgName() string { return KindSignonState.String() }

// Print writes text to the client console.
type Print struct {
	Text string
}

func (*Print) Kind() Kind      { return KindPrint }
func (*Print) MsgName() string { return KindPrint.String() }

// ServerInfo describes the recording server.
type ServerInfo struct {
	// Protocol matches the network protocol of the demo header.
	Protocol    uint16
	ServerCount uint32

	HLTV      bool
	Dedicated bool

	// ClientCRC is the CRC of the client DLL; all ones means no CRC.
	ClientCRC uint32

	// MaxClasses matches the class-link count of the DataTables frame.
	MaxClasses uint16

	// MapCRC is carried before protocol 16, MapHash from 16 on.
	MapCRC  uint32
	MapHash [16]byte

	// Slot is the player slot the client occupies.
	Slot       uint8
	MaxClients uint8

	// TickInterval is the second length of one tick; the target tick
	// rate is its reciprocal.
	TickInterval float32

	// OS identifies the server operating system.
	OS uint8

	GameDirectory string
	MapName       string
	SkyName       string
	Hostname      string

	// Extra is the trailing bit present from protocol 16 on.
	Extra bool
}

func (*ServerInfo) Kind() Kind      { return KindServerInfo }
func (*ServerInfo) MsgName() string { return KindServerInfo.String() }

// ClassInfo announces the server class count. Only the no-parse form is
// supported; a message carrying inline class data is refused.
type ClassInfo struct {
	Classes uint16
}

func (*ClassInfo) Kind() Kind      { return KindClassInfo }
func (*ClassInfo) MsgName() string { return KindClassInfo.String() }

// Pause pauses or resumes the session.
type Pause struct {
	Paused bool
}

func (*Pause) Kind() Kind      { return KindPause }
func (*Pause) MsgName() string { return KindPause.String() }

// FixedUserdataSize declares the fixed per-entry extra size of a string
// table.
type FixedUserdataSize struct {
	Bytes uint16
	Bits  uint8
}

// CreateStringTable creates a string table and seeds its initial rows from
// the carried blob.
type CreateStringTable struct {
	Name       string
	MaxEntries uint16

	// Entries is the number of rows encoded in Data.
	Entries uint16

	// FixedUserdataSize is nil for tables with variable-size extras.
	FixedUserdataSize *FixedUserdataSize

	// Compressed marks Data as carrying a Snappy/LZSS-framed block.
	Compressed bool

	Data bitstream.Bits
}

func (*CreateStringTable) Kind() Kind      { return KindCreateStringTable }
func (*CreateStringTable) MsgName() string { return KindCreateStringTable.String() }

// UpdateStringTable applies incremental rows to a table created earlier.
type UpdateStringTable struct {
	// TableID indexes the live tables in creation order.
	TableID uint8

	// Entries is the number of rows encoded in Data.
	Entries uint16

	Data bitstream.Bits
}

func (*UpdateStringTable) Kind() Kind      { return KindUpdateStringTable }
func (*UpdateStringTable) MsgName() string { return KindUpdateStringTable.String() }

// VoiceInit announces the voice codec and quality.
type VoiceInit struct {
	Codec   string
	Quality uint8

	// Extra is carried only when Quality is 255.
	Extra uint16
}

func (*VoiceInit) Kind() Kind      { return KindVoiceInit }
func (*VoiceInit) MsgName() string { return KindVoiceInit.String() }

// VoiceData carries one opaque voice payload.
type VoiceData struct {
	Sender    uint8
	Proximity uint8
	Data      bitstream.Bits
}

func (*VoiceData) Kind() Kind      { return KindVoiceData }
func (*VoiceData) MsgName() string { return KindVoiceData.String() }

// PlaySound carries one or more opaque sound records.
type PlaySound struct {
	// Reliable selects the single-sound reliable form.
	Reliable bool

	// Sounds is the record count of the unreliable form.
	Sounds uint8

	Data bitstream.Bits
}

func (*PlaySound) Kind() Kind      { return KindPlaySound }
func (*PlaySound) MsgName() string { return KindPlaySound.String() }

// SetEntityView switches the client view to an entity.
type SetEntityView struct {
	Entity uint16
}

func (*SetEntityView) Kind() Kind      { return KindSetEntityView }
func (*SetEntityView) MsgName() string { return KindSetEntityView.String() }

// FixAngle snaps or offsets the client view angles. Angles are raw 16-bit
// counts; one unit is 360/65536 degrees.
type FixAngle struct {
	Relative bool
	Angles   [3]uint16
}

func (*FixAngle) Kind() Kind      { return KindFixAngle }
func (*FixAngle) MsgName() string { return KindFixAngle.String() }

// CrosshairAngle points the crosshair. Angles are raw 16-bit counts.
type CrosshairAngle struct {
	Angles [3]uint16
}

func (*CrosshairAngle) Kind() Kind      { return KindCrosshairAngle }
func (*CrosshairAngle) MsgName() string { return KindCrosshairAngle.String() }

// Decal places a decal on the world or an entity.
type Decal struct {
	Position   [3]float32
	DecalIndex uint16

	// HasEntity gates the entity and model indices.
	HasEntity bool
	Entity    uint16
	Model     uint16

	LowPriority bool
}

func (*Decal) Kind() Kind      { return KindDecal }
func (*Decal) MsgName() string { return KindDecal.String() }

// UserMessage carries one opaque user-message payload.
type UserMessage struct {
	Channel uint8
	Data    bitstream.Bits
}

func (*UserMessage) Kind() Kind      { return KindUserMessage }
func (*UserMessage) MsgName() string { return KindUserMessage.String() }

// EntityMessage carries one opaque per-entity payload.
type EntityMessage struct {
	Entity uint16
	Class  uint16
	Data   bitstream.Bits
}

func (*EntityMessage) Kind() Kind      { return KindEntityMessage }
func (*EntityMessage) MsgName() string { return KindEntityMessage.String() }

// GameEvent carries one event instance. The first 9 bits of Data are the
// event index; demparser decodes the rest against the live schema.
type GameEvent struct {
	Data bitstream.Bits
}

func (*GameEvent) Kind() Kind      { return KindGameEvent }
func (*GameEvent) MsgName() string { return KindGameEvent.String() }

// Entities carries a batch of entity updates as an opaque blob.
type Entities struct {
	MaxEntries uint16

	// DeltaFromTick is nil for full (non-delta) updates.
	DeltaFromTick *uint32

	Baseline       bool
	Updated        uint16
	UpdateBaseline bool

	Data bitstream.Bits
}

func (*Entities) Kind() Kind      { return KindEntities }
func (*Entities) MsgName() string { return KindEntities.String() }

// TempEntities carries a batch of temporary-entity events as an opaque blob.
type TempEntities struct {
	Count uint8
	Data  bitstream.Bits
}

func (*TempEntities) Kind() Kind      { return KindTempEntities }
func (*TempEntities) MsgName() string { return KindTempEntities.String() }

// Prefetch asks the client to preload a resource.
type Prefetch struct {
	// TypeBit is carried from protocol 23 on.
	TypeBit bool
	ID      uint16
}

func (*Prefetch) Kind() Kind      { return KindPrefetch }
func (*Prefetch) MsgName() string { return KindPrefetch.String() }

// PluginMenu carries a server-plugin menu blob.
type PluginMenu struct {
	MenuKind uint16
	Data     []byte
}

func (*PluginMenu) Kind() Kind      { return KindPluginMenu }
func (*PluginMenu) MsgName() string { return KindPluginMenu.String() }

// GameEventList announces the game-event schema for the session.
type GameEventList struct {
	Events *dem.GameEventList
}

func (*GameEventList) Kind() Kind      { return KindGameEventList }
func (*GameEventList) MsgName() string { return KindGameEventList.String() }
