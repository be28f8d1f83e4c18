// This file contains the closed set of message kinds embedded in update
// frames, and the protocol-version switches that alter their bit layouts.

package demmsg

// Kind is the 5- or 6-bit message type tag. The valid set is 0..=31.
type Kind byte

// Kinds
const (
	KindNop Kind = iota
	KindDisconnect
	KindTransferFile
	KindTick
	KindStringCommand
	KindSetCvars
	KindSignonState
	KindPrint
	KindServerInfo
	KindDataTable
	KindClassInfo
	KindPause
	KindCreateStringTable
	KindUpdateStringTable
	KindVoiceInit
	KindVoiceData
	KindHltvControl
	KindPlaySound
	KindSetEntityView
	KindFixAngle
	KindCrosshairAngle
	KindDecal
	KindTerrainMod
	KindUserMessage
	KindEntityMessage
	KindGameEvent
	KindEntities
	KindTempEntities
	KindPrefetch
	KindPluginMenu
	KindGameEventList
	KindGetCvar
)

var kindNames = [...]string{
	"Nop", "Disconnect", "TransferFile", "Tick", "StringCommand",
	"SetCvars", "SignonState", "Print", "ServerInfo", "DataTable",
	"ClassInfo", "Pause", "CreateStringTable", "UpdateStringTable",
	"VoiceInit", "VoiceData", "HltvControl", "PlaySound",
	"SetEntityView", "FixAngle", "CrosshairAngle", "Decal", "TerrainMod",
	"UserMessage", "EntityMessage", "GameEvent", "Entities",
	"TempEntities", "Prefetch", "PluginMenu", "GameEventList", "GetCvar",
}

// Valid reports whether the kind is inside the closed tag set.
func (k Kind) Valid() bool {
	return int(k) < len(kindNames)
}

func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}

	return "Unknown"
}

// ProtocolVersion is the network protocol recorded in the demo header. It
// parameterizes the bit-width switches of the message layer; it is passed
// through the dispatcher rather than held globally.
type ProtocolVersion uint32

// KindBits returns the width of the message type tag.
func (v ProtocolVersion) KindBits() uint8 {
	if v < 16 {
		return 5
	}

	return 6
}

// TickHasTimings reports whether Tick messages carry the fixed-point timing
// fields. Streams without them are refused by the dispatcher.
func (v ProtocolVersion) TickHasTimings() bool {
	return v >= 10
}

// LongServerInfo reports whether ServerInfo carries a 16-byte map hash and a
// trailing bit instead of a u32 map CRC.
func (v ProtocolVersion) LongServerInfo() bool {
	return v >= 16
}

// PrefetchHasKind reports whether Prefetch messages open with a type bit.
func (v ProtocolVersion) PrefetchHasKind() bool {
	return v >= 23
}

// VarLengthTables reports whether CreateStringTable and TempEntities encode
// their payload length as a var-int instead of a fixed-width field.
func (v ProtocolVersion) VarLengthTables() bool {
	return v >= 24
}
