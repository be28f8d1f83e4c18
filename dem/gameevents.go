// This file contains the game-event model: the per-session schema announced
// once during signon, and decoded event instances.

package dem

// GameEventPropKind is the 3-bit property type tag of the game-event schema.
type GameEventPropKind byte

// GameEventPropKinds. PropEnd terminates a schema record on the wire and
// never appears in a parsed property list. PropUnused is reserved: it is
// kept in parsed descriptors, and decoding an instance that reaches it fails.
const (
	PropEnd GameEventPropKind = iota
	PropStr
	PropF32
	PropI32
	PropI16
	PropU8
	PropBool
	PropUnused
)

var propKindNames = map[GameEventPropKind]string{
	PropEnd:    "End",
	PropStr:    "Str",
	PropF32:    "F32",
	PropI32:    "I32",
	PropI16:    "I16",
	PropU8:     "U8",
	PropBool:   "Bool",
	PropUnused: "Unused",
}

func (k GameEventPropKind) String() string {
	if name, ok := propKindNames[k]; ok {
		return name
	}

	return "Invalid"
}

// GameEventProp is one typed property of a game-event descriptor.
type GameEventProp struct {
	Kind GameEventPropKind
	Name string
}

// GameEventDescriptor maps an event index to its name and property list.
type GameEventDescriptor struct {
	Index uint16
	Name  string
	Props []GameEventProp
}

// GameEventList is the game-event schema: every descriptor announced by the
// GameEventList message, in announcement order.
type GameEventList struct {
	Events []GameEventDescriptor

	byIndex map[uint16]*GameEventDescriptor
}

// NewGameEventList builds the schema from its descriptors and indexes it.
func NewGameEventList(events []GameEventDescriptor) *GameEventList {
	l := &GameEventList{
		Events:  events,
		byIndex: make(map[uint16]*GameEventDescriptor, len(events)),
	}

	for i := range l.Events {
		l.byIndex[l.Events[i].Index] = &l.Events[i]
	}

	return l
}

// Descriptor returns the descriptor registered for the given event index,
// or nil.
func (l *GameEventList) Descriptor(index uint16) *GameEventDescriptor {
	if l == nil {
		return nil
	}

	return l.byIndex[index]
}

// GameEvent is one decoded event instance.
type GameEvent struct {
	// Tick the enclosing update frame was stamped with.
	Tick uint32

	// Index and Name identify the descriptor the instance was decoded
	// against.
	Index uint16
	Name  string

	// Values holds the decoded properties by name.
	Values GameEventData
}

// GameEventData holds decoded property values keyed by property name.
// Values are string, float32, int32, int16, uint8 or bool according to the
// schema.
type GameEventData map[string]interface{}

// Str returns the named property if it is a string.
func (d GameEventData) Str(name string) (string, bool) {
	v, ok := d[name].(string)
	return v, ok
}

// F32 returns the named property if it is a float32.
func (d GameEventData) F32(name string) (float32, bool) {
	v, ok := d[name].(float32)
	return v, ok
}

// I32 returns the named property if it is an int32.
func (d GameEventData) I32(name string) (int32, bool) {
	v, ok := d[name].(int32)
	return v, ok
}

// I16 returns the named property if it is an int16.
func (d GameEventData) I16(name string) (int16, bool) {
	v, ok := d[name].(int16)
	return v, ok
}

// U8 returns the named property if it is an uint8.
func (d GameEventData) U8(name string) (uint8, bool) {
	v, ok := d[name].(uint8)
	return v, ok
}

// Bool returns the named property if it is a bool.
func (d GameEventData) Bool(name string) (bool, bool) {
	v, ok := d[name].(bool)
	return v, ok
}
