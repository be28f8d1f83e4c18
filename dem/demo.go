// This file contains the Demo type and its components which model a complete
// Source-engine demo recording.

package dem

// Demo models a parsed demo recording.
type Demo struct {
	// Header of the demo file
	Header *Header

	// Frames of the demo in source order
	Frames []Frame

	// StringTables is the live string-table registry in creation order,
	// as left after applying every create and update message.
	StringTables []*NamedStringTable

	// GameEvents decoded against the session schema, in source order.
	// Only populated when game-event decoding is enabled.
	GameEvents []*GameEvent

	// EventList is the game-event schema announced during signon, if any.
	EventList *GameEventList

	// DecodeErrors collects recoverable failures from nested payloads.
	// The enclosing frames and messages parsed fine; only the listed
	// payloads did not.
	DecodeErrors []DecodeError
}

// DecodeError records a recoverable failure while decoding a nested payload.
type DecodeError struct {
	// Tick at which the payload was encountered
	Tick uint32

	// Section names the nested payload that failed (e.g. "game event",
	// "string table update").
	Section string

	// Err is the underlying error.
	Err error
}

func (e DecodeError) Error() string {
	return "decoding " + e.Section + ": " + e.Err.Error()
}

func (e DecodeError) Unwrap() error {
	return e.Err
}
