// This file contains the user-command model: the 76-byte position record
// carried by update frames and the delta-encoded UserCmd.

package dem

// PositionLength is the byte size of one Position group: three vec3 of f32.
const PositionLength = 4 * 3 * 3

// PositionUpdateLength is the byte size of the position record in an update
// frame: a u32 flags word followed by two Position groups.
const PositionUpdateLength = 4 + 2*PositionLength

// Position is one view-position group.
type Position struct {
	ViewOrigin      [3]float32
	ViewAngles      [3]float32
	LocalViewAngles [3]float32
}

// PositionUpdate is the position record of an update frame.
type PositionUpdate struct {
	Flags uint32

	// Original and Resampled are the recorded and interpolated views.
	Original  Position
	Resampled Position
}

// UserCmdDelta is a delta-encoded user command. Nil fields kept their
// previous-tick value; reconstructing absolute values is up to the consumer.
type UserCmdDelta struct {
	// CommandNumber, when absent, is the previous number plus one.
	CommandNumber *uint32

	// TickCount, when absent, is the previous count plus one.
	TickCount *uint32

	ViewAngles [3]*float32

	Forward *float32
	Side    *float32
	Up      *float32

	Buttons *uint32
	Impulse *uint8

	WeaponSelect *WeaponSelect

	MouseDeltaX *int16
	MouseDeltaY *int16
}

// WeaponSelect is the weapon-switch part of a user command.
type WeaponSelect struct {
	// Weapon is an 11-bit entity index.
	Weapon uint16

	// Subtype is a 6-bit selector, when present.
	Subtype *uint8
}
