// This file contains the message dispatcher: the loop that splits an
// update-frame blob into tagged messages, and the per-kind body readers.

package demparser

import (
	"fmt"

	"github.com/coderbot16/demoman/dem"
	"github.com/coderbot16/demoman/dem/demmsg"
	"github.com/coderbot16/demoman/demparser/bitstream"
)

// sessionState carries the long-lived decoding state of one demo: the
// protocol version, the live string tables and the game-event schema.
type sessionState struct {
	cfg     Config
	version demmsg.ProtocolVersion
	demo    *dem.Demo
}

// handleUpdate decodes the message blob of an update frame and applies the
// schema-bearing messages to the session state. Failures inside nested
// payloads are recorded on the demo and skipped; failures in the message
// framing itself are returned.
func (s *sessionState) handleUpdate(tick uint32, update *dem.UpdateFrame) error {
	msgs, err := parseMessages(update.Packets, s.version, s.cfg.decalCutoff())
	if err != nil {
		return err
	}

	update.Messages = make([]dem.Msg, 0, len(msgs))

	for _, msg := range msgs {
		update.Messages = append(update.Messages, msg)

		switch msg := msg.(type) {
		case *demmsg.CreateStringTable:
			if !s.cfg.StringTables {
				continue
			}

			table, err := TableFromCreate(msg)
			if err != nil {
				s.recordError(tick, "string table create", err)
				continue
			}

			s.demo.StringTables = append(s.demo.StringTables, &dem.NamedStringTable{
				Name:  msg.Name,
				Table: table,
			})

		case *demmsg.UpdateStringTable:
			if !s.cfg.StringTables {
				continue
			}

			if int(msg.TableID) >= len(s.demo.StringTables) {
				s.recordError(tick, "string table update", &OutOfBoundsError{
					Field: "string table id",
					Value: int(msg.TableID),
					Min:   0,
					Max:   len(s.demo.StringTables) - 1,
				})
				continue
			}

			table := s.demo.StringTables[msg.TableID].Table
			if err := UpdateTable(table, msg.Data, int(msg.Entries)); err != nil {
				s.recordError(tick, "string table update", err)
			}

		case *demmsg.GameEventList:
			s.demo.EventList = msg.Events

		case *demmsg.GameEvent:
			if !s.cfg.GameEvents {
				continue
			}

			event, err := DecodeGameEvent(s.demo.EventList, msg, tick)
			if err != nil {
				s.recordError(tick, "game event", err)
				continue
			}

			s.demo.GameEvents = append(s.demo.GameEvents, event)
		}
	}

	return nil
}

func (s *sessionState) recordError(tick uint32, section string, err error) {
	s.demo.DecodeErrors = append(s.demo.DecodeErrors, dem.DecodeError{
		Tick:    tick,
		Section: section,
		Err:     err,
	})
}

// ParseMessages splits an update-frame blob into its messages. The protocol
// version selects the tag width and the per-message layout switches.
func ParseMessages(packets []byte, version demmsg.ProtocolVersion) ([]demmsg.Msg, error) {
	return parseMessages(packets, version, DefaultDecalModelCutoff)
}

func parseMessages(packets []byte, version demmsg.ProtocolVersion, decalCutoff demmsg.ProtocolVersion) ([]demmsg.Msg, error) {
	if !version.TickHasTimings() {
		return nil, fmt.Errorf("network protocol %d: streams without Tick timing fields are not supported", version)
	}

	r := bitstream.NewBitReader(packets)
	kindBits := version.KindBits()

	var msgs []demmsg.Msg

	for r.HasRemaining(int(kindBits)) {
		s := &stickyReader{r: r}

		tag := s.bits(kindBits)
		kind := demmsg.Kind(tag)
		if !kind.Valid() {
			return msgs, &BadMessageKindError{Tag: byte(tag)}
		}

		msg, err := readMessage(s, kind, version, decalCutoff)
		if err != nil {
			return msgs, fmt.Errorf("%v message: %w", kind, err)
		}

		msgs = append(msgs, msg)
	}

	return msgs, nil
}

// readMessage decodes one message body. The field layouts follow the wire
// format; spans are bits unless read through u8/u16/u32 helpers.
func readMessage(s *stickyReader, kind demmsg.Kind, version demmsg.ProtocolVersion, decalCutoff demmsg.ProtocolVersion) (demmsg.Msg, error) {
	var msg demmsg.Msg

	switch kind {
	case demmsg.KindNop:
		msg = demmsg.Nop{}

	case demmsg.KindDisconnect, demmsg.KindDataTable, demmsg.KindHltvControl,
		demmsg.KindTerrainMod, demmsg.KindGetCvar:
		return nil, &UnsupportedMessageError{Kind: kind}

	case demmsg.KindTransferFile:
		msg = &demmsg.TransferFile{
			TransferID: s.u32(),
			Name:       s.str(),
			Request:    s.bit(),
		}

	case demmsg.KindTick:
		msg = &demmsg.Tick{
			Number:         s.u32(),
			FixedTime:      s.u16(),
			FixedTimeStdev: s.u16(),
		}

	case demmsg.KindStringCommand:
		msg = &demmsg.StringCommand{Command: s.str()}

	case demmsg.KindSetCvars:
		count := s.u8()
		cvars := make([]demmsg.Cvar, 0, count)

		for i := 0; i < int(count) && s.err == nil; i++ {
			cvars = append(cvars, demmsg.Cvar{Name: s.str(), Value: s.str()})
		}

		msg = &demmsg.SetCvars{Cvars: cvars}

	case demmsg.KindSignonState:
		msg = &demmsg.SignonState{
			State:       demmsg.SignonStateKind(s.u8()),
			ServerCount: s.u32(),
		}

	case demmsg.KindPrint:
		msg = &demmsg.Print{Text: s.str()}

	case demmsg.KindServerInfo:
		msg = readServerInfo(s, version)

	case demmsg.KindClassInfo:
		classes := s.u16()
		noParse := s.bit()
		if s.err == nil && !noParse {
			// Inline class data never occurs in demos; the layout is
			// unknown and cannot be skipped.
			return nil, &UnsupportedMessageError{Kind: kind}
		}

		msg = &demmsg.ClassInfo{Classes: classes}

	case demmsg.KindPause:
		msg = &demmsg.Pause{Paused: s.bit()}

	case demmsg.KindCreateStringTable:
		var err error
		if msg, err = readCreateStringTable(s, version); err != nil {
			return nil, err
		}

	case demmsg.KindUpdateStringTable:
		update := &demmsg.UpdateStringTable{TableID: uint8(s.bits(5))}

		if s.bit() {
			update.Entries = s.u16()
		} else {
			update.Entries = 1
		}

		update.Data = s.blob(int(s.bits(20)))
		msg = update

	case demmsg.KindVoiceInit:
		init := &demmsg.VoiceInit{
			Codec:   s.str(),
			Quality: s.u8(),
		}

		// Later servers moved the sample rate here, gated on a sentinel
		// quality value.
		if init.Quality == 255 && s.err == nil {
			init.Extra = s.u16()
		}

		msg = init

	case demmsg.KindVoiceData:
		msg = &demmsg.VoiceData{
			Sender:    s.u8(),
			Proximity: s.u8(),
			Data:      s.blob(int(s.u16())),
		}

	case demmsg.KindPlaySound:
		sound := &demmsg.PlaySound{Reliable: s.bit()}

		if sound.Reliable {
			sound.Data = s.blob(int(s.u8()))
		} else {
			sound.Sounds = s.u8()
			sound.Data = s.blob(int(s.u16()))
		}

		msg = sound

	case demmsg.KindSetEntityView:
		msg = &demmsg.SetEntityView{Entity: uint16(s.bits(11))}

	case demmsg.KindFixAngle:
		msg = &demmsg.FixAngle{
			Relative: s.bit(),
			Angles:   [3]uint16{s.u16(), s.u16(), s.u16()},
		}

	case demmsg.KindCrosshairAngle:
		msg = &demmsg.CrosshairAngle{
			Angles: [3]uint16{s.u16(), s.u16(), s.u16()},
		}

	case demmsg.KindDecal:
		decal := &demmsg.Decal{
			Position:   s.vec3(),
			DecalIndex: uint16(s.bits(9)),
			HasEntity:  s.bit(),
		}

		if decal.HasEntity {
			modelBits := uint8(12)
			if version >= decalCutoff {
				modelBits = 13
			}

			decal.Entity = uint16(s.bits(11))
			decal.Model = uint16(s.bits(modelBits))
		}

		decal.LowPriority = s.bit()
		msg = decal

	case demmsg.KindUserMessage:
		msg = &demmsg.UserMessage{
			Channel: s.u8(),
			Data:    s.blob(int(s.bits(11))),
		}

	case demmsg.KindEntityMessage:
		msg = &demmsg.EntityMessage{
			Entity: uint16(s.bits(11)),
			Class:  uint16(s.bits(9)),
			Data:   s.blob(int(s.bits(11))),
		}

	case demmsg.KindGameEvent:
		msg = &demmsg.GameEvent{Data: s.blob(int(s.bits(11)))}

	case demmsg.KindEntities:
		entities := &demmsg.Entities{MaxEntries: uint16(s.bits(11))}

		if s.bit() {
			tick := s.u32()
			entities.DeltaFromTick = &tick
		}

		entities.Baseline = s.bit()
		entities.Updated = uint16(s.bits(11))
		length := int(s.bits(20))
		entities.UpdateBaseline = s.bit()
		entities.Data = s.blob(length)

		msg = entities

	case demmsg.KindTempEntities:
		temp := &demmsg.TempEntities{Count: s.u8()}

		var length int
		if version.VarLengthTables() {
			length = int(s.varU32())
		} else {
			length = int(s.bits(17))
		}

		temp.Data = s.blob(length)
		msg = temp

	case demmsg.KindPrefetch:
		prefetch := new(demmsg.Prefetch)

		if version.PrefetchHasKind() {
			prefetch.TypeBit = s.bit()
		}

		prefetch.ID = uint16(s.bits(13))
		msg = prefetch

	case demmsg.KindPluginMenu:
		msg = &demmsg.PluginMenu{
			MenuKind: s.u16(),
			Data:     s.bytes(int(s.u16())),
		}

	case demmsg.KindGameEventList:
		var err error
		if msg, err = readGameEventList(s); err != nil {
			return nil, err
		}

	default:
		return nil, &BadMessageKindError{Tag: byte(kind)}
	}

	if s.err != nil {
		return nil, s.err
	}

	return msg, nil
}

func readServerInfo(s *stickyReader, version demmsg.ProtocolVersion) *demmsg.ServerInfo {
	info := &demmsg.ServerInfo{
		Protocol:    s.u16(),
		ServerCount: s.u32(),
		HLTV:        s.bit(),
		Dedicated:   s.bit(),
		ClientCRC:   s.u32(),
		MaxClasses:  s.u16(),
	}

	if version.LongServerInfo() {
		copy(info.MapHash[:], s.bytes(len(info.MapHash)))
	} else {
		info.MapCRC = s.u32()
	}

	info.Slot = s.u8()
	info.MaxClients = s.u8()
	info.TickInterval = s.f32()
	info.OS = s.u8()

	info.GameDirectory = s.str()
	info.MapName = s.str()
	info.SkyName = s.str()
	info.Hostname = s.str()

	if version.LongServerInfo() {
		info.Extra = s.bit()
	}

	return info
}
