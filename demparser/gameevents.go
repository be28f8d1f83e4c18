// This file contains the game-event codec: the one-shot schema carried by a
// GameEventList message and the per-instance decoder that runs against it.

package demparser

import (
	"fmt"

	"github.com/coderbot16/demoman/dem"
	"github.com/coderbot16/demoman/dem/demmsg"
	"github.com/coderbot16/demoman/demparser/bitstream"
)

// readGameEventList reads a GameEventList message body and decodes its
// nested schema blob.
func readGameEventList(s *stickyReader) (*demmsg.GameEventList, error) {
	count := int(s.bits(9))
	blob := s.blob(int(s.bits(20)))
	if s.err != nil {
		return nil, s.err
	}

	list, err := ParseGameEventList(count, blob)
	if err != nil {
		return nil, err
	}

	return &demmsg.GameEventList{Events: list}, nil
}

// ParseGameEventList decodes the schema blob of a GameEventList message:
// count descriptors of a 9-bit index, a name and a property list terminated
// by a zero kind tag.
func ParseGameEventList(count int, data bitstream.Bits) (*dem.GameEventList, error) {
	s := &stickyReader{r: data.Reader()}

	events := make([]dem.GameEventDescriptor, 0, count)

	for i := 0; i < count; i++ {
		descriptor := dem.GameEventDescriptor{
			Index: uint16(s.bits(9)),
			Name:  s.str(),
		}

		for {
			kind := dem.GameEventPropKind(s.bits(3))
			if s.err != nil {
				return nil, fmt.Errorf("game event schema record %d: %w", i, s.err)
			}

			if kind == dem.PropEnd {
				break
			}

			descriptor.Props = append(descriptor.Props, dem.GameEventProp{
				Kind: kind,
				Name: s.str(),
			})
		}

		if s.err != nil {
			return nil, fmt.Errorf("game event schema record %d: %w", i, s.err)
		}

		events = append(events, descriptor)
	}

	return dem.NewGameEventList(events), nil
}

// DecodeGameEvent decodes one event instance against the live schema. The
// payload opens with a 9-bit event index; the remaining bits are property
// values in schema order.
func DecodeGameEvent(list *dem.GameEventList, msg *demmsg.GameEvent, tick uint32) (*dem.GameEvent, error) {
	if msg.Data.Len() < 9 {
		return nil, &EventTooSmallError{Bits: msg.Data.Len()}
	}

	s := &stickyReader{r: msg.Data.Reader()}

	index := uint16(s.bits(9))

	descriptor := list.Descriptor(index)
	if descriptor == nil {
		return nil, &UnknownEventIndexError{Index: index}
	}

	event := &dem.GameEvent{
		Tick:   tick,
		Index:  index,
		Name:   descriptor.Name,
		Values: make(dem.GameEventData, len(descriptor.Props)),
	}

	for _, prop := range descriptor.Props {
		var value interface{}

		switch prop.Kind {
		case dem.PropStr:
			value = s.str()
		case dem.PropF32:
			value = s.f32()
		case dem.PropI32:
			value = s.i32()
		case dem.PropI16:
			value = s.i16()
		case dem.PropU8:
			value = s.u8()
		case dem.PropBool:
			value = s.bit()
		default:
			return nil, &UnsupportedEventPropertyError{Kind: prop.Kind}
		}

		if s.err != nil {
			return nil, fmt.Errorf("property %q of event %q: %w", prop.Name, descriptor.Name, s.err)
		}

		event.Values[prop.Name] = value
	}

	return event, nil
}
