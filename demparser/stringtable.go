// This file contains the string-table codec: the CreateStringTable body
// reader, the Snappy/LZSS outer framing, the incremental update protocol
// with its 32-entry history window, and the full-dump form carried by
// StringTables frames.

package demparser

import (
	"math/bits"

	"github.com/klauspost/compress/snappy"

	"github.com/coderbot16/demoman/dem"
	"github.com/coderbot16/demoman/dem/demmsg"
	"github.com/coderbot16/demoman/demparser/bitstream"
)

// Compression magics of string-table blocks, stored big-endian on the wire.
const (
	snapMagic = 0x534E4150 // 'SNAP', Google Snappy
	lzssMagic = 0x4C5A5353 // 'LZSS', an LZ77 variant
)

// readCreateStringTable reads a CreateStringTable message body. The entries
// field is one bit wider than the table's index width so that it can
// legally equal the capacity.
func readCreateStringTable(s *stickyReader, version demmsg.ProtocolVersion) (*demmsg.CreateStringTable, error) {
	create := &demmsg.CreateStringTable{
		Name:       s.str(),
		MaxEntries: s.u16(),
	}
	if s.err != nil {
		return nil, s.err
	}

	if create.MaxEntries == 0 {
		return nil, &OutOfBoundsError{Field: "string table capacity", Value: 0, Min: 1, Max: 1<<16 - 1}
	}

	entryBits := uint8(bits.Len16(create.MaxEntries))
	create.Entries = uint16(s.bits(entryBits))

	var length int
	if version.VarLengthTables() {
		length = int(s.varU32())
	} else {
		length = int(s.bits(20))
	}

	if s.bit() {
		create.FixedUserdataSize = &demmsg.FixedUserdataSize{
			Bytes: uint16(s.bits(12)),
			Bits:  uint8(s.bits(4)),
		}
	}

	create.Compressed = s.bit()
	create.Data = s.blob(length)

	if s.err != nil {
		return nil, s.err
	}

	return create, nil
}

// TableFromCreate materializes the string table announced by a
// CreateStringTable message, undoing the compression framing and applying
// the encoded initial rows.
//
// LZSS-compressed blocks are accepted at the framing layer but not
// decompressed: they only occur in ancient demos, and yielding the empty
// table keeps the rest of the demo decodable.
func TableFromCreate(msg *demmsg.CreateStringTable) (*dem.StringTable, error) {
	var fixedBits *uint8
	if msg.FixedUserdataSize != nil {
		fixedBits = &msg.FixedUserdataSize.Bits
	}

	table := dem.NewStringTable(int(msg.Entries), int(msg.MaxEntries), fixedBits)

	r := msg.Data.Reader()

	if msg.Compressed {
		s := &stickyReader{r: r}

		s.u32() // declared uncompressed size
		compressedSize := s.u32()
		if s.err != nil {
			return nil, s.err
		}

		if compressedSize < 4 {
			return nil, ErrCompressedSizeTooSmall
		}

		magic := bits.ReverseBytes32(s.u32())
		compressed := s.bytes(int(compressedSize) - 4)
		if s.err != nil {
			return nil, s.err
		}

		switch magic {
		case snapMagic:
			uncompressed, err := snappy.Decode(nil, compressed)
			if err != nil {
				return nil, &DecompressionError{Err: err}
			}

			r = bitstream.NewBitReader(uncompressed)

		case lzssMagic:
			return table, nil

		default:
			return nil, &BadCompressionTypeError{FourCC: magic}
		}
	}

	if err := updateTable(table, r, int(msg.Entries)); err != nil {
		return nil, err
	}

	return table, nil
}

// UpdateTable applies the rows of an UpdateStringTable message to a live
// table. The table is left unchanged when an error is returned for a row
// that had not been written yet.
func UpdateTable(table *dem.StringTable, data bitstream.Bits, entries int) error {
	return updateTable(table, data.Reader(), entries)
}

// updateTable runs the incremental table update protocol: per row, a
// predicted-or-explicit index, an optional string (possibly a prefix
// back-reference into the history of the last 32 inserted strings), and an
// optional extra payload.
func updateTable(table *dem.StringTable, r *bitstream.BitReader, updated int) error {
	if table.Capacity <= 0 {
		return &OutOfBoundsError{Field: "string table capacity", Value: table.Capacity, Min: 1, Max: 1<<16 - 1}
	}

	indexBits := uint8(bits.Len(uint(table.Capacity)) - 1)

	history := make([]string, 0, dem.HistorySize)
	predicted := 0

	for row := 0; row < updated; row++ {
		s := &stickyReader{r: r}

		index := predicted
		if !s.bit() {
			index = int(s.bits(indexBits))
		}
		predicted = index + 1

		var name *string

		if s.bit() {
			if s.bit() {
				historyIndex := int(s.bits(5))
				matching := int(s.bits(5))
				suffix := s.str()
				if s.err != nil {
					return s.err
				}

				if historyIndex >= len(history) {
					return &OutOfBoundsError{
						Field: "string table history index",
						Value: historyIndex,
						Min:   0,
						Max:   len(history) - 1,
					}
				}

				base := history[historyIndex]
				if matching > len(base) {
					return &OutOfBoundsError{
						Field: "string table history match length",
						Value: matching,
						Min:   0,
						Max:   len(base),
					}
				}

				full := base[:matching] + suffix
				name = &full
			} else {
				value := s.str()
				if s.err != nil {
					return s.err
				}

				name = &value
			}

			for len(history) >= dem.HistorySize {
				history = history[1:]
			}
			history = append(history, *name)
		}

		var extra *dem.Extra

		if s.bit() {
			if table.HasFixedExtraBits {
				extra = &dem.Extra{
					Kind:     dem.ExtraBits,
					BitCount: table.FixedExtraBits,
					BitData:  uint16(s.bits(table.FixedExtraBits)),
				}
			} else {
				extra = &dem.Extra{
					Kind:  dem.ExtraBytes,
					Bytes: s.bytes(int(s.bits(14))),
				}
			}
		}

		if s.err != nil {
			return s.err
		}

		if index >= table.Capacity {
			return &OutOfBoundsError{
				Field: "string table index",
				Value: index,
				Min:   0,
				Max:   table.Capacity - 1,
			}
		}

		// Updates may introduce rows the create message did not carry.
		for index >= len(table.Entries) {
			table.Entries = append(table.Entries, dem.StringTableEntry{})
		}

		if name != nil {
			table.Entries[index].Name = *name
		}
		if extra != nil {
			table.Entries[index].Extra = *extra
		}
	}

	return nil
}

// ParseStringTables parses the full string-table dump carried by a
// StringTables frame. The dump form is uncompressed and never uses history
// compression.
func ParseStringTables(data []byte) (dem.StringTables, error) {
	s := &stickyReader{r: bitstream.NewBitReader(data)}

	count := s.u8()
	tables := make(dem.StringTables, 0, count)

	for i := 0; i < int(count) && s.err == nil; i++ {
		pair := dem.StringTablePair{Name: s.str()}
		pair.Primary = readTableSnapshot(s)

		if s.bit() {
			pair.Client = readTableSnapshot(s)
		}

		tables = append(tables, pair)
	}

	if s.err != nil {
		return nil, s.err
	}

	return tables, nil
}

// readTableSnapshot reads one full table dump: a row count followed by rows
// of (name, optional length-prefixed byte extra).
func readTableSnapshot(s *stickyReader) *dem.StringTable {
	count := s.u16()
	table := &dem.StringTable{Entries: make([]dem.StringTableEntry, 0, count)}

	for i := 0; i < int(count) && s.err == nil; i++ {
		entry := dem.StringTableEntry{Name: s.str()}

		if s.bit() {
			entry.Extra = dem.Extra{
				Kind:  dem.ExtraBytes,
				Bytes: s.bytes(int(s.u16())),
			}
		}

		table.Entries = append(table.Entries, entry)
	}

	return table
}
