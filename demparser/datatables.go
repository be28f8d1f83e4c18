// This file contains the decoder for the send-table schema stored opaquely
// in DataTables frames.

package demparser

import (
	"fmt"

	"github.com/coderbot16/demoman/dem"
	"github.com/coderbot16/demoman/demparser/bitstream"
)

// ParseDataTables decodes the payload of a DataTablesFrame: a bit-delimited
// sequence of send tables followed by the class links.
func ParseDataTables(data []byte) (*dem.DataTables, error) {
	s := &stickyReader{r: bitstream.NewBitReader(data)}

	tables := new(dem.DataTables)

	for s.bit() {
		table, err := readDataTable(s)
		if err != nil {
			return nil, fmt.Errorf("send table %d: %w", len(tables.Tables), err)
		}

		tables.Tables = append(tables.Tables, *table)
	}

	count := s.u16()
	for i := 0; i < int(count) && s.err == nil; i++ {
		tables.Links = append(tables.Links, dem.ClassLink{
			Index: s.u16(),
			Name:  s.str(),
			Table: s.str(),
		})
	}

	if s.err != nil {
		return nil, s.err
	}

	return tables, nil
}

func readDataTable(s *stickyReader) (*dem.DataTable, error) {
	table := &dem.DataTable{
		NeedsDecoder: s.bit(),
		Name:         s.str(),
	}

	rows := int(s.bits(10))
	for i := 0; i < rows; i++ {
		row, err := readSendRow(s)
		if err != nil {
			return nil, err
		}

		table.Rows = append(table.Rows, *row)
	}

	return table, nil
}

// readSendRow reads one property row. The tail depends on the row kind and
// on the Exclude flag: table rows and exclusions carry a name, arrays an
// element bound, everything else a numeric range and bit width.
func readSendRow(s *stickyReader) (*dem.SendRow, error) {
	kindID := s.bits(5)
	if s.err != nil {
		return nil, s.err
	}

	kind := dem.SendRowKind(kindID)
	if !kind.Valid() {
		return nil, &BadEnumIndexError{Enum: "send table row kind", Value: kindID}
	}

	row := &dem.SendRow{
		Kind:  kind,
		Name:  s.str(),
		Flags: dem.SendFlags(s.u16()),
	}

	switch {
	case kind == dem.SendTable:
		row.Data.TableName = s.str()
	case row.Flags.Has(dem.FlagExclude):
		row.Data.Exclusion = s.str()
	case kind == dem.SendArray:
		row.Data.MaxElements = uint16(s.bits(10))
	default:
		row.Data.Low = s.f32()
		row.Data.High = s.f32()
		row.Data.Bits = uint8(s.bits(7))
	}

	if s.err != nil {
		return nil, s.err
	}

	return row, nil
}
