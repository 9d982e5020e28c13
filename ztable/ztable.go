// Package ztable implements the generic table opcodes (scan_table,
// copy_table, print_table) that operate on raw memory independent of
// the object/property system (§15).
package ztable

import (
	"strings"

	"github.com/kjhallberg/gozvm/zcore"
)

// PrintTable renders the width x height byte grid at baddr (with skip
// extra bytes per row) as newline-separated text.
func PrintTable(mem *zcore.Memory, baddr uint32, width, height, skip uint16) (string, error) {
	var s strings.Builder
	total := width * height
	if height == 0 {
		total = width
	}

	for i := uint16(0); i < total; i++ {
		row := i / width
		col := i % width

		if col == 0 && row != 0 {
			s.WriteByte('\n')
		}

		b, err := mem.ReadByte(baddr + uint32(i) + uint32(skip*row))
		if err != nil {
			return "", err
		}
		s.WriteByte(b)
	}

	return s.String(), nil
}

// ScanTable searches length entries of fieldSize bytes (the low 7
// bits of form; the high bit selects word vs byte comparison) for
// test, returning the matching entry's address or 0 (§15).
func ScanTable(mem *zcore.Memory, test uint16, baddr uint32, length uint16, form uint16) (uint32, error) {
	fieldSize := form & 0b0111_1111
	checkWord := form&0b1000_0000 != 0
	if fieldSize == 0 {
		return 0, nil
	}

	ptr := baddr
	for i := uint16(0); i < length; i++ {
		if checkWord {
			v, err := mem.ReadWord(ptr)
			if err != nil {
				return 0, err
			}
			if v == test {
				return ptr, nil
			}
		} else {
			v, err := mem.ReadByte(ptr)
			if err != nil {
				return 0, err
			}
			if uint16(v) == test {
				return ptr, nil
			}
		}
		ptr += uint32(fieldSize)
	}

	return 0, nil
}

// CopyTable copies |size| bytes from first to second, or zero-fills
// first if second is 0. A positive size forbids overlap corruption
// (copies via a staging buffer); a negative size permits it (§15).
func CopyTable(mem *zcore.Memory, first, second uint32, size int16) error {
	count := uint32(size)
	if size < 0 {
		count = uint32(-int32(size))
	}

	if second == 0 {
		for i := uint32(0); i < count; i++ {
			if err := mem.WriteByte(first+i, 0); err != nil {
				return err
			}
		}
		return nil
	}

	if size >= 0 {
		view, err := mem.ReadBytes(first, first+count)
		if err != nil {
			return err
		}
		staged := append([]uint8(nil), view...)
		for i, b := range staged {
			if err := mem.WriteByte(second+uint32(i), b); err != nil {
				return err
			}
		}
		return nil
	}

	for i := uint32(0); i < count; i++ {
		b, err := mem.ReadByte(first + i)
		if err != nil {
			return err
		}
		if err := mem.WriteByte(second+i, b); err != nil {
			return err
		}
	}
	return nil
}
