// Package zstring implements the ZSCII text decoder: the multi-alphabet
// shift-state machine, abbreviation expansion, and ten-bit Unicode
// escapes used by print-family opcodes and the dictionary.
package zstring

import "github.com/kjhallberg/gozvm/zcore"

// Alphabets holds the three 26-entry character rows used to decode a
// Z-char in the 6-31 range. A0 is lowercase, A1 is uppercase, A2 is
// punctuation/digits; row index 0 corresponds to Z-char value 6.
type Alphabets struct {
	A0 [26]byte
	A1 [26]byte
	A2 [26]byte
}

var defaultA0 = [26]byte{'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm', 'n', 'o', 'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z'}
var defaultA1 = [26]byte{'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M', 'N', 'O', 'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z'}

// A2 for V1: no newline, '<' replaces '-' in a different slot (§4.2).
var a2V1 = [26]byte{' ', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9', '.', ',', '!', '?', '_', '#', '\'', '"', '/', '\\', '<', '-', ':', '(', ')'}

// A2 shared by V2+: index 0 (Z-char 6) is the ten-bit escape slot and
// is never looked up; index 1 (Z-char 7) is a literal newline.
var a2Default = [26]byte{0, '\n', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9', '.', ',', '!', '?', '_', '#', '\'', '"', '/', '\\', '-', ':', '(', ')'}

// Default returns the built-in alphabets for the given story version.
func Default(version uint8) *Alphabets {
	a := &Alphabets{A0: defaultA0, A1: defaultA1}
	if version == 1 {
		a.A2 = a2V1
	} else {
		a.A2 = a2Default
	}
	return a
}

// Load returns the alphabets in effect for mem: the version default,
// or a custom table when the header's alphabet-table-base is set
// (V5+ only).
func Load(mem *zcore.Memory) *Alphabets {
	a := Default(mem.Version)
	if mem.Version < 5 || mem.AlphabetTableBase == 0 {
		return a
	}

	base := uint32(mem.AlphabetTableBase)
	for row := 0; row < 3; row++ {
		var dst *[26]byte
		switch row {
		case 0:
			dst = &a.A0
		case 1:
			dst = &a.A1
		case 2:
			dst = &a.A2
		}
		for i := 0; i < 26; i++ {
			b, err := mem.ReadByte(base + uint32(row*26+i))
			if err != nil {
				return a
			}
			dst[i] = b
		}
	}
	return a
}
