package zstring

import (
	"testing"

	"github.com/kjhallberg/gozvm/zcore"
)

func storyWithBytes(version uint8, data map[uint32]uint8) *zcore.Memory {
	b := make([]uint8, 0x200)
	b[0] = version
	b[0x0e] = 0x01 // static memory base high byte -> 0x100, plenty of room below
	b[0x18] = 0x01 // abbreviation table base -> 0x100 (unused unless referenced)
	for addr, v := range data {
		b[addr] = v
	}
	return zcore.Load(b)
}

func TestDecodeHello(t *testing.T) {
	mem := storyWithBytes(3, map[uint32]uint8{
		0x40: 0x35, 0x41: 0x51, 0x42: 0xC6, 0x43: 0x85,
	})

	str, next, err := Decode(mem, 0x40, Default(3), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if str != "hello" {
		t.Fatalf("got %q, want %q", str, "hello")
	}
	if next != 0x44 {
		t.Fatalf("got next=%#x, want 0x44", next)
	}
}

func TestDecodeSpaceAndShift(t *testing.T) {
	// zchar 0 (space), zchar 4 (shift to A1 once), zchar 6 ('A') packed
	// into one terminated word: 00000_00100_00110 = 0x0086, high bit set.
	word := uint16(0)<<10 | uint16(4)<<5 | uint16(6)
	word |= 0x8000

	mem := storyWithBytes(3, map[uint32]uint8{
		0x40: uint8(word >> 8), 0x41: uint8(word),
	})

	str, _, err := Decode(mem, 0x40, Default(3), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if str != " A" {
		t.Fatalf("got %q, want %q", str, " A")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	mem := storyWithBytes(3, nil)
	alphabets := Default(3)

	encoded := Encode([]rune("open"), mem, alphabets)
	if len(encoded) != 4 {
		t.Fatalf("expected 2-word (4 byte) encoding for v3, got %d bytes", len(encoded))
	}

	for i, b := range encoded {
		if err := mem.WriteByte(0x40+uint32(i), b); err != nil {
			t.Fatalf("unexpected error writing story bytes: %v", err)
		}
	}

	decoded, _, err := Decode(mem, 0x40, alphabets, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded != "open" {
		t.Fatalf("round trip mismatch: got %q", decoded)
	}
}

func TestNestedAbbreviationRejected(t *testing.T) {
	// Abbreviation table 0 entry 0 points at a string that itself
	// starts with another abbreviation reference (zchar 1).
	innerAddr := uint32(0x180)
	innerWord := uint16(1)<<10 | uint16(0)<<5 | uint16(0)
	innerWord |= 0x8000

	// Outer string: zchar 1 (abbreviation ref, table 0), zchar 0 (index 0).
	outerWord := uint16(1)<<10 | uint16(0)<<5 | uint16(0)
	outerWord |= 0x8000

	mem := storyWithBytes(3, map[uint32]uint8{
		0x18: 0x01, 0x19: 0x00, // abbreviations table base -> 0x100
		0x100: uint8(innerAddr / 2 >> 8), 0x101: uint8(innerAddr / 2), // entry 0 -> packed addr
		uint32(innerAddr):     uint8(innerWord >> 8),
		uint32(innerAddr) + 1: uint8(innerWord),
		0x40:                  uint8(outerWord >> 8),
		0x41:                  uint8(outerWord),
	})

	_, _, err := Decode(mem, 0x40, Default(3), 0)
	if err != ErrMalformedString {
		t.Fatalf("expected ErrMalformedString, got %v", err)
	}
}
