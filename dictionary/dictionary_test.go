package dictionary_test

import (
	"testing"

	"github.com/kjhallberg/gozvm/dictionary"
	"github.com/kjhallberg/gozvm/zcore"
	"github.com/kjhallberg/gozvm/zstring"
)

// buildStory writes a minimal V3 story with a two-word dictionary at
// 0x40: no input codes, entry length 7 (4 encoded bytes + 3 data
// bytes), two entries "a" and "aa" encoded as their raw alphabet-0
// z-characters padded with 5 (the standard pad character).
func buildStory() *zcore.Memory {
	b := make([]uint8, 0x100)
	b[0] = 3
	b[0x09] = 0x40 // dictionary base -> 0x40
	b[0x0e] = 0x01 // static memory base -> 0x100, dynamic covers everything below

	base := 0x40
	b[base] = 0   // numInputCodes
	b[base+1] = 7 // entry length
	b[base+2] = 0
	b[base+3] = 2 // entry count

	// Entry 0: "a" -> alphabet-0 code for 'a' is 6 (a=6 in A0 per
	// standard table), padded with 5s, two words big-endian with the
	// top bit of the second word set to mark end of string.
	entry0 := base + 4
	b[entry0] = 0x18 // word1 0x18A5: chars 6,5,5; word2 0x94A5: 5,5,5 + end bit
	b[entry0+1] = 0xA5
	b[entry0+2] = 0x94
	b[entry0+3] = 0xA5

	entry1 := entry0 + 7
	b[entry1] = 0x18
	b[entry1+1] = 0xC5
	b[entry1+2] = 0x94
	b[entry1+3] = 0xA5

	return zcore.Load(b)
}

func TestParseDictionaryHeader(t *testing.T) {
	mem := buildStory()
	alphabets := zstring.Default(mem.Version)

	dict, err := dictionary.Parse(mem, alphabets)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dict.Header.EntryLength != 7 {
		t.Fatalf("got entry length %d, want 7", dict.Header.EntryLength)
	}
	if dict.Header.EntryCount != 2 {
		t.Fatalf("got entry count %d, want 2", dict.Header.EntryCount)
	}
}

func TestFindMissingWordReturnsZero(t *testing.T) {
	mem := buildStory()
	alphabets := zstring.Default(mem.Version)

	dict, err := dictionary.Parse(mem, alphabets)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if addr := dict.Find([]uint8{0xFF, 0xFF, 0xFF, 0xFF}); addr != 0 {
		t.Fatalf("got %#x, want 0 for unmatched encoding", addr)
	}
}

func TestFindMatchesEncodedEntry(t *testing.T) {
	mem := buildStory()
	alphabets := zstring.Default(mem.Version)

	dict, err := dictionary.Parse(mem, alphabets)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if addr := dict.Find([]uint8{0x18, 0xA5, 0x94, 0xA5}); addr != 0x44 {
		t.Fatalf("got %#x, want 0x44", addr)
	}
	if addr := dict.Find([]uint8{0x18, 0xC5, 0x94, 0xA5}); addr != 0x4B {
		t.Fatalf("got %#x, want 0x4b", addr)
	}
}
