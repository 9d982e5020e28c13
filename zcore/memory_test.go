package zcore

import "testing"

// minimalStory builds a V3 story image large enough to hold a header
// and a small amount of dynamic/static memory, with the static memory
// boundary set at byte 0x40 so tests can exercise write protection.
func minimalStory(staticBase uint16) []uint8 {
	b := make([]uint8, 0x200)
	b[offVersion] = 3
	b[offStaticMemBase] = uint8(staticBase >> 8)
	b[offStaticMemBase+1] = uint8(staticBase)
	b[offHighMemBase] = 0x01
	b[offHighMemBase+1] = 0x00
	b[offInitialPC] = 0x01
	b[offInitialPC+1] = 0x00
	return b
}

func TestBigEndianRoundTrip(t *testing.T) {
	m := Load(minimalStory(0x40))

	if err := m.WriteWord(0x10, 0xBEEF); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := m.ReadWord(0x10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0xBEEF {
		t.Fatalf("round trip mismatch: got %#x", got)
	}
}

func TestWriteProtectedStaticMemory(t *testing.T) {
	m := Load(minimalStory(0x40))

	if err := m.WriteByte(0x40, 1); err != ErrMemoryWriteProtected {
		t.Fatalf("expected ErrMemoryWriteProtected, got %v", err)
	}
	if err := m.WriteByte(0x3f, 1); err != nil {
		t.Fatalf("expected byte below static boundary to be writable: %v", err)
	}
}

func TestOutOfBoundsAccess(t *testing.T) {
	m := Load(minimalStory(0x40))

	if _, err := m.ReadByte(m.Len()); err != ErrMemoryOutOfBounds {
		t.Fatalf("expected ErrMemoryOutOfBounds, got %v", err)
	}
}

func TestPackedAddress(t *testing.T) {
	story := minimalStory(0x40)
	story[offVersion] = 3
	m := Load(story)
	if got := m.PackedAddress(0x100, false); got != 0x200 {
		t.Fatalf("v3 packed address: got %#x, want 0x200", got)
	}

	story5 := minimalStory(0x40)
	story5[offVersion] = 5
	m5 := Load(story5)
	if got := m5.PackedAddress(0x100, false); got != 0x400 {
		t.Fatalf("v5 packed address: got %#x, want 0x400", got)
	}
}

func TestRestartPreservesOnlyDynamicMemoryAndFlags2(t *testing.T) {
	m := Load(minimalStory(0x100))

	// Simulate gameplay mutating a dynamic memory global.
	if err := m.WriteByte(0x80, 0x42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Set the transcription bit (bit 0 of the flags 2 word, so in its
	// low byte), which should survive restart.
	m.bytes[offFlags2+1] = 0b0000_0001

	m.Restart()

	got, _ := m.ReadByte(0x80)
	if got != 0 {
		t.Fatalf("expected dynamic memory to be reset, got %#x", got)
	}
	if m.bytes[offFlags2+1] != 0b0000_0001 {
		t.Fatalf("expected flags 2 to survive restart")
	}
}
