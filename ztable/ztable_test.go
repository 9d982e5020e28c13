package ztable_test

import (
	"testing"

	"github.com/kjhallberg/gozvm/zcore"
	"github.com/kjhallberg/gozvm/ztable"
)

func testMemory() *zcore.Memory {
	b := make([]uint8, 0x200)
	b[0] = 3
	b[0x0e] = 0x01 // static base -> 0x100
	return zcore.Load(b)
}

func TestPrintTable(t *testing.T) {
	mem := testMemory()
	data := []uint8{'a', 'b', 'c', 'd'}
	for i, c := range data {
		if err := mem.WriteByte(uint32(0x40+i), c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	out, err := ztable.PrintTable(mem, 0x40, 2, 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "ab\ncd" {
		t.Fatalf("got %q, want %q", out, "ab\ncd")
	}
}

func TestScanTableByte(t *testing.T) {
	mem := testMemory()
	values := []uint8{10, 20, 30, 40}
	for i, v := range values {
		if err := mem.WriteByte(uint32(0x40+i), v); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	addr, err := ztable.ScanTable(mem, 30, 0x40, 4, 0x01)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr != 0x42 {
		t.Fatalf("got %#x, want 0x42", addr)
	}

	addr, err = ztable.ScanTable(mem, 99, 0x40, 4, 0x01)
	if err != nil || addr != 0 {
		t.Fatalf("got %#x, %v, want 0", addr, err)
	}
}

func TestCopyTableZeroFill(t *testing.T) {
	mem := testMemory()
	if err := mem.WriteByte(0x40, 0xFF); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ztable.CopyTable(mem, 0x40, 0, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := mem.ReadByte(0x40)
	if err != nil || b != 0 {
		t.Fatalf("got %d, %v, want 0", b, err)
	}
}

func TestCopyTablePositiveSize(t *testing.T) {
	mem := testMemory()
	for i, v := range []uint8{1, 2, 3} {
		if err := mem.WriteByte(uint32(0x40+i), v); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if err := ztable.CopyTable(mem, 0x40, 0x50, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, want := range []uint8{1, 2, 3} {
		got, err := mem.ReadByte(uint32(0x50 + i))
		if err != nil || got != want {
			t.Fatalf("byte %d: got %d, %v, want %d", i, got, err, want)
		}
	}
}
