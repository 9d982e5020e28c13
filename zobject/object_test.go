package zobject_test

import (
	"testing"

	"github.com/kjhallberg/gozvm/zcore"
	"github.com/kjhallberg/gozvm/zobject"
)

// buildStory constructs a minimal V3 story with an object table at
// 0x40 (31 property defaults, then three objects) and property
// tables for each object starting at 0x200/0x220/0x240.
func buildStory() *zcore.Memory {
	b := make([]uint8, 0x300)
	b[0] = 3
	b[0x0e] = 0x03 // static memory base -> 0x300, so the object and property tables are writable
	b[0x0a] = 0x00
	b[0x0b] = 0x40 // object table base -> 0x40

	objBase := func(id uint16) int { return 0x40 + 31*2 + int(id-1)*9 }

	writeEntry := func(id uint16, parent, sibling, child uint8, propPtr uint16) {
		base := objBase(id)
		b[base+4] = parent
		b[base+5] = sibling
		b[base+6] = child
		b[base+7] = uint8(propPtr >> 8)
		b[base+8] = uint8(propPtr)
	}

	writeEntry(1, 0, 0, 2, 0x200)
	writeEntry(2, 1, 3, 0, 0x220)
	writeEntry(3, 1, 0, 0, 0x240)

	// Object 1 property table: name length 0, then prop 5 (len 2,
	// data 0x1234), prop 3 (len 1, data 0x99), terminator.
	b[0x200] = 0x00
	b[0x201] = (2-1)<<5 | 5
	b[0x202] = 0x12
	b[0x203] = 0x34
	b[0x204] = (1-1)<<5 | 3
	b[0x205] = 0x99
	b[0x206] = 0x00

	// Object 2 & 3: empty property tables.
	b[0x220] = 0x00
	b[0x221] = 0x00
	b[0x240] = 0x00
	b[0x241] = 0x00

	// Property default for id 7 (index 6).
	b[0x40+6*2] = 0xAA
	b[0x40+6*2+1] = 0xAA

	return zcore.Load(b)
}

func TestAttributeTestSetClear(t *testing.T) {
	mem := buildStory()
	tree := zobject.NewTree(mem)

	o, err := tree.Object(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if set, _ := o.AttrTest(10); set {
		t.Error("attribute 10 should start clear")
	}

	if err := o.AttrSet(10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set, _ := o.AttrTest(10); !set {
		t.Error("attribute 10 should be set")
	}

	if err := o.AttrClear(10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set, _ := o.AttrTest(10); set {
		t.Error("attribute 10 should be clear again")
	}
}

func TestGetPropFallsBackToDefault(t *testing.T) {
	mem := buildStory()
	tree := zobject.NewTree(mem)
	o, _ := tree.Object(1)

	v, err := o.GetProp(5)
	if err != nil || v != 0x1234 {
		t.Fatalf("got %#x, %v, want 0x1234", v, err)
	}

	v, err = o.GetProp(3)
	if err != nil || v != 0x99 {
		t.Fatalf("got %#x, %v, want 0x99", v, err)
	}

	v, err = o.GetProp(7)
	if err != nil || v != 0xAAAA {
		t.Fatalf("got %#x, %v, want default 0xAAAA", v, err)
	}
}

func TestPropAddrLenAndNext(t *testing.T) {
	mem := buildStory()
	tree := zobject.NewTree(mem)
	o, _ := tree.Object(1)

	addr, err := o.GetPropAddr(5)
	if err != nil || addr != 0x202 {
		t.Fatalf("got addr %#x, %v, want 0x202", addr, err)
	}

	length, err := o.GetPropLen(addr)
	if err != nil || length != 2 {
		t.Fatalf("got length %d, %v, want 2", length, err)
	}

	first, err := o.GetNextProp(0)
	if err != nil || first != 5 {
		t.Fatalf("got first prop %d, %v, want 5", first, err)
	}
	second, err := o.GetNextProp(5)
	if err != nil || second != 3 {
		t.Fatalf("got next prop %d, %v, want 3", second, err)
	}
	last, err := o.GetNextProp(3)
	if err != nil || last != 0 {
		t.Fatalf("got next prop %d, %v, want 0", last, err)
	}
}

func TestPutProp(t *testing.T) {
	mem := buildStory()
	tree := zobject.NewTree(mem)
	o, _ := tree.Object(1)

	if err := o.PutProp(5, 0x5678); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := o.GetProp(5)
	if err != nil || v != 0x5678 {
		t.Fatalf("got %#x, %v, want 0x5678", v, err)
	}

	if err := o.PutProp(99, 1); err != zobject.ErrInvalidProperty {
		t.Fatalf("expected ErrInvalidProperty, got %v", err)
	}
}

func TestRemoveAndInsert(t *testing.T) {
	mem := buildStory()
	tree := zobject.NewTree(mem)

	if err := tree.Remove(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	one, _ := tree.Object(1)
	child, err := one.Child()
	if err != nil || child != 3 {
		t.Fatalf("got child %d, %v, want 3 after removing 2", child, err)
	}

	two, _ := tree.Object(2)
	parent, err := two.Parent()
	if err != nil || parent != 0 {
		t.Fatalf("got parent %d, %v, want 0 after removal", parent, err)
	}

	if err := tree.Insert(2, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	three, _ := tree.Object(3)
	child, err = three.Child()
	if err != nil || child != 2 {
		t.Fatalf("got child %d, %v, want 2 after insert", child, err)
	}
	parent, err = two.Parent()
	if err != nil || parent != 3 {
		t.Fatalf("got parent %d, %v, want 3 after insert", parent, err)
	}
}

func TestRemoveDetachedSiblingIsCorruptTree(t *testing.T) {
	mem := buildStory()
	tree := zobject.NewTree(mem)

	// Object 3 claims parent 1, but clearing object 2's sibling byte
	// (entry at 0x87, sibling at +5) leaves 1's child chain as just 2,
	// so 3 is not reachable from its parent.
	if err := mem.WriteByte(0x8c, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := tree.Remove(3); err != zobject.ErrCorruptTree {
		t.Fatalf("expected ErrCorruptTree removing a detached sibling, got %v", err)
	}
}
