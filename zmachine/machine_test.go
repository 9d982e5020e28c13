package zmachine_test

import (
	"encoding/binary"
	"testing"

	"github.com/kjhallberg/gozvm/zcore"
	"github.com/kjhallberg/gozvm/zmachine"
)

// layout (all within a single V3 story image):
//
//	0x00-0x3f  header
//	0x40-0x43  dictionary header, no entries
//	0x44-0x81  property defaults (31 words)
//	0x82-0x9c  three objects, 9 bytes each
//	0xa0-0xa1  shared empty property table (name length 0, terminator)
//	0x100-...  global variable table (240 words)
//	0x300      static memory base
//	0x310      main "routine" (no locals header, per §6.1.1 V1-5)
//	0x320      a callable routine, 0 locals
const (
	dictBase    = 0x40
	objTable    = 0x44
	obj1Addr    = 0x82
	obj2Addr    = 0x8b
	obj3Addr    = 0x94
	propTable   = 0xa0
	globalsBase = 0x100
	staticBase  = 0x300
	mainAddr    = 0x310
	routineAddr = 0x320
)

// newStory builds the shared header/object/dictionary scaffolding and
// returns the raw bytes, leaving the code region from mainAddr onward
// for each test to fill in with its own instruction stream.
func newStory() []uint8 {
	b := make([]uint8, 0x400)
	b[0x00] = 3 // version
	binary.BigEndian.PutUint16(b[0x06:], mainAddr)
	binary.BigEndian.PutUint16(b[0x08:], dictBase)
	binary.BigEndian.PutUint16(b[0x0a:], objTable)
	binary.BigEndian.PutUint16(b[0x0c:], globalsBase)
	binary.BigEndian.PutUint16(b[0x0e:], staticBase)

	// Dictionary: no input codes, entry length 7, zero entries.
	b[dictBase] = 0
	b[dictBase+1] = 7
	binary.BigEndian.PutUint16(b[dictBase+2:], 0)

	// Empty property table shared by all three objects.
	b[propTable] = 0   // name length 0
	b[propTable+1] = 0 // terminator

	writeObject := func(addr uint32, parent, sibling, child uint8) {
		// 4 attribute bytes already zero.
		b[addr+4] = parent
		b[addr+5] = sibling
		b[addr+6] = child
		binary.BigEndian.PutUint16(b[addr+7:], propTable)
	}
	writeObject(obj1Addr, 0, 0, 2)
	writeObject(obj2Addr, 1, 0, 0)
	writeObject(obj3Addr, 0, 0, 0)

	return b
}

func newMachineWithCode(t *testing.T, code []uint8) *zmachine.Machine {
	t.Helper()
	b := newStory()
	copy(b[mainAddr:], code)
	mem := zcore.Load(b)
	m, err := zmachine.New(mem)
	if err != nil {
		t.Fatalf("unexpected error building machine: %v", err)
	}
	return m
}

func globalAddr(n uint16) uint32 { return uint32(globalsBase) + 2*uint32(n-16) }

// TestArithmeticWrap runs a VAR-form "add" of two large constants that
// overflow 16-bit signed range and checks the result wraps rather than
// erroring (§15 "add").
func TestArithmeticWrap(t *testing.T) {
	// add 32760 10 -> store global 16 (variable-form 2OP:20)
	code := []uint8{0xd4, 0x0f, 0x7f, 0xf8, 0x00, 0x0a, 0x10}
	m := newMachineWithCode(t, code)

	if err := m.Step(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := m.Memory.ReadWord(globalAddr(16))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0x8002 {
		t.Fatalf("got %#x, want 0x8002", got)
	}
}

// TestSignedCompareBranchesToReturn exercises jl's signed comparison
// and the branch-offset-1 "return true" shorthand (§4.7, §15 "jl").
func TestSignedCompareBranchesToReturn(t *testing.T) {
	// jl -5 3 ?(return true) (variable-form 2OP:2)
	code := []uint8{0xc2, 0x0f, 0xff, 0xfb, 0x00, 0x03, 0xc1}
	m := newMachineWithCode(t, code)

	if err := m.Step(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.State() != zmachine.StateHalted {
		t.Fatalf("got state %v, want halted after returning from the only frame", m.State())
	}
}

// TestPushPullRoundTrip exercises the VAR push/pull pair, confirming
// the evaluation stack carries a value across two instructions into a
// global variable (§15 "push"/"pull").
func TestPushPullRoundTrip(t *testing.T) {
	code := []uint8{
		0xe8, 0x7f, 0x2a, // push 42
		0xe9, 0x7f, 0x10, // pull (global 16)
	}
	m := newMachineWithCode(t, code)

	if err := m.Step(); err != nil {
		t.Fatalf("unexpected error on push: %v", err)
	}
	if err := m.Step(); err != nil {
		t.Fatalf("unexpected error on pull: %v", err)
	}

	got, err := m.Memory.ReadWord(globalAddr(16))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

// TestInsertObjMovesChild exercises insert_obj end-to-end through the
// opcode dispatcher rather than calling zobject directly, confirming
// the operand decode and object-tree wiring agree (§15 "insert_obj").
func TestInsertObjMovesChild(t *testing.T) {
	// insert_obj 2 3 (variable-form 2OP:14)
	code := []uint8{0xce, 0x5f, 0x02, 0x03}
	m := newMachineWithCode(t, code)

	if err := m.Step(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	obj2, err := m.Objects.Object(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parent, err := obj2.Parent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parent != 3 {
		t.Fatalf("got parent %d, want 3", parent)
	}

	obj3, err := m.Objects.Object(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	child, err := obj3.Child()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if child != 2 {
		t.Fatalf("got child %d, want 2", child)
	}

	obj1, err := m.Objects.Object(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	oldChild, err := obj1.Child()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if oldChild != 0 {
		t.Fatalf("got object 1's child %d, want 0 after object 2 moved away", oldChild)
	}
}

// TestCallAndReturnStoresResult exercises call_vs/ret across two
// frames, confirming the store-variable byte is read from the
// caller's instruction stream after the callee returns (§6.3.3,
// §6.4).
func TestCallAndReturnStoresResult(t *testing.T) {
	b := newStory()

	// Routine at routineAddr: zero locals, then "ret 99".
	b[routineAddr] = 0
	b[routineAddr+1] = 0x9b // short form, 1OP, small constant, opcode 11 (ret)
	b[routineAddr+2] = 99

	// call_vs <packed routineAddr> -> store global 16 (VAR form, VAR:0)
	packed := uint16(routineAddr / 2)
	code := []uint8{
		0xe0, 0x3f,
		uint8(packed >> 8), uint8(packed),
		0x10,
	}
	copy(b[mainAddr:], code)

	mem := zcore.Load(b)
	m, err := zmachine.New(mem)
	if err != nil {
		t.Fatalf("unexpected error building machine: %v", err)
	}

	if err := m.Step(); err != nil { // call_vs: pushes the callee frame
		t.Fatalf("unexpected error on call: %v", err)
	}
	if err := m.Step(); err != nil { // ret: pops it and stores into the caller
		t.Fatalf("unexpected error on ret: %v", err)
	}

	got, err := m.Memory.ReadWord(globalAddr(16))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 99 {
		t.Fatalf("got %d, want 99", got)
	}
}
