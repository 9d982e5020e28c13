// Package zmachine implements the instruction decoder, call stack,
// and opcode dispatch of the Z-Machine: the CPU built around the
// story image managed by zcore, the object tree in zobject and the
// text codec in zstring.
package zmachine

import (
	"math/rand"
	"strings"
	"time"

	"github.com/kjhallberg/gozvm/dictionary"
	"github.com/kjhallberg/gozvm/zcore"
	"github.com/kjhallberg/gozvm/zobject"
	"github.com/kjhallberg/gozvm/zstring"
)

// InputState tells a driving UI what kind of input the machine is
// currently blocked waiting for (§10, read/read_char opcodes).
type InputState int

const (
	StateRunning InputState = iota
	StateAwaitingLine
	StateAwaitingChar
	StateHalted
)

// Streams tracks which of the Z-Machine's four output streams are
// currently selected (§7.1).
type Streams struct {
	Screen        bool
	Transcript    bool
	Memory        bool
	CommandScript bool
	memoryStreams []memoryStream
}

type memoryStream struct {
	base uint32
	ptr  uint32
}

// Machine is one running instance of a story file.
type Machine struct {
	Memory     *zcore.Memory
	Objects    *zobject.Tree
	Alphabets  *zstring.Alphabets
	Dictionary *dictionary.Dictionary
	Screen     *Screen

	callStack  CallStack
	streams    Streams
	rng        *rand.Rand
	undo       []*undoState
	state      InputState

	pendingStoreVar uint8 // variable to receive sread/read_char's result
}

// New builds a Machine from a loaded story image and wires up its
// object tree, text tables, dictionary and screen model.
func New(mem *zcore.Memory) (*Machine, error) {
	alphabets := zstring.Load(mem)
	dict, err := dictionary.Parse(mem, alphabets)
	if err != nil {
		return nil, err
	}

	m := &Machine{
		Memory:     mem,
		Objects:    zobject.NewTree(mem),
		Alphabets:  alphabets,
		Dictionary: dict,
		Screen:     NewScreen(),
		streams:    Streams{Screen: true},
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	entry := uint32(mem.InitialPC)
	if mem.Version == 6 {
		packed := mem.PackedAddress(mem.InitialPC, false)
		localCount, err := mem.ReadByte(packed)
		if err != nil {
			return nil, err
		}
		locals, err := m.readRoutineLocals(packed+1, int(localCount), nil)
		if err != nil {
			return nil, err
		}
		m.callStack.push(&Frame{pc: packed + 1 + routineLocalsWidth(mem.Version, int(localCount)), locals: locals})
		return m, nil
	}

	m.callStack.push(&Frame{pc: entry})
	return m, nil
}

// routineLocalsWidth returns how many bytes of default-local-value
// data precede a routine's first instruction: 2 bytes per local on
// V1-4 (packed default values), none on V5+ (locals start at zero).
func routineLocalsWidth(version uint8, count int) uint32 {
	if version < 5 {
		return uint32(count) * 2
	}
	return 0
}

// readRoutineLocals reads a routine's local variable defaults,
// overridden by any arguments the caller supplied (§6.1, §6.4.1).
func (m *Machine) readRoutineLocals(addr uint32, count int, args []uint16) ([]uint16, error) {
	locals := make([]uint16, count)
	for i := 0; i < count; i++ {
		if i < len(args) {
			locals[i] = args[i]
		} else if m.Memory.Version < 5 {
			v, err := m.Memory.ReadWord(addr)
			if err != nil {
				return nil, err
			}
			locals[i] = v
		}
		if m.Memory.Version < 5 {
			addr += 2
		}
	}
	return locals, nil
}

// loadVariable reads variable 0 (eval stack top, popping), 1-15
// (current frame locals) or 16-255 (globals) (§4.2.2).
func (m *Machine) loadVariable(variable uint8) (uint16, error) {
	return m.readVariable(variable, false)
}

func (m *Machine) readVariable(variable uint8, indirect bool) (uint16, error) {
	frame, err := m.callStack.top()
	if err != nil {
		return 0, err
	}

	switch {
	case variable == 0:
		if indirect {
			return frame.peek()
		}
		return frame.pop()
	case variable < 16:
		idx := int(variable) - 1
		if idx >= len(frame.locals) {
			return 0, ErrInvalidVariable
		}
		return frame.locals[idx], nil
	default:
		return m.Memory.ReadWord(uint32(m.Memory.GlobalVariableBase) + 2*uint32(variable-16))
	}
}

func (m *Machine) storeVariable(variable uint8, value uint16, indirect bool) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}

	switch {
	case variable == 0:
		if indirect {
			if _, err := frame.pop(); err != nil {
				return err
			}
		}
		frame.push(value)
		return nil
	case variable < 16:
		idx := int(variable) - 1
		if idx >= len(frame.locals) {
			return ErrInvalidVariable
		}
		frame.locals[idx] = value
		return nil
	default:
		return m.Memory.WriteWord(uint32(m.Memory.GlobalVariableBase)+2*uint32(variable-16), value)
	}
}

// operandValues resolves every operand of ins in order.
func (m *Machine) operandValues(ins *Instruction) ([]uint16, error) {
	values := make([]uint16, len(ins.operands))
	for i, op := range ins.operands {
		v, err := op.Value(m)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// Run steps the machine until it halts or an instruction returns an
// error. Input is driven by sending on Screen.Line/Screen.Char when
// State() reports the machine is blocked awaiting one.
func (m *Machine) Run() error {
	for {
		if m.state == StateAwaitingLine || m.state == StateAwaitingChar || m.state == StateHalted {
			return nil
		}
		if err := m.Step(); err != nil {
			return err
		}
	}
}

// State reports what the machine is currently waiting for.
func (m *Machine) State() InputState { return m.state }

// Step decodes and executes a single instruction.
func (m *Machine) Step() error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}

	ins, err := decodeInstruction(m.Memory, frame)
	if err != nil {
		return err
	}

	handler, ok := lookupHandler(ins)
	if !ok {
		return ErrIllegalOpcode
	}
	return handler(m, &ins)
}

func lookupHandler(ins Instruction) (opcodeHandler, bool) {
	var table []opcodeHandler
	switch ins.count {
	case count0OP:
		table = op0Handlers[:]
	case count1OP:
		table = op1Handlers[:]
	case count2OP:
		table = op2Handlers[:]
	case countVAR:
		if ins.form == formExtended {
			table = extHandlers[:]
		} else {
			table = varHandlers[:]
		}
	}
	if int(ins.number) >= len(table) {
		return nil, false
	}
	h := table[ins.number]
	return h, h != nil
}

type opcodeHandler func(m *Machine, ins *Instruction) error

// call invokes a routine with the operands of ins (minus the address,
// which is operands[0]) as arguments, pushing a new frame (§6.3,
// §6.4).
func (m *Machine) call(ins *Instruction, kind RoutineKind) error {
	values, err := m.operandValues(ins)
	if err != nil {
		return err
	}

	routineAddr := m.Memory.PackedAddress(values[0], false)

	if routineAddr == 0 {
		if kind == RoutineFunction {
			frame, err := m.callStack.top()
			if err != nil {
				return err
			}
			dest, err := readByteIncPC(m.Memory, frame)
			if err != nil {
				return err
			}
			return m.storeVariable(dest, 0, false)
		}
		return nil
	}

	localCount, err := m.Memory.ReadByte(routineAddr)
	if err != nil {
		return err
	}

	locals, err := m.readRoutineLocals(routineAddr+1, int(localCount), values[1:])
	if err != nil {
		return err
	}

	newFrame := &Frame{
		pc:           routineAddr + 1 + routineLocalsWidth(m.Memory.Version, int(localCount)),
		locals:       locals,
		kind:         kind,
		argsSupplied: len(values) - 1,
	}
	m.callStack.push(newFrame)
	return nil
}

// ret pops the current frame and, if it was a function, stores val
// into the variable named by the byte following the call instruction
// in the caller's frame (§6.3.3).
func (m *Machine) ret(val uint16) error {
	poppedFrame, err := m.callStack.pop()
	if err != nil {
		return err
	}

	frame, err := m.callStack.top()
	if err != nil {
		if err == ErrCallStackUnderflow {
			m.state = StateHalted
			return nil
		}
		return err
	}

	if poppedFrame.kind != RoutineFunction {
		return nil
	}
	dest, err := readByteIncPC(m.Memory, frame)
	if err != nil {
		return err
	}
	return m.storeVariable(dest, val, false)
}

func (m *Machine) branch(frame *Frame, info branchInfo, condition bool) error {
	if condition != info.onTrue {
		return nil
	}
	if info.isReturn {
		return m.ret(info.returnValue)
	}
	frame.pc = info.destination
	return nil
}

// appendText sends s to whichever output streams are active,
// honouring memory-stream redirection (§7.1.2.2: stream 3 suppresses
// all other streams while selected).
func (m *Machine) appendText(s string) error {
	if m.streams.Memory {
		n := len(m.streams.memoryStreams)
		cur := &m.streams.memoryStreams[n-1]
		for i := 0; i < len(s); i++ {
			if err := m.Memory.WriteByte(cur.ptr, s[i]); err != nil {
				return err
			}
			cur.ptr++
		}
		return nil
	}

	if m.streams.Screen && m.Screen != nil {
		m.Screen.Write(s)
	}
	return nil
}

func toLowerASCII(s string) string { return strings.ToLower(s) }
