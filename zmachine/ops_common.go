package zmachine

import (
	"math/rand"
	"strconv"

	"github.com/kjhallberg/gozvm/zstring"
)

// storeResult reads the store-variable byte following an instruction
// and writes value into it (§4.6: every opcode marked "store" carries
// one of these).
func (m *Machine) storeResult(frame *Frame, value uint16) error {
	dest, err := readByteIncPC(m.Memory, frame)
	if err != nil {
		return err
	}
	return m.storeVariable(dest, value, false)
}

// doBranch reads the branch information following an instruction and
// acts on it against condition (§4.7).
func (m *Machine) doBranch(frame *Frame, condition bool) error {
	info, err := decodeBranch(m.Memory, frame)
	if err != nil {
		return err
	}
	return m.branch(frame, info, condition)
}

// printLiteral decodes the Z-string literal following an instruction
// (used by print/print_ret, which carry no address operand) and
// advances frame.pc past it.
func (m *Machine) printLiteral(frame *Frame) (string, error) {
	s, next, err := zstring.Decode(m.Memory, frame.pc, m.Alphabets, 0)
	if err != nil {
		return "", err
	}
	frame.pc = next
	return s, nil
}

func signed16(v uint16) int16 { return int16(v) }

// resetExecution reinitializes the call stack at the story's entry
// point, used by restart.
func (m *Machine) resetExecution() error {
	m.Memory.Restart()
	m.callStack = CallStack{}
	m.streams = Streams{Screen: true}
	m.undo = nil
	m.state = StateRunning

	entry := uint32(m.Memory.InitialPC)
	if m.Memory.Version == 6 {
		packed := m.Memory.PackedAddress(m.Memory.InitialPC, false)
		localCount, err := m.Memory.ReadByte(packed)
		if err != nil {
			return err
		}
		locals, err := m.readRoutineLocals(packed+1, int(localCount), nil)
		if err != nil {
			return err
		}
		m.callStack.push(&Frame{pc: packed + 1 + routineLocalsWidth(m.Memory.Version, int(localCount)), locals: locals})
		return nil
	}

	m.callStack.push(&Frame{pc: entry})
	return nil
}

func zsciiChar(m *Machine, code uint16) rune { return zstring.ZsciiToRune(m.Memory, code) }

func zstringRuneToZscii(m *Machine, r rune) (uint8, bool) { return zstring.RuneToZscii(m.Memory, r) }

func zstringEncode(m *Machine, runes []rune) []byte { return zstring.Encode(runes, m.Memory, m.Alphabets) }

func itoa(n int) string { return strconv.Itoa(n) }

// newSeededRand builds a fresh generator for random's negative/zero
// seed operand, which reseeds the sequence rather than drawing from
// it (§15 "random").
func newSeededRand(seed int64) *rand.Rand { return rand.New(rand.NewSource(seed)) }
