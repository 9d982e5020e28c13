package zmachine

import (
	"github.com/kjhallberg/gozvm/dictionary"
	"github.com/kjhallberg/gozvm/ztable"
)

// Variable-operand-count opcodes proper (VAR form with the top
// operand-count bit set), indexed 0-31 by opcode number. 2OP
// opcodes encoded in variable form dispatch through op2Handlers
// instead, since the decoder classifies them by operand count, not
// raw form.
var varHandlers = [32]opcodeHandler{
	0:  opCallVs,
	1:  opStorew,
	2:  opStoreb,
	3:  opPutProp,
	4:  opSread,
	5:  opPrintChar,
	6:  opPrintNum,
	7:  opRandom,
	8:  opPush,
	9:  opPull,
	10: opSplitWindow,
	11: opSetWindow,
	12: opCallVs2,
	13: opEraseWindow,
	14: opEraseLine,
	15: opSetCursor,
	16: opGetCursor,
	17: opSetTextStyle,
	18: opBufferMode,
	19: opOutputStream,
	20: opInputStream,
	21: opSoundEffect,
	22: opReadChar,
	23: opScanTable,
	24: opNotVar,
	25: opCallVn,
	26: opCallVn2,
	27: opTokenise,
	28: opEncodeText,
	29: opCopyTable,
	30: opPrintTable,
	31: opCheckArgCount,
}

func opCallVs(m *Machine, ins *Instruction) error { return m.call(ins, RoutineFunction) }

func opStorew(m *Machine, ins *Instruction) error {
	values, err := m.operandValues(ins)
	if err != nil {
		return err
	}
	addr := uint32(values[0]) + 2*uint32(values[1])
	return m.Memory.WriteWord(addr, values[2])
}

func opStoreb(m *Machine, ins *Instruction) error {
	values, err := m.operandValues(ins)
	if err != nil {
		return err
	}
	addr := uint32(values[0]) + uint32(values[1])
	return m.Memory.WriteByte(addr, uint8(values[2]))
}

func opPutProp(m *Machine, ins *Instruction) error {
	values, err := m.operandValues(ins)
	if err != nil {
		return err
	}
	obj, err := m.Objects.Object(values[0])
	if err != nil {
		return err
	}
	return obj.PutProp(uint8(values[1]), values[2])
}

// opSread implements the read opcode (sread/aread): it tokenises a
// typed line against the dictionary and, from V5 on, stores the
// terminating character (§15 "read"/sread, §10).
func opSread(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	values, err := m.operandValues(ins)
	if err != nil {
		return err
	}
	textBuf := uint32(values[0])
	var parseBuf uint32
	if len(values) >= 2 {
		parseBuf = uint32(values[1])
	}

	line, err := m.readLine()
	if err != nil {
		return err
	}
	line = toLowerASCII(line)

	maxLen, err := m.Memory.ReadByte(textBuf)
	if err != nil {
		return err
	}
	if len(line) > int(maxLen) {
		line = line[:maxLen]
	}

	start := textBuf + 1
	if m.Memory.Version >= 5 {
		if err := m.Memory.WriteByte(textBuf+1, uint8(len(line))); err != nil {
			return err
		}
		start++
	}
	for i := 0; i < len(line); i++ {
		if err := m.Memory.WriteByte(start+uint32(i), line[i]); err != nil {
			return err
		}
	}
	if m.Memory.Version < 5 {
		if err := m.Memory.WriteByte(start+uint32(len(line)), 0); err != nil {
			return err
		}
	}

	if parseBuf != 0 {
		if err := m.tokenise(textBuf, parseBuf, m.Dictionary); err != nil {
			return err
		}
	}

	if m.Memory.Version >= 5 {
		return m.storeResult(frame, 13) // newline terminated
	}
	return nil
}

func opPrintChar(m *Machine, ins *Instruction) error {
	v, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	return m.appendText(string(zsciiChar(m, v)))
}

func opPrintNum(m *Machine, ins *Instruction) error {
	v, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	return m.appendText(itoa(int(signed16(v))))
}

func opRandom(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	v, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}

	n := signed16(v)
	switch {
	case n > 0:
		return m.storeResult(frame, uint16(m.rng.Intn(int(n))+1))
	case n < 0:
		m.rng = newSeededRand(int64(n))
		return m.storeResult(frame, 0)
	default:
		m.rng = newSeededRand(0)
		return m.storeResult(frame, 0)
	}
}

func opPush(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	v, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	frame.push(v)
	return nil
}

func opPull(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}

	if m.Memory.Version == 6 && len(ins.operands) == 0 {
		v, err := frame.pop()
		if err != nil {
			return err
		}
		return m.storeResult(frame, v)
	}

	variable := uint8(ins.operands[0].value)
	v, err := frame.pop()
	if err != nil {
		return err
	}
	return m.storeVariable(variable, v, true)
}

func opSplitWindow(m *Machine, ins *Instruction) error {
	v, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	if m.Screen != nil {
		m.Screen.Out <- SplitWindowEvent{UpperLines: int(v)}
	}
	return nil
}

func opSetWindow(m *Machine, ins *Instruction) error {
	v, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	if m.Screen != nil {
		m.Screen.lowerActive = v == 0
		m.Screen.Out <- SetWindowEvent{Lower: v == 0}
	}
	return nil
}

func opCallVs2(m *Machine, ins *Instruction) error { return m.call(ins, RoutineFunction) }

func opEraseWindow(m *Machine, ins *Instruction) error {
	v, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	if m.Screen != nil {
		m.Screen.Out <- EraseWindowEvent{Window: int16(v)}
	}
	return nil
}

func opEraseLine(m *Machine, ins *Instruction) error {
	v, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	if v == 1 && m.Screen != nil {
		m.Screen.Out <- TextEvent{Text: ""}
	}
	return nil
}

func opSetCursor(m *Machine, ins *Instruction) error {
	values, err := m.operandValues(ins)
	if err != nil {
		return err
	}
	if m.Screen != nil {
		m.Screen.Out <- CursorEvent{Line: int(values[0]), Column: int(values[1])}
	}
	return nil
}

// opGetCursor is a V6 opcode this terminal interpreter has no
// meaningful cursor position for; it stores (1, 1).
func opGetCursor(m *Machine, ins *Instruction) error {
	values, err := m.operandValues(ins)
	if err != nil {
		return err
	}
	addr := uint32(values[0])
	if err := m.Memory.WriteWord(addr, 1); err != nil {
		return err
	}
	return m.Memory.WriteWord(addr+2, 1)
}

func opSetTextStyle(m *Machine, ins *Instruction) error {
	v, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	if m.Screen != nil {
		m.Screen.Out <- TextStyleEvent{Style: TextStyle(v)}
	}
	return nil
}

// opBufferMode toggles line-wrapping in the driving UI; this
// interpreter always wraps via the screen model's own renderer, so
// the opcode is accepted and ignored (§8.7.1 optional behaviour).
func opBufferMode(m *Machine, ins *Instruction) error { return nil }

func opOutputStream(m *Machine, ins *Instruction) error {
	values, err := m.operandValues(ins)
	if err != nil {
		return err
	}
	stream := signed16(values[0])

	switch stream {
	case 1:
		m.streams.Screen = true
	case -1:
		m.streams.Screen = false
	case 2:
		m.streams.Transcript = true
	case -2:
		m.streams.Transcript = false
	case 3:
		if len(values) < 2 {
			return ErrIllegalOpcode
		}
		m.streams.Memory = true
		m.streams.memoryStreams = append(m.streams.memoryStreams, memoryStream{base: uint32(values[1]), ptr: uint32(values[1]) + 2})
	case -3:
		if len(m.streams.memoryStreams) > 0 {
			n := len(m.streams.memoryStreams) - 1
			cur := m.streams.memoryStreams[n]
			written := uint16(cur.ptr - cur.base - 2)
			if err := m.Memory.WriteWord(cur.base, written); err != nil {
				return err
			}
			m.streams.memoryStreams = m.streams.memoryStreams[:n]
		}
		m.streams.Memory = len(m.streams.memoryStreams) > 0
	case 4:
		m.streams.CommandScript = true
	case -4:
		m.streams.CommandScript = false
	}
	return nil
}

// opInputStream selects the source of typed commands (keyboard vs a
// replayed command script); this interpreter only ever reads from the
// screen's input channel, so the opcode is accepted and ignored.
func opInputStream(m *Machine, ins *Instruction) error { return nil }

// opSoundEffect is accepted and ignored: this terminal interpreter has
// no audio output (§9).
func opSoundEffect(m *Machine, ins *Instruction) error { return nil }

func opReadChar(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	ch, err := m.readChar()
	if err != nil {
		return err
	}
	code, ok := zstringRuneToZscii(m, ch)
	if !ok {
		code = uint8(ch)
	}
	return m.storeResult(frame, uint16(code))
}

func opScanTable(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	values, err := m.operandValues(ins)
	if err != nil {
		return err
	}
	test := values[0]
	baddr := uint32(values[1])
	length := values[2]
	form := uint16(0x82)
	if len(values) > 3 {
		form = values[3]
	}

	addr, err := ztable.ScanTable(m.Memory, test, baddr, length, form)
	if err != nil {
		return err
	}
	if err := m.storeResult(frame, uint16(addr)); err != nil {
		return err
	}
	return m.doBranch(frame, addr != 0)
}

func opNotVar(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	v, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	return m.storeResult(frame, ^v)
}

func opCallVn(m *Machine, ins *Instruction) error { return m.call(ins, RoutineProcedure) }

func opCallVn2(m *Machine, ins *Instruction) error { return m.call(ins, RoutineProcedure) }

func opTokenise(m *Machine, ins *Instruction) error {
	values, err := m.operandValues(ins)
	if err != nil {
		return err
	}

	dict := m.Dictionary
	if len(values) > 2 && values[2] != 0 {
		parsed, err := dictionary.ParseAt(m.Memory, uint32(values[2]), m.Alphabets)
		if err != nil {
			return err
		}
		dict = parsed
	}

	return m.tokenise(uint32(values[0]), uint32(values[1]), dict)
}

// opEncodeText encodes a substring of the text buffer into the packed
// dictionary-word form at the destination buffer, the building block
// tokenise itself uses internally (§15 "encode_text").
func opEncodeText(m *Machine, ins *Instruction) error {
	values, err := m.operandValues(ins)
	if err != nil {
		return err
	}
	zsciiBuf := uint32(values[0])
	length := uint32(values[1])
	fromOffset := uint32(values[2])
	codedBuf := uint32(values[3])

	bytes, err := m.Memory.ReadBytes(zsciiBuf+fromOffset, zsciiBuf+fromOffset+length)
	if err != nil {
		return err
	}
	runes := make([]rune, len(bytes))
	for i, b := range bytes {
		runes[i] = rune(b)
	}

	encoded := zstringEncode(m, runes)
	for i, b := range encoded {
		if err := m.Memory.WriteByte(codedBuf+uint32(i), b); err != nil {
			return err
		}
	}
	return nil
}

func opCopyTable(m *Machine, ins *Instruction) error {
	values, err := m.operandValues(ins)
	if err != nil {
		return err
	}
	return ztable.CopyTable(m.Memory, uint32(values[0]), uint32(values[1]), int16(values[2]))
}

func opPrintTable(m *Machine, ins *Instruction) error {
	values, err := m.operandValues(ins)
	if err != nil {
		return err
	}
	baddr := uint32(values[0])
	width := values[1]
	height := uint16(1)
	skip := uint16(0)
	if len(values) > 2 {
		height = values[2]
	}
	if len(values) > 3 {
		skip = values[3]
	}

	s, err := ztable.PrintTable(m.Memory, baddr, width, height, skip)
	if err != nil {
		return err
	}
	return m.appendText(s)
}

func opCheckArgCount(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	v, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	return m.doBranch(frame, int(v) <= frame.argsSupplied)
}
