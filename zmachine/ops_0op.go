package zmachine

// Zero-operand opcodes (§14, short form with both operand type bits
// set to "omitted"), indexed 0-15 by opcode number.
var op0Handlers = [16]opcodeHandler{
	0:  opRtrue,
	1:  opRfalse,
	2:  opPrint,
	3:  opPrintRet,
	4:  opNop,
	5:  opSave0,
	6:  opRestore0,
	7:  opRestart,
	8:  opRetPopped,
	9:  opCatchOrPop,
	10: opQuit,
	11: opNewLine,
	12: opShowStatus,
	13: opVerify,
	// 14 is the extended-form marker, never dispatched as 0OP.
	15: opPiracy,
}

func opRtrue(m *Machine, ins *Instruction) error { return m.ret(1) }

func opRfalse(m *Machine, ins *Instruction) error { return m.ret(0) }

func opPrint(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	s, err := m.printLiteral(frame)
	if err != nil {
		return err
	}
	return m.appendText(s)
}

func opPrintRet(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	s, err := m.printLiteral(frame)
	if err != nil {
		return err
	}
	if err := m.appendText(s + "\n"); err != nil {
		return err
	}
	return m.ret(1)
}

func opNop(m *Machine, ins *Instruction) error { return nil }

// opSave0/opRestore0 handle the pre-V4 branch-form save/restore.
// Persistent save/restore is not implemented; the branch always
// reports failure, matching a disk-backed interpreter with no
// storage attached.
func opSave0(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	return m.doBranch(frame, false)
}

func opRestore0(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	return m.doBranch(frame, false)
}

func opRestart(m *Machine, ins *Instruction) error { return m.resetExecution() }

func opRetPopped(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	v, err := frame.pop()
	if err != nil {
		return err
	}
	return m.ret(v)
}

// opCatchOrPop is V5+ catch (stores the current call-stack depth) pre-V5
// pop (discards the top of the current eval stack).
func opCatchOrPop(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	if m.Memory.Version >= 5 {
		return m.storeResult(frame, uint16(m.callStack.depth()))
	}
	_, err = frame.pop()
	return err
}

func opQuit(m *Machine, ins *Instruction) error {
	m.state = StateHalted
	if m.Screen != nil {
		m.Screen.Out <- Halted{}
	}
	return nil
}

func opNewLine(m *Machine, ins *Instruction) error { return m.appendText("\n") }

// opShowStatus renders the V3 status line from globals 0-2: the
// current location object and either score/turns or a clock (§8.2,
// flags1 bit 1).
func opShowStatus(m *Machine, ins *Instruction) error {
	locObjID, err := m.Memory.ReadWord(uint32(m.Memory.GlobalVariableBase))
	if err != nil {
		return err
	}
	g1, err := m.Memory.ReadWord(uint32(m.Memory.GlobalVariableBase) + 2)
	if err != nil {
		return err
	}
	g2, err := m.Memory.ReadWord(uint32(m.Memory.GlobalVariableBase) + 4)
	if err != nil {
		return err
	}

	name := ""
	if locObjID != 0 {
		obj, err := m.Objects.Object(locObjID)
		if err == nil {
			name, _ = obj.Name(m.Alphabets)
		}
	}

	timeBased := m.Memory.Flags1&0b0000_0010 != 0
	if m.Screen != nil {
		m.Screen.Out <- StatusEvent{
			PlaceName: name,
			Score:     int(signed16(g1)),
			Moves:     int(g2),
			TimeBased: timeBased,
		}
	}
	return nil
}

// opVerify checks the story file's checksum against its header value
// (§11.1.6, "verify").
func opVerify(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}

	length := m.Memory.FileLength()
	var sum uint32
	for addr := uint32(0x40); addr < length; addr++ {
		b, err := m.Memory.ReadByte(addr)
		if err != nil {
			break
		}
		sum += uint32(b)
	}

	return m.doBranch(frame, uint16(sum) == m.Memory.FileChecksum)
}

func opPiracy(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	return m.doBranch(frame, true)
}
