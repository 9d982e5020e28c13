package zmachine

import "github.com/kjhallberg/gozvm/zstring"

// Extended-form opcodes (opcode byte 0xBE on V5+, §14.2.1), indexed
// 0-31 by the second opcode byte.
var extHandlers = [32]opcodeHandler{
	0:  opSaveExt,
	1:  opRestoreExt,
	2:  opLogShift,
	3:  opArtShift,
	4:  opSetFont,
	9:  opSaveUndo,
	10: opRestoreUndo,
	11: opPrintUnicode,
	12: opCheckUnicode,
	13: opSetTrueColour,
}

// opSaveExt/opRestoreExt are the V5+ store-form save/restore. As with
// the branch-form versions, persistent save/restore is unsupported;
// save always reports failure (0) and restore always reports failure
// too, since there is never a prior save to load.
func opSaveExt(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	return m.storeResult(frame, 0)
}

func opRestoreExt(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	return m.storeResult(frame, 0)
}

func opLogShift(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	v, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	places, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}

	shift := signed16(places)
	var result uint16
	if shift >= 0 {
		result = v << uint(shift)
	} else {
		result = v >> uint(-shift)
	}
	return m.storeResult(frame, result)
}

func opArtShift(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	v, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	places, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}

	shift := signed16(places)
	var result int16
	if shift >= 0 {
		result = signed16(v) << uint(shift)
	} else {
		result = signed16(v) >> uint(-shift)
	}
	return m.storeResult(frame, uint16(result))
}

// opSetFont is a V5+ opcode this terminal interpreter has no font
// variety for; it reports font 1 (normal) always selected.
func opSetFont(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	return m.storeResult(frame, 1)
}

func opSaveUndo(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	if err := m.saveUndo(); err != nil {
		return err
	}
	return m.storeResult(frame, 1)
}

func opRestoreUndo(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	result, err := m.restoreUndo()
	if err != nil {
		return err
	}
	return m.storeResult(frame, result)
}

func opPrintUnicode(m *Machine, ins *Instruction) error {
	v, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	return m.appendText(string(zstring.ZsciiToRune(m.Memory, v)))
}

func opCheckUnicode(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	v, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	r := zstring.ZsciiToRune(m.Memory, v)
	_, canInput := zstring.RuneToZscii(m.Memory, r)
	result := uint16(0b01) // can always print what it can decode
	if canInput {
		result |= 0b10
	}
	return m.storeResult(frame, result)
}

func opSetTrueColour(m *Machine, ins *Instruction) error {
	fg, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	bg, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}
	if m.Screen != nil {
		m.Screen.Out <- ColorEvent{Foreground: Color(fg & 0xFF), Background: Color(bg & 0xFF)}
	}
	return nil
}
