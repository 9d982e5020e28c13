package zmachine

// Two-operand opcodes (§15), indexed 1-31 by opcode number. Shared by
// both long form (2OP) and variable form when its count bit selects
// 2OP, since the operand count — not the form — determines which
// table an instruction dispatches through.
var op2Handlers = [32]opcodeHandler{
	1:  opJe,
	2:  opJl,
	3:  opJg,
	4:  opDecChk,
	5:  opIncChk,
	6:  opJin,
	7:  opTest,
	8:  opOr,
	9:  opAnd,
	10: opTestAttr,
	11: opSetAttr,
	12: opClearAttr,
	13: opStore,
	14: opInsertObj,
	15: opLoadw,
	16: opLoadb,
	17: opGetProp,
	18: opGetPropAddr,
	19: opGetNextProp,
	20: opAdd,
	21: opSub,
	22: opMul,
	23: opDiv,
	24: opMod,
	25: opCall2s,
	26: opCall2n,
	27: opSetColour,
	28: opThrow,
}

func opJe(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	values, err := m.operandValues(ins)
	if err != nil {
		return err
	}
	match := false
	for _, v := range values[1:] {
		if v == values[0] {
			match = true
			break
		}
	}
	return m.doBranch(frame, match)
}

func opJl(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	a, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	b, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}
	return m.doBranch(frame, signed16(a) < signed16(b))
}

func opJg(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	a, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	b, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}
	return m.doBranch(frame, signed16(a) > signed16(b))
}

func opDecChk(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	variable := uint8(ins.operands[0].value)
	threshold, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}
	v, err := m.readVariable(variable, true)
	if err != nil {
		return err
	}
	newVal := signed16(v) - 1
	if err := m.storeVariable(variable, uint16(newVal), true); err != nil {
		return err
	}
	return m.doBranch(frame, newVal < signed16(threshold))
}

func opIncChk(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	variable := uint8(ins.operands[0].value)
	threshold, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}
	v, err := m.readVariable(variable, true)
	if err != nil {
		return err
	}
	newVal := signed16(v) + 1
	if err := m.storeVariable(variable, uint16(newVal), true); err != nil {
		return err
	}
	return m.doBranch(frame, newVal > signed16(threshold))
}

func opJin(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	id, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	destID, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}

	var parent uint16
	if id != 0 {
		obj, err := m.Objects.Object(id)
		if err != nil {
			return err
		}
		parent, err = obj.Parent()
		if err != nil {
			return err
		}
	}

	return m.doBranch(frame, parent == destID)
}

func opTest(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	bitmap, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	flags, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}
	return m.doBranch(frame, bitmap&flags == flags)
}

func opOr(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	a, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	b, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}
	return m.storeResult(frame, a|b)
}

func opAnd(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	a, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	b, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}
	return m.storeResult(frame, a&b)
}

func opTestAttr(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	id, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	attr, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}

	obj, err := m.Objects.Object(id)
	if err != nil {
		return err
	}
	set, err := obj.AttrTest(attr)
	if err != nil {
		return err
	}
	return m.doBranch(frame, set)
}

func opSetAttr(m *Machine, ins *Instruction) error {
	id, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	attr, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}
	obj, err := m.Objects.Object(id)
	if err != nil {
		return err
	}
	return obj.AttrSet(attr)
}

func opClearAttr(m *Machine, ins *Instruction) error {
	id, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	attr, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}
	obj, err := m.Objects.Object(id)
	if err != nil {
		return err
	}
	return obj.AttrClear(attr)
}

// opStore writes directly to the variable named by operand 0; unlike
// most 2OP opcodes it carries no store byte of its own (§15 "store").
func opStore(m *Machine, ins *Instruction) error {
	variable := uint8(ins.operands[0].value)
	value, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}
	return m.storeVariable(variable, value, true)
}

func opInsertObj(m *Machine, ins *Instruction) error {
	id, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	dest, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}
	return m.Objects.Insert(id, dest)
}

func opLoadw(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	base, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	index, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}
	v, err := m.Memory.ReadWord(uint32(base) + 2*uint32(index))
	if err != nil {
		return err
	}
	return m.storeResult(frame, v)
}

func opLoadb(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	base, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	index, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}
	v, err := m.Memory.ReadByte(uint32(base) + uint32(index))
	if err != nil {
		return err
	}
	return m.storeResult(frame, uint16(v))
}

func opGetProp(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	id, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	propertyID, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}
	obj, err := m.Objects.Object(id)
	if err != nil {
		return err
	}
	v, err := obj.GetProp(uint8(propertyID))
	if err != nil {
		return err
	}
	return m.storeResult(frame, v)
}

func opGetPropAddr(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	id, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	propertyID, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}
	obj, err := m.Objects.Object(id)
	if err != nil {
		return err
	}
	addr, err := obj.GetPropAddr(uint8(propertyID))
	if err != nil {
		return err
	}
	return m.storeResult(frame, uint16(addr))
}

func opGetNextProp(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	id, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	propertyID, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}
	obj, err := m.Objects.Object(id)
	if err != nil {
		return err
	}
	next, err := obj.GetNextProp(uint8(propertyID))
	if err != nil {
		return err
	}
	return m.storeResult(frame, uint16(next))
}

func opAdd(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	a, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	b, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}
	return m.storeResult(frame, uint16(signed16(a)+signed16(b)))
}

func opSub(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	a, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	b, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}
	return m.storeResult(frame, uint16(signed16(a)-signed16(b)))
}

func opMul(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	a, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	b, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}
	return m.storeResult(frame, uint16(signed16(a)*signed16(b)))
}

func opDiv(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	a, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	b, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}
	if signed16(b) == 0 {
		return ErrArithmeticTrap
	}
	return m.storeResult(frame, uint16(signed16(a)/signed16(b)))
}

func opMod(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	a, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	b, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}
	if signed16(b) == 0 {
		return ErrArithmeticTrap
	}
	return m.storeResult(frame, uint16(signed16(a)%signed16(b)))
}

func opCall2s(m *Machine, ins *Instruction) error { return m.call(ins, RoutineFunction) }

func opCall2n(m *Machine, ins *Instruction) error { return m.call(ins, RoutineProcedure) }

// opSetColour sets the foreground/background colour, forwarding the
// request to the driving UI via the screen channel (§8.3, §15
// "set_colour"); V6's optional window operand is ignored since this
// interpreter has no separate windows beyond upper/lower.
func opSetColour(m *Machine, ins *Instruction) error {
	fg, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	bg, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}
	if m.Screen != nil {
		m.Screen.Out <- ColorEvent{Foreground: Color(fg), Background: Color(bg)}
	}
	return nil
}

// opThrow unwinds the call stack down to the frame captured by an
// earlier "catch", then returns val from it (§15 "throw"/"catch").
func opThrow(m *Machine, ins *Instruction) error {
	val, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	target, err := ins.operands[1].Value(m)
	if err != nil {
		return err
	}
	for m.callStack.depth() > int(target) {
		if _, err := m.callStack.pop(); err != nil {
			return err
		}
	}
	return m.ret(val)
}
