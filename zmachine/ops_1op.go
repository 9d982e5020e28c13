package zmachine

import "github.com/kjhallberg/gozvm/zstring"

// Single-operand opcodes (§14, short form with operand type bits not
// "omitted"), indexed 0-15 by opcode number.
var op1Handlers = [16]opcodeHandler{
	0:  opJz,
	1:  opGetSibling,
	2:  opGetChild,
	3:  opGetParent,
	4:  opGetPropLen,
	5:  opInc,
	6:  opDec,
	7:  opPrintAddr,
	8:  opCall1s,
	9:  opRemoveObj,
	10: opPrintObj,
	11: opRet,
	12: opJump,
	13: opPrintPaddr,
	14: opLoad,
	15: opNotOrCall1n,
}

func opJz(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	v, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	return m.doBranch(frame, v == 0)
}

func opGetSibling(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	id, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}

	var sibling uint16
	if id != 0 {
		obj, err := m.Objects.Object(id)
		if err != nil {
			return err
		}
		sibling, err = obj.Sibling()
		if err != nil {
			return err
		}
	}

	if err := m.storeResult(frame, sibling); err != nil {
		return err
	}
	return m.doBranch(frame, sibling != 0)
}

func opGetChild(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	id, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}

	var child uint16
	if id != 0 {
		obj, err := m.Objects.Object(id)
		if err != nil {
			return err
		}
		child, err = obj.Child()
		if err != nil {
			return err
		}
	}

	if err := m.storeResult(frame, child); err != nil {
		return err
	}
	return m.doBranch(frame, child != 0)
}

func opGetParent(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	id, err := ins.operands[0].Value(m)
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

	return m.storeResult(frame, parent)
}

func opGetPropLen(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	addr, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}

	length, err := m.Objects.GetPropLen(uint32(addr))
	if err != nil {
		return err
	}

	return m.storeResult(frame, uint16(length))
}

func opInc(m *Machine, ins *Instruction) error {
	variable := uint8(ins.operands[0].value)
	v, err := m.readVariable(variable, true)
	if err != nil {
		return err
	}
	return m.storeVariable(variable, uint16(signed16(v)+1), true)
}

func opDec(m *Machine, ins *Instruction) error {
	variable := uint8(ins.operands[0].value)
	v, err := m.readVariable(variable, true)
	if err != nil {
		return err
	}
	return m.storeVariable(variable, uint16(signed16(v)-1), true)
}

func opPrintAddr(m *Machine, ins *Instruction) error {
	addr, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	s, _, err := zstring.Decode(m.Memory, uint32(addr), m.Alphabets, 0)
	if err != nil {
		return err
	}
	return m.appendText(s)
}

func opCall1s(m *Machine, ins *Instruction) error { return m.call(ins, RoutineFunction) }

func opRemoveObj(m *Machine, ins *Instruction) error {
	id, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	if id == 0 {
		return nil
	}
	return m.Objects.Remove(id)
}

func opPrintObj(m *Machine, ins *Instruction) error {
	id, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	obj, err := m.Objects.Object(id)
	if err != nil {
		return err
	}
	name, err := obj.Name(m.Alphabets)
	if err != nil {
		return err
	}
	return m.appendText(name)
}

func opRet(m *Machine, ins *Instruction) error {
	v, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	return m.ret(v)
}

func opJump(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	offset, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	frame.pc = uint32(int32(frame.pc) + int32(signed16(offset)) - 2)
	return nil
}

func opPrintPaddr(m *Machine, ins *Instruction) error {
	addr, err := ins.operands[0].Value(m)
	if err != nil {
		return err
	}
	paddr := m.Memory.PackedAddress(addr, true)
	s, _, err := zstring.Decode(m.Memory, paddr, m.Alphabets, 0)
	if err != nil {
		return err
	}
	return m.appendText(s)
}

func opLoad(m *Machine, ins *Instruction) error {
	frame, err := m.callStack.top()
	if err != nil {
		return err
	}
	variable := uint8(ins.operands[0].value)
	v, err := m.readVariable(variable, true)
	if err != nil {
		return err
	}
	return m.storeResult(frame, v)
}

// opNotOrCall1n is 1OP:15: bitwise "not" pre-V5 (store), call_1n (no
// store) from V5 on.
func opNotOrCall1n(m *Machine, ins *Instruction) error {
	if m.Memory.Version >= 5 {
		return m.call(ins, RoutineProcedure)
	}
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
