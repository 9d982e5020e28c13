package zmachine

import "github.com/kjhallberg/gozvm/zcore"

type operandType uint8

const (
	typeLargeConstant operandType = 0b00
	typeSmallConstant operandType = 0b01
	typeVariable      operandType = 0b10
	typeOmitted       operandType = 0b11
)

type opcodeForm uint8

const (
	formLong  opcodeForm = iota
	formShort
	formVariable
	formExtended
)

// operandCount classifies an instruction by how many operands its
// form implies, which in turn selects the handler table it dispatches
// through (§4.3).
type operandCount uint8

const (
	count0OP operandCount = iota
	count1OP
	count2OP
	countVAR
)

// Operand is one decoded operand: either an inline constant or a
// reference to a variable, resolved lazily via Value (§4.2.2, §4.6).
type Operand struct {
	kind  operandType
	value uint16
}

// Value resolves the operand against the machine's current frame,
// reading the top-of-stack / local / global as appropriate.
func (o Operand) Value(m *Machine) (uint16, error) {
	if o.kind == typeVariable {
		return m.loadVariable(uint8(o.value))
	}
	return o.value, nil
}

// Instruction is one decoded opcode: its form, operand count, number,
// decoded operands and start address. For extended form, number is
// the second opcode byte, which selects the extended handler table.
type Instruction struct {
	form         opcodeForm
	count        operandCount
	number       uint8
	operands     []Operand
	at           uint32 // address the instruction started at
}

// decodeInstruction reads one instruction starting at frame.pc,
// advancing frame.pc past it (§4).
func decodeInstruction(mem *zcore.Memory, frame *Frame) (Instruction, error) {
	start := frame.pc
	opByte, err := readByteIncPC(mem, frame)
	if err != nil {
		return Instruction{}, err
	}

	ins := Instruction{at: start}

	if opByte == 0xbe && mem.Version >= 5 {
		number, err := readByteIncPC(mem, frame)
		if err != nil {
			return Instruction{}, err
		}
		ins.form = formExtended
		ins.count = countVAR
		ins.number = number
		if err := decodeVariableOperands(mem, frame, &ins); err != nil {
			return Instruction{}, err
		}
		return ins, nil
	}

	switch opByte >> 6 {
	case 0b11:
		ins.form = formVariable
		ins.number = opByte & 0b1_1111
		if (opByte>>5)&1 == 0 {
			ins.count = count2OP
		} else {
			ins.count = countVAR
		}
		if err := decodeVariableOperands(mem, frame, &ins); err != nil {
			return Instruction{}, err
		}

	case 0b10:
		ins.form = formShort
		ins.number = opByte & 0b1111
		kind := operandType((opByte >> 4) & 0b11)
		switch kind {
		case typeLargeConstant:
			v, err := readWordIncPC(mem, frame)
			if err != nil {
				return Instruction{}, err
			}
			ins.operands = append(ins.operands, Operand{kind: kind, value: v})
			ins.count = count1OP
		case typeSmallConstant, typeVariable:
			v, err := readByteIncPC(mem, frame)
			if err != nil {
				return Instruction{}, err
			}
			ins.operands = append(ins.operands, Operand{kind: kind, value: uint16(v)})
			ins.count = count1OP
		case typeOmitted:
			ins.count = count0OP
		}

	default: // long form
		ins.form = formLong
		ins.number = opByte & 0b1_1111
		ins.count = count2OP

		op1Type := typeSmallConstant
		op2Type := typeSmallConstant
		if (opByte>>6)&1 == 1 {
			op1Type = typeVariable
		}
		if (opByte>>5)&1 == 1 {
			op2Type = typeVariable
		}
		for _, t := range []operandType{op1Type, op2Type} {
			v, err := readByteIncPC(mem, frame)
			if err != nil {
				return Instruction{}, err
			}
			ins.operands = append(ins.operands, Operand{kind: t, value: uint16(v)})
		}
	}

	return ins, nil
}

// decodeVariableOperands decodes the operand-type byte(s) and
// following operand values for VAR-form instructions. call_vs2 and
// call_vn2 (opcode numbers 12 and 26 in VAR form) carry a second
// type byte permitting up to 8 operands (§4.4.3.1).
func decodeVariableOperands(mem *zcore.Memory, frame *Frame, ins *Instruction) error {
	typeByte, err := readByteIncPC(mem, frame)
	if err != nil {
		return err
	}

	extendedTypeByte := uint8(0)
	maxOperands := 4
	if ins.form == formVariable && ins.count == countVAR && (ins.number == 12 || ins.number == 26) {
		extendedTypeByte, err = readByteIncPC(mem, frame)
		if err != nil {
			return err
		}
		maxOperands = 8
	}

	for i := 0; i < maxOperands; i++ {
		var kind operandType
		if i < 4 {
			kind = operandType((typeByte >> (2 * (3 - i))) & 0b11)
		} else {
			kind = operandType((extendedTypeByte >> (2 * (7 - i))) & 0b11)
		}
		if kind == typeOmitted {
			break
		}

		switch kind {
		case typeSmallConstant, typeVariable:
			v, err := readByteIncPC(mem, frame)
			if err != nil {
				return err
			}
			ins.operands = append(ins.operands, Operand{kind: kind, value: uint16(v)})
		case typeLargeConstant:
			v, err := readWordIncPC(mem, frame)
			if err != nil {
				return err
			}
			ins.operands = append(ins.operands, Operand{kind: kind, value: v})
		}
	}

	return nil
}

func readByteIncPC(mem *zcore.Memory, frame *Frame) (uint8, error) {
	v, err := mem.ReadByte(uint32(frame.pc))
	if err != nil {
		return 0, err
	}
	frame.pc++
	return v, nil
}

func readWordIncPC(mem *zcore.Memory, frame *Frame) (uint16, error) {
	v, err := mem.ReadWord(uint32(frame.pc))
	if err != nil {
		return 0, err
	}
	frame.pc += 2
	return v, nil
}

// decodeBranch reads the branch byte(s) following an instruction and
// returns whether the branch offset requests a return (0 or 1) vs a
// jump, along with the relevant value (§4.7).
type branchInfo struct {
	onTrue bool // condition that triggers the branch
	isReturn bool
	returnValue uint16
	destination uint32
}

func decodeBranch(mem *zcore.Memory, frame *Frame) (branchInfo, error) {
	b1, err := readByteIncPC(mem, frame)
	if err != nil {
		return branchInfo{}, err
	}

	onTrue := (b1>>7)&1 == 1
	singleByte := (b1>>6)&1 == 1
	offset := int32(b1 & 0b11_1111)

	if !singleByte {
		b2, err := readByteIncPC(mem, frame)
		if err != nil {
			return branchInfo{}, err
		}
		raw := uint16(b1&0b11_1111)<<8 | uint16(b2)
		offset = int32(int16(raw<<2) >> 2)
	}

	switch offset {
	case 0:
		return branchInfo{onTrue: onTrue, isReturn: true, returnValue: 0}, nil
	case 1:
		return branchInfo{onTrue: onTrue, isReturn: true, returnValue: 1}, nil
	default:
		dest := uint32(int32(frame.pc) + offset - 2)
		return branchInfo{onTrue: onTrue, destination: dest}, nil
	}
}
