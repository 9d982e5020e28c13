package zmachine

// undoState is an in-memory snapshot taken by save_undo: a copy of
// dynamic memory plus the call stack at the moment of the call
// (§6.1.2). Persistent (disk) save/restore is a Non-goal; undo is
// the fully-working subset of the save/restore family.
type undoState struct {
	dynamicMemory []uint8
	callStack     *CallStack
}

func (m *Machine) captureUndo() (*undoState, error) {
	dynamic := make([]uint8, m.Memory.StaticMemoryBase)
	raw, err := m.Memory.ReadBytes(0, uint32(m.Memory.StaticMemoryBase))
	if err != nil {
		return nil, err
	}
	copy(dynamic, raw)
	return &undoState{
		dynamicMemory: dynamic,
		callStack:     m.callStack.clone(),
	}, nil
}

func (m *Machine) applyUndo(state *undoState) (bool, error) {
	if len(state.dynamicMemory) != int(m.Memory.StaticMemoryBase) {
		return false, nil // incompatible snapshot, treat as failure not corruption
	}
	for i, b := range state.dynamicMemory {
		if err := m.Memory.WriteByte(uint32(i), b); err != nil {
			return false, err
		}
	}
	m.callStack = *state.callStack.clone()
	return true, nil
}

// saveUndo pushes the current machine state and always reports
// success, matching the teacher's single-process in-memory cache.
func (m *Machine) saveUndo() error {
	state, err := m.captureUndo()
	if err != nil {
		return err
	}
	m.undo = append(m.undo, state)
	return nil
}

// restoreUndo pops the most recent snapshot and applies it, returning
// the opcode's result code: 0 on failure (no snapshot), 2 on success
// (§15 save_undo/restore_undo).
func (m *Machine) restoreUndo() (uint16, error) {
	if len(m.undo) == 0 {
		return 0, nil
	}
	state := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]

	applied, err := m.applyUndo(state)
	if err != nil || !applied {
		return 0, err
	}
	return 2, nil
}
