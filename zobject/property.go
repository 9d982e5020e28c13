package zobject

// Property describes one decoded entry from an object's property
// table (§12.4).
type Property struct {
	ID          uint8
	Length      uint8
	DataAddress uint32
}

// propertyAt decodes the property-size byte(s) at addr, returning the
// property plus the address of the following entry.
func (t *Tree) propertyAt(addr uint32) (Property, uint32, error) {
	sizeByte, err := t.mem.ReadByte(addr)
	if err != nil {
		return Property{}, 0, err
	}

	if t.mem.Version <= 3 {
		length := uint8(sizeByte>>5) + 1
		id := sizeByte & 0b1_1111
		data := addr + 1
		return Property{ID: id, Length: length, DataAddress: data}, data + uint32(length), nil
	}

	if sizeByte&0b1000_0000 != 0 {
		secondByte, err := t.mem.ReadByte(addr + 1)
		if err != nil {
			return Property{}, 0, err
		}
		length := secondByte & 0b11_1111
		if length == 0 {
			length = 64
		}
		id := sizeByte & 0b11_1111
		data := addr + 2
		return Property{ID: id, Length: length, DataAddress: data}, data + uint32(length), nil
	}

	length := ((sizeByte >> 6) & 1) + 1
	id := sizeByte & 0b11_1111
	data := addr + 1
	return Property{ID: id, Length: length, DataAddress: data}, data + uint32(length), nil
}

// firstPropertyAddress skips the short-name header to find the first
// property entry in o's table.
func (o *Object) firstPropertyAddress() (uint32, error) {
	propBase, err := o.propertyTableBase()
	if err != nil {
		return 0, err
	}
	nameLen, err := o.tree.mem.ReadByte(propBase)
	if err != nil {
		return 0, err
	}
	return propBase + 1 + uint32(nameLen)*2, nil
}

// findProperty walks o's property table looking for propertyId, in
// the descending order the format requires.
func (o *Object) findProperty(propertyId uint8) (Property, bool, error) {
	addr, err := o.firstPropertyAddress()
	if err != nil {
		return Property{}, false, err
	}

	for {
		sizeByte, err := o.tree.mem.ReadByte(addr)
		if err != nil {
			return Property{}, false, err
		}
		if sizeByte == 0 {
			return Property{}, false, nil
		}

		prop, next, err := o.tree.propertyAt(addr)
		if err != nil {
			return Property{}, false, err
		}
		if prop.ID == propertyId {
			return prop, true, nil
		}
		addr = next
	}
}

// GetProp returns the value of propertyId on o, falling back to the
// table-wide default if o has no override (§2.12.2, §2.13.2.1). A
// property longer than 2 bytes is ErrPropertyNotWordSized.
func (o *Object) GetProp(propertyId uint8) (uint16, error) {
	prop, found, err := o.findProperty(propertyId)
	if err != nil {
		return 0, err
	}
	if !found {
		return o.tree.PropertyDefault(propertyId)
	}

	switch prop.Length {
	case 1:
		b, err := o.tree.mem.ReadByte(prop.DataAddress)
		return uint16(b), err
	case 2:
		return o.tree.mem.ReadWord(prop.DataAddress)
	default:
		return 0, ErrPropertyNotWordSized
	}
}

// PutProp stores value into propertyId on o. The property must
// already exist on the object and be 1 or 2 bytes long (§2.13.2.2).
func (o *Object) PutProp(propertyId uint8, value uint16) error {
	prop, found, err := o.findProperty(propertyId)
	if err != nil {
		return err
	}
	if !found {
		return ErrInvalidProperty
	}

	switch prop.Length {
	case 1:
		return o.tree.mem.WriteByte(prop.DataAddress, uint8(value))
	case 2:
		return o.tree.mem.WriteWord(prop.DataAddress, value)
	default:
		return ErrPropertyNotWordSized
	}
}

// GetPropAddr returns the byte address of propertyId's data on o, or
// 0 if o has no such property (§2.12.1).
func (o *Object) GetPropAddr(propertyId uint8) (uint32, error) {
	prop, found, err := o.findProperty(propertyId)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return prop.DataAddress, nil
}

// GetPropLen returns the length in bytes of the property whose data
// starts at propAddr, given the tree's version-dependent size-byte
// encoding. get_prop_len's address operand carries no object id, so
// this is exposed on Tree rather than Object (§2.12.6, §12.4.2).
func (t *Tree) GetPropLen(propAddr uint32) (uint8, error) {
	return (&Object{tree: t}).GetPropLen(propAddr)
}

func (o *Object) GetPropLen(propAddr uint32) (uint8, error) {
	if propAddr == 0 {
		return 0, nil
	}

	if o.tree.mem.Version <= 3 {
		sizeByte, err := o.tree.mem.ReadByte(propAddr - 1)
		return uint8(sizeByte>>5) + 1, err
	}

	sizeByte, err := o.tree.mem.ReadByte(propAddr - 1)
	if err != nil {
		return 0, err
	}
	if sizeByte&0b1000_0000 != 0 {
		// Two-byte form: the byte just before the data is the second
		// size byte, which carries the length.
		length := sizeByte & 0b11_1111
		if length == 0 {
			length = 64
		}
		return length, nil
	}
	return ((sizeByte >> 6) & 1) + 1, nil
}

// GetNextProp returns the id of the property following propertyId on
// o, or the first property if propertyId is 0, or 0 if there is none
// (§2.12.3).
func (o *Object) GetNextProp(propertyId uint8) (uint8, error) {
	if propertyId == 0 {
		addr, err := o.firstPropertyAddress()
		if err != nil {
			return 0, err
		}
		sizeByte, err := o.tree.mem.ReadByte(addr)
		if err != nil {
			return 0, err
		}
		if sizeByte == 0 {
			return 0, nil
		}
		prop, _, err := o.tree.propertyAt(addr)
		return prop.ID, err
	}

	prop, found, err := o.findProperty(propertyId)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, ErrInvalidProperty
	}

	nextAddr := prop.DataAddress + uint32(prop.Length)
	sizeByte, err := o.tree.mem.ReadByte(nextAddr)
	if err != nil {
		return 0, err
	}
	if sizeByte == 0 {
		return 0, nil
	}
	next, _, err := o.tree.propertyAt(nextAddr)
	return next.ID, err
}
