package zobject

import (
	"github.com/kjhallberg/gozvm/zstring"
)

// Object is a handle onto one entry in a Tree's object table.
type Object struct {
	tree *Tree
	ID   uint16
	base uint32
}

// Object returns a handle onto the entry for id. It does not read or
// validate the entry; use Parent/Sibling/Child/AttrTest etc to do so.
func (t *Tree) Object(id uint16) (*Object, error) {
	if id == 0 {
		return nil, ErrInvalidObject
	}
	return &Object{tree: t, ID: id, base: t.entryAddress(id)}, nil
}

// AttrTest reports whether attribute is set on o (§5.4). Attributes
// are numbered 0 (highest bit of the first attribute byte) upward.
func (o *Object) AttrTest(attribute uint16) (bool, error) {
	byteOffset := uint32(attribute / 8)
	bit := uint(7 - attribute%8)
	if byteOffset >= o.tree.layout.AttrBytes {
		return false, ErrInvalidObject
	}

	b, err := o.tree.mem.ReadByte(o.base + byteOffset)
	if err != nil {
		return false, err
	}
	return b&(1<<bit) != 0, nil
}

func (o *Object) setAttrBit(attribute uint16, value bool) error {
	byteOffset := uint32(attribute / 8)
	bit := uint(7 - attribute%8)
	if byteOffset >= o.tree.layout.AttrBytes {
		return ErrInvalidObject
	}

	addr := o.base + byteOffset
	b, err := o.tree.mem.ReadByte(addr)
	if err != nil {
		return err
	}
	if value {
		b |= 1 << bit
	} else {
		b &^= 1 << bit
	}
	return o.tree.mem.WriteByte(addr, b)
}

// AttrSet sets attribute on o.
func (o *Object) AttrSet(attribute uint16) error { return o.setAttrBit(attribute, true) }

// AttrClear clears attribute on o.
func (o *Object) AttrClear(attribute uint16) error { return o.setAttrBit(attribute, false) }

func (o *Object) linkAddress(field uint32) uint32 {
	return o.base + o.tree.layout.AttrBytes + field*o.tree.layout.LinkBytes
}

func (o *Object) readLink(field uint32) (uint16, error) {
	addr := o.linkAddress(field)
	if o.tree.layout.LinkBytes == 1 {
		b, err := o.tree.mem.ReadByte(addr)
		return uint16(b), err
	}
	return o.tree.mem.ReadWord(addr)
}

func (o *Object) writeLink(field uint32, value uint16) error {
	addr := o.linkAddress(field)
	if o.tree.layout.LinkBytes == 1 {
		return o.tree.mem.WriteByte(addr, uint8(value))
	}
	return o.tree.mem.WriteWord(addr, value)
}

// Parent returns the id of o's parent, or 0 if o has none.
func (o *Object) Parent() (uint16, error) { return o.readLink(0) }

// Sibling returns the id of o's next sibling, or 0 if o has none.
func (o *Object) Sibling() (uint16, error) { return o.readLink(1) }

// Child returns the id of o's first child, or 0 if o has none.
func (o *Object) Child() (uint16, error) { return o.readLink(2) }

func (o *Object) setParent(id uint16) error  { return o.writeLink(0, id) }
func (o *Object) setSibling(id uint16) error { return o.writeLink(1, id) }
func (o *Object) setChild(id uint16) error   { return o.writeLink(2, id) }

// propertyTableBase returns the address of o's property table.
func (o *Object) propertyTableBase() (uint32, error) {
	if o.tree.layout.LinkBytes == 1 {
		w, err := o.tree.mem.ReadWord(o.base + o.tree.layout.AttrBytes + 3)
		return uint32(w), err
	}
	w, err := o.tree.mem.ReadWord(o.base + o.tree.layout.AttrBytes + 6)
	return uint32(w), err
}

// Name decodes and returns o's short name from its property table
// header (§5.1, §13.3).
func (o *Object) Name(alphabets *zstring.Alphabets) (string, error) {
	propBase, err := o.propertyTableBase()
	if err != nil {
		return "", err
	}
	nameLen, err := o.tree.mem.ReadByte(propBase)
	if err != nil {
		return "", err
	}
	if nameLen == 0 {
		return "", nil
	}
	name, _, err := zstring.Decode(o.tree.mem, propBase+1, alphabets, 0)
	return name, err
}

// Remove unlinks o from its parent and sibling chain (§5.3), leaving
// it and its children orphaned but intact.
func (t *Tree) Remove(id uint16) error {
	o, err := t.Object(id)
	if err != nil {
		return err
	}

	parentID, err := o.Parent()
	if err != nil {
		return err
	}
	if parentID == 0 {
		return nil // already detached
	}

	parent, err := t.Object(parentID)
	if err != nil {
		return err
	}
	firstChild, err := parent.Child()
	if err != nil {
		return err
	}

	if firstChild == id {
		sibling, err := o.Sibling()
		if err != nil {
			return err
		}
		if err := parent.setChild(sibling); err != nil {
			return err
		}
	} else {
		prev, err := t.Object(firstChild)
		if err != nil {
			return err
		}
		for {
			next, err := prev.Sibling()
			if err != nil {
				return err
			}
			if next == 0 {
				return ErrCorruptTree
			}
			if next == id {
				sibling, err := o.Sibling()
				if err != nil {
					return err
				}
				if err := prev.setSibling(sibling); err != nil {
					return err
				}
				break
			}
			prev, err = t.Object(next)
			if err != nil {
				return err
			}
		}
	}

	if err := o.setParent(0); err != nil {
		return err
	}
	return o.setSibling(0)
}

// Insert detaches o from its current parent (if any) and makes it
// the first child of dest (§5.2).
func (t *Tree) Insert(id uint16, destID uint16) error {
	if err := t.Remove(id); err != nil {
		return err
	}

	o, err := t.Object(id)
	if err != nil {
		return err
	}
	dest, err := t.Object(destID)
	if err != nil {
		return err
	}

	oldChild, err := dest.Child()
	if err != nil {
		return err
	}
	if err := o.setSibling(oldChild); err != nil {
		return err
	}
	if err := o.setParent(destID); err != nil {
		return err
	}
	return dest.setChild(id)
}
