// Package zobject implements the object tree: a set of fixed-size
// object entries (attributes, parent/sibling/child links, and a
// pointer to a variable-length property table) stored in the story's
// dynamic memory (§5).
package zobject

import "github.com/kjhallberg/gozvm/zcore"

// Layout describes the version-dependent shape of an object table
// entry. V1-3 use 32 attribute flags and byte-sized family links;
// V4+ widen both to 48 flags and word-sized links (§5.1).
type Layout struct {
	AttrBytes     uint32 // bytes of attribute flags at the start of an entry
	LinkBytes     uint32 // bytes per parent/sibling/child link
	EntrySize     uint32 // total entry size in bytes
	PropDefaults  uint32 // number of property-default table entries
	MaxProperties uint8  // highest legal property id
}

var NarrowLayout = Layout{AttrBytes: 4, LinkBytes: 1, EntrySize: 9, PropDefaults: 31, MaxProperties: 31}
var WideLayout = Layout{AttrBytes: 6, LinkBytes: 2, EntrySize: 14, PropDefaults: 63, MaxProperties: 63}

// LayoutFor returns the entry layout for a story version.
func LayoutFor(version uint8) Layout {
	if version >= 4 {
		return WideLayout
	}
	return NarrowLayout
}

// Tree gives access to the object table rooted in mem at
// mem.ObjectTableBase.
type Tree struct {
	mem    *zcore.Memory
	layout Layout
}

// NewTree builds a Tree over mem's object table.
func NewTree(mem *zcore.Memory) *Tree {
	return &Tree{mem: mem, layout: LayoutFor(mem.Version)}
}

func (t *Tree) propertyDefaultsBase() uint32 {
	return uint32(t.mem.ObjectTableBase)
}

func (t *Tree) objectsBase() uint32 {
	return t.propertyDefaultsBase() + t.layout.PropDefaults*2
}

func (t *Tree) entryAddress(id uint16) uint32 {
	return t.objectsBase() + uint32(id-1)*t.layout.EntrySize
}

// PropertyDefault returns the global default value for propertyId,
// used when an object has no override in its own property table.
func (t *Tree) PropertyDefault(propertyId uint8) (uint16, error) {
	addr := t.propertyDefaultsBase() + uint32(propertyId-1)*2
	return t.mem.ReadWord(addr)
}
