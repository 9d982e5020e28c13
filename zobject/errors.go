package zobject

import "errors"

// ErrInvalidObject is returned for an object id of 0, and for an
// attribute number beyond the layout's attribute block. Ids past the
// end of the table are not detected.
var ErrInvalidObject = errors.New("zobject: invalid object id")

// ErrCorruptTree is returned when a tree-mutating operation finds the
// object graph in a state it cannot safely unlink from (§5.2, §5.3).
var ErrCorruptTree = errors.New("zobject: corrupt object tree")

// ErrInvalidProperty is returned by PutProp and GetNextProp when the
// given property does not appear on the object.
var ErrInvalidProperty = errors.New("zobject: invalid property")

// ErrPropertyNotWordSized is returned by GetProp and PutProp for a
// property whose length is not 1 or 2 bytes.
var ErrPropertyNotWordSized = errors.New("zobject: property is not word-sized")
