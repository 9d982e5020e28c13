// Package zcore implements the byte-addressable story image: header
// parsing, big-endian reads/writes, write protection for static and
// high memory, and the packed-address formula.
package zcore

import "encoding/binary"

// Header field offsets, per the Z-Machine standard section 11.1.
const (
	offVersion       = 0x00
	offFlags1        = 0x01
	offRelease       = 0x02
	offHighMemBase   = 0x04
	offInitialPC     = 0x06
	offDictionary    = 0x08
	offObjectTable   = 0x0a
	offGlobals       = 0x0c
	offStaticMemBase = 0x0e
	offFlags2        = 0x10
	offAbbreviations = 0x18
	offFileLength    = 0x1a
	offChecksum      = 0x1c
	offInterpNum     = 0x1e
	offInterpVer     = 0x1f
	offScreenLines   = 0x20
	offScreenCols    = 0x21
	offScreenWidthU  = 0x22
	offScreenHeightU = 0x24
	offFontHeight    = 0x26
	offFontWidth     = 0x27
	offRoutinesOff   = 0x28
	offStringsOff    = 0x2a
	offDefaultBg     = 0x2c
	offDefaultFg     = 0x2d
	offTermCharTable = 0x2e
	offStdRevision   = 0x32
	offAlphabetTable = 0x34
	offExtTable      = 0x36
	headerSize       = 0x40
)

// Memory owns the story image and every header-derived address used by
// the rest of the interpreter.
type Memory struct {
	bytes []uint8

	// dynamicBackup holds bytes [0, StaticMemoryBase) as loaded from
	// disk, used to restore dynamic memory on Restart.
	dynamicBackup []uint8

	Version              uint8
	Flags1               uint8
	HighMemoryBase       uint16
	InitialPC            uint16
	DictionaryBase       uint16
	ObjectTableBase      uint16
	GlobalVariableBase   uint16
	StaticMemoryBase     uint16
	AbbreviationsBase    uint16
	FileChecksum         uint16
	RoutinesOffset       uint16
	StringsOffset        uint16
	TerminatingCharTable uint16
	AlphabetTableBase    uint16
	ExtensionTableBase   uint16
	UnicodeTableBase     uint16
}

// Load parses the story bytes and stamps the header fields that
// identify this interpreter, matching what a terminal-based V1-V5
// interpreter can plausibly claim to support.
func Load(story []uint8) *Memory {
	m := &Memory{bytes: story}
	m.readHeader()

	m.dynamicBackup = make([]uint8, m.StaticMemoryBase)
	copy(m.dynamicBackup, m.bytes[:m.StaticMemoryBase])

	m.stampInterpreterIdentity()

	return m
}

func (m *Memory) readHeader() {
	b := m.bytes
	m.Version = b[offVersion]
	m.Flags1 = b[offFlags1]
	m.HighMemoryBase = binary.BigEndian.Uint16(b[offHighMemBase:])
	m.InitialPC = binary.BigEndian.Uint16(b[offInitialPC:])
	m.DictionaryBase = binary.BigEndian.Uint16(b[offDictionary:])
	m.ObjectTableBase = binary.BigEndian.Uint16(b[offObjectTable:])
	m.GlobalVariableBase = binary.BigEndian.Uint16(b[offGlobals:])
	m.StaticMemoryBase = binary.BigEndian.Uint16(b[offStaticMemBase:])
	m.AbbreviationsBase = binary.BigEndian.Uint16(b[offAbbreviations:])
	m.FileChecksum = binary.BigEndian.Uint16(b[offChecksum:])
	m.RoutinesOffset = binary.BigEndian.Uint16(b[offRoutinesOff:])
	m.StringsOffset = binary.BigEndian.Uint16(b[offStringsOff:])
	m.TerminatingCharTable = binary.BigEndian.Uint16(b[offTermCharTable:])
	m.AlphabetTableBase = binary.BigEndian.Uint16(b[offAlphabetTable:])

	extBase := binary.BigEndian.Uint16(b[offExtTable:])
	m.ExtensionTableBase = extBase
	if extBase != 0 && int(extBase)+8 <= len(b) {
		numWords := binary.BigEndian.Uint16(b[extBase:])
		if numWords >= 3 {
			m.UnicodeTableBase = binary.BigEndian.Uint16(b[extBase+6:])
		}
	}
}

// stampInterpreterIdentity writes the bytes a story may inspect to
// decide what the interpreter supports. These header fields are not
// "static memory" in the usual sense, so writing them bypasses the
// normal write-protection check.
func (m *Memory) stampInterpreterIdentity() {
	b := m.bytes
	b[offInterpNum] = 6 // IBM PC, closest available match for a terminal app
	b[offInterpVer] = 1

	b[offScreenLines] = 25
	b[offScreenCols] = 80
	binary.BigEndian.PutUint16(b[offScreenWidthU:], 80)
	binary.BigEndian.PutUint16(b[offScreenHeightU:], 25)
	b[offFontHeight] = 1
	b[offFontWidth] = 1

	binary.BigEndian.PutUint16(b[offStdRevision:], 0x0102)

	if m.Version <= 3 {
		b[offFlags1] |= 0b0010_0000 // status line + split screen available
	} else {
		// colours, bold, italic, split screen; no pictures, no fixed-default, no timed input
		b[offFlags1] |= 0b0010_1101
	}
	m.Flags1 = b[offFlags1]
}

// Len reports the addressable length of the story image.
func (m *Memory) Len() uint32 { return uint32(len(m.bytes)) }

// FileLength returns the story's declared length per the header,
// scaled by the version-dependent divisor (§3/§4 of the Z-Machine
// standard section 11.1.6).
func (m *Memory) FileLength() uint32 {
	raw := uint32(binary.BigEndian.Uint16(m.bytes[offFileLength:]))
	switch {
	case m.Version <= 3:
		return raw * 2
	case m.Version <= 5:
		return raw * 4
	default:
		return raw * 8
	}
}

func (m *Memory) checkBounds(addr uint32, width uint32) error {
	if addr+width > uint32(len(m.bytes)) {
		return ErrMemoryOutOfBounds
	}
	return nil
}

// ReadByte reads one byte at addr.
func (m *Memory) ReadByte(addr uint32) (uint8, error) {
	if err := m.checkBounds(addr, 1); err != nil {
		return 0, err
	}
	return m.bytes[addr], nil
}

// ReadWord reads a big-endian 16-bit word at addr.
func (m *Memory) ReadWord(addr uint32) (uint16, error) {
	if err := m.checkBounds(addr, 2); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(m.bytes[addr : addr+2]), nil
}

// ReadDWord reads a big-endian 32-bit word at addr.
func (m *Memory) ReadDWord(addr uint32) (uint32, error) {
	if err := m.checkBounds(addr, 4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(m.bytes[addr : addr+4]), nil
}

// ReadBytes returns a read-only view of [start, end).
func (m *Memory) ReadBytes(start, end uint32) ([]uint8, error) {
	if err := m.checkBounds(start, end-start); err != nil {
		return nil, err
	}
	return m.bytes[start:end], nil
}

func (m *Memory) checkWritable(addr uint32) error {
	if addr >= uint32(m.StaticMemoryBase) {
		return ErrMemoryWriteProtected
	}
	return nil
}

// WriteByte writes one byte at addr, rejecting addresses at or above
// the static memory boundary.
func (m *Memory) WriteByte(addr uint32, v uint8) error {
	if err := m.checkWritable(addr); err != nil {
		return err
	}
	if err := m.checkBounds(addr, 1); err != nil {
		return err
	}
	m.bytes[addr] = v
	return nil
}

// WriteWord writes a big-endian 16-bit word at addr, rejecting
// addresses at or above the static memory boundary.
func (m *Memory) WriteWord(addr uint32, v uint16) error {
	if err := m.checkWritable(addr); err != nil {
		return err
	}
	if err := m.checkBounds(addr, 2); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(m.bytes[addr:addr+2], v)
	return nil
}

// PackedAddress converts a packed routine/string reference into a byte
// address, selecting the scale factor from the story's version (§3).
func (m *Memory) PackedAddress(packed uint16, isString bool) uint32 {
	switch {
	case m.Version < 4:
		return 2 * uint32(packed)
	case m.Version < 6:
		return 4 * uint32(packed)
	case m.Version < 8:
		offset := m.RoutinesOffset
		if isString {
			offset = m.StringsOffset
		}
		return 4*uint32(packed) + 8*uint32(offset)
	default:
		return 8 * uint32(packed)
	}
}

// Restart restores dynamic memory ([0, StaticMemoryBase)) to the state
// it had at load time, preserving the flags 2 word (transcription and
// fixed-pitch bits) per §6.
func (m *Memory) Restart() {
	flags2, _ := m.ReadWord(offFlags2)
	copy(m.bytes[:m.StaticMemoryBase], m.dynamicBackup)
	binary.BigEndian.PutUint16(m.bytes[offFlags2:], flags2)
	m.stampInterpreterIdentity()
}
