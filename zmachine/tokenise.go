package zmachine

import (
	"github.com/kjhallberg/gozvm/dictionary"
	"github.com/kjhallberg/gozvm/zstring"
)

// tokenise splits the text at textBuf into words, looks each up in
// dict, and writes the parse results to parseBuf (§13, §15
// "tokenise"/sread's implicit lexing step).
func (m *Machine) tokenise(textBuf, parseBuf uint32, dict *dictionary.Dictionary) error {
	start := textBuf + 1
	if m.Memory.Version >= 5 {
		start++ // V5+ text buffer carries a length byte after the max-length byte
	}

	maxLen, err := m.Memory.ReadByte(textBuf)
	if err != nil {
		return err
	}

	bytes, err := m.Memory.ReadBytes(start, start+uint32(maxLen))
	if err != nil {
		return err
	}
	// Trim trailing NULs the text buffer was zero-padded with.
	for len(bytes) > 0 && bytes[len(bytes)-1] == 0 {
		bytes = bytes[:len(bytes)-1]
	}

	type token struct {
		text  string
		start uint32
	}
	var tokens []token

	wordStart := 0
	flush := func(end int) {
		if end > wordStart {
			tokens = append(tokens, token{text: string(bytes[wordStart:end]), start: uint32(wordStart)})
		}
	}
	for i, b := range bytes {
		if b == ' ' {
			flush(i)
			wordStart = i + 1
		}
	}
	flush(len(bytes))

	maxWords, err := m.Memory.ReadByte(parseBuf)
	if err != nil {
		return err
	}
	if int(maxWords) < len(tokens) {
		tokens = tokens[:maxWords]
	}

	if err := m.Memory.WriteByte(parseBuf+1, uint8(len(tokens))); err != nil {
		return err
	}

	entry := parseBuf + 2
	for _, t := range tokens {
		addr := uint16(0)
		if dict != nil {
			encoded := zstring.Encode([]rune(t.text), m.Memory, m.Alphabets)
			addr = dict.Find(encoded)
		}
		if err := m.Memory.WriteWord(entry, addr); err != nil {
			return err
		}
		if err := m.Memory.WriteByte(entry+2, uint8(len(t.text))); err != nil {
			return err
		}
		if err := m.Memory.WriteByte(entry+3, uint8(t.start+(start-textBuf))); err != nil {
			return err
		}
		entry += 4
	}

	return nil
}
