// Package dictionary implements the story's word list used by
// tokenise/sread to resolve typed words to dictionary addresses
// (§13).
package dictionary

import (
	"bytes"

	"github.com/kjhallberg/gozvm/zcore"
	"github.com/kjhallberg/gozvm/zstring"
)

// Header describes the word separators and entry layout that precede
// a dictionary's entry table.
type Header struct {
	InputCodes   []uint8
	EntryLength  uint8
	EntryCount   int16
}

// Entry is one decoded dictionary word.
type Entry struct {
	Address     uint16
	EncodedWord []uint8
	Word        string
}

// Dictionary is a parsed word list, either the story's main
// dictionary (header §DictionaryBase) or a custom one supplied to
// tokenise (§15).
type Dictionary struct {
	Header  Header
	entries []Entry
}

// Parse reads the dictionary at mem.DictionaryBase.
func Parse(mem *zcore.Memory, alphabets *zstring.Alphabets) (*Dictionary, error) {
	return ParseAt(mem, uint32(mem.DictionaryBase), alphabets)
}

// ParseAt reads a dictionary starting at base, used both for the
// story's main dictionary and for tokenise's custom-dictionary
// operand (§15 "tokenise").
func ParseAt(mem *zcore.Memory, base uint32, alphabets *zstring.Alphabets) (*Dictionary, error) {
	numInputCodes, err := mem.ReadByte(base)
	if err != nil {
		return nil, err
	}

	inputCodes, err := mem.ReadBytes(base+1, base+1+uint32(numInputCodes))
	if err != nil {
		return nil, err
	}

	entryLength, err := mem.ReadByte(base + 1 + uint32(numInputCodes))
	if err != nil {
		return nil, err
	}

	count, err := mem.ReadWord(base + 2 + uint32(numInputCodes))
	if err != nil {
		return nil, err
	}

	encodedWordLength := uint32(4)
	if mem.Version > 3 {
		encodedWordLength = 6
	}

	entryPtr := base + 4 + uint32(numInputCodes)
	entries := make([]Entry, 0, count)

	for i := int16(0); i < int16(count); i++ {
		encoded, err := mem.ReadBytes(entryPtr, entryPtr+encodedWordLength)
		if err != nil {
			return nil, err
		}
		word, _, err := zstring.Decode(mem, entryPtr, alphabets, 0)
		if err != nil {
			return nil, err
		}

		entries = append(entries, Entry{
			Address:     uint16(entryPtr),
			EncodedWord: encoded,
			Word:        word,
		})

		entryPtr += uint32(entryLength)
	}

	return &Dictionary{
		Header: Header{
			InputCodes:  inputCodes,
			EntryLength: entryLength,
			EntryCount:  int16(count),
		},
		entries: entries,
	}, nil
}

// Find returns the dictionary address of the entry whose encoded form
// matches zstr, or 0 if the word is not in the dictionary (§13, §16
// "tokenise").
func (d *Dictionary) Find(zstr []uint8) uint16 {
	for _, entry := range d.entries {
		if bytes.Equal(entry.EncodedWord, zstr) {
			return entry.Address
		}
	}
	return 0
}
