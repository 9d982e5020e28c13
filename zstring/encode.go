package zstring

import "github.com/kjhallberg/gozvm/zcore"

// Encode converts runes into a packed Z-string suitable for dictionary
// lookup, padding or truncating to the version's dictionary word
// length (2 words/6 Z-chars for V1-3, 3 words/9 Z-chars for V4+).
func Encode(runes []rune, mem *zcore.Memory, alphabets *Alphabets) []byte {
	numWords := 2
	if mem.Version >= 4 {
		numWords = 3
	}
	numZChars := numWords * 3

	zchrs := make([]uint8, 0, numZChars)
	for _, r := range runes {
		if len(zchrs) >= numZChars {
			break
		}
		zchrs = append(zchrs, encodeRune(r, mem, alphabets)...)
	}
	for len(zchrs) < numZChars {
		zchrs = append(zchrs, 5) // pad character
	}
	zchrs = zchrs[:numZChars]

	out := make([]byte, numWords*2)
	for w := 0; w < numWords; w++ {
		word := uint16(zchrs[w*3])<<10 | uint16(zchrs[w*3+1])<<5 | uint16(zchrs[w*3+2])
		if w == numWords-1 {
			word |= 0x8000
		}
		out[w*2] = uint8(word >> 8)
		out[w*2+1] = uint8(word)
	}
	return out
}

func encodeRune(r rune, mem *zcore.Memory, alphabets *Alphabets) []uint8 {
	if r < 128 {
		b := uint8(r)
		for i, c := range alphabets.A0 {
			if c == b {
				return []uint8{uint8(i + 6)}
			}
		}
		for i, c := range alphabets.A1 {
			if c == b {
				return []uint8{4, uint8(i + 6)}
			}
		}
		for i, c := range alphabets.A2 {
			if c == b {
				return []uint8{5, uint8(i + 6)}
			}
		}
	}

	if code, ok := unicodeToZscii(r, mem); ok {
		return []uint8{5, 6, uint8(code >> 5), code & 0b1_1111}
	}

	return []uint8{5} // unencodable, fall back to padding
}
