package zstring

import "github.com/kjhallberg/gozvm/zcore"

const maxAbbreviationDepth = 1

// Decode reads a Z-string starting at addr and returns the decoded
// text plus the address immediately following the string (§4.2).
// depth tracks abbreviation-expansion nesting; callers decoding a
// top-level string pass 0.
func Decode(mem *zcore.Memory, addr uint32, alphabets *Alphabets, depth int) (string, uint32, error) {
	zchrs, bytesRead, err := readZChars(mem, addr)
	if err != nil {
		return "", 0, err
	}

	out, err := decodeZChars(mem, zchrs, alphabets, depth)
	if err != nil {
		return "", 0, err
	}

	return out, addr + bytesRead, nil
}

// readZChars unpacks 16-bit words into a stream of 5-bit Z-chars,
// stopping after the word with its high bit set.
func readZChars(mem *zcore.Memory, addr uint32) ([]uint8, uint32, error) {
	var zchrs []uint8
	var bytesRead uint32

	for {
		word, err := mem.ReadWord(addr + bytesRead)
		if err != nil {
			return nil, 0, err
		}
		bytesRead += 2

		zchrs = append(zchrs,
			uint8((word>>10)&0b1_1111),
			uint8((word>>5)&0b1_1111),
			uint8(word&0b1_1111),
		)

		if word&0x8000 != 0 {
			break
		}
	}

	return zchrs, bytesRead, nil
}

// decodeZChars walks the alphabet/shift/abbreviation state machine
// over an already-unpacked Z-char stream (§4.2).
func decodeZChars(mem *zcore.Memory, zchrs []uint8, alphabets *Alphabets, depth int) (string, error) {
	version := mem.Version
	var out []rune

	baseAlphabet := 0    // shift-locked alphabet (V1/V2 only)
	nextAlphabet := 0    // alphabet in effect for the *next* char emitted
	pendingAbbrevTable := -1

	for i := 0; i < len(zchrs); i++ {
		zchr := zchrs[i]
		currentAlphabet := nextAlphabet
		nextAlphabet = baseAlphabet

		if pendingAbbrevTable >= 0 {
			table := pendingAbbrevTable
			pendingAbbrevTable = -1

			if depth >= maxAbbreviationDepth {
				return "", ErrMalformedString
			}

			expansion, err := expandAbbreviation(mem, alphabets, table, zchr, depth)
			if err != nil {
				return "", err
			}
			out = append(out, []rune(expansion)...)
			continue
		}

		switch {
		case zchr == 0:
			out = append(out, ' ')

		case zchr == 1 && version == 1:
			out = append(out, '\n')

		case zchr == 1 && version >= 2 && version <= 2:
			pendingAbbrevTable = 0

		case zchr == 1 && version >= 3:
			pendingAbbrevTable = 0

		case (zchr == 2 || zchr == 3) && version <= 2:
			shift := 1
			if zchr == 3 {
				shift = 2
			}
			baseAlphabet = shift
			nextAlphabet = shift

		case (zchr == 2 || zchr == 3) && version >= 3:
			pendingAbbrevTable = int(zchr) - 1

		case zchr == 4 || zchr == 5:
			shift := 1
			if zchr == 5 {
				shift = 2
			}
			nextAlphabet = shift

		default: // 6..31
			if currentAlphabet == 2 && zchr == 6 {
				if i+2 >= len(zchrs) {
					return "", ErrMalformedString
				}
				code := uint16(zchrs[i+1])<<5 | uint16(zchrs[i+2])
				i += 2
				out = append(out, zsciiToUnicode(code, mem))
				continue
			}

			row := zchr - 6
			if int(row) >= 26 {
				return "", ErrMalformedString
			}

			switch currentAlphabet {
			case 0:
				out = append(out, rune(alphabets.A0[row]))
			case 1:
				out = append(out, rune(alphabets.A1[row]))
			case 2:
				out = append(out, rune(alphabets.A2[row]))
			}
		}
	}

	return string(out), nil
}

// expandAbbreviation resolves abbreviation table z (0-2), index x into
// the text it stands for. Abbreviation tables hold packed addresses of
// other Z-strings (§4.2); nested abbreviation references are rejected
// by decodeZChars via the depth check before this is called.
func expandAbbreviation(mem *zcore.Memory, alphabets *Alphabets, z int, x uint8, depth int) (string, error) {
	index := 32*z + int(x)
	entryAddr := uint32(mem.AbbreviationsBase) + uint32(index)*2

	packed, err := mem.ReadWord(entryAddr)
	if err != nil {
		return "", err
	}

	str, _, err := Decode(mem, uint32(packed)*2, alphabets, depth+1)
	return str, err
}
