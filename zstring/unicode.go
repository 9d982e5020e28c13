package zstring

import "github.com/kjhallberg/gozvm/zcore"

// DefaultUnicodeTable maps ZSCII codes 155-223 to Unicode runes, per
// the Z-Machine standard's default extra-character table (§3.8.5.3).
var DefaultUnicodeTable = map[uint8]rune{
	155: 'ä', 156: 'ö', 157: 'ü', 158: 'Ä', 159: 'Ö', 160: 'Ü', 161: 'ß',
	162: '»', 163: '«', 164: 'ë', 165: 'ï', 166: 'ÿ', 167: 'Ë', 168: 'Ï',
	169: 'á', 170: 'é', 171: 'í', 172: 'ó', 173: 'ú', 174: 'ý', 175: 'Á',
	176: 'É', 177: 'Í', 178: 'Ó', 179: 'Ú', 180: 'Ý', 181: 'à', 182: 'è',
	183: 'ì', 184: 'ò', 185: 'ù', 186: 'À', 187: 'È', 188: 'Ì', 189: 'Ò',
	190: 'Ù', 191: 'â', 192: 'ê', 193: 'î', 194: 'ô', 195: 'û', 196: 'Â',
	197: 'Ê', 198: 'Î', 199: 'Ô', 200: 'Û', 201: 'å', 202: 'Å', 203: 'ø',
	204: 'Ø', 205: 'ã', 206: 'ñ', 207: 'õ', 208: 'Ã', 209: 'Ñ', 210: 'Õ',
	211: 'æ', 212: 'Æ', 213: 'ç', 214: 'Ç', 215: 'þ', 216: 'ð', 217: 'Þ',
	218: 'Ð', 219: '£', 220: 'œ', 221: 'Œ', 222: '¡', 223: '¿',
}

// unicodeTranslationTable returns the mapping in effect for mem: the
// default table, or a story-supplied custom one addressed by the
// Unicode translation extension (header extension word 3, §3.8.5.4).
func unicodeTranslationTable(mem *zcore.Memory) map[uint8]rune {
	if mem.UnicodeTableBase == 0 {
		return DefaultUnicodeTable
	}

	n, err := mem.ReadByte(uint32(mem.UnicodeTableBase))
	if err != nil {
		return DefaultUnicodeTable
	}

	table := make(map[uint8]rune, n)
	base := uint32(mem.UnicodeTableBase) + 1
	for i := uint8(0); i < n; i++ {
		w, err := mem.ReadWord(base + uint32(i)*2)
		if err != nil {
			break
		}
		table[155+i] = rune(w)
	}
	return table
}

// zsciiToUnicode decodes a ten-bit ZSCII literal to its Unicode rune.
func zsciiToUnicode(zchr uint16, mem *zcore.Memory) rune {
	if zchr < 256 {
		if r, ok := unicodeTranslationTable(mem)[uint8(zchr)]; ok {
			return r
		}
	}
	return rune(zchr)
}

// unicodeToZscii encodes a Unicode rune back to its ZSCII code, used
// when encoding typed text for dictionary lookup.
func unicodeToZscii(r rune, mem *zcore.Memory) (uint8, bool) {
	for code, ru := range unicodeTranslationTable(mem) {
		if ru == r {
			return code, true
		}
	}
	return 0, false
}

// ZsciiToRune exposes zsciiToUnicode for print_char and similar
// opcodes that receive a raw ZSCII/Unicode code rather than a decoded
// string (§3.8, print_char).
func ZsciiToRune(mem *zcore.Memory, code uint16) rune {
	return zsciiToUnicode(code, mem)
}

// RuneToZscii exposes unicodeToZscii for read_char's terminating
// character handling.
func RuneToZscii(mem *zcore.Memory, r rune) (uint8, bool) {
	return unicodeToZscii(r, mem)
}
