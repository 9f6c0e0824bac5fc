package binary

import "unicode/utf16"

// TextEncoding is the one-byte encoding selector ID3v2 puts at the front of
// every text-bearing frame payload.
type TextEncoding byte

const (
	// EncodingISO88591 treats each byte as a Unicode code point below
	// U+0100 (ISO-8859-1 / Latin-1).
	EncodingISO88591 TextEncoding = 0
	// EncodingUTF16BOM is UTF-16 with a leading byte-order mark: FE FF for
	// big-endian, FF FE for little-endian. A missing BOM falls back to
	// little-endian rather than failing.
	EncodingUTF16BOM TextEncoding = 1
	// EncodingUTF16BE is UTF-16 big-endian with no BOM.
	EncodingUTF16BE TextEncoding = 2
	// EncodingUTF8 is plain UTF-8.
	EncodingUTF8 TextEncoding = 3
)

// DecodeString decodes data under the given ID3v2 text encoding. A
// terminating NUL (and anything after it) is always stripped before
// decoding proceeds.
func DecodeString(data []byte, enc TextEncoding) string {
	switch enc {
	case EncodingISO88591:
		return decodeLatin1(stripNUL1(data))
	case EncodingUTF16BOM:
		return decodeUTF16BOM(data)
	case EncodingUTF16BE:
		return decodeUTF16(stripNUL2(data), false)
	case EncodingUTF8:
		return string(stripNUL1(data))
	default:
		return decodeLatin1(stripNUL1(data))
	}
}

// TerminatorSize returns the width of the NUL terminator for enc: two
// bytes for the UTF-16 encodings, one byte otherwise.
func TerminatorSize(enc TextEncoding) int {
	switch enc {
	case EncodingUTF16BOM, EncodingUTF16BE:
		return 2
	default:
		return 1
	}
}

// IndexNUL returns the offset of the terminating NUL in data under enc, or
// -1 if there is none.
func IndexNUL(data []byte, enc TextEncoding) int {
	switch enc {
	case EncodingUTF16BOM, EncodingUTF16BE:
		for i := 0; i+1 < len(data); i += 2 {
			if data[i] == 0 && data[i+1] == 0 {
				return i
			}
		}
		return -1
	default:
		for i, b := range data {
			if b == 0 {
				return i
			}
		}
		return -1
	}
}

func stripNUL1(data []byte) []byte {
	if i := indexByte(data, 0); i >= 0 {
		return data[:i]
	}
	return data
}

func stripNUL2(data []byte) []byte {
	for i := 0; i+1 < len(data); i += 2 {
		if data[i] == 0 && data[i+1] == 0 {
			return data[:i]
		}
	}
	return data
}

func indexByte(data []byte, b byte) int {
	for i, c := range data {
		if c == b {
			return i
		}
	}
	return -1
}

func decodeLatin1(data []byte) string {
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}

func decodeUTF16BOM(data []byte) string {
	little := true // no-BOM fallback
	switch {
	case len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF:
		data, little = data[2:], false
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE:
		data, little = data[2:], true
	}
	return decodeUTF16(stripNUL2(data), little)
}

func decodeUTF16(data []byte, little bool) string {
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}
	units := make([]uint16, len(data)/2)
	for i := range units {
		if little {
			units[i] = uint16(data[i*2]) | uint16(data[i*2+1])<<8
		} else {
			units[i] = uint16(data[i*2])<<8 | uint16(data[i*2+1])
		}
	}
	return string(utf16.Decode(units))
}
