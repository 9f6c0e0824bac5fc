// Package binary provides the pure, stateless byte-level primitives every
// container parser is built on: base64 conversion, bit extraction,
// configurable-width integer decoding (including the ID3 synchsafe form),
// and text decoding under the four ID3v2 text encodings. None of these
// functions touch a file or a reader — they operate on byte slices handed
// to them.
package binary

import "encoding/base64"

// Base64Decode decodes standard base64 text. The input is assumed
// well-formed; there is no recovery path for malformed input.
func Base64Decode(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

// Base64Encode encodes b as standard base64 text.
func Base64Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// ByteToBinaryString returns the 8-character big-endian binary
// representation of b, e.g. 0x31 -> "00110001".
func ByteToBinaryString(b byte) string {
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		if b&(1<<(7-i)) != 0 {
			out[i] = '1'
		} else {
			out[i] = '0'
		}
	}
	return string(out)
}

// ReadBits returns the integer value of the length contiguous bits of b
// starting at bit index start, counted from the most significant bit.
// ReadBits(0x31, 2, 2) == 3, since bits 2-3 of 00110001 are "11".
func ReadBits(b byte, start, length int) int {
	if length <= 0 || start < 0 || start+length > 8 {
		return 0
	}
	mask := byte((1 << length) - 1)
	shift := 8 - start - length
	return int((b >> shift) & mask)
}

// BytesToInt interprets data as an unsigned integer with the given bit
// width per byte and byte order. bitsPerByte is normally 8; pass 7 to
// decode an ID3v2 synchsafe integer, where each byte is logically only 7
// bits wide. Little-endian reverses the byte order before accumulation.
//
// Note this does not mask away the unused top bit of each byte in the
// bitsPerByte=7 case — well-formed synchsafe data always has that bit
// clear, so the shift-only accumulation below is equivalent to masking
// for valid input and is simpler.
func BytesToInt(data []byte, bitsPerByte int, bigEndian bool) uint64 {
	if bitsPerByte <= 0 {
		bitsPerByte = 8
	}
	ordered := data
	if !bigEndian {
		ordered = make([]byte, len(data))
		for i, b := range data {
			ordered[len(data)-1-i] = b
		}
	}
	var v uint64
	for _, b := range ordered {
		v = (v << uint(bitsPerByte)) | uint64(b)
	}
	return v
}

// Synchsafe decodes a 4-byte ID3v2 synchsafe integer, the common case of
// BytesToInt with bitsPerByte=7.
func Synchsafe(data []byte) uint32 {
	return uint32(BytesToInt(data, 7, true))
}
