package binary

import "testing"

func TestBytesToInt(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		bitsPerByte int
		bigEndian   bool
		want        uint64
	}{
		{"synchsafe small", []byte{0x00, 0x00, 0x02, 0x01}, 7, true, 257},
		{"plain big-endian", []byte{0xD0, 0x6F, 0x98}, 8, true, 13_660_056},
		{"plain little-endian", []byte{0xD0, 0x6F, 0x98}, 8, false, 9_990_096},
		{"synchsafe big-endian", []byte{0xD0, 0x6F, 0x98}, 7, true, 3_422_104},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BytesToInt(tt.data, tt.bitsPerByte, tt.bigEndian); got != tt.want {
				t.Errorf("BytesToInt(%v, %d, %v) = %d, want %d", tt.data, tt.bitsPerByte, tt.bigEndian, got, tt.want)
			}
		})
	}
}

func TestReadBits(t *testing.T) {
	if got := ReadBits(0x31, 2, 2); got != 3 {
		t.Errorf("ReadBits(0x31, 2, 2) = %d, want 3", got)
	}
}

func TestByteToBinaryString(t *testing.T) {
	tests := map[byte]string{
		0x00: "00000000",
		0xFF: "11111111",
		0x31: "00110001",
	}
	for b, want := range tests {
		if got := ByteToBinaryString(b); got != want {
			t.Errorf("ByteToBinaryString(0x%02X) = %q, want %q", b, got, want)
		}
	}
}

func TestBase64RoundTrip(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0xFF, 0x00}
	encoded := Base64Encode(data)
	decoded, err := Base64Decode(encoded)
	if err != nil {
		t.Fatalf("Base64Decode: %v", err)
	}
	if string(decoded) != string(data) {
		t.Errorf("round trip mismatch: got %v, want %v", decoded, data)
	}
}
