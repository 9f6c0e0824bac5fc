package dispatch

import (
	"context"
	"testing"

	"github.com/MissingCore/tagscan/internal/types"
)

type memProvider struct {
	data map[string][]byte
}

func newMemProvider(uri string, data []byte) *memProvider {
	return &memProvider{data: map[string][]byte{uri: data}}
}

func (p *memProvider) Stat(_ context.Context, uri string) (types.FileInfo, error) {
	data, ok := p.data[uri]
	if !ok {
		return types.FileInfo{Exists: false}, nil
	}
	return types.FileInfo{Exists: true, Size: uint64(len(data))}, nil
}

func (p *memProvider) Read(_ context.Context, uri string, length, offset uint64) ([]byte, error) {
	data, ok := p.data[uri]
	if !ok {
		return nil, types.NewError(types.FileMissing, uri, "no such file")
	}
	if offset >= uint64(len(data)) {
		return nil, nil
	}
	end := offset + length
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	return data[offset:end], nil
}

func synchsafeBytes(n uint32) []byte {
	return []byte{
		byte((n >> 21) & 0x7F),
		byte((n >> 14) & 0x7F),
		byte((n >> 7) & 0x7F),
		byte(n & 0x7F),
	}
}

func id3v1Trailer(title string) []byte {
	buf := make([]byte, 128)
	copy(buf[0:3], "TAG")
	copy(buf[3:33], title)
	return buf
}

func TestExtractUnsupportedExtension(t *testing.T) {
	p := newMemProvider("song.ogg", []byte("whatever"))
	_, err := Extract(context.Background(), p, "song.ogg", types.NewRequestedTags(types.TagName))
	if err == nil {
		t.Fatal("expected an error for an unsupported extension")
	}
	te, ok := err.(*types.Error)
	if !ok || te.Kind != types.UnsupportedFile {
		t.Fatalf("got %v, want UnsupportedFile", err)
	}
}

func TestExtractMissingFile(t *testing.T) {
	p := newMemProvider("other.mp3", []byte{})
	_, err := Extract(context.Background(), p, "missing.mp3", types.NewRequestedTags(types.TagName))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	te, ok := err.(*types.Error)
	if !ok || te.Kind != types.FileMissing {
		t.Fatalf("got %v, want FileMissing", err)
	}
}

func TestExtractMP3PrefersLeadingID3v2(t *testing.T) {
	payload := append([]byte{0x00}, []byte("Silence")...) // encoding byte + text
	payload = append(payload, 0x00)                       // NUL terminator
	frame := append([]byte("TIT2"), synchsafeBytes(uint32(len(payload)))...)
	frame = append(frame, 0x00, 0x00) // flags
	frame = append(frame, payload...)

	header := append([]byte{'I', 'D', '3', 3, 0, 0x00}, synchsafeBytes(uint32(len(frame)))...)
	tag := append(header, frame...)
	tag = append(tag, id3v1Trailer("Different Title")...)

	p := newMemProvider("song.mp3", tag)
	res, err := Extract(context.Background(), p, "song.mp3", types.NewRequestedTags(types.TagName))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Format != "ID3v2.3" {
		t.Errorf("Format = %q, want ID3v2.3 (ID3v2 must win over a coexisting ID3v1 trailer)", res.Format)
	}
	if res.Metadata[types.TagName] != "Silence" {
		t.Errorf("name = %v, want %q", res.Metadata[types.TagName], "Silence")
	}
}

func TestExtractMP3FallsBackToID3v1(t *testing.T) {
	p := newMemProvider("song.mp3", id3v1Trailer("Silence"))
	res, err := Extract(context.Background(), p, "song.mp3", types.NewRequestedTags(types.TagName))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Format != "ID3v1" {
		t.Errorf("Format = %q, want ID3v1", res.Format)
	}
}

func TestExtractMP3Tagless(t *testing.T) {
	p := newMemProvider("song.mp3", make([]byte, 200))
	_, err := Extract(context.Background(), p, "song.mp3", types.NewRequestedTags(types.TagName))
	if err == nil {
		t.Fatal("expected an error for a tagless MP3")
	}
	te, ok := err.(*types.Error)
	if !ok || te.Kind != types.FormatInvalid {
		t.Fatalf("got %v, want FormatInvalid", err)
	}
}
