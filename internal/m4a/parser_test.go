package m4a

import (
	"context"
	"testing"

	"github.com/MissingCore/tagscan/internal/binary"
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

func be32(n uint32) []byte {
	return []byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
}

func atom(atomType string, body []byte) []byte {
	size := uint32(8 + len(body))
	out := append(be32(size), []byte(atomType)...)
	return append(out, body...)
}

func dataAtom(flag uint32, payload []byte) []byte {
	size := uint32(16 + len(payload))
	out := append(be32(size), []byte("data")...)
	out = append(out, 0x00)                       // version
	out = append(out, byte(flag>>16), byte(flag>>8), byte(flag)) // 3-byte flag
	out = append(out, 0, 0, 0, 0)                 // reserved
	return append(out, payload...)
}

func textLeaf(name string, text string) []byte {
	return atom(name, dataAtom(1, []byte(text)))
}

func trknLeaf(track uint32) []byte {
	payload := make([]byte, 8)
	payload[2] = byte(track >> 8)
	payload[3] = byte(track)
	return atom("trkn", dataAtom(0, payload))
}

func covrLeaf(flag uint32, picture []byte) []byte {
	return atom("covr", dataAtom(flag, picture))
}

func buildM4A(majorBrand string, minorVersion uint32, ilstChildren ...[]byte) []byte {
	ftypBody := append([]byte(majorBrand), be32(minorVersion)...)
	ftyp := atom("ftyp", ftypBody)

	var ilstBody []byte
	for _, c := range ilstChildren {
		ilstBody = append(ilstBody, c...)
	}
	ilst := atom("ilst", ilstBody)

	metaBody := append([]byte{0, 0, 0, 0}, ilst...) // 4-byte version/flags
	meta := atom("meta", metaBody)

	udta := atom("udta", meta)
	moov := atom("moov", udta)

	return append(ftyp, moov...)
}

func TestExtractM4ATextFields(t *testing.T) {
	file := buildM4A("M4A ", 512,
		textLeaf("\xa9alb", "Void"),
		textLeaf("\xa9ART", "Nothing"),
		textLeaf("\xa9nam", "Silence"),
	)
	p := newMemProvider("f", file)
	requested := types.NewRequestedTags(types.TagAlbum, types.TagArtist, types.TagName)

	res, err := Extract(context.Background(), p, "f", requested)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.FileType != "m4a" {
		t.Errorf("FileType = %q, want m4a", res.FileType)
	}
	if res.Format != "M4A  (512)" {
		t.Errorf("Format = %q, want %q", res.Format, "M4A  (512)")
	}
	if res.Metadata[types.TagAlbum] != "Void" {
		t.Errorf("album = %v", res.Metadata[types.TagAlbum])
	}
	if res.Metadata[types.TagArtist] != "Nothing" {
		t.Errorf("artist = %v", res.Metadata[types.TagArtist])
	}
	if res.Metadata[types.TagName] != "Silence" {
		t.Errorf("name = %v", res.Metadata[types.TagName])
	}
}

func TestExtractM4ATrack(t *testing.T) {
	file := buildM4A("isom", 512, trknLeaf(1))
	p := newMemProvider("f", file)
	requested := types.NewRequestedTags(types.TagTrack)

	res, err := Extract(context.Background(), p, "f", requested)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.FileType != "mp4" {
		t.Errorf("FileType = %q, want mp4", res.FileType)
	}
	if res.Format != "isom (512)" {
		t.Errorf("Format = %q, want %q", res.Format, "isom (512)")
	}
	if res.Metadata[types.TagTrack] != int64(1) {
		t.Errorf("track = %v, want int64(1)", res.Metadata[types.TagTrack])
	}
}

func TestExtractM4AArtworkPNG(t *testing.T) {
	picture := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	file := buildM4A("M4A ", 512, covrLeaf(14, picture))
	p := newMemProvider("f", file)
	requested := types.NewRequestedTags(types.TagArtwork)

	res, err := Extract(context.Background(), p, "f", requested)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := "data:image/png;base64," + binary.Base64Encode(picture)
	if res.Metadata[types.TagArtwork] != want {
		t.Errorf("artwork = %v, want %q", res.Metadata[types.TagArtwork], want)
	}
}

func TestExtractM4AArtworkJPEG(t *testing.T) {
	picture := []byte{0x01, 0x02}
	file := buildM4A("M4A ", 512, covrLeaf(13, picture))
	p := newMemProvider("f", file)
	requested := types.NewRequestedTags(types.TagArtwork)

	res, err := Extract(context.Background(), p, "f", requested)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := "data:image/jpeg;base64," + binary.Base64Encode(picture)
	if res.Metadata[types.TagArtwork] != want {
		t.Errorf("artwork = %v, want %q", res.Metadata[types.TagArtwork], want)
	}
}

func TestExtractM4ASkipsUnrequestedFields(t *testing.T) {
	file := buildM4A("M4A ", 512,
		textLeaf("\xa9alb", "Void"),
		textLeaf("\xa9ART", "Nothing"),
	)
	p := newMemProvider("f", file)
	requested := types.NewRequestedTags(types.TagAlbum)

	res, err := Extract(context.Background(), p, "f", requested)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if _, ok := res.Metadata[types.TagArtist]; ok {
		t.Error("artist should not be present: it was never requested")
	}
}

func TestExtractM4AMissingFtyp(t *testing.T) {
	p := newMemProvider("f", atom("moov", nil))
	_, err := Extract(context.Background(), p, "f", types.NewRequestedTags(types.TagName))
	if err == nil {
		t.Fatal("expected an error for a missing ftyp atom")
	}
}
