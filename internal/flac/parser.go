// Package flac implements the FLAC metadata-block parser: the stream magic
// check, the metadata-block loop, Vorbis comment decoding, and PICTURE
// block decoding.
package flac

import (
	"context"

	"github.com/MissingCore/tagscan/internal/stream"
	"github.com/MissingCore/tagscan/internal/types"
)

const blockHeaderSize = 4

const (
	blockTypeVorbisComment = 4
	blockTypePicture       = 6
)

var vorbisFieldKeys = map[string]types.TagKey{
	"ALBUM":        types.TagAlbum,
	"ALBUMARTIST":  types.TagAlbumArtist,
	"ARTIST":       types.TagArtist,
	"TITLE":        types.TagName,
	"TRACKNUMBER":  types.TagTrack,
	"DATE":         types.TagYear,
	"ORIGINALDATE": types.TagYear,
	"ORIGINALYEAR": types.TagYear,
}

// Extract parses a FLAC stream starting at offset 0: the "fLaC" magic,
// then metadata blocks until the last-block flag or the requested set is
// satisfied. Reaching EOF before a last-flagged block is an IoFailed error.
func Extract(ctx context.Context, provider types.FileProvider, uri string, requested *types.RequestedTags) (*types.Result, error) {
	w := stream.New(provider, uri)
	if err := w.Load(ctx, 0, 4); err != nil {
		return nil, err
	}
	if string(w.Read(4)) != "fLaC" {
		return nil, types.NewError(types.FormatInvalid, uri, `not a FLAC stream (missing "fLaC" marker)`)
	}

	c := types.NewCollector(requested)
	offset := uint64(4)

	for {
		if err := w.Load(ctx, offset, blockHeaderSize); err != nil {
			return nil, err
		}
		header := w.Read(blockHeaderSize)
		last := header[0]&0x80 != 0
		blockType := header[0] & 0x7F
		length := uint64(header[1])<<16 | uint64(header[2])<<8 | uint64(header[3])

		blockOffset := offset + blockHeaderSize

		switch blockType {
		case blockTypeVorbisComment:
			if err := parseVorbisComment(ctx, w, blockOffset, length, c); err != nil {
				return nil, err
			}
		case blockTypePicture:
			if requested.Has(types.TagArtwork) {
				if err := parsePicture(ctx, w, blockOffset, length, c); err != nil {
					return nil, err
				}
			}
		}

		offset = blockOffset + length

		if last || c.Satisfied() {
			break
		}
	}

	return &types.Result{
		FileType: "flac",
		Format:   "FLAC",
		Metadata: c.Finish(),
	}, nil
}

func parseVorbisComment(ctx context.Context, w *stream.Window, offset, length uint64, c *types.Collector) error {
	if err := w.Load(ctx, offset, length); err != nil {
		return err
	}

	vendorLen := le32(w.Read(4))
	w.Skip(int(vendorLen))

	count := le32(w.Read(4))
	for i := uint32(0); i < count; i++ {
		if w.Remaining() < 4 {
			break
		}
		entryLen := le32(w.Read(4))
		if uint64(entryLen) > uint64(w.Remaining()) {
			break
		}
		entry := w.Read(int(entryLen))
		storeVorbisField(entry, c)
		if c.Satisfied() {
			return nil
		}
	}
	return nil
}

func storeVorbisField(entry []byte, c *types.Collector) {
	eq := -1
	for i, b := range entry {
		if b == '=' {
			eq = i
			break
		}
	}
	if eq < 0 {
		return
	}
	field := upperASCII(string(entry[:eq]))
	key, ok := vorbisFieldKeys[field]
	if !ok {
		return
	}
	value := string(entry[eq+1:])
	if key == types.TagTrack {
		c.StoreTrack(value)
		return
	}
	if key == types.TagYear {
		c.StoreYear(value)
		return
	}
	c.StoreString(key, value)
}

func parsePicture(ctx context.Context, w *stream.Window, offset, length uint64, c *types.Collector) error {
	if err := w.Load(ctx, offset, length); err != nil {
		return err
	}

	if w.Remaining() < 4 {
		return nil
	}
	pictureType := be32(w.Read(4))
	if pictureType != 0 && pictureType != 3 {
		return nil
	}

	if w.Remaining() < 4 {
		return nil
	}
	mimeLen := be32(w.Read(4))
	if uint64(mimeLen) > uint64(w.Remaining()) {
		return nil
	}
	mime := string(w.Read(int(mimeLen)))

	if w.Remaining() < 4 {
		return nil
	}
	descLen := be32(w.Read(4))
	if uint64(descLen) > uint64(w.Remaining()) {
		return nil
	}
	w.Skip(int(descLen)) // description, discarded

	if w.Remaining() < 16 {
		return nil
	}
	w.Skip(16) // width, height, color depth, indexed-colour count

	if w.Remaining() < 4 {
		return nil
	}
	picLen := be32(w.Read(4))
	if uint64(picLen) > uint64(w.Remaining()) {
		return nil
	}
	c.StoreArtwork(mime, w.Read(int(picLen)))
	return nil
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func upperASCII(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b >= 'a' && b <= 'z' {
			b -= 'a' - 'A'
		}
		out[i] = b
	}
	return string(out)
}
