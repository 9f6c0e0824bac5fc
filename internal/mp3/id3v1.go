package mp3

import (
	"context"

	"github.com/MissingCore/tagscan/internal/binary"
	"github.com/MissingCore/tagscan/internal/stream"
	"github.com/MissingCore/tagscan/internal/types"
)

// id3v1TagSize is the fixed size of the ID3v1/1.1 trailer.
const id3v1TagSize = 128

// ExtractID3v1 reads the fixed 128-byte trailer at fileSize-128 and
// extracts the fields it defines: title, artist, album, year, and — for
// the v1.1 extension — a track number smuggled into the comment field.
func ExtractID3v1(ctx context.Context, provider types.FileProvider, uri string, size uint64, requested *types.RequestedTags) (*types.Result, error) {
	if size < id3v1TagSize {
		return nil, types.NewError(types.FormatInvalid, uri, "file too small for an ID3v1 tag")
	}

	w := stream.New(provider, uri)
	if err := w.Load(ctx, size-id3v1TagSize, id3v1TagSize); err != nil {
		return nil, err
	}

	marker := w.Read(3)
	if string(marker) != "TAG" {
		return nil, types.NewError(types.FormatInvalid, uri, `not an ID3v1 tag (missing "TAG" marker)`)
	}

	titleRaw := w.Read(30)
	artistRaw := w.Read(30)
	albumRaw := w.Read(30)
	yearRaw := w.Read(4)
	commentRaw := w.Read(30)
	w.Read(1) // genre, unused

	c := types.NewCollector(requested)
	c.StoreString(types.TagName, latin1(titleRaw))
	c.StoreString(types.TagArtist, latin1(artistRaw))
	c.StoreString(types.TagAlbum, latin1(albumRaw))
	c.StoreYear(latin1(yearRaw))

	format := "ID3v1"
	if len(commentRaw) >= 30 && commentRaw[28] == 0 && commentRaw[29] != 0 {
		format = "ID3v1.1"
		c.StoreInt(types.TagTrack, int64(commentRaw[29]))
	}

	return &types.Result{
		FileType: "mp3",
		Format:   format,
		Metadata: c.Finish(),
	}, nil
}

func latin1(data []byte) string {
	return binary.DecodeString(data, binary.EncodingISO88591)
}
