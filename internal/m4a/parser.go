// Package m4a implements the ISO Base Media (MP4/M4A) atom-tree parser:
// atom header decoding, the ftyp brand/version check, recursive descent
// through moov/udta/meta/ilst, and the iTunes-style ilst leaf layout.
package m4a

import (
	"context"
	"fmt"

	"github.com/MissingCore/tagscan/internal/binary"
	"github.com/MissingCore/tagscan/internal/stream"
	"github.com/MissingCore/tagscan/internal/types"
)

var ilstAtomKeys = map[string]types.TagKey{
	"\xa9alb": types.TagAlbum,
	"aART":    types.TagAlbumArtist,
	"\xa9ART": types.TagArtist,
	"\xa9nam": types.TagName,
	"trkn":    types.TagTrack,
	"\xa9day": types.TagYear,
	"covr":    types.TagArtwork,
}

// Extract walks the atom tree starting at the file's first byte, verifying
// the leading ftyp atom and then descending into moov/udta/meta/ilst for
// the tag-bearing leaf atoms.
func Extract(ctx context.Context, provider types.FileProvider, uri string, requested *types.RequestedTags) (*types.Result, error) {
	w := stream.New(provider, uri)

	major, minor, ftypSize, err := readFtyp(ctx, w, uri)
	if err != nil {
		return nil, err
	}

	c := types.NewCollector(requested)
	if err := walkTopLevel(ctx, w, uri, ftypSize, requested, c); err != nil {
		return nil, err
	}

	return &types.Result{
		FileType: fileType(major),
		Format:   fmt.Sprintf("%s (%d)", major, minor),
		Metadata: c.Finish(),
	}, nil
}

func fileType(majorBrand string) string {
	if majorBrand == "M4A " {
		return "m4a"
	}
	return "mp4"
}

// atomHeader reads an atom's size+type starting at offset, returning the
// full atom size (including its own header), the header's length (8 or
// 16 bytes), and the 4-character type.
func atomHeader(ctx context.Context, w *stream.Window, offset uint64) (size uint64, headerLen int, atomType string, err error) {
	if err = w.Load(ctx, offset, 8); err != nil {
		return 0, 0, "", err
	}
	size32 := binary.BytesToInt(w.Read(4), 8, true)
	atomType = string(w.Read(4))

	if size32 == 1 {
		if err = w.Load(ctx, offset+8, 8); err != nil {
			return 0, 0, "", err
		}
		size = binary.BytesToInt(w.Read(8), 8, true)
		return size, 16, atomType, nil
	}
	return size32, 8, atomType, nil
}

func readFtyp(ctx context.Context, w *stream.Window, uri string) (major string, minor uint32, size uint64, err error) {
	size, headerLen, atomType, err := atomHeader(ctx, w, 0)
	if err != nil {
		return "", 0, 0, err
	}
	if atomType != "ftyp" {
		return "", 0, 0, types.NewError(types.FormatInvalid, uri, `not an MP4/M4A file (missing "ftyp" atom)`)
	}

	payloadLen := size - uint64(headerLen)
	if err := w.Load(ctx, uint64(headerLen), payloadLen); err != nil {
		return "", 0, 0, err
	}
	if w.Remaining() < 8 {
		return "", 0, 0, types.NewError(types.FormatInvalid, uri, "truncated ftyp atom")
	}
	major = string(w.Read(4))
	minor = uint32(binary.BytesToInt(w.Read(4), 8, true))
	return major, minor, size, nil
}

// walkTopLevel iterates the file's top-level atoms looking for moov; every
// other top-level atom is skipped by size.
func walkTopLevel(ctx context.Context, w *stream.Window, uri string, offset uint64, requested *types.RequestedTags, c *types.Collector) error {
	for {
		size, headerLen, atomType, err := atomHeader(ctx, w, offset)
		if err != nil {
			return err
		}
		if size == 0 {
			return nil // extends to end of file: nothing more to find
		}

		if atomType == "moov" {
			end := offset + size
			return walkContainerLevel(ctx, w, offset+uint64(headerLen), end, false, requested, c)
		}

		offset += size
		if c.Satisfied() {
			return nil
		}
	}
}

// walkContainerLevel recurses through a udta/meta/ilst-style container,
// treating those three types as containers and every other child as a leaf
// to inspect (inside ilst) or skip (everywhere else).
func walkContainerLevel(ctx context.Context, w *stream.Window, offset, end uint64, insideIlst bool, requested *types.RequestedTags, c *types.Collector) error {
	for offset < end {
		size, headerLen, atomType, err := atomHeader(ctx, w, offset)
		if err != nil {
			return err
		}
		if size == 0 {
			return nil
		}

		childOffset := offset + uint64(headerLen)
		childLen := size - uint64(headerLen)

		switch {
		case insideIlst:
			if key, ok := ilstAtomKeys[atomType]; ok && requested.Has(key) {
				if err := parseIlstLeaf(ctx, w, atomType, key, childOffset, childLen, c); err != nil {
					return err
				}
			}
		case atomType == "udta" || atomType == "ilst":
			if err := walkContainerLevel(ctx, w, childOffset, childOffset+childLen, atomType == "ilst", requested, c); err != nil {
				return err
			}
		case atomType == "meta":
			// immediately after meta's header, 4 bytes of version/flags
			// precede its children.
			if err := walkContainerLevel(ctx, w, childOffset+4, childOffset+childLen, false, requested, c); err != nil {
				return err
			}
		}

		if c.Satisfied() {
			return nil
		}
		offset += size
	}
	return nil
}

// parseIlstLeaf decodes the iTunes-style "data" sub-atom nested inside an
// ilst leaf atom.
func parseIlstLeaf(ctx context.Context, w *stream.Window, atomType string, key types.TagKey, offset, length uint64, c *types.Collector) error {
	if err := w.Load(ctx, offset, length); err != nil {
		return err
	}
	if w.Remaining() < 16 {
		return nil
	}

	w.Skip(4) // size of the enclosed "data" atom, including its own header
	w.Skip(4) // "data" type string
	w.Skip(1) // version, always 0
	flag := binary.BytesToInt(w.Read(3), 8, true)
	w.Skip(4) // reserved

	payload := w.Read(w.Remaining())

	switch atomType {
	case "trkn":
		if len(payload) >= 4 {
			c.StoreInt(types.TagTrack, int64(binary.BytesToInt(payload[:4], 8, true)))
		}
	case "covr":
		mime := "image/jpeg"
		if flag == 14 {
			mime = "image/png"
		}
		c.StoreArtwork(mime, payload)
	default:
		c.StoreString(key, binary.DecodeString(payload, binary.EncodingUTF8))
	}
	return nil
}
