package mp3

import (
	"bytes"
	"context"
	"fmt"

	"github.com/MissingCore/tagscan/internal/binary"
	"github.com/MissingCore/tagscan/internal/stream"
	"github.com/MissingCore/tagscan/internal/types"
)

const id3v2HeaderSize = 10

// frameFlagUnsync is the per-frame unsynchronisation bit, the second bit
// (from the LSB) of the second ID3v2.4 frame-flags byte.
const frameFlagUnsync = 0x02

// frameKeysV22 maps ID3v2.2's 3-character frame identifiers to tag keys.
var frameKeysV22 = map[string]types.TagKey{
	"TAL": types.TagAlbum,
	"TP1": types.TagArtist,
	"TT2": types.TagName,
	"TRK": types.TagTrack,
	"TYE": types.TagYear,
	"PIC": types.TagArtwork,
}

// frameKeysV34 maps ID3v2.3/2.4's 4-character frame identifiers to tag keys.
var frameKeysV34 = map[string]types.TagKey{
	"TALB": types.TagAlbum,
	"TPE1": types.TagArtist,
	"TIT2": types.TagName,
	"TRCK": types.TagTrack,
	"TYER": types.TagYear,
	"TDRC": types.TagYear,
	"APIC": types.TagArtwork,
}

func frameKey(major byte, frameID string) (types.TagKey, bool) {
	if major == 2 {
		key, ok := frameKeysV22[frameID]
		return key, ok
	}
	key, ok := frameKeysV34[frameID]
	return key, ok
}

// ExtractID3v2 parses an ID3v2.2/2.3/2.4 tag whose 10-byte header begins at
// headerOffset in the file, walking frames until either the requested set
// is satisfied or padding is reached.
func ExtractID3v2(ctx context.Context, provider types.FileProvider, uri string, headerOffset uint64, requested *types.RequestedTags) (*types.Result, error) {
	w := stream.New(provider, uri)
	if err := w.Load(ctx, headerOffset, id3v2HeaderSize); err != nil {
		return nil, err
	}

	marker := w.Read(3)
	if string(marker) != "ID3" {
		return nil, types.NewError(types.FormatInvalid, uri, `not an ID3v2 tag (missing "ID3" marker)`)
	}

	major := w.Read(1)[0]
	w.Read(1) // revision, ignored
	flags := w.Read(1)[0]
	tagSize := uint64(binary.Synchsafe(w.Read(4)))

	if major < 2 || major > 4 {
		return nil, types.NewError(types.UnsupportedVersion, uri, fmt.Sprintf("ID3v2 version not supported: 2.%d", major))
	}
	if major == 2 && flags&0x40 != 0 {
		return nil, types.NewError(types.UnsupportedVersion, uri, "ID3v2.2 compression is not supported")
	}

	tagUnsync := flags&0x80 != 0
	hasExtendedHeader := major != 2 && flags&0x40 != 0

	if err := w.Load(ctx, headerOffset+id3v2HeaderSize, tagSize); err != nil {
		return nil, err
	}

	if tagUnsync {
		w.Unsynchronize(0, int(tagSize))
	}

	if hasExtendedHeader {
		if w.Remaining() < 4 {
			return nil, types.NewError(types.FormatInvalid, uri, "truncated ID3v2 extended header")
		}
		extHeaderSize := w.Read(4)
		if major == 4 {
			extLen := int(binary.Synchsafe(extHeaderSize))
			if extLen < 4 {
				extLen = 4
			}
			w.Skip(extLen - 4)
		} else {
			extLen := int(binary.BytesToInt(extHeaderSize, 8, true))
			w.Skip(extLen)
		}
	}

	frameHeaderSize := 10
	if major == 2 {
		frameHeaderSize = 6
	}

	c := types.NewCollector(requested)

	for w.Remaining() >= frameHeaderSize {
		header := w.Read(frameHeaderSize)
		if header[0] == 0 {
			break // a run of zero bytes where an identifier is expected is padding
		}

		var frameID string
		var frameSize int
		var frameFlags uint16
		if major == 2 {
			frameID = string(header[0:3])
			frameSize = int(binary.BytesToInt(header[3:6], 8, true))
		} else {
			frameID = string(header[0:4])
			if major == 4 {
				frameSize = int(binary.Synchsafe(header[4:8]))
			} else {
				frameSize = int(binary.BytesToInt(header[4:8], 8, true))
			}
			frameFlags = uint16(header[8])<<8 | uint16(header[9])
		}

		if frameSize < 0 || frameSize > w.Remaining() {
			break // truncated frame — nothing trustworthy left in the tag
		}

		frameUnsync := major == 4 && frameFlags&frameFlagUnsync != 0
		if tagUnsync && major == 4 && !frameUnsync {
			return nil, types.NewError(types.Inconsistency, uri,
				fmt.Sprintf("frame %s lacks the per-frame unsynchronisation flag though the tag-level flag is set", frameID))
		}

		key, interesting := frameKey(major, frameID)
		if !interesting || !requested.Has(key) {
			w.Skip(frameSize)
			continue
		}

		if frameUnsync && !tagUnsync {
			frameSize = w.Unsynchronize(w.Cursor(), frameSize)
		}
		data := w.Read(frameSize)

		switch key {
		case types.TagArtwork:
			parsePictureFrame(major, data, c)
		case types.TagTrack:
			parseTrackFrame(data, c)
		case types.TagYear:
			parseYearFrame(data, c)
		default:
			parseTextFrame(data, key, c)
		}

		if c.Satisfied() {
			break
		}
	}

	return &types.Result{
		FileType: "mp3",
		Format:   fmt.Sprintf("ID3v2.%d", major),
		Metadata: c.Finish(),
	}, nil
}

func parseTextFrame(data []byte, key types.TagKey, c *types.Collector) {
	if len(data) < 1 {
		return
	}
	enc := binary.TextEncoding(data[0])
	c.StoreString(key, binary.DecodeString(data[1:], enc))
}

func parseTrackFrame(data []byte, c *types.Collector) {
	if len(data) < 1 {
		return
	}
	enc := binary.TextEncoding(data[0])
	c.StoreTrack(binary.DecodeString(data[1:], enc))
}

func parseYearFrame(data []byte, c *types.Collector) {
	if len(data) < 1 {
		return
	}
	enc := binary.TextEncoding(data[0])
	c.StoreYear(binary.DecodeString(data[1:], enc))
}

// parsePictureFrame decodes an APIC/PIC payload and stores artwork only for
// picture type 0 ("Other") or 3 ("Cover (front)"); every other type is
// dropped without emitting artwork.
func parsePictureFrame(major byte, data []byte, c *types.Collector) {
	if len(data) < 1 {
		return
	}
	descEnc := binary.TextEncoding(data[0])
	rest := data[1:]

	var mime string
	if major == 2 {
		if len(rest) < 3 {
			return
		}
		switch string(rest[:3]) {
		case "PNG":
			mime = "image/png"
		case "JPG":
			mime = "image/jpeg"
		default:
			return
		}
		rest = rest[3:]
	} else {
		idx := bytes.IndexByte(rest, 0x00)
		if idx < 0 {
			return
		}
		mime = string(rest[:idx])
		rest = rest[idx+1:]
	}

	if len(rest) < 1 {
		return
	}
	pictureType := rest[0]
	rest = rest[1:]
	if pictureType != 0 && pictureType != 3 {
		return
	}

	descEnd := binary.IndexNUL(rest, descEnc)
	if descEnd < 0 {
		return
	}
	rest = rest[descEnd+binary.TerminatorSize(descEnc):]

	c.StoreArtwork(mime, rest)
}
