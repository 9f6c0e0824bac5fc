// Package dispatch picks a container parser by filename extension and, for
// MP3, by probing the head and tail of the file to locate whichever of
// ID3v1, ID3v2 (at the front), or ID3v2.4 (at the tail, or before an ID3v1
// trailer) is actually present.
package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/MissingCore/tagscan/internal/binary"
	"github.com/MissingCore/tagscan/internal/flac"
	"github.com/MissingCore/tagscan/internal/m4a"
	"github.com/MissingCore/tagscan/internal/mp3"
	"github.com/MissingCore/tagscan/internal/stream"
	"github.com/MissingCore/tagscan/internal/types"
)

// containerExtract is the uniform signature flac and m4a already share.
type containerExtract func(ctx context.Context, provider types.FileProvider, uri string, requested *types.RequestedTags) (*types.Result, error)

var byExtension = map[string]containerExtract{
	"flac": flac.Extract,
	"m4a":  m4a.Extract,
	"mp4":  m4a.Extract,
}

// mp3TailProbeSize is the size of the tail window inspected to distinguish
// a bare ID3v1 trailer from an ID3v2.4 tag with footer, with or without a
// trailing ID3v1 trailer of its own.
const mp3TailProbeSize = 138

// Extract stats uri, picks a parser by its extension (probing MP3 files
// further to find the right tag), and runs it.
func Extract(ctx context.Context, provider types.FileProvider, uri string, requested *types.RequestedTags) (*types.Result, error) {
	info, err := provider.Stat(ctx, uri)
	if err != nil {
		return nil, types.WrapError(types.IoFailed, uri, "stat", err)
	}
	if !info.Exists {
		return nil, types.NewError(types.FileMissing, uri, "file does not exist")
	}

	ext := extension(uri)
	if ext == "mp3" {
		return extractMP3(ctx, provider, uri, info.Size, requested)
	}

	parse, ok := byExtension[ext]
	if !ok {
		return nil, types.NewError(types.UnsupportedFile, uri, fmt.Sprintf("unsupported file extension %q", ext))
	}
	return parse(ctx, provider, uri, requested)
}

func extension(uri string) string {
	i := strings.LastIndexByte(uri, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(uri[i+1:])
}

// extractMP3 probes for where an ID3 tag lives: a leading "ID3" marker
// means an ID3v2 tag at offset 0; otherwise the last 138 bytes are
// inspected for an ID3v2.4 footer, either at the very end of the file or
// immediately before a 128-byte ID3v1 trailer. Anything else falls back to
// a bare ID3v1 trailer.
func extractMP3(ctx context.Context, provider types.FileProvider, uri string, size uint64, requested *types.RequestedTags) (*types.Result, error) {
	w := stream.New(provider, uri)

	if size >= 3 {
		if err := w.Load(ctx, 0, 3); err != nil {
			return nil, err
		}
		if string(w.Read(3)) == "ID3" {
			return mp3.ExtractID3v2(ctx, provider, uri, 0, requested)
		}
	}

	if size >= mp3TailProbeSize {
		if err := w.Load(ctx, size-mp3TailProbeSize, mp3TailProbeSize); err != nil {
			return nil, err
		}
		tail := w.Read(mp3TailProbeSize)

		if string(tail[128:131]) == "3DI" {
			payload := uint64(binary.Synchsafe(tail[134:138]))
			headerOffset := size - payload - 20
			return mp3.ExtractID3v2(ctx, provider, uri, headerOffset, requested)
		}
		if string(tail[0:3]) == "3DI" {
			payload := uint64(binary.Synchsafe(tail[6:10]))
			headerOffset := (size - 128) - payload - 20
			return mp3.ExtractID3v2(ctx, provider, uri, headerOffset, requested)
		}
	}

	return mp3.ExtractID3v1(ctx, provider, uri, size, requested)
}
