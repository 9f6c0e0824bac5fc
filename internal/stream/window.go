// Package stream implements the byte-oriented streaming reader every
// container parser is built on: a cursor over an in-memory window of bytes
// loaded on demand from a FileProvider, never the whole file at once.
package stream

import (
	"context"
	"fmt"

	"github.com/MissingCore/tagscan/internal/types"
)

// Window is a cursor over a byte range loaded from a FileProvider. A parser
// loads the region it's about to consume, reads/skips its way through it,
// and loads the next region when it needs more — the window discards
// whatever came before on every Load, so memory is bounded by the largest
// single region a parser loads at once.
type Window struct {
	provider types.FileProvider
	uri      string

	buf    []byte
	cursor int

	// filePosition is the logical file offset of the byte just past the
	// end of the current window.
	filePosition uint64
	finished     bool
}

// New binds a Window to a provider and URI. Nothing is read until Load or
// Probe is called.
func New(provider types.FileProvider, uri string) *Window {
	return &Window{provider: provider, uri: uri}
}

// Load replaces the window with exactly size bytes starting at offset,
// resets the cursor to 0, and clears the finished flag. A cancelled ctx
// fails with IoFailed before the provider is asked for anything.
func (w *Window) Load(ctx context.Context, offset, size uint64) error {
	if err := ctx.Err(); err != nil {
		return types.WrapError(types.IoFailed, w.uri, "context done", err)
	}
	data, err := w.provider.Read(ctx, w.uri, size, offset)
	if err != nil {
		return types.WrapError(types.IoFailed, w.uri,
			fmt.Sprintf("read %d bytes at offset %d", size, offset), err)
	}
	if uint64(len(data)) != size {
		return types.NewError(types.IoFailed, w.uri,
			fmt.Sprintf("short read: wanted %d bytes at offset %d, got %d", size, offset, len(data)))
	}
	w.buf = data
	w.cursor = 0
	w.filePosition = offset + size
	w.finished = false
	return nil
}

// Probe loads a small prefix of a region whose true size isn't known yet —
// typically enough to decode a length field — so the caller can compute the
// full size and issue a second Load. It is Load under another name; the
// distinction is in how the caller uses the result.
func (w *Window) Probe(ctx context.Context, offset, probeSize uint64) error {
	return w.Load(ctx, offset, probeSize)
}

// Read returns up to n bytes from the cursor, advancing it. If fewer than n
// bytes remain in the window, it returns what remains and sets Finished.
// The returned slice aliases the window's buffer and is invalidated by the
// next Load.
func (w *Window) Read(n int) []byte {
	remaining := len(w.buf) - w.cursor
	if n > remaining {
		n = remaining
		w.finished = true
	}
	start := w.cursor
	w.cursor += n
	return w.buf[start:w.cursor]
}

// ReadUntilNull returns bytes from the cursor up to and including the
// first 0x00 byte, advancing the cursor past it. If the window ends first,
// it returns everything remaining and sets Finished.
func (w *Window) ReadUntilNull() []byte {
	start := w.cursor
	for w.cursor < len(w.buf) {
		if w.buf[w.cursor] == 0x00 {
			w.cursor++
			return w.buf[start:w.cursor]
		}
		w.cursor++
	}
	w.finished = true
	return w.buf[start:w.cursor]
}

// Skip advances the cursor by min(n, remaining).
func (w *Window) Skip(n int) {
	remaining := len(w.buf) - w.cursor
	if n > remaining {
		n = remaining
		w.finished = true
	}
	w.cursor += n
}

// Unsynchronize scans buf[offset:offset+length] and removes every 0x00
// byte that immediately follows a 0xFF byte (the ID3v2.4 unsynchronisation
// reversal). Bytes outside that range are preserved verbatim. It returns
// the new length of the transformed region.
func (w *Window) Unsynchronize(offset, length int) int {
	if offset < 0 {
		offset = 0
	}
	if offset+length > len(w.buf) {
		length = len(w.buf) - offset
	}
	region := w.buf[offset : offset+length]

	transformed := make([]byte, 0, length)
	for i := 0; i < len(region); i++ {
		transformed = append(transformed, region[i])
		if region[i] == 0xFF && i+1 < len(region) && region[i+1] == 0x00 {
			i++
		}
	}

	out := make([]byte, 0, offset+len(transformed)+(len(w.buf)-offset-length))
	out = append(out, w.buf[:offset]...)
	out = append(out, transformed...)
	out = append(out, w.buf[offset+length:]...)
	w.buf = out

	return len(transformed)
}

// Len returns the size of the current window.
func (w *Window) Len() int { return len(w.buf) }

// Cursor returns the current cursor position within the window.
func (w *Window) Cursor() int { return w.cursor }

// Remaining returns the number of unread bytes left in the window.
func (w *Window) Remaining() int { return len(w.buf) - w.cursor }

// Finished reports whether the most recent Read, ReadUntilNull, or Skip
// hit the end of the window before satisfying its request.
func (w *Window) Finished() bool { return w.finished }

// FilePosition returns the logical file offset of the byte just past the
// end of the loaded window.
func (w *Window) FilePosition() uint64 { return w.filePosition }
