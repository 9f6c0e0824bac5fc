// Package types holds the data model shared by every parser: the tag
// enumeration, the requested-tag set, the result record, the file provider
// contract, and the error taxonomy. It has no dependency on any parser so
// mp3, flac, and m4a can all depend on it without cycles.
package types

import "context"

// FileInfo is the result of a Stat call against a FileProvider.
type FileInfo struct {
	Exists bool
	Size   uint64
}

// FileProvider is the external collaborator that owns the actual file
// bytes. The core never opens a file itself; it is handed a provider and a
// URI and asks for exactly the bytes it needs, when it needs them.
//
// Read must return exactly length bytes unless the file ends first, in
// which case it returns the remaining bytes with no error.
type FileProvider interface {
	Stat(ctx context.Context, uri string) (FileInfo, error)
	Read(ctx context.Context, uri string, length, offset uint64) ([]byte, error)
}
