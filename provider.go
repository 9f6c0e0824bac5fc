package tagscan

import (
	"context"
	"io"
	"os"

	"github.com/MissingCore/tagscan/internal/types"
)

// FileInfo reports the existence and size of a file probed through a
// FileProvider.
type FileInfo = types.FileInfo

// FileProvider abstracts file access so callers can extract tags from
// sources other than the local filesystem (archives, network storage,
// in-memory buffers in tests).
type FileProvider = types.FileProvider

// OSFileProvider is a FileProvider backed by the local filesystem. URIs are
// plain filesystem paths.
type OSFileProvider struct{}

// Stat reports whether path exists and, if so, its size.
func (OSFileProvider) Stat(_ context.Context, path string) (FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileInfo{Exists: false}, nil
		}
		return FileInfo{}, err
	}
	return FileInfo{Exists: true, Size: uint64(info.Size())}, nil
}

// Read returns exactly length bytes from path starting at offset, or fewer
// if the file ends first.
func (OSFileProvider) Read(_ context.Context, path string, length, offset uint64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, length)
	n, err := f.ReadAt(buf, int64(offset))
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}
