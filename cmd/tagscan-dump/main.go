// Command tagscan-dump is a manual inspection tool: it runs Extract against
// a file with every tag key requested and prints the result.
//
// Usage:
//
//	go run ./cmd/tagscan-dump <audio_file>
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MissingCore/tagscan"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: tagscan-dump <file.mp3|file.flac|file.m4a>")
		os.Exit(1)
	}

	path := os.Args[1]
	requested := tagscan.NewRequestedTags(
		tagscan.TagAlbum,
		tagscan.TagAlbumArtist,
		tagscan.TagArtist,
		tagscan.TagArtwork,
		tagscan.TagName,
		tagscan.TagTrack,
		tagscan.TagYear,
	)

	res, err := tagscan.ExtractFile(context.Background(), path, requested)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("fileType: %s\n", res.FileType)
	fmt.Printf("format:   %s\n", res.Format)
	fmt.Println("metadata:")
	for _, key := range requested.Keys() {
		value := res.Metadata[key]
		if key == tagscan.TagArtwork {
			if s, ok := value.(string); ok {
				fmt.Printf("  %-12s <%d bytes of data URI>\n", key, len(s))
				continue
			}
		}
		fmt.Printf("  %-12s %v\n", key, value)
	}
}
