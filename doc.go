// Package tagscan reads a fixed set of metadata tags — album, album artist,
// artist, track title, track number, release year, and embedded cover
// artwork — from FLAC, MP3 (ID3v1/1.1, ID3v2.2/2.3/2.4), and MP4/M4A files.
//
// # Quick start
//
//	res, err := tagscan.ExtractFile(context.Background(), "song.mp3",
//		tagscan.NewRequestedTags(tagscan.TagAlbum, tagscan.TagArtist, tagscan.TagName))
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(res.Metadata[tagscan.TagArtist])
//
// # Design
//
// tagscan does not write tags, decode audio, or parse MPEG/FLAC frame data —
// it reads exactly the tags named above and nothing else. A single call
// reads only the bytes it needs: the ID3v1 trailer is 128 bytes, an ID3v2
// tag is read in full up front, and FLAC/MP4 load one metadata block or
// atom at a time. Parsing stops as soon as every requested tag has been
// found (early exit), so a request for just `album` never decodes frames
// it doesn't need.
//
// The file provider is injected rather than opened directly by the parsers
// (see FileProvider), so callers can substitute anything that can answer
// positioned reads — the local filesystem via OSFileProvider, a network
// store, or an in-memory fixture in tests.
package tagscan
