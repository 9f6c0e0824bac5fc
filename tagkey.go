package tagscan

import "github.com/MissingCore/tagscan/internal/types"

// TagKey names one of the tags Extract can populate.
type TagKey = types.TagKey

// Value is a tag's value: a string, a non-negative int64, or nil.
type Value = types.Value

// RequestedTags is the ordered, duplicate-free set of TagKey an Extract
// call asks for.
type RequestedTags = types.RequestedTags

// The seven tag keys Extract can populate.
const (
	TagAlbum       = types.TagAlbum
	TagAlbumArtist = types.TagAlbumArtist
	TagArtist      = types.TagArtist
	TagArtwork     = types.TagArtwork
	TagName        = types.TagName
	TagTrack       = types.TagTrack
	TagYear        = types.TagYear
)

// NewRequestedTags builds a RequestedTags from keys, preserving first-seen
// order and dropping duplicates and unknown keys.
func NewRequestedTags(keys ...TagKey) *RequestedTags {
	return types.NewRequestedTags(keys...)
}
