package tagscan

import (
	"context"

	"github.com/MissingCore/tagscan/internal/dispatch"
)

// Extract reads uri through provider and returns the subset of tags named
// by requested. Every requested key is present in the result (possibly
// with a nil value); no unrequested key appears.
func Extract(ctx context.Context, provider FileProvider, uri string, requested *RequestedTags) (*Result, error) {
	return dispatch.Extract(ctx, provider, uri, requested)
}

// ExtractFile is Extract against the local filesystem via OSFileProvider,
// the common case.
func ExtractFile(ctx context.Context, path string, requested *RequestedTags) (*Result, error) {
	return Extract(ctx, OSFileProvider{}, path, requested)
}
