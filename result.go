package tagscan

import "github.com/MissingCore/tagscan/internal/types"

// Result is the (fileType, format, metadata) record Extract returns.
type Result = types.Result
