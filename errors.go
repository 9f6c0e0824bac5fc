package tagscan

import "github.com/MissingCore/tagscan/internal/types"

// ErrorKind classifies why an Extract call failed.
type ErrorKind = types.ErrorKind

// Error is the error type every Extract failure is returned as.
type Error = types.Error

// The error kinds Extract can fail with.
const (
	FileMissing        = types.FileMissing
	IoFailed           = types.IoFailed
	UnsupportedFile    = types.UnsupportedFile
	FormatInvalid      = types.FormatInvalid
	UnsupportedVersion = types.UnsupportedVersion
	Inconsistency      = types.Inconsistency
)
