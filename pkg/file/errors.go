package file

import "errors"

var (
	ErrInvalidKey         = errors.New("file: invalid object key")
	ErrEmptyFile          = errors.New("file: empty file")
	ErrFileTooLarge       = errors.New("file: size exceeds maximum allowed size")
	ErrUnsupportedType    = errors.New("file: unsupported image type")
	ErrFileNotFound       = errors.New("file: not found")
	ErrBucketNotFound     = errors.New("file: bucket not found")
	ErrAccessDenied       = errors.New("file: access denied")
	ErrServiceUnavailable = errors.New("file: storage temporarily unavailable")
	ErrOperationTimeout   = errors.New("file: operation timed out")
	ErrOperationCanceled  = errors.New("file: operation canceled")
	ErrInvalidConfig      = errors.New("file: invalid configuration")
	ErrFailedToLoadConfig = errors.New("file: failed to load AWS config")
)
