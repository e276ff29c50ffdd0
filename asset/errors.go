package asset

import "errors"

var (
	ErrUnknownFormat       = errors.New("unknown format")
	ErrInvalidFormat       = errors.New("invalid format")
	ErrNotAiffFile         = errors.New("not an aiff file")
	ErrUnsupportedBitDepth = errors.New("unsupported bit depth")
)
