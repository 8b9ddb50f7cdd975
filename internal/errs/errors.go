package errs

import "errors"

var (
	ErrRegion      = errors.New("monolith: region acquisition failed")
	ErrNoSpace     = errors.New("monolith: no free block large enough")
	ErrBadArgument = errors.New("monolith: bad argument")
	ErrClosed      = errors.New("monolith: closed")
	ErrCorrupt     = errors.New("monolith: corrupt block list")
	ErrNotFixed    = errors.New("monolith: type is not fixed-size")
)
