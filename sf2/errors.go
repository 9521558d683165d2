// errors.go - structural load failures for the sf2 package

package sf2

import "errors"

// ErrNotRIFF is returned when the input does not begin with a RIFF/sfbk
// header.
var ErrNotRIFF = errors.New("sf2: not a RIFF sfbk file")

// ErrMissingChunk is returned when a mandatory chunk (INFO, sdta, pdta, or
// one of the nine structural sub-chunks) is absent.
var ErrMissingChunk = errors.New("sf2: missing mandatory chunk")

// ErrTruncated is returned when a chunk's declared length runs past the end
// of the input, or a record array is not an exact multiple of its record
// size.
var ErrTruncated = errors.New("sf2: truncated or malformed chunk")
