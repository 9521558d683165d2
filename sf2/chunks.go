// chunks.go - RIFF chunk tree walking for .sf2 files

package sf2

import (
	"encoding/binary"
	"fmt"
	"io"
)

// chunk is one node of the RIFF tree: a 4-byte tag, the byte range of its
// payload within the file, and (for RIFF/LIST containers) the tag of the
// form/list type carried in the first four payload bytes.
type chunk struct {
	id      [4]byte
	form    [4]byte
	offset  int64
	size    int64
}

func (c chunk) tag() string  { return string(c.id[:]) }
func (c chunk) name() string { return string(c.form[:]) }

// isContainer reports whether this chunk's payload is itself a sequence of
// sub-chunks (true for RIFF and LIST) rather than raw data.
func (c chunk) isContainer() bool {
	return c.tag() == "RIFF" || c.tag() == "LIST"
}

// reader returns a reader limited to this chunk's payload, seeked to its
// start. For a container chunk, the returned reader starts after the
// form/list tag, which is already held in c.form.
func (c chunk) reader(r io.ReaderAt) *io.SectionReader {
	start := c.offset
	if c.isContainer() {
		start += 4
	}
	length := c.size
	if c.isContainer() {
		length -= 4
	}
	return io.NewSectionReader(r, start, length)
}

// readChunkHeader reads one RIFF chunk header (tag + little-endian uint32
// length, plus the form tag when the chunk is a container) starting at
// offset. It returns the decoded chunk and the offset immediately following
// its payload (rounded up to an even boundary per the RIFF padding rule).
func readChunkHeader(r io.ReaderAt, offset int64) (chunk, int64, error) {
	var head [8]byte
	if _, err := r.ReadAt(head[:], offset); err != nil {
		return chunk{}, 0, fmt.Errorf("sf2: reading chunk header at %d: %w", offset, err)
	}
	var c chunk
	copy(c.id[:], head[0:4])
	c.size = int64(binary.LittleEndian.Uint32(head[4:8]))
	c.offset = offset + 8

	if c.isContainer() {
		var form [4]byte
		if _, err := r.ReadAt(form[:], c.offset); err != nil {
			return chunk{}, 0, fmt.Errorf("sf2: reading form tag at %d: %w", c.offset, err)
		}
		c.form = form
	}

	next := c.offset + c.size
	if next%2 != 0 {
		next++ // RIFF chunks are padded to even length
	}
	return c, next, nil
}

// children walks the sub-chunks of a container chunk c, calling fn once per
// child in file order. Walking stops at the first error fn returns, or once
// the container's declared length is exhausted.
func children(r io.ReaderAt, c chunk, fn func(chunk) error) error {
	pos := c.offset
	if c.isContainer() {
		pos += 4
	}
	end := c.offset + c.size

	for pos < end {
		child, next, err := readChunkHeader(r, pos)
		if err != nil {
			return err
		}
		if child.offset+child.size > end {
			return fmt.Errorf("%w: chunk %q overruns parent", ErrTruncated, child.tag())
		}
		if err := fn(child); err != nil {
			return err
		}
		pos = next
	}
	return nil
}
