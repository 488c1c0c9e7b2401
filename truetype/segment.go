package truetype

import "fmt"

// segment is a read-only view into font data. Every accessor checks bounds.
type segment []byte

func (s segment) outOfBounds(off, n int) error {
	return fmt.Errorf("%w: [%d:%d] of %d bytes", ErrTableBounds, off, off+n, len(s))
}

// view returns the n bytes starting at off.
func (s segment) view(off, n int) (segment, error) {
	if off < 0 || n < 0 || off > len(s) || n > len(s)-off {
		return nil, s.outOfBounds(off, n)
	}
	return s[off : off+n], nil
}

// from returns everything starting at off.
func (s segment) from(off int) (segment, error) {
	if off < 0 || off > len(s) {
		return nil, s.outOfBounds(off, 0)
	}
	return s[off:], nil
}

func (s segment) u8(off int) (uint8, error) {
	if off < 0 || off >= len(s) {
		return 0, s.outOfBounds(off, 1)
	}
	return s[off], nil
}

func (s segment) u16(off int) (uint16, error) {
	if off < 0 || off > len(s)-2 {
		return 0, s.outOfBounds(off, 2)
	}
	return uint16(s[off])<<8 | uint16(s[off+1]), nil
}

func (s segment) i16(off int) (int16, error) {
	v, err := s.u16(off)
	return int16(v), err
}

func (s segment) u32(off int) (uint32, error) {
	if off < 0 || off > len(s)-4 {
		return 0, s.outOfBounds(off, 4)
	}
	return uint32(s[off])<<24 | uint32(s[off+1])<<16 | uint32(s[off+2])<<8 | uint32(s[off+3]), nil
}

// reader wraps a segment with a sticky error so that a run of fixed-layout
// reads can be checked once at the end.
type reader struct {
	seg segment
	err error
}

func (r *reader) u8(off int) uint8 {
	if r.err != nil {
		return 0
	}
	v, err := r.seg.u8(off)
	r.err = err
	return v
}

func (r *reader) u16(off int) uint16 {
	if r.err != nil {
		return 0
	}
	v, err := r.seg.u16(off)
	r.err = err
	return v
}

func (r *reader) i16(off int) int16 {
	return int16(r.u16(off))
}

func (r *reader) u32(off int) uint32 {
	if r.err != nil {
		return 0
	}
	v, err := r.seg.u32(off)
	r.err = err
	return v
}

// need fails the reader unless n bytes starting at off are available.
func (r *reader) need(off, n int) bool {
	if r.err != nil {
		return false
	}
	_, r.err = r.seg.view(off, n)
	return r.err == nil
}
