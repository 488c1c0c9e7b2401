package gamefont

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// TexFormat is the pixel format code of a TEX file.
type TexFormat uint32

// Supported TEX formats.
const (
	TexB4G4R4A4 TexFormat = 0x1440
	TexB8G8R8A8 TexFormat = 0x1450
)

const texHeaderSize = 80

// BytesPerPixel returns the pixel size of f, or 0 for unsupported formats.
func (f TexFormat) BytesPerPixel() int {
	switch f {
	case TexB4G4R4A4:
		return 2
	case TexB8G8R8A8:
		return 4
	}
	return 0
}

func (f TexFormat) String() string {
	switch f {
	case TexB4G4R4A4:
		return "B4G4R4A4"
	case TexB8G8R8A8:
		return "B8G8R8A8"
	}
	return fmt.Sprintf("TexFormat(%#x)", uint32(f))
}

// TexFile is the first mip level of a decoded TEX file.
type TexFile struct {
	Format TexFormat
	Width  int
	Height int

	// Data holds Width*Height pixels in Format, rows packed.
	Data []byte
}

// ParseTex decodes the header and first surface of a TEX file.
func ParseTex(data []byte) (*TexFile, error) {
	if len(data) < texHeaderSize {
		return nil, errors.Wrapf(ErrDataTooShort, "tex header: %d bytes", len(data))
	}
	le := binary.LittleEndian
	t := &TexFile{
		Format: TexFormat(le.Uint32(data[4:])),
		Width:  int(le.Uint16(data[8:])),
		Height: int(le.Uint16(data[10:])),
	}
	bpp := t.Format.BytesPerPixel()
	if bpp == 0 {
		return nil, errors.Wrapf(ErrUnsupportedTexFormat, "format %s", t.Format)
	}
	off := int(le.Uint32(data[28:]))
	if off == 0 {
		off = texHeaderSize
	}
	n := t.Width * t.Height * bpp
	if off > len(data) || n > len(data)-off {
		return nil, errors.Wrapf(ErrDataTooShort, "tex surface %dx%d %s at %#x, file is %#x bytes",
			t.Width, t.Height, t.Format, off, len(data))
	}
	t.Data = data[off : off+n]
	return t, nil
}

// BGRA8 returns the pixels as B8G8R8A8, expanding 4-bit channels.
func (t *TexFile) BGRA8() []byte {
	if t.Format == TexB8G8R8A8 {
		return t.Data
	}
	out := make([]byte, t.Width*t.Height*4)
	for i := range t.Width * t.Height {
		lo, hi := t.Data[2*i], t.Data[2*i+1]
		out[4*i+0] = expand4(lo & 0xF)
		out[4*i+1] = expand4(lo >> 4)
		out[4*i+2] = expand4(hi & 0xF)
		out[4*i+3] = expand4(hi >> 4)
	}
	return out
}

func expand4(v byte) byte { return v | v<<4 }

// ChannelFormat is the pixel layout produced by ExtractChannel.
type ChannelFormat int

// Channel output formats. Both store white with the channel as alpha.
const (
	ChannelB4G4R4A4 ChannelFormat = iota
	ChannelB8G8R8A8
)

// ExtractChannel copies one channel (a byte offset in B8G8R8A8 order, see
// ChannelOrder) of t into a white texture whose alpha is the channel value.
func ExtractChannel(t *TexFile, channel int, out ChannelFormat) ([]byte, error) {
	if channel < 0 || channel > 3 {
		return nil, errors.Errorf("gamefont: channel %d out of range", channel)
	}
	n := t.Width * t.Height
	switch t.Format {
	case TexB8G8R8A8:
		return extract(n, out, func(i int) byte { return t.Data[4*i+channel] }, false), nil
	case TexB4G4R4A4:
		shift := 4 * uint(channel&1)
		return extract(n, out, func(i int) byte { return (t.Data[2*i+channel/2] >> shift) & 0xF }, true), nil
	}
	return nil, errors.Wrapf(ErrUnsupportedTexFormat, "format %s", t.Format)
}

func extract(n int, out ChannelFormat, at func(int) byte, nibble bool) []byte {
	le := binary.LittleEndian
	if out == ChannelB4G4R4A4 {
		dst := make([]byte, 2*n)
		for i := range n {
			v := uint16(at(i))
			if nibble {
				v <<= 12
			} else {
				v <<= 8
			}
			le.PutUint16(dst[2*i:], v|0x0FFF)
		}
		return dst
	}
	dst := make([]byte, 4*n)
	for i := range n {
		v := at(i)
		if nibble {
			v = expand4(v)
		}
		le.PutUint32(dst[4*i:], uint32(v)<<24|0x00FFFFFF)
	}
	return dst
}
