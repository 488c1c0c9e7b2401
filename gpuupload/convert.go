package gpuupload

import "encoding/binary"

// Alpha8ToB4G4R4A4 expands coverage bytes to white B4G4R4A4 pixels.
func Alpha8ToB4G4R4A4(src []byte) []byte {
	dst := make([]byte, len(src)*2)
	for i, a := range src {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(a)<<8|0x0FFF)
	}
	return dst
}

// Alpha8ToB8G8R8A8 expands coverage bytes to white B8G8R8A8 pixels.
func Alpha8ToB8G8R8A8(src []byte) []byte {
	dst := make([]byte, len(src)*4)
	for i, a := range src {
		binary.LittleEndian.PutUint32(dst[i*4:], uint32(a)<<24|0x00FFFFFF)
	}
	return dst
}

// RGBA32ToB4G4R4A4 quantizes R8G8B8A8 pixels to B4G4R4A4.
func RGBA32ToB4G4R4A4(src []byte) []byte {
	n := len(src) / 4
	dst := make([]byte, n*2)
	for i := range n {
		p := src[i*4 : i*4+4]
		v := uint16(p[3]>>4)<<12 | uint16(p[0]>>4)<<8 | uint16(p[1]>>4)<<4 | uint16(p[2]>>4)
		binary.LittleEndian.PutUint16(dst[i*2:], v)
	}
	return dst
}
