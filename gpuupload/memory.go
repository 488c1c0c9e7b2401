package gpuupload

import (
	"slices"
	"sync"
)

// Memory is an Uploader that keeps textures in process memory. It backs
// headless builds and tests.
type Memory struct {
	mu       sync.Mutex
	formats  []PixelFormat
	nextID   uint64
	textures []*MemoryTexture
}

var _ Uploader = (*Memory)(nil)

// NewMemory returns an uploader supporting formats. Without arguments it
// supports every format.
func NewMemory(formats ...PixelFormat) *Memory {
	if len(formats) == 0 {
		formats = []PixelFormat{FormatR8G8B8A8, FormatB8G8R8A8, FormatB4G4R4A4}
	}
	return &Memory{formats: slices.Clone(formats)}
}

// SupportsFormat implements Uploader.
func (m *Memory) SupportsFormat(f PixelFormat) bool {
	return slices.Contains(m.formats, f)
}

// Upload implements Uploader. Rows are repacked without stride padding.
func (m *Memory) Upload(pixels []byte, stride, width, height int, f PixelFormat) (Texture, error) {
	if !m.SupportsFormat(f) {
		return nil, ErrUnsupportedFormat
	}
	if err := checkUpload(pixels, stride, width, height, f); err != nil {
		return nil, err
	}
	row := width * f.BytesPerPixel()
	data := make([]byte, row*height)
	for y := range height {
		copy(data[y*row:(y+1)*row], pixels[y*stride:])
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t := &MemoryTexture{id: m.nextID, width: width, height: height, format: f, Pixels: data}
	m.textures = append(m.textures, t)
	return t, nil
}

// Textures returns every texture uploaded so far, closed ones included.
func (m *Memory) Textures() []*MemoryTexture {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.textures)
}

// Live returns the number of textures not yet closed.
func (m *Memory) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.textures {
		if !t.Closed() {
			n++
		}
	}
	return n
}

// MemoryTexture is a texture created by Memory.
type MemoryTexture struct {
	id            uint64
	width, height int
	format        PixelFormat

	// Pixels holds tightly packed rows.
	Pixels []byte

	mu     sync.Mutex
	closed bool
}

func (t *MemoryTexture) ID() uint64                { return t.id }
func (t *MemoryTexture) Size() (width, height int) { return t.width, t.height }
func (t *MemoryTexture) Format() PixelFormat       { return t.format }

// Close marks the texture released. It is idempotent.
func (t *MemoryTexture) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// Closed reports whether Close was called.
func (t *MemoryTexture) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
