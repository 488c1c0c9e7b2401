package gpuupload

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/google/go-cmp/cmp"
)

func TestUploadAlpha8FormatChoice(t *testing.T) {
	tests := []struct {
		name    string
		formats []PixelFormat
		want    PixelFormat
		wantErr error
	}{
		{"prefers 16-bit", []PixelFormat{FormatB8G8R8A8, FormatB4G4R4A4}, FormatB4G4R4A4, nil},
		{"32-bit fallback", []PixelFormat{FormatB8G8R8A8}, FormatB8G8R8A8, nil},
		{"rgba only", []PixelFormat{FormatR8G8B8A8}, 0, ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemory(tt.formats...)
			tex, err := UploadAlpha8(m, []byte{1, 2, 3, 4, 5, 6}, 3, 2)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("UploadAlpha8() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("UploadAlpha8() error = %v", err)
			}
			if tex.Format() != tt.want {
				t.Errorf("Format() = %v, want %v", tex.Format(), tt.want)
			}
			if w, h := tex.Size(); w != 3 || h != 2 {
				t.Errorf("Size() = %d, %d, want 3, 2", w, h)
			}
		})
	}
}

func TestUploadRGBA32(t *testing.T) {
	pixels := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	m := NewMemory(FormatR8G8B8A8)
	tex, err := UploadRGBA32(m, pixels, 2, 1)
	if err != nil {
		t.Fatalf("UploadRGBA32() error = %v", err)
	}
	if diff := cmp.Diff(pixels, tex.(*MemoryTexture).Pixels); diff != "" {
		t.Errorf("pixels mismatch (-want +got):\n%s", diff)
	}

	if _, err := UploadRGBA32(m, pixels, 3, 1); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("UploadRGBA32(short) error = %v, want ErrInvalidSize", err)
	}
}

func TestMemoryUpload(t *testing.T) {
	m := NewMemory()
	// 2x2 pixels with a 3-byte row stride
	src := []byte{
		1, 2, 0xEE,
		3, 4, 0xEE,
	}
	var ids []uint64
	for range 2 {
		tex, err := m.Upload(Alpha8ToB4G4R4A4(src), 6, 2, 2, FormatB4G4R4A4)
		if err != nil {
			t.Fatalf("Upload() error = %v", err)
		}
		ids = append(ids, tex.ID())
	}
	if ids[0] == 0 || ids[0] == ids[1] {
		t.Errorf("IDs = %v, want distinct non-zero", ids)
	}
	got := m.Textures()[0].Pixels
	want := Alpha8ToB4G4R4A4([]byte{1, 2, 3, 4})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("repacked pixels mismatch (-want +got):\n%s", diff)
	}

	if m.Live() != 2 {
		t.Errorf("Live() = %d, want 2", m.Live())
	}
	_ = m.Textures()[0].Close()
	_ = m.Textures()[0].Close()
	if m.Live() != 1 {
		t.Errorf("Live() after Close = %d, want 1", m.Live())
	}
}

func TestMemoryUploadErrors(t *testing.T) {
	m := NewMemory(FormatB8G8R8A8)
	tests := []struct {
		name   string
		pixels []byte
		stride int
		w, h   int
		f      PixelFormat
		want   error
	}{
		{"format", make([]byte, 16), 8, 2, 2, FormatB4G4R4A4, ErrUnsupportedFormat},
		{"zero width", nil, 0, 0, 2, FormatB8G8R8A8, ErrInvalidSize},
		{"short stride", make([]byte, 16), 4, 2, 2, FormatB8G8R8A8, ErrInvalidSize},
		{"short data", make([]byte, 15), 8, 2, 2, FormatB8G8R8A8, ErrInvalidSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Upload(tt.pixels, tt.stride, tt.w, tt.h, tt.f); !errors.Is(err, tt.want) {
				t.Errorf("Upload() error = %v, want %v", err, tt.want)
			}
		})
	}
}

type mockDevice struct{}

func (m *mockDevice) Poll(wait bool) {}
func (m *mockDevice) Destroy()       {}

type mockQueue struct{}

type mockAdapter struct{}

// plainProvider implements gpucontext.DeviceProvider without HAL access.
type plainProvider struct{}

func (plainProvider) Device() gpucontext.Device             { return &mockDevice{} }
func (plainProvider) Queue() gpucontext.Queue               { return &mockQueue{} }
func (plainProvider) Adapter() gpucontext.Adapter           { return &mockAdapter{} }
func (plainProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }

// wrongHALProvider exposes HAL accessors returning foreign types.
type wrongHALProvider struct{ plainProvider }

func (wrongHALProvider) HalDevice() any { return "device" }
func (wrongHALProvider) HalQueue() any  { return "queue" }

func TestNewHALRejectsProvider(t *testing.T) {
	for _, p := range []gpucontext.DeviceProvider{plainProvider{}, wrongHALProvider{}} {
		if _, err := NewHAL(p); !errors.Is(err, ErrNoHALDevice) {
			t.Errorf("NewHAL(%T) error = %v, want ErrNoHALDevice", p, err)
		}
	}
}

func TestHALFormats(t *testing.T) {
	var u HAL
	for f, want := range map[PixelFormat]bool{
		FormatR8G8B8A8: true,
		FormatB8G8R8A8: true,
		FormatB4G4R4A4: false,
	} {
		if got := u.SupportsFormat(f); got != want {
			t.Errorf("SupportsFormat(%v) = %v, want %v", f, got, want)
		}
	}
}
