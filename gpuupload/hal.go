package gpuupload

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// HAL uploads pages through a WebGPU HAL device. WebGPU has no 16-bit
// color formats, so alpha8 pages always expand to B8G8R8A8.
type HAL struct {
	device hal.Device
	queue  hal.Queue

	mu     sync.Mutex
	closed bool
	live   map[*HALTexture]struct{}
}

var _ Uploader = (*HAL)(nil)

var halTextureIDs atomic.Uint64

// NewHAL takes the device and queue of a host application. The provider
// must implement HalDevice() any and HalQueue() any returning hal.Device
// and hal.Queue.
func NewHAL(provider gpucontext.DeviceProvider) (*HAL, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALDevice
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALDevice)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALDevice)
	}
	return &HAL{device: device, queue: queue, live: make(map[*HALTexture]struct{})}, nil
}

// SupportsFormat implements Uploader.
func (u *HAL) SupportsFormat(f PixelFormat) bool {
	_, ok := textureFormat(f)
	return ok
}

func textureFormat(f PixelFormat) (gputypes.TextureFormat, bool) {
	switch f {
	case FormatR8G8B8A8:
		return gputypes.TextureFormatRGBA8Unorm, true
	case FormatB8G8R8A8:
		return gputypes.TextureFormatBGRA8Unorm, true
	default:
		return gputypes.TextureFormatUndefined, false
	}
}

// Upload implements Uploader.
func (u *HAL) Upload(pixels []byte, stride, width, height int, f PixelFormat) (Texture, error) {
	format, ok := textureFormat(f)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
	if err := checkUpload(pixels, stride, width, height, f); err != nil {
		return nil, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return nil, ErrClosed
	}

	id := halTextureIDs.Add(1)
	w, h := uint32(width), uint32(height) //nolint:gosec // validated positive
	tex, err := u.device.CreateTexture(&hal.TextureDescriptor{
		Label:         fmt.Sprintf("font_atlas_%d", id),
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpuupload: create texture %d: %w", id, err)
	}
	view, err := u.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         fmt.Sprintf("font_atlas_%d_view", id),
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		u.device.DestroyTexture(tex)
		return nil, fmt.Errorf("gpuupload: create texture view %d: %w", id, err)
	}

	u.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		pixels,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(stride), //nolint:gosec // validated by checkUpload
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)

	t := &HALTexture{owner: u, id: id, width: width, height: height, format: f, texture: tex, view: view}
	u.live[t] = struct{}{}
	return t, nil
}

// Close destroys every texture still alive. The device stays with its
// owner.
func (u *HAL) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return nil
	}
	u.closed = true
	for t := range u.live {
		u.destroyLocked(t)
	}
	return nil
}

func (u *HAL) release(t *HALTexture) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.live[t]; ok {
		u.destroyLocked(t)
	}
}

func (u *HAL) destroyLocked(t *HALTexture) {
	delete(u.live, t)
	u.device.DestroyTextureView(t.view)
	u.device.DestroyTexture(t.texture)
}

// HALTexture is a texture created by HAL.
type HALTexture struct {
	owner         *HAL
	id            uint64
	width, height int
	format        PixelFormat
	texture       hal.Texture
	view          hal.TextureView
}

func (t *HALTexture) ID() uint64                { return t.id }
func (t *HALTexture) Size() (width, height int) { return t.width, t.height }
func (t *HALTexture) Format() PixelFormat       { return t.format }

// View returns the sampled view bound by renderers.
func (t *HALTexture) View() hal.TextureView { return t.view }

// Close destroys the texture. It is idempotent.
func (t *HALTexture) Close() error {
	t.owner.release(t)
	return nil
}
