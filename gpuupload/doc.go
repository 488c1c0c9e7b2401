// Package gpuupload turns built atlas pages into GPU textures.
//
// An Uploader creates one texture per page. Pages come in two layouts:
// alpha8 coverage and RGBA32. Alpha8 pages are expanded to a white
// texture with the coverage in alpha, in the smallest format the uploader
// supports:
//
//	u := gpuupload.NewMemory(gpuupload.FormatB8G8R8A8)
//	tex, err := gpuupload.UploadAlpha8(u, page.Alpha8, page.Width, page.Height)
//
// NewHAL uploads through a WebGPU HAL device shared by the host
// application (see gpucontext.DeviceProvider).
package gpuupload
