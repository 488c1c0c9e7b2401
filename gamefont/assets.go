package gamefont

import (
	"io/fs"
	"os"

	"github.com/pkg/errors"

	"github.com/gogpu/fontatlas/internal/cache"
)

// AssetSource reads game data files by their archive path, for example
// "common/font/AXIS_12.fdt".
type AssetSource interface {
	ReadFile(path string) ([]byte, error)
}

type fsSource struct {
	fsys fs.FS
}

// FS serves assets from fsys. Paths are used verbatim.
func FS(fsys fs.FS) AssetSource {
	return fsSource{fsys: fsys}
}

// Dir serves assets from an extracted copy of the game data under root.
func Dir(root string) AssetSource {
	return FS(os.DirFS(root))
}

func (s fsSource) ReadFile(path string) ([]byte, error) {
	return fs.ReadFile(s.fsys, path)
}

type loaded[T any] struct {
	v   T
	err error
}

// Library loads and caches the FDT and TEX files of an AssetSource. It is
// safe for concurrent use; each file is read and decoded at most once.
type Library struct {
	src  AssetSource
	fdts *cache.Cache[FamilyAndSize, loaded[*FDT]]
	texs *cache.Cache[string, loaded[*TexFile]]
}

// NewLibrary returns a Library reading from src.
func NewLibrary(src AssetSource) *Library {
	return &Library{
		src:  src,
		fdts: cache.New[FamilyAndSize, loaded[*FDT]](0),
		texs: cache.New[string, loaded[*TexFile]](0),
	}
}

// Source returns the underlying asset source.
func (l *Library) Source() AssetSource { return l.src }

// FDT returns the parsed FDT of f.
func (l *Library) FDT(f FamilyAndSize) (*FDT, error) {
	if !f.Valid() {
		return nil, errors.Wrapf(ErrUnknownFamily, "%d", int(f))
	}
	r := l.fdts.GetOrCreate(f, func() loaded[*FDT] {
		data, err := l.src.ReadFile(f.Path())
		if err != nil {
			return loaded[*FDT]{err: errors.Wrapf(err, "read %s", f.Path())}
		}
		fdt, err := ParseFDT(data)
		if err != nil {
			return loaded[*FDT]{err: errors.Wrapf(err, "parse %s", f.Path())}
		}
		return loaded[*FDT]{v: fdt}
	})
	return r.v, r.err
}

// Tex returns TEX file fileIndex of the texture set named by format.
func (l *Library) Tex(format string, fileIndex int) (*TexFile, error) {
	path := TexPath(format, fileIndex)
	r := l.texs.GetOrCreate(path, func() loaded[*TexFile] {
		data, err := l.src.ReadFile(path)
		if err != nil {
			return loaded[*TexFile]{err: errors.Wrapf(err, "read %s", path)}
		}
		tex, err := ParseTex(data)
		if err != nil {
			return loaded[*TexFile]{err: errors.Wrapf(err, "parse %s", path)}
		}
		return loaded[*TexFile]{v: tex}
	})
	return r.v, r.err
}

// TextureCount returns the number of channel textures referenced by the
// families sharing format: one more than the largest texture index.
func (l *Library) TextureCount(format string) (int, error) {
	n := 0
	for _, f := range AllFamilyAndSizes() {
		if f.TexPathFormat() != format {
			continue
		}
		fdt, err := l.FDT(f)
		if err != nil {
			return 0, err
		}
		n = max(n, fdt.MaxTextureIndex()+1)
	}
	return n, nil
}

// ChannelImage is a single channel texture expanded to white plus alpha.
type ChannelImage struct {
	Width, Height int
	Format        ChannelFormat
	Pixels        []byte
}

// ChannelTexture extracts channel texture textureIndex (file index / 4,
// channel through ChannelOrder) of the texture set named by format.
func (l *Library) ChannelTexture(format string, textureIndex int, out ChannelFormat) (*ChannelImage, error) {
	tex, err := l.Tex(format, textureIndex/4)
	if err != nil {
		return nil, err
	}
	px, err := ExtractChannel(tex, ChannelOrder[textureIndex%4], out)
	if err != nil {
		return nil, err
	}
	return &ChannelImage{Width: tex.Width, Height: tex.Height, Format: out, Pixels: px}, nil
}
