package softatlas

import (
	"bytes"
	"fmt"

	gotext "github.com/go-text/typesetting/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/fontatlas/internal/cache"
)

// parsedFace is one face of a font file, parsed once and shared by every
// atlas that adds the same bytes. Both parsed forms are safe for
// concurrent use.
type parsedFace struct {
	outlines *opentype.Font
	coverage *gotext.Font

	// Vertical metrics in font units; descent is negative.
	unitsPerEm float64
	ascent     float64
	descent    float64

	err error
}

type faceKey struct {
	content cache.ContentKey
	index   int
}

func hashFaceKey(k faceKey) uint64 {
	return cache.ContentKeyHasher(k.content) ^ uint64(k.index)
}

// FaceCache shares parsed font files between atlases. It is safe for
// concurrent use.
type FaceCache struct {
	faces *cache.ShardedCache[faceKey, *parsedFace]
}

// NewFaceCache creates a cache holding up to capacity faces per shard.
// A capacity <= 0 selects cache.DefaultCapacity.
func NewFaceCache(capacity int) *FaceCache {
	return &FaceCache{faces: cache.NewSharded[faceKey, *parsedFace](capacity, hashFaceKey)}
}

// Len returns the number of cached faces.
func (c *FaceCache) Len() int { return c.faces.Len() }

// load returns the parsed face index of data, parsing it on first use.
func (c *FaceCache) load(data []byte, index int) (*parsedFace, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	key := faceKey{content: cache.KeyOf(data), index: index}
	pf := c.faces.GetOrCreate(key, func() *parsedFace {
		return parseFace(data, index)
	})
	if pf.err != nil {
		return nil, pf.err
	}
	return pf, nil
}

func parseFace(data []byte, index int) *parsedFace {
	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return &parsedFace{err: fmt.Errorf("softatlas: parse font: %w", err)}
	}
	if index < 0 || index >= coll.NumFonts() {
		return &parsedFace{err: fmt.Errorf("%w: %d of %d", ErrFontIndex, index, coll.NumFonts())}
	}
	outlines, err := coll.Font(index)
	if err != nil {
		return &parsedFace{err: fmt.Errorf("softatlas: parse font %d: %w", index, err)}
	}

	ttc, err := gotext.ParseTTC(bytes.NewReader(data))
	if err != nil {
		return &parsedFace{err: fmt.Errorf("softatlas: parse cmap: %w", err)}
	}
	if index >= len(ttc) {
		return &parsedFace{err: fmt.Errorf("%w: %d of %d", ErrFontIndex, index, len(ttc))}
	}

	upem := outlines.UnitsPerEm()
	var buf sfnt.Buffer
	m, err := outlines.Metrics(&buf, fixed.I(int(upem)), font.HintingNone)
	if err != nil {
		return &parsedFace{err: fmt.Errorf("softatlas: font metrics: %w", err)}
	}

	return &parsedFace{
		outlines:   outlines,
		coverage:   ttc[index].Font,
		unitsPerEm: float64(upem),
		ascent:     fixedToFloat64(m.Ascent),
		descent:    -fixedToFloat64(m.Descent),
	}
}

// scaleForPixelHeight returns the font-unit to pixel factor that makes the
// ascender to descender distance px pixels tall.
func (pf *parsedFace) scaleForPixelHeight(px float64) float64 {
	h := pf.ascent - pf.descent
	if h <= 0 {
		h = pf.unitsPerEm
	}
	return px / h
}

func fixedToFloat64(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
