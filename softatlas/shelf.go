package softatlas

// shelfPacker places rectangles left to right on horizontal shelves. A
// shelf is as tall as its tallest item; the last shelf may grow while the
// page height allows it. Feeding items sorted by decreasing height keeps
// shelves dense.
type shelfPacker struct {
	width   int
	height  int
	padding int
	shelves []shelf

	usedArea int
}

type shelf struct {
	y      int
	height int
	x      int
}

func newShelfPacker(width, height, padding int) *shelfPacker {
	return &shelfPacker{
		width:   width,
		height:  height,
		padding: padding,
		shelves: make([]shelf, 0, 16),
	}
}

// allocate reserves a w×h rect. It returns -1, -1, false when the rect fits
// on no shelf and no new shelf can be opened.
func (p *shelfPacker) allocate(w, h int) (x, y int, ok bool) {
	if w > p.width || h > p.height {
		return -1, -1, false
	}
	paddedW := w + p.padding

	for i := range p.shelves {
		s := &p.shelves[i]
		if s.x+w > p.width {
			continue
		}
		if h > s.height {
			// only the last shelf can grow
			if i != len(p.shelves)-1 || s.y+h > p.height {
				continue
			}
			s.height = h
		}
		x, y = s.x, s.y
		s.x += paddedW
		p.usedArea += w * h
		return x, y, true
	}

	newY := p.usedHeight()
	if newY > 0 {
		newY += p.padding
	}
	if newY+h > p.height {
		return -1, -1, false
	}
	p.shelves = append(p.shelves, shelf{y: newY, height: h, x: paddedW})
	p.usedArea += w * h
	return 0, newY, true
}

// usedHeight returns the bottom edge of the lowest shelf.
func (p *shelfPacker) usedHeight() int {
	if len(p.shelves) == 0 {
		return 0
	}
	last := p.shelves[len(p.shelves)-1]
	return last.y + last.height
}

func (p *shelfPacker) utilization() float64 {
	if p.width <= 0 || p.height <= 0 {
		return 0
	}
	return float64(p.usedArea) / float64(p.width*p.height)
}
