package mask

import (
	"image"
)

// Bounds returns the minimal rectangle containing every set pixel.
//
// The rectangle follows image.Rectangle semantics: Min is inclusive and Max
// is exclusive. Rows are scanned for the first and last row holding any set
// pixel, and columns likewise.
//
// # Errors
//
//   - ErrEmptyMask if no pixel is set (the bounds are undefined)
func (m *Mask) Bounds() (image.Rectangle, error) {
	minX, minY := m.width, m.height
	maxX, maxY := -1, -1

	for y := 0; y < m.height; y++ {
		row := m.pix[y*m.width : (y+1)*m.width]
		for x, v := range row {
			if v == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			maxY = y
		}
	}

	if maxX < 0 {
		return image.Rectangle{}, ErrEmptyMask
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), nil
}

// Crop trims the mask to its bounding box.
//
// Cropping an already cropped mask returns an equal mask.
//
// # Errors
//
//   - ErrEmptyMask if no pixel is set
func (m *Mask) Crop() (*Mask, error) {
	r, err := m.Bounds()
	if err != nil {
		return nil, err
	}
	return m.Region(r)
}

// Region copies the part of the mask inside r. r is clipped to the mask.
func (m *Mask) Region(r image.Rectangle) (*Mask, error) {
	r = r.Intersect(image.Rect(0, 0, m.width, m.height))
	out, err := New(r.Dx(), r.Dy())
	if err != nil {
		return nil, err
	}
	for y := 0; y < out.height; y++ {
		src := m.pix[(y+r.Min.Y)*m.width+r.Min.X : (y+r.Min.Y)*m.width+r.Max.X]
		copy(out.pix[y*out.width:(y+1)*out.width], src)
	}
	return out, nil
}

// Circle returns a mask holding the perimeter of a circle drawn with the
// midpoint algorithm. Perimeter points outside the frame are dropped, so a
// circle that leaves the frame produces an open curve.
func Circle(width, height, cx, cy, radius int) (*Mask, error) {
	m, err := New(width, height)
	if err != nil {
		return nil, err
	}
	for _, p := range CirclePoints(radius) {
		x, y := cx+p.X, cy+p.Y
		if x >= 0 && y >= 0 && x < width && y < height {
			m.pix[y*width+x] = 1
		}
	}
	return m, nil
}

// CirclePoints lists the distinct offsets on a midpoint circle of the given
// radius, relative to its center. A zero radius yields the center only and
// a negative radius yields nothing.
func CirclePoints(radius int) []image.Point {
	if radius < 0 {
		return nil
	}
	if radius == 0 {
		return []image.Point{{}}
	}

	seen := make(map[image.Point]struct{}, 8*radius)
	points := make([]image.Point, 0, 8*radius)
	add := func(x, y int) {
		p := image.Point{X: x, Y: y}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		points = append(points, p)
	}

	x := radius
	y := 0
	d := 1 - radius
	for x >= y {
		add(x, y)
		add(y, x)
		add(-y, x)
		add(-x, y)
		add(-x, -y)
		add(-y, -x)
		add(y, -x)
		add(x, -y)

		if d < 0 {
			d += 2*y + 3
		} else {
			d += 2*(y-x) + 5
			x--
		}
		y++
	}
	return points
}

// FillHoles sets every unset pixel that cannot be reached from the frame
// border through 4-connected unset pixels.
func (m *Mask) FillHoles() *Mask {
	w, h := m.width, m.height
	outside := make([]bool, len(m.pix))
	stack := make([]image.Point, 0, 2*(w+h))

	push := func(x, y int) {
		if x < 0 || y < 0 || x >= w || y >= h {
			return
		}
		i := y*w + x
		if outside[i] || m.pix[i] != 0 {
			return
		}
		outside[i] = true
		stack = append(stack, image.Point{X: x, Y: y})
	}

	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		push(p.X+1, p.Y)
		push(p.X-1, p.Y)
		push(p.X, p.Y+1)
		push(p.X, p.Y-1)
	}

	out := &Mask{width: w, height: h, pix: make([]uint8, len(m.pix))}
	for i := range out.pix {
		if !outside[i] {
			out.pix[i] = 1
		}
	}
	return out
}
