package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"github.com/ironsheep/circularity-mcp/internal/mask"
)

// OverlayCircle is a circle to draw on an overlay.
type OverlayCircle struct {
	CenterX int
	CenterY int
	Radius  int
}

// OverlayResult contains the image with the circle and mask outline drawn
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Overlay draws the outline of m and, when c is non-nil, the circle c with
// its center coordinates labeled. Either may be nil. The mask must match
// the image size.
func Overlay(img image.Image, m *mask.Mask, c *OverlayCircle, colorHex string) (*OverlayResult, error) {
	if err := ValidateShape(img); err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	lineColor, err := parseHexColor(colorHex)
	if err != nil {
		lineColor = color.RGBA{255, 0, 0, 255}
	}

	result := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	if m != nil {
		if m.Width() != width || m.Height() != height {
			return nil, fmt.Errorf("mask size %dx%d does not match image size %dx%d",
				m.Width(), m.Height(), width, height)
		}
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				if isOutline(m, x, y) {
					result.Set(x, y, lineColor)
				}
			}
		}
	}

	if c != nil {
		circleColor := color.RGBA{0, 255, 0, 255}
		for _, p := range mask.CirclePoints(c.Radius) {
			result.Set(c.CenterX+p.X, c.CenterY+p.Y, circleColor)
		}
		label := strconv.Itoa(c.CenterX) + "," + strconv.Itoa(c.CenterY)
		drawLabel(result, c.CenterX+2, c.CenterY+2, label,
			color.RGBA{255, 255, 255, 255}, color.RGBA{0, 0, 0, 180})
	}

	encoded, err := EncodePNG(result)
	if err != nil {
		return nil, err
	}

	return &OverlayResult{
		Width:       width,
		Height:      height,
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// isOutline reports whether a set pixel touches an unset 4-neighbor or the
// frame border.
func isOutline(m *mask.Mask, x, y int) bool {
	if !m.At(x, y) {
		return false
	}
	if x == 0 || y == 0 || x == m.Width()-1 || y == m.Height()-1 {
		return true
	}
	return !m.At(x-1, y) || !m.At(x+1, y) || !m.At(x, y-1) || !m.At(x, y+1)
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// drawLabel draws a small 3x5 pixel label, clipped to the image.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
		',': {"000", "000", "000", "010", "010"},
		'-': {"000", "000", "111", "000", "000"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			px, py := x+dx, y+dy
			if image.Pt(px, py).In(bounds) {
				img.Set(px, py, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					px, py := cx+col, y+row
					if image.Pt(px, py).In(bounds) {
						img.Set(px, py, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}
