package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/circularity-mcp/internal/mask"
)

func rgbAt(img image.Image, x, y int) (uint8, uint8, uint8) {
	b := img.Bounds()
	r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(bl >> 8)
}

func TestOverlay_MaskOutline(t *testing.T) {
	img := createInMemoryImage(40, 40, color.RGBA{100, 100, 100, 255})
	m, err := mask.Select(40, 40, func(x, y int) bool {
		return x >= 10 && x < 30 && y >= 10 && y < 30
	})
	if err != nil {
		t.Fatalf("mask.Select failed: %v", err)
	}

	result, err := Overlay(img, m, nil, "#00FF00")
	if err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}
	if result.Width != 40 || result.Height != 40 {
		t.Errorf("dimensions: got %dx%d, want 40x40", result.Width, result.Height)
	}

	out := decodeBase64PNG(t, result.ImageBase64)

	tests := []struct {
		name    string
		x, y    int
		r, g, b uint8
	}{
		{"left border", 10, 15, 0, 255, 0},
		{"bottom border", 20, 29, 0, 255, 0},
		{"interior", 20, 20, 100, 100, 100},
		{"outside", 5, 5, 100, 100, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := rgbAt(out, tt.x, tt.y)
			if r != tt.r || g != tt.g || b != tt.b {
				t.Errorf("pixel (%d,%d): got (%d,%d,%d), want (%d,%d,%d)",
					tt.x, tt.y, r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestOverlay_Circle(t *testing.T) {
	img := createInMemoryImage(60, 60, color.Black)

	result, err := Overlay(img, nil, &OverlayCircle{CenterX: 20, CenterY: 20, Radius: 10}, "")
	if err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}
	out := decodeBase64PNG(t, result.ImageBase64)

	for _, p := range []image.Point{{30, 20}, {20, 10}, {10, 20}} {
		if r, g, b := rgbAt(out, p.X, p.Y); r != 0 || g != 255 || b != 0 {
			t.Errorf("circle pixel %v: got (%d,%d,%d), want green", p, r, g, b)
		}
	}
	if r, g, b := rgbAt(out, 50, 50); r != 0 || g != 0 || b != 0 {
		t.Errorf("background changed: got (%d,%d,%d)", r, g, b)
	}
}

func TestOverlay_CircleNearBorder(t *testing.T) {
	img := createInMemoryImage(20, 20, color.Black)

	// points and label falling outside the frame are clipped
	if _, err := Overlay(img, nil, &OverlayCircle{CenterX: 18, CenterY: 18, Radius: 15}, "#FFFFFF"); err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}
}

func TestOverlay_InvalidColorFallsBackToRed(t *testing.T) {
	img := createInMemoryImage(20, 20, color.Black)
	m, err := mask.Select(20, 20, func(x, y int) bool { return x >= 5 && x < 15 && y >= 5 && y < 15 })
	if err != nil {
		t.Fatalf("mask.Select failed: %v", err)
	}

	result, err := Overlay(img, m, nil, "not-a-color")
	if err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}
	out := decodeBase64PNG(t, result.ImageBase64)
	if r, g, b := rgbAt(out, 5, 10); r != 255 || g != 0 || b != 0 {
		t.Errorf("outline: got (%d,%d,%d), want red", r, g, b)
	}
}

func TestOverlay_MaskSizeMismatch(t *testing.T) {
	img := createInMemoryImage(20, 20, color.Black)
	m, err := mask.New(10, 10)
	if err != nil {
		t.Fatalf("mask.New failed: %v", err)
	}

	if _, err := Overlay(img, m, nil, "#FF0000"); err == nil {
		t.Error("expected error for mismatched mask size")
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input   string
		want    color.RGBA
		wantErr bool
	}{
		{"#FF0000", color.RGBA{255, 0, 0, 255}, false},
		{"00ff00", color.RGBA{0, 255, 0, 255}, false},
		{"#0000FF80", color.RGBA{0, 0, 255, 128}, false},
		{"#123", color.RGBA{}, true},
		{"#GGGGGG", color.RGBA{}, true},
		{"", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseHexColor(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("parseHexColor(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
