package detection

import (
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironsheep/circularity-mcp/internal/imaging"
	"github.com/ironsheep/circularity-mcp/internal/mask"
)

// DefaultEdgeSize is the smoothing and structuring element size in pixels.
const DefaultEdgeSize = 3

// Params controls HoughSeededWatershed.
type Params struct {
	// Radius is the estimated radius of the object in pixels.
	Radius int

	// RadiusWidth is the expected error of Radius in pixels. Overestimating
	// it is safer than underestimating it.
	RadiusWidth int

	// EdgeSize is used for edge smoothing and for the gradient structuring
	// elements. Zero selects DefaultEdgeSize.
	EdgeSize int

	// RadiusStep is the spacing of candidate radii. Zero selects
	// DefaultRadiusStep.
	RadiusStep int

	// Logger receives per-stage debug output. Nil disables logging.
	Logger *zerolog.Logger
}

// Segmentation is the result of the automatic pipeline.
type Segmentation struct {
	Mask       *mask.Mask
	Circle     CircleCandidate
	Seeds      *SeedMap
	EdgePixels int
}

// HoughSeededWatershed segments the most prominent circular object in img.
//
// The pipeline runs edge extraction, a Hough search over the radius band
// [Radius-RadiusWidth, Radius+RadiusWidth), seed construction around the
// winning circle and seeded watershed growth. The caller's rough radius
// does not need to be exact: the search picks the best supported radius in
// the band and the watershed moves the boundary onto the real edge.
//
// Errors from each stage are returned wrapped; use errors.Is with
// imaging.ErrInvalidImageShape, ErrNoCircleFound or ErrInsufficientSeeds.
func HoughSeededWatershed(img image.Image, p Params) (*Segmentation, error) {
	log := zerolog.Nop()
	if p.Logger != nil {
		log = *p.Logger
	}
	if p.EdgeSize <= 0 {
		p.EdgeSize = DefaultEdgeSize
	}
	if p.RadiusStep <= 0 {
		p.RadiusStep = DefaultRadiusStep
	}

	start := time.Now()
	edges, err := imaging.DetectEdges(img, p.EdgeSize)
	if err != nil {
		return nil, fmt.Errorf("edge extraction failed: %w", err)
	}
	edgePixels := edges.Count()
	log.Debug().
		Int("edge_pixels", edgePixels).
		Int("edge_size", p.EdgeSize).
		Dur("elapsed", time.Since(start)).
		Msg("edges extracted")

	start = time.Now()
	circle, err := LocateCircle(edges, p.Radius, p.RadiusWidth, p.RadiusStep)
	if err != nil {
		return nil, fmt.Errorf("circle localization failed: %w", err)
	}
	log.Debug().
		Int("center_x", circle.CenterX).
		Int("center_y", circle.CenterY).
		Int("radius", circle.Radius).
		Float64("score", circle.Score).
		Dur("elapsed", time.Since(start)).
		Msg("circle located")

	seeds, err := BuildSeeds(*circle, p.RadiusWidth, edges.Width, edges.Height)
	if err != nil {
		return nil, fmt.Errorf("seed construction failed: %w", err)
	}
	log.Debug().
		Int("inside", seeds.Count(SeedInside)).
		Int("outside", seeds.Count(SeedOutside)).
		Int("unknown", seeds.Count(SeedUnknown)).
		Msg("seeds built")

	start = time.Now()
	m, err := Watershed(img, seeds, p.EdgeSize)
	if err != nil {
		return nil, fmt.Errorf("watershed failed: %w", err)
	}
	log.Debug().
		Int("area", m.Area()).
		Dur("elapsed", time.Since(start)).
		Msg("watershed complete")

	return &Segmentation{
		Mask:       m,
		Circle:     *circle,
		Seeds:      seeds,
		EdgePixels: edgePixels,
	}, nil
}
