package server

import (
	"encoding/json"
	"fmt"
	"image"
	"time"

	"github.com/ironsheep/circularity-mcp/internal/detection"
	"github.com/ironsheep/circularity-mcp/internal/estimate"
	"github.com/ironsheep/circularity-mcp/internal/imaging"
	"github.com/ironsheep/circularity-mcp/internal/logger"
	"github.com/ironsheep/circularity-mcp/internal/mask"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "pie_segment").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Warn().Str("tool", params.Name).Err(err).Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	s.log.Info().Str("tool", params.Name).Dur("elapsed", time.Since(start)).Msg("tool completed")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies configured defaults for optional parameters
//  3. Loads images and stored masks as needed
//  4. Calls the appropriate imaging/detection/paint/estimate function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_edge_detect":
		return s.handleImageEdgeDetect(args)

	// Segmentation
	case "pie_locate_circle":
		return s.handlePieLocateCircle(args)
	case "pie_segment":
		return s.handlePieSegment(args)
	case "pie_measure_radius":
		return s.handlePieMeasureRadius(args)

	// Manual Segmentation
	case "pie_superpixels":
		return s.handlePieSuperpixels(args)
	case "pie_paint":
		return s.handlePiePaint(args)
	case "pie_mask_load":
		return s.handlePieMaskLoad(args)

	// Circularity
	case "pie_crop_mask":
		return s.handlePieCropMask(args)
	case "pie_calculate":
		return s.handlePieCalculate(args)
	case "pie_simulate":
		return s.handlePieSimulate(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// Region is a rectangle in tool results, exclusive on the right and bottom.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func regionOf(r image.Rectangle) Region {
	return Region{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// MaskSummary describes a stored mask.
type MaskSummary struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Area   int     `json:"area"`
	Bounds *Region `json:"bounds,omitempty"`
}

func summarize(m *mask.Mask) MaskSummary {
	sum := MaskSummary{Width: m.Width(), Height: m.Height(), Area: m.Area()}
	if r, err := m.Bounds(); err == nil {
		reg := regionOf(r)
		sum.Bounds = &reg
	}
	return sum
}

// storedMask returns the mask kept for path by pie_segment, pie_paint or
// pie_mask_load.
func (s *Server) storedMask(path string) (*mask.Mask, error) {
	m, ok := s.masks.Get(path)
	if !ok {
		return nil, fmt.Errorf("no mask stored for %s: run pie_segment, pie_paint or pie_mask_load first", path)
	}
	return m, nil
}

// === Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type imageEdgeDetectArgs struct {
	Path     string `json:"path"`
	EdgeSize int    `json:"edge_size"`
}

func (s *Server) handleImageEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a imageEdgeDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.EdgeSize == 0 {
		a.EdgeSize = s.cfg.EdgeSize
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeDetect(img, a.EdgeSize)
}

// === Segmentation Handlers ===

type pieCircleArgs struct {
	Path        string `json:"path"`
	Radius      int    `json:"radius"`
	RadiusWidth int    `json:"radius_width"`
	EdgeSize    int    `json:"edge_size"`
	RadiusStep  int    `json:"radius_step"`
}

func (a *pieCircleArgs) applyDefaults(s *Server) error {
	if a.Radius <= 0 {
		return fmt.Errorf("radius must be positive, got %d", a.Radius)
	}
	if a.RadiusWidth < 0 {
		return fmt.Errorf("radius_width must not be negative, got %d", a.RadiusWidth)
	}
	if a.EdgeSize == 0 {
		a.EdgeSize = s.cfg.EdgeSize
	}
	if a.RadiusStep == 0 {
		a.RadiusStep = s.cfg.RadiusStep
	}
	return nil
}

// LocateResult is the result of pie_locate_circle.
type LocateResult struct {
	Circle     detection.CircleCandidate `json:"circle"`
	Radii      []int                     `json:"radii_searched"`
	EdgePixels int                       `json:"edge_pixels"`
}

func (s *Server) handlePieLocateCircle(args json.RawMessage) (interface{}, error) {
	var a pieCircleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.applyDefaults(s); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	edges, err := imaging.DetectEdges(img, a.EdgeSize)
	if err != nil {
		return nil, err
	}
	c, err := detection.LocateCircle(edges, a.Radius, a.RadiusWidth, a.RadiusStep)
	if err != nil {
		return nil, err
	}
	return &LocateResult{
		Circle:     *c,
		Radii:      detection.CandidateRadii(a.Radius, a.RadiusWidth, a.RadiusStep),
		EdgePixels: edges.Count(),
	}, nil
}

type pieSegmentArgs struct {
	pieCircleArgs
	IncludeMask    bool   `json:"include_mask"`
	IncludeOverlay bool   `json:"include_overlay"`
	OverlayColor   string `json:"overlay_color"`
}

// SegmentResult is the result of pie_segment.
type SegmentResult struct {
	Circle     detection.CircleCandidate `json:"circle"`
	Mask       MaskSummary               `json:"mask"`
	EdgePixels int                       `json:"edge_pixels"`
	MaskImage  string                    `json:"mask_image_base64,omitempty"`
	Overlay    string                    `json:"overlay_image_base64,omitempty"`
	MimeType   string                    `json:"mime_type,omitempty"`
}

func (s *Server) handlePieSegment(args json.RawMessage) (interface{}, error) {
	var a pieSegmentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.applyDefaults(s); err != nil {
		return nil, err
	}
	if a.OverlayColor == "" {
		a.OverlayColor = "#FF0000"
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	log := logger.Component(s.log, "detection").With().Str("path", a.Path).Logger()
	seg, err := detection.HoughSeededWatershed(img, detection.Params{
		Radius:      a.Radius,
		RadiusWidth: a.RadiusWidth,
		EdgeSize:    a.EdgeSize,
		RadiusStep:  a.RadiusStep,
		Logger:      &log,
	})
	if err != nil {
		return nil, err
	}
	s.masks.Put(a.Path, seg.Mask)

	result := &SegmentResult{
		Circle:     seg.Circle,
		Mask:       summarize(seg.Mask),
		EdgePixels: seg.EdgePixels,
	}
	if a.IncludeMask {
		if result.MaskImage, err = imaging.EncodePNG(seg.Mask.Image()); err != nil {
			return nil, err
		}
		result.MimeType = "image/png"
	}
	if a.IncludeOverlay {
		overlay, err := imaging.Overlay(img, seg.Mask, &imaging.OverlayCircle{
			CenterX: seg.Circle.CenterX,
			CenterY: seg.Circle.CenterY,
			Radius:  seg.Circle.Radius,
		}, a.OverlayColor)
		if err != nil {
			return nil, err
		}
		result.Overlay = overlay.ImageBase64
		result.MimeType = overlay.MimeType
	}
	return result, nil
}

type pieMeasureRadiusArgs struct {
	Path    string `json:"path"`
	CenterX int    `json:"center_x"`
	CenterY int    `json:"center_y"`
	EdgeX   int    `json:"edge_x"`
	EdgeY   int    `json:"edge_y"`
}

func (s *Server) handlePieMeasureRadius(args json.RawMessage) (interface{}, error) {
	var a pieMeasureRadiusArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.MeasureRadius(img,
		imaging.Point{X: a.CenterX, Y: a.CenterY},
		imaging.Point{X: a.EdgeX, Y: a.EdgeY})
}

// === Manual Segmentation Handlers ===

type pieSuperpixelsArgs struct {
	Path        string  `json:"path"`
	Segments    int     `json:"segments"`
	Compactness float64 `json:"compactness"`
}

// SuperpixelsResult is the result of pie_superpixels.
type SuperpixelsResult struct {
	Regions     int    `json:"regions"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

func (s *Server) handlePieSuperpixels(args json.RawMessage) (interface{}, error) {
	var a pieSuperpixelsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	p, err := s.painter(a.Path, a.Segments, a.Compactness)
	if err != nil {
		return nil, err
	}
	encoded, err := imaging.EncodePNG(p.Display())
	if err != nil {
		return nil, err
	}
	regions := p.Regions()
	return &SuperpixelsResult{
		Regions:     regions.Count,
		Width:       regions.Width,
		Height:      regions.Height,
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

type piePaintArgs struct {
	Path        string  `json:"path"`
	Action      string  `json:"action"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	Segments    int     `json:"segments"`
	Compactness float64 `json:"compactness"`
	IncludeView bool    `json:"include_view"`
}

// PaintResult is the result of pie_paint.
type PaintResult struct {
	Action      string      `json:"action"`
	Region      *int        `json:"region,omitempty"`
	Mask        MaskSummary `json:"mask"`
	Undone      *bool       `json:"undone,omitempty"`
	ImageBase64 string      `json:"image_base64,omitempty"`
	MimeType    string      `json:"mime_type,omitempty"`
}

func (s *Server) handlePiePaint(args json.RawMessage) (interface{}, error) {
	var a piePaintArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	p, err := s.painter(a.Path, a.Segments, a.Compactness)
	if err != nil {
		return nil, err
	}

	result := &PaintResult{Action: a.Action}
	var m *mask.Mask
	switch a.Action {
	case "add", "remove":
		label, err := p.Region(a.X, a.Y)
		if err != nil {
			return nil, err
		}
		result.Region = &label
		if a.Action == "add" {
			m, err = p.Add(a.X, a.Y)
		} else {
			m, err = p.Remove(a.X, a.Y)
		}
		if err != nil {
			return nil, err
		}
	case "fill":
		m = p.Fill()
	case "undo":
		var ok bool
		m, ok = p.Undo()
		result.Undone = &ok
	case "clear":
		m = p.Clear()
	default:
		return nil, fmt.Errorf("unknown paint action %q: use add, remove, fill, undo or clear", a.Action)
	}

	s.masks.Put(a.Path, m)
	result.Mask = summarize(m)
	if a.IncludeView {
		if result.ImageBase64, err = imaging.EncodePNG(p.Display()); err != nil {
			return nil, err
		}
		result.MimeType = "image/png"
	}
	return result, nil
}

type pieMaskLoadArgs struct {
	Path     string `json:"path"`
	MaskPath string `json:"mask_path"`
}

func (s *Server) handlePieMaskLoad(args json.RawMessage) (interface{}, error) {
	var a pieMaskLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.MaskPath == "" {
		return nil, fmt.Errorf("mask_path is required")
	}
	if a.Path == "" {
		a.Path = a.MaskPath
	}

	img, err := s.cache.Load(a.MaskPath)
	if err != nil {
		return nil, err
	}
	m, err := mask.FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("failed to read mask: %w", err)
	}
	s.masks.Put(a.Path, m)
	return summarize(m), nil
}

// === Circularity Handlers ===

type pieCropMaskArgs struct {
	Path         string `json:"path"`
	IncludeMask  bool   `json:"include_mask"`
	IncludeImage bool   `json:"include_image"`
}

// CropMaskResult is the result of pie_crop_mask.
type CropMaskResult struct {
	Bounds     Region  `json:"bounds"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Area       int     `json:"area"`
	FillRatio  float64 `json:"fill_ratio"`
	MaskImage  string  `json:"mask_image_base64,omitempty"`
	PhotoImage string  `json:"photo_image_base64,omitempty"`
	MimeType   string  `json:"mime_type,omitempty"`
}

func (s *Server) handlePieCropMask(args json.RawMessage) (interface{}, error) {
	var a pieCropMaskArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	m, err := s.storedMask(a.Path)
	if err != nil {
		return nil, err
	}
	bounds, err := m.Bounds()
	if err != nil {
		return nil, err
	}
	cropped, err := m.Crop()
	if err != nil {
		return nil, err
	}

	result := &CropMaskResult{
		Bounds:    regionOf(bounds),
		Width:     cropped.Width(),
		Height:    cropped.Height(),
		Area:      cropped.Area(),
		FillRatio: float64(cropped.Area()) / float64(cropped.Width()*cropped.Height()),
	}
	if a.IncludeMask {
		if result.MaskImage, err = imaging.EncodePNG(cropped.Image()); err != nil {
			return nil, err
		}
		result.MimeType = "image/png"
	}
	if a.IncludeImage {
		img, err := s.cache.Load(a.Path)
		if err != nil {
			return nil, err
		}
		photo, err := imaging.CropToRegion(img, bounds)
		if err != nil {
			return nil, err
		}
		result.PhotoImage = photo.ImageBase64
		result.MimeType = photo.MimeType
	}
	return result, nil
}

type pieCalculateArgs struct {
	Path string `json:"path"`
	Runs int    `json:"runs"`
	Seed uint64 `json:"seed"`
}

func (s *Server) handlePieCalculate(args json.RawMessage) (interface{}, error) {
	var a pieCalculateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Runs == 0 {
		a.Runs = 1
	}
	m, err := s.storedMask(a.Path)
	if err != nil {
		return nil, err
	}

	rng, release := s.random(a.Seed)
	defer release()
	if a.Runs == 1 {
		return estimate.Batch(m, rng)
	}
	return estimate.Repeat(m, a.Runs, rng)
}

type pieSimulateArgs struct {
	Path           string  `json:"path"`
	MaxHistories   int     `json:"max_histories"`
	Criterion      float64 `json:"criterion"`
	Seed           uint64  `json:"seed"`
	Verbose        bool    `json:"verbose"`
	IncludeHistory bool    `json:"include_history"`
}

// SimulateResult is the result of pie_simulate.
type SimulateResult struct {
	estimate.Estimate
	Deviation float64           `json:"deviation"`
	History   []estimate.Record `json:"history,omitempty"`
}

func (s *Server) handlePieSimulate(args json.RawMessage) (interface{}, error) {
	var a pieSimulateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.MaxHistories == 0 {
		a.MaxHistories = s.cfg.MaxHistories
	}
	if a.Criterion == 0 {
		a.Criterion = s.cfg.Criterion
	}
	m, err := s.storedMask(a.Path)
	if err != nil {
		return nil, err
	}

	log := logger.Component(s.log, "estimate").With().Str("path", a.Path).Logger()
	sim := &estimate.Simulation{
		Mask:         m,
		MaxHistories: a.MaxHistories,
		Criterion:    a.Criterion,
		Logger:       &log,
	}
	if a.Verbose {
		sim.OnTrial = func(r estimate.Record) {
			log.Info().
				Int("trial", r.Trial).
				Float64("estimate", r.Estimate).
				Float64("deviation", r.Deviation).
				Msg("trial")
		}
	}

	rng, release := s.random(a.Seed)
	defer release()
	res, err := sim.Run(rng)
	if err != nil {
		return nil, err
	}

	result := &SimulateResult{Estimate: res.Estimate}
	if last, ok := res.History.Last(); ok {
		result.Deviation = last.Deviation
	}
	if a.IncludeHistory {
		result.History = res.History
	}
	return result, nil
}
