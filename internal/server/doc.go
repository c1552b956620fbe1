// Package server implements the MCP (Model Context Protocol) server for
// circularity measurement.
//
// This package provides a JSON-RPC 2.0 server that exposes segmentation and
// pi estimation through the MCP protocol, so an assistant can take a photo
// of a roughly circular object from rough radius guess to a circularity
// score.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//   - Logs: zerolog JSON lines on stderr
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image Information:
//   - image_load: Load image and get metadata
//   - image_edge_detect: Canny edge map
//
// Segmentation:
//   - pie_locate_circle: Hough circle near an estimated radius
//   - pie_segment: Hough circle + seeded watershed, stores the mask
//   - pie_measure_radius: Radius from a center and an edge point
//
// Manual Segmentation:
//   - pie_superpixels: Superpixel borders for painting
//   - pie_paint: Add, remove, fill, undo or clear, stores the mask
//   - pie_mask_load: Read a mask from an image file, stores the mask
//
// Circularity:
//   - pie_crop_mask: Bounding box of the stored mask
//   - pie_calculate: Batch pi estimate (optionally repeated)
//   - pie_simulate: Dart-by-dart pi estimate with convergence history
//
// # State
//
// Decoded images, the latest mask per image path and one superpixel
// painter per image path live for the lifetime of the process. Any of
// the three segmentation routes replaces the stored mask for its path.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv := server.New(cfg, logger.New(os.Stderr, zerolog.InfoLevel))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
