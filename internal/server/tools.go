package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func seedProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Random seed for a reproducible result. 0 uses the server's generator",
	}
}

// circleProperties are shared by pie_locate_circle and pie_segment.
func circleProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": pathProperty(),
		"radius": map[string]interface{}{
			"type":        "integer",
			"description": "Estimated radius of the object in pixels",
		},
		"radius_width": map[string]interface{}{
			"type":        "integer",
			"description": "Expected error of the radius in pixels. Overestimate it somewhat; radii in [radius-radius_width, radius+radius_width) are searched",
		},
		"edge_size": map[string]interface{}{
			"type":        "integer",
			"description": "Smoothing and structuring element size in pixels. Default from server config (3)",
		},
		"radius_step": map[string]interface{}{
			"type":        "integer",
			"description": "Spacing between searched radii. Default from server config (5)",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	segmentProps := circleProperties()
	segmentProps["include_mask"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Return the mask as a base64 PNG (white = object)",
	}
	segmentProps["include_overlay"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Return the photo with the located circle and mask outline drawn on it",
	}
	segmentProps["overlay_color"] = map[string]interface{}{
		"type":        "string",
		"description": "Mask outline color as hex (#RRGGBB or #RRGGBBAA). Default #FF0000",
	}

	return []Tool{
		// Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and a suggested starting radius for segmentation.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_edge_detect",
			Description: "Run Canny edge detection and return the edge map as base64 PNG. Use this to check that the object's rim produces clean edges before segmenting.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"edge_size": map[string]interface{}{
						"type":        "integer",
						"description": "Gaussian smoothing sigma in pixels. Default from server config (3)",
					},
				},
				"required": []string{"path"},
			},
		},

		// Segmentation
		{
			Name:        "pie_locate_circle",
			Description: "Find the best supported circle near an estimated radius with a Hough transform. Returns center, radius and score.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": circleProperties(),
				"required":   []string{"path", "radius", "radius_width"},
			},
		},
		{
			Name:        "pie_segment",
			Description: "Segment the most prominent circular object automatically (Hough circle + seeded watershed). The mask is stored for pie_crop_mask, pie_calculate and pie_simulate.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": segmentProps,
				"required":   []string{"path", "radius", "radius_width"},
			},
		},
		{
			Name:        "pie_measure_radius",
			Description: "Measure a radius from a center point and a point on the object's edge. Useful to estimate the radius argument of pie_segment.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     pathProperty(),
					"center_x": map[string]interface{}{"type": "integer", "description": "Center X coordinate"},
					"center_y": map[string]interface{}{"type": "integer", "description": "Center Y coordinate"},
					"edge_x":   map[string]interface{}{"type": "integer", "description": "Edge X coordinate"},
					"edge_y":   map[string]interface{}{"type": "integer", "description": "Edge Y coordinate"},
				},
				"required": []string{"path", "center_x", "center_y", "edge_x", "edge_y"},
			},
		},

		// Manual Segmentation
		{
			Name:        "pie_superpixels",
			Description: "Split the image into superpixels for manual painting and return the image with region borders drawn.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"segments": map[string]interface{}{
						"type":        "integer",
						"description": "Approximate number of superpixels. Default from server config (2500)",
					},
					"compactness": map[string]interface{}{
						"type":        "number",
						"description": "Higher values give squarer superpixels. Default from server config (15)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "pie_paint",
			Description: "Edit the manual mask: add or remove the superpixel under (x, y), fill holes, undo the last edit, or clear. The mask is stored for pie_crop_mask, pie_calculate and pie_simulate.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"action": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"add", "remove", "fill", "undo", "clear"},
						"description": "Edit to apply",
					},
					"x": map[string]interface{}{"type": "integer", "description": "X coordinate for add/remove"},
					"y": map[string]interface{}{"type": "integer", "description": "Y coordinate for add/remove"},
					"segments": map[string]interface{}{
						"type":        "integer",
						"description": "Superpixel count; must match pie_superpixels to keep the current mask",
					},
					"compactness": map[string]interface{}{
						"type":        "number",
						"description": "Superpixel compactness; must match pie_superpixels to keep the current mask",
					},
					"include_view": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the superpixel view with the painted mask in white",
					},
				},
				"required": []string{"path", "action"},
			},
		},
		{
			Name:        "pie_mask_load",
			Description: "Load a mask from an image file (light pixels = object) and store it for an image path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Image path to store the mask under. Defaults to mask_path",
					},
					"mask_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the mask image",
					},
				},
				"required": []string{"mask_path"},
			},
		},

		// Circularity
		{
			Name:        "pie_crop_mask",
			Description: "Crop the stored mask to the bounding box of the object and report its size and fill ratio.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"include_mask": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the cropped mask as base64 PNG",
					},
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the photo cropped to the same box as base64 PNG",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "pie_calculate",
			Description: "Estimate pi from the stored mask in one random pass. A perfect circle gives about 3.1416; the distance from pi measures circularity. runs > 1 returns mean, standard deviation, median, min and max.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"runs": map[string]interface{}{
						"type":        "integer",
						"description": "Number of independent estimates. Default 1",
					},
					"seed": seedProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "pie_simulate",
			Description: "Estimate pi from the stored mask one dart at a time until the estimate is within criterion of pi or max_histories darts were thrown.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"max_histories": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of darts. Default from server config (31415)",
					},
					"criterion": map[string]interface{}{
						"type":        "number",
						"description": "Stop once |estimate - pi| is at most this. Default from server config (0.0000314)",
					},
					"seed": seedProperty(),
					"verbose": map[string]interface{}{
						"type":        "boolean",
						"description": "Log every trial to the server log",
					},
					"include_history": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the estimate after every trial",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
