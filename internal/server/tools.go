package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the schema of the image path argument shared by every tool.
var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file",
}

// placementProperties returns the schema of the arguments that describe
// where patches go. patch_plan, patch_extract and patch_overlay share them.
func placementProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": pathProperty,
		"width": map[string]interface{}{
			"type":        "integer",
			"description": "Patch width in pixels",
		},
		"height": map[string]interface{}{
			"type":        "integer",
			"description": "Patch height in pixels",
		},
		"method": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"uniform", "random", "grid", "origins"},
			"description": "Placement: 'uniform' spreads about count patches evenly, 'random' draws count independent origins, 'grid' uses columns x rows, 'origins' uses the given origins. Default uniform",
			"default":     "uniform",
		},
		"count": map[string]interface{}{
			"type":        "integer",
			"description": "Number of patches for uniform and random placement. Uniform placement picks the nearest grid, so the actual count may differ",
		},
		"columns": map[string]interface{}{
			"type":        "integer",
			"description": "Grid columns for method 'grid'",
		},
		"rows": map[string]interface{}{
			"type":        "integer",
			"description": "Grid rows for method 'grid'",
		},
		"origins": map[string]interface{}{
			"type":        "array",
			"description": "Patch top-left corners for method 'origins'. Patches that leave the image are skipped",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{"type": "integer"},
					"y": map[string]interface{}{"type": "integer"},
				},
				"required": []string{"x", "y"},
			},
		},
		"mask": map[string]interface{}{
			"type":        "object",
			"description": "Optional region to sample from (x2, y2 exclusive). Default is the whole image",
			"properties": map[string]interface{}{
				"x1": map[string]interface{}{"type": "integer"},
				"y1": map[string]interface{}{"type": "integer"},
				"x2": map[string]interface{}{"type": "integer"},
				"y2": map[string]interface{}{"type": "integer"},
			},
			"required": []string{"x1", "y1", "x2", "y2"},
		},
		"shrink": map[string]interface{}{
			"type":        "number",
			"description": "Optional factor in (0, 1]: sample only from the centered region of this relative size. Cannot be combined with mask",
		},
		"seed": map[string]interface{}{
			"type":        "integer",
			"description": "Optional seed for reproducible random placement",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	extractProps := placementProperties()
	extractProps["payload"] = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"png", "tensor", "luminance", "color", "edges", "ocr"},
		"description": "What to return per patch: 'png' base64 image, 'tensor' normalized CHW float values, 'luminance' luma matrix, 'color' mean and dominant colors, 'edges' Canny edge map, 'ocr' recognized text. Default png",
		"default":     "png",
	}
	extractProps["format"] = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"nrgba", "rgba"},
		"description": "Pixel format patches are cut in: 'nrgba' straight alpha, 'rgba' premultiplied. Default nrgba",
		"default":     "nrgba",
	}
	extractProps["normalize"] = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"imagenet", "none"},
		"description": "Tensor normalization. 'none' scales values to [0,1]. Default imagenet",
		"default":     "imagenet",
	}
	extractProps["color_count"] = map[string]interface{}{
		"type":        "integer",
		"description": "Number of dominant colors per patch for payload 'color'. Default 5",
		"default":     5,
	}
	extractProps["low_threshold"] = map[string]interface{}{
		"type":        "integer",
		"description": "Lower Canny hysteresis threshold (0-255) for payload 'edges'. Default 50",
		"default":     50,
	}
	extractProps["high_threshold"] = map[string]interface{}{
		"type":        "integer",
		"description": "Upper Canny hysteresis threshold (0-255) for payload 'edges'. Default 150",
		"default":     150,
	}
	extractProps["language"] = map[string]interface{}{
		"type":        "string",
		"description": "Tesseract language code for payload 'ocr'. Default eng",
		"default":     "eng",
	}
	extractProps["min_confidence"] = map[string]interface{}{
		"type":        "number",
		"description": "Drop OCR words below this confidence (0.0-1.0). Default 0",
		"default":     0.0,
	}

	overlayProps := placementProperties()
	overlayProps["show_index"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Label each patch with its index. Default true",
		"default":     true,
	}
	overlayProps["color"] = map[string]interface{}{
		"type":        "string",
		"description": "Patch outline color as hex (#RRGGBB or #RRGGBBAA). Default semi-transparent red",
		"default":     "#FF000080",
	}

	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The decoded image stays cached for the patch tools until evicted or the file changes.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_evict",
			Description: "Drop a decoded image from the cache to free memory. Without a path, every cached image is dropped.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Path of the image to drop. Omit to clear the whole cache",
					},
				},
				"required": []string{},
			},
		},

		// Patch Operations
		{
			Name:        "patch_plan",
			Description: "Compute where fixed-size patches would be cut from an image without extracting them. Returns the sampling region, the grid used for uniform placement, and every patch rectangle.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": placementProperties(),
				"required":   []string{"path", "width", "height"},
			},
		},
		{
			Name:        "patch_extract",
			Description: "Cut fixed-size patches from an image and convert each one to the requested payload. Returns the patches paired with their rectangles in image coordinates, plus any patches that had to be skipped.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": extractProps,
				"required":   []string{"path", "width", "height"},
			},
		},
		{
			Name:        "patch_overlay",
			Description: "Draw the planned patch rectangles over the image and return it as base64-encoded PNG. Use this to check a placement visually before extracting.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": overlayProps,
				"required":   []string{"path", "width", "height"},
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
