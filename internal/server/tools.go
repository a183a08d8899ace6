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
		"description": "Absolute path to the captured image (PNG, JPEG, GIF, BMP, TIFF or WebP)",
	}
}

func languageProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Tesseract language code, e.g. por, eng, por+eng (default: server setting, normally por)",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Scanning
		{
			Name:        "document_scan",
			Description: "Scan a photographed document: find the page outline, flatten it to a fixed-size page, enhance it, and optionally run OCR. Falls back to the whole frame when no page outline is found.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"ocr": map[string]interface{}{
						"type":        "boolean",
						"description": "Recognize text on the scanned page",
						"default":     false,
					},
					"language": languageProperty(),
					"expected_text": map[string]interface{}{
						"type":        "string",
						"description": "Known transcription; when given, character and word error rates are reported",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"png", "jpeg"},
						"description": "Encoding of the returned page image",
						"default":     "png",
					},
					"omit_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Return only metadata and text, without the page image",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "document_detect",
			Description: "Find the page outline in a photo without rectifying it. Returns the four corners (top-left, top-right, bottom-right, bottom-left) in image coordinates and whether the full-frame fallback was used.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"include_edges": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return the edge map used for detection as base64 PNG",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "document_enhance",
			Description: "Enhance an image that is already flat: sharpen, binarize with an adaptive threshold, or both.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"sharpen", "threshold", "both", "none"},
						"description": "Enhancement to apply",
						"default":     "sharpen",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"png", "jpeg"},
						"description": "Encoding of the returned image",
						"default":     "png",
					},
				},
				"required": []string{"path"},
			},
		},

		// Inspection
		{
			Name:        "document_edges",
			Description: "Return the Canny edge map of an image, as used for page detection. Useful to see why a page outline was or was not found.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"blur_kernel": map[string]interface{}{
						"type":        "integer",
						"description": "Gaussian blur kernel size applied first (odd, default 5)",
						"default":     5,
					},
					"threshold_low": map[string]interface{}{
						"type":        "number",
						"description": "Low hysteresis threshold (default 75)",
						"default":     75,
					},
					"threshold_high": map[string]interface{}{
						"type":        "number",
						"description": "High hysteresis threshold (default 200)",
						"default":     200,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "document_text_regions",
			Description: "Find blocks of printed text lines on a flat page. Returns bounding boxes with line counts and confidence scores.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"min_confidence": map[string]interface{}{
						"type":        "number",
						"description": "Minimum confidence (0-1) for a region to be reported",
						"default":     0.5,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "document_tone",
			Description: "Measure the overall paper tone of an image: mean color (hex, RGB, HSL), distance from white, and luminance spread.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Text and output
		{
			Name:        "document_ocr",
			Description: "Recognize text in an image as-is (no page detection). Optionally restrict recognition to a rectangle. Returns the full text and word bounding boxes when available.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     pathProperty(),
					"language": languageProperty(),
					"expected_text": map[string]interface{}{
						"type":        "string",
						"description": "Known transcription; when given, character and word error rates are reported",
					},
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Region left edge (optional)",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Region top edge (optional)",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Region right edge, exclusive (optional)",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Region bottom edge, exclusive (optional)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "document_export",
			Description: "Scan a document and return it as a downloadable file: page image (png, jpeg), image PDF (pdf), or its text as PDF (pdf_text), Word (docx) or plain text (txt). Text formats run OCR unless text is given.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"png", "jpeg", "pdf", "pdf_text", "docx", "txt"},
						"description": "Output format",
						"default":     "png",
					},
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Text for text formats; skips OCR",
					},
					"language": languageProperty(),
					"raw": map[string]interface{}{
						"type":        "boolean",
						"description": "Export the image as-is instead of scanning it first",
						"default":     false,
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
