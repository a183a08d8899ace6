package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan-mcp/internal/detection"
	"github.com/ironsheep/docscan-mcp/internal/enhance"
	apperrors "github.com/ironsheep/docscan-mcp/internal/errors"
	"github.com/ironsheep/docscan-mcp/internal/export"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/logger"
	"github.com/ironsheep/docscan-mcp/internal/ocr"
	"github.com/ironsheep/docscan-mcp/internal/scanner"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "document_scan").
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
// Invalid arguments return code -32602; any other tool failure returns
// -32000. The error data carries the application error type.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		errType := apperrors.TypeOf(err)
		logger.WithFields(logrus.Fields{
			"tool":       params.Name,
			"error_type": errType,
		}).WithError(err).Warn("tool call failed")

		code := -32000
		if errType == apperrors.ErrorTypeValidation {
			code = -32602
		}
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    code,
				Message: "Tool execution failed",
				Data: map[string]interface{}{
					"type":    errType,
					"details": err.Error(),
				},
			},
		}
	}

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
//  2. Applies default values for optional parameters
//  3. Loads the frame through the image cache
//  4. Calls the scanner, detection, OCR or export code
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Scanning
	case "document_scan":
		return s.handleDocumentScan(ctx, args)
	case "document_detect":
		return s.handleDocumentDetect(ctx, args)
	case "document_enhance":
		return s.handleDocumentEnhance(ctx, args)

	// Inspection
	case "document_edges":
		return s.handleDocumentEdges(ctx, args)
	case "document_text_regions":
		return s.handleDocumentTextRegions(ctx, args)
	case "document_tone":
		return s.handleDocumentTone(ctx, args)

	// Text and output
	case "document_ocr":
		return s.handleDocumentOCR(ctx, args)
	case "document_export":
		return s.handleDocumentExport(ctx, args)

	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown tool: %s", name), nil)
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

// decodeArgs unmarshals tool arguments and requires a path.
func decodeArgs(args json.RawMessage, v interface{ path() string }) error {
	if len(args) == 0 {
		return apperrors.NewValidationError("missing arguments", nil)
	}
	if err := json.Unmarshal(args, v); err != nil {
		return apperrors.NewValidationError("invalid arguments", err)
	}
	if strings.TrimSpace(v.path()) == "" {
		return apperrors.NewValidationError("path is required", nil)
	}
	return nil
}

// loadFrame reads an image through the cache.
func (s *Server) loadFrame(ctx context.Context, path string) (*imaging.Frame, error) {
	return scanner.NewFileSource(path, s.cache).Capture(ctx)
}

type pathArgs struct {
	Path string `json:"path"`
}

func (a *pathArgs) path() string { return a.Path }

// === Scanning Handlers ===

type documentScanArgs struct {
	pathArgs
	OCR          bool   `json:"ocr"`
	Language     string `json:"language"`
	ExpectedText string `json:"expected_text"`
	Format       string `json:"format"`
	OmitImage    bool   `json:"omit_image"`
}

// scanResponse is the JSON shape of a scan.
type scanResponse struct {
	Status       scanner.Status        `json:"status"`
	Corners      detection.Quad        `json:"corners"`
	CropFallback bool                  `json:"crop_fallback"`
	Tone         imaging.ToneResult    `json:"tone"`
	TimingsMS    map[string]int64      `json:"timings_ms"`
	Text         string                `json:"text,omitempty"`
	Language     string                `json:"language,omitempty"`
	OCRSkipped   bool                  `json:"ocr_skipped,omitempty"`
	OCRError     string                `json:"ocr_error,omitempty"`
	Accuracy     *ocr.Accuracy         `json:"accuracy,omitempty"`
	Image        *imaging.EncodedImage `json:"image,omitempty"`
}

func newScanResponse(scan *scanner.Scan) *scanResponse {
	return &scanResponse{
		Status:       scan.Status,
		Corners:      scan.Corners,
		CropFallback: scan.CropFallback,
		Tone:         scan.Tone,
		TimingsMS:    scan.Timings.Milliseconds(),
		Text:         scan.Text,
		Language:     scan.Language,
		OCRSkipped:   scan.OCRSkipped,
		Accuracy:     scan.Accuracy,
	}
}

// scan runs a capture through the session. A recognition failure is not
// fatal: the scan is returned with the failure message.
func (s *Server) scan(ctx context.Context, path string, req scanner.ScanRequest) (*scanner.Scan, string, error) {
	scan, err := s.session.Capture(ctx, scanner.NewFileSource(path, s.cache), req)
	if err != nil {
		if scan != nil && apperrors.IsType(err, apperrors.ErrorTypeRecognition) {
			return scan, err.Error(), nil
		}
		return nil, "", err
	}
	return scan, "", nil
}

func (s *Server) handleDocumentScan(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a documentScanArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	scan, ocrErr, err := s.scan(ctx, a.Path, scanner.ScanRequest{
		OCR:          a.OCR,
		Language:     a.Language,
		ExpectedText: a.ExpectedText,
	})
	if err != nil {
		return nil, err
	}

	resp := newScanResponse(scan)
	resp.OCRError = ocrErr
	if !a.OmitImage {
		img, err := imaging.EncodeBase64(scan.Page, a.Format)
		if err != nil {
			return nil, apperrors.NewValidationError("cannot encode page", err)
		}
		resp.Image = img
	}
	return resp, nil
}

type documentDetectArgs struct {
	pathArgs
	IncludeEdges bool `json:"include_edges"`
}

type detectResponse struct {
	*scanner.Detection
	Width  int                   `json:"width"`
	Height int                   `json:"height"`
	Area   float64               `json:"area"`
	Image  *imaging.EncodedImage `json:"edges,omitempty"`
}

func (s *Server) handleDocumentDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a documentDetectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	frame, err := s.loadFrame(ctx, a.Path)
	if err != nil {
		return nil, err
	}

	det, err := s.service.Pipeline().Detect(ctx, frame)
	if err != nil {
		return nil, err
	}

	resp := &detectResponse{
		Detection: det,
		Width:     frame.Width,
		Height:    frame.Height,
		Area:      det.Corners.Area(),
	}
	if a.IncludeEdges {
		resp.Image, err = imaging.EncodeBase64(det.Edges, "png")
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}

type documentEnhanceArgs struct {
	pathArgs
	Mode   string `json:"mode"`
	Format string `json:"format"`
}

// handleDocumentEnhance enhances an image that is already flat, without
// detection or rectification.
func (s *Server) handleDocumentEnhance(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a documentEnhanceArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	mode, err := enhance.ParseMode(a.Mode)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid mode", err)
	}
	frame, err := s.loadFrame(ctx, a.Path)
	if err != nil {
		return nil, err
	}

	out, err := enhance.Apply(frame, mode)
	if err != nil {
		return nil, err
	}
	return imaging.EncodeBase64(out, a.Format)
}

// === Inspection Handlers ===

type documentEdgesArgs struct {
	pathArgs
	BlurKernel    int     `json:"blur_kernel"`
	ThresholdLow  float64 `json:"threshold_low"`
	ThresholdHigh float64 `json:"threshold_high"`
}

func (s *Server) handleDocumentEdges(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a documentEdgesArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	opts := s.service.Pipeline().Options()
	if a.BlurKernel == 0 {
		a.BlurKernel = opts.BlurKernel
	}
	if a.ThresholdLow == 0 {
		a.ThresholdLow = opts.CannyLow
	}
	if a.ThresholdHigh == 0 {
		a.ThresholdHigh = opts.CannyHigh
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, apperrors.NewAcquisitionError(fmt.Sprintf("cannot read %s", a.Path), err)
	}
	return imaging.EdgeDetect(img, a.BlurKernel, a.ThresholdLow, a.ThresholdHigh)
}

type documentTextRegionsArgs struct {
	pathArgs
	MinConfidence float64 `json:"min_confidence"`
}

func (s *Server) handleDocumentTextRegions(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a documentTextRegionsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.MinConfidence == 0 {
		a.MinConfidence = 0.5
	}
	frame, err := s.loadFrame(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	return detection.DetectTextRegions(frame, a.MinConfidence), nil
}

func (s *Server) handleDocumentTone(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	frame, err := s.loadFrame(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.MeasureTone(frame), nil
}

// === Text and Output Handlers ===

type documentOCRArgs struct {
	pathArgs
	Language     string `json:"language"`
	ExpectedText string `json:"expected_text"`
	X1           int    `json:"x1"`
	Y1           int    `json:"y1"`
	X2           int    `json:"x2"`
	Y2           int    `json:"y2"`
}

type ocrResponse struct {
	*ocr.Result
	Accuracy *ocr.Accuracy `json:"accuracy,omitempty"`
}

// handleDocumentOCR recognizes text in an image as-is. A non-empty region
// restricts recognition to that rectangle.
func (s *Server) handleDocumentOCR(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a documentOCRArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	lang := a.Language
	if lang == "" {
		lang = s.service.Language()
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, apperrors.NewAcquisitionError(fmt.Sprintf("cannot read %s", a.Path), err)
	}
	region := image.Rect(a.X1, a.Y1, a.X2, a.Y2)

	result, err := s.recognize(ctx, img, region, lang)
	if err != nil {
		return nil, err
	}

	resp := &ocrResponse{Result: result}
	if a.ExpectedText != "" {
		acc := ocr.Score(a.ExpectedText, result.FullText)
		resp.Accuracy = &acc
	}
	return resp, nil
}

// recognize uses word-level extraction when the recognizer supports it.
func (s *Server) recognize(ctx context.Context, img image.Image, region image.Rectangle, lang string) (*ocr.Result, error) {
	if ex, ok := s.service.Recognizer().(ocr.Extractor); ok {
		if region.Empty() {
			return ex.Extract(ctx, img, lang)
		}
		return ex.ExtractRegion(ctx, img, region, lang)
	}

	if !region.Empty() {
		region = region.Intersect(img.Bounds())
		if region.Empty() {
			return nil, apperrors.NewValidationError("region is outside the image", nil)
		}
		img = imaging.CropResize(imaging.FromImage(img), region, region.Dx(), region.Dy()).Image()
	}
	text, err := s.service.Recognize(ctx, imaging.FromImage(img), lang)
	if err != nil {
		return nil, err
	}
	return &ocr.Result{FullText: text, Language: lang, Regions: []ocr.TextRegion{}}, nil
}

type documentExportArgs struct {
	pathArgs
	Format   string `json:"format"`
	Text     string `json:"text"`
	Language string `json:"language"`
	// Raw exports the image as-is instead of scanning it first.
	Raw bool `json:"raw"`
}

type exportResponse struct {
	Filename   string `json:"filename"`
	MimeType   string `json:"mime_type"`
	Size       int    `json:"size"`
	DataBase64 string `json:"data_base64"`
	Text       string `json:"text,omitempty"`
	OCRError   string `json:"ocr_error,omitempty"`
}

// handleDocumentExport scans an image and renders it in the requested
// format. Text formats run OCR unless text is supplied.
func (s *Server) handleDocumentExport(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a documentExportArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if _, err := export.New(a.Format, nil, ""); err != nil {
		return nil, err
	}

	needText := isTextFormat(a.Format) && a.Text == ""
	text := a.Text
	var page *imaging.Frame
	var ocrErr string

	switch {
	case isTextFormat(a.Format) && a.Text != "":
		// Nothing to scan.
	case a.Raw:
		frame, err := s.loadFrame(ctx, a.Path)
		if err != nil {
			return nil, err
		}
		page = frame
		if needText {
			t, err := s.service.Recognize(ctx, frame, a.Language)
			if err != nil {
				return nil, err
			}
			text = t
		}
	default:
		scan, msg, err := s.scan(ctx, a.Path, scanner.ScanRequest{OCR: needText, Language: a.Language})
		if err != nil {
			return nil, err
		}
		page, ocrErr = scan.Page, msg
		if needText {
			text = scan.Text
		}
	}

	artifact, err := export.New(a.Format, page, text)
	if err != nil {
		return nil, err
	}
	doc, err := export.Render(artifact)
	if err != nil {
		return nil, err
	}

	resp := &exportResponse{
		Filename:   doc.Filename,
		MimeType:   doc.MimeType,
		Size:       len(doc.Data),
		DataBase64: base64.StdEncoding.EncodeToString(doc.Data),
		OCRError:   ocrErr,
	}
	if needText {
		resp.Text = text
	}
	return resp, nil
}

func isTextFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case export.FormatPDFText, export.FormatDOCX, "word", export.FormatText, "text":
		return true
	}
	return false
}
