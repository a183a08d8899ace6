package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ironsheep/docscan-mcp/internal/config"
	apperrors "github.com/ironsheep/docscan-mcp/internal/errors"
	"github.com/ironsheep/docscan-mcp/internal/export"
	"github.com/ironsheep/docscan-mcp/internal/ocr"
	"github.com/ironsheep/docscan-mcp/internal/scanner"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		RequestTimeout: 10 * time.Second,
		MaxUploadBytes: 4 << 20,
	}
}

func newTestHandler(t *testing.T, rec ocr.Recognizer, cfg *config.Config) http.Handler {
	t.Helper()
	pipeline, err := scanner.NewPipeline(scanner.DefaultOptions())
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	return NewHandler(scanner.NewService(pipeline, rec, ""), cfg)
}

// documentPNG encodes a white page on a dark background.
func documentPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 300, 240))
	for y := 0; y < 240; y++ {
		for x := 0; x < 300; x++ {
			c := color.RGBA{30, 30, 30, 255}
			if x >= 60 && x < 240 && y >= 40 && y < 200 {
				c = color.RGBA{250, 250, 250, 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

// multipartRequest builds a POST with an optional frame upload and form fields.
func multipartRequest(t *testing.T, target string, frame []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if frame != nil {
		part, err := w.CreateFormFile(frameField, "capture.png")
		if err != nil {
			t.Fatalf("CreateFormFile failed: %v", err)
		}
		part.Write(frame)
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("WriteField failed: %v", err)
		}
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body is not JSON: %v\n%s", err, rec.Body.String())
	}
	return resp
}

func TestHealthCheck(t *testing.T) {
	h := newTestHandler(t, nil, testConfig())

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "available" || body["version"] != Version {
		t.Errorf("got %v", body)
	}
}

func TestScan(t *testing.T) {
	h := newTestHandler(t, nil, testConfig())

	rec := serve(h, multipartRequest(t, "/scan", documentPNG(t), nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp ScanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Status != scanner.StatusDocumentDetected {
		t.Errorf("status: got %s, want %s", resp.Status, scanner.StatusDocumentDetected)
	}
	if resp.Image == nil || resp.Image.Width != 800 || resp.Image.Height != 1000 {
		t.Errorf("image: got %+v, want an 800x1000 page", resp.Image)
	}
	if resp.Mode != "sharpen" {
		t.Errorf("mode: got %s, want sharpen", resp.Mode)
	}
	if resp.Text != "" {
		t.Errorf("text should be empty without ocr, got %q", resp.Text)
	}
}

func TestScan_WithOCRAndMode(t *testing.T) {
	fake := ocr.RecognizerFunc(func(ctx context.Context, img image.Image, lang string) (string, error) {
		return "NOTA FISCAL", nil
	})
	h := newTestHandler(t, fake, testConfig())

	rec := serve(h, multipartRequest(t, "/scan?ocr=true&lang=eng&mode=threshold&format=jpeg&expected_text=NOTA+FISCAL", documentPNG(t), nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp ScanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Text != "NOTA FISCAL" || resp.Language != "eng" {
		t.Errorf("ocr: got text %q language %q", resp.Text, resp.Language)
	}
	if resp.Mode != "threshold" {
		t.Errorf("mode: got %s, want threshold", resp.Mode)
	}
	if resp.Image.MimeType != "image/jpeg" {
		t.Errorf("mime_type: got %s, want image/jpeg", resp.Image.MimeType)
	}
	if resp.Accuracy == nil || resp.Accuracy.CharDistance != 0 {
		t.Errorf("accuracy: got %+v, want an exact match", resp.Accuracy)
	}
}

func TestScan_OCRFailureKeepsPage(t *testing.T) {
	fake := ocr.RecognizerFunc(func(ctx context.Context, img image.Image, lang string) (string, error) {
		return "", errors.New("engine crashed")
	})
	h := newTestHandler(t, fake, testConfig())

	rec := serve(h, multipartRequest(t, "/scan?ocr=1", documentPNG(t), nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp ScanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !strings.Contains(resp.OCRError, "engine crashed") {
		t.Errorf("ocr_error: got %q", resp.OCRError)
	}
	if resp.Image == nil {
		t.Error("the page should still be returned")
	}
}

func TestScan_Errors(t *testing.T) {
	h := newTestHandler(t, nil, testConfig())

	tests := []struct {
		name     string
		req      *http.Request
		wantCode int
		wantType apperrors.ErrorType
	}{
		{
			name:     "missing frame",
			req:      multipartRequest(t, "/scan", nil, map[string]string{"note": "x"}),
			wantCode: http.StatusBadRequest,
			wantType: apperrors.ErrorTypeValidation,
		},
		{
			name:     "undecodable frame",
			req:      multipartRequest(t, "/scan", []byte("not an image"), nil),
			wantCode: http.StatusUnprocessableEntity,
			wantType: apperrors.ErrorTypeAcquisition,
		},
		{
			name:     "bad ocr flag",
			req:      multipartRequest(t, "/scan?ocr=maybe", documentPNG(t), nil),
			wantCode: http.StatusBadRequest,
			wantType: apperrors.ErrorTypeValidation,
		},
		{
			name:     "bad mode",
			req:      multipartRequest(t, "/scan?mode=sepia", documentPNG(t), nil),
			wantCode: http.StatusBadRequest,
			wantType: apperrors.ErrorTypeValidation,
		},
		{
			name:     "bad format",
			req:      multipartRequest(t, "/scan?format=gif", documentPNG(t), nil),
			wantCode: http.StatusBadRequest,
			wantType: apperrors.ErrorTypeValidation,
		},
		{
			name:     "ocr without engine",
			req:      multipartRequest(t, "/scan?ocr=true", documentPNG(t), nil),
			wantCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.req)
			if rec.Code != tt.wantCode {
				t.Fatalf("status: got %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantType == "" {
				return
			}
			if got := decodeError(t, rec).Type; got != string(tt.wantType) {
				t.Errorf("type: got %q, want %q", got, tt.wantType)
			}
		})
	}
}

func TestScan_UploadTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.MaxUploadBytes = 512
	h := newTestHandler(t, nil, cfg)

	rec := serve(h, multipartRequest(t, "/scan", documentPNG(t), nil))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status: got %d, want 413", rec.Code)
	}
}

func TestExport(t *testing.T) {
	fake := ocr.RecognizerFunc(func(ctx context.Context, img image.Image, lang string) (string, error) {
		return "linha um\nlinha dois", nil
	})
	h := newTestHandler(t, fake, testConfig())

	tests := []struct {
		name     string
		req      *http.Request
		mime     string
		filename string
		magic    string
	}{
		{"png", multipartRequest(t, "/export/png", documentPNG(t), nil), "image/png", "documento.png", "\x89PNG"},
		{"jpeg", multipartRequest(t, "/export/jpg", documentPNG(t), nil), "image/jpeg", "documento.jpg", "\xff\xd8\xff"},
		{"pdf", multipartRequest(t, "/export/pdf", documentPNG(t), nil), export.MimePDF, "documento.pdf", "%PDF"},
		{"pdf text from ocr", multipartRequest(t, "/export/pdf_text", documentPNG(t), nil), export.MimePDF, "documento.pdf", "%PDF"},
		{"docx from text", multipartRequest(t, "/export/docx", nil, map[string]string{"text": "olá"}), export.MimeDOCX, "documento.docx", "PK"},
		{"txt from ocr", multipartRequest(t, "/export/txt", documentPNG(t), nil), export.MimePlain, "documento.txt", "linha um\nlinha dois"},
		{"txt from text", multipartRequest(t, "/export/text", nil, map[string]string{"text": "fornecido"}), export.MimePlain, "documento.txt", "fornecido"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.req)
			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d, want 200: %s", rec.Code, rec.Body.String())
			}
			if got := rec.Header().Get("Content-Type"); got != tt.mime {
				t.Errorf("Content-Type: got %q, want %q", got, tt.mime)
			}
			if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, tt.filename) {
				t.Errorf("Content-Disposition: got %q, want filename %s", got, tt.filename)
			}
			if !bytes.HasPrefix(rec.Body.Bytes(), []byte(tt.magic)) {
				t.Errorf("body does not start with %q", tt.magic)
			}
		})
	}
}

func TestExport_Errors(t *testing.T) {
	failing := ocr.RecognizerFunc(func(ctx context.Context, img image.Image, lang string) (string, error) {
		return "", errors.New("no tessdata")
	})
	h := newTestHandler(t, failing, testConfig())

	tests := []struct {
		name     string
		req      *http.Request
		wantCode int
	}{
		{"unknown format", multipartRequest(t, "/export/odt", documentPNG(t), nil), http.StatusBadRequest},
		{"image format without frame", multipartRequest(t, "/export/pdf", nil, map[string]string{"text": "x"}), http.StatusBadRequest},
		{"text format with failing ocr", multipartRequest(t, "/export/docx", documentPNG(t), nil), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.req)
			if rec.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

func TestDetermineStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperrors.NewValidationError("bad", nil), http.StatusBadRequest},
		{"acquisition", apperrors.NewAcquisitionError("unreadable", nil), http.StatusUnprocessableEntity},
		{"degenerate", apperrors.NewDegenerateGeometryError("flat", nil), http.StatusUnprocessableEntity},
		{"recognition", apperrors.NewRecognitionError("ocr", nil), http.StatusBadGateway},
		{"cancelled", apperrors.NewCancelledError("stop", context.Canceled), http.StatusServiceUnavailable},
		{"deadline", apperrors.NewCancelledError("slow", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"too large", errBodyTooLarge, http.StatusRequestEntityTooLarge},
		{"internal", apperrors.NewInternalError("boom", nil), http.StatusInternalServerError},
		{"plain", errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := determineStatusCode(tt.err); got != tt.want {
				t.Errorf("determineStatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
