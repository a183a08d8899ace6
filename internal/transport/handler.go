// Package transport exposes the scanner over HTTP for browser uploads.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan-mcp/internal/config"
	"github.com/ironsheep/docscan-mcp/internal/detection"
	"github.com/ironsheep/docscan-mcp/internal/enhance"
	apperrors "github.com/ironsheep/docscan-mcp/internal/errors"
	"github.com/ironsheep/docscan-mcp/internal/export"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/logger"
	"github.com/ironsheep/docscan-mcp/internal/ocr"
	"github.com/ironsheep/docscan-mcp/internal/scanner"
)

// Version is reported by the health check.
var Version = "dev"

// frameField is the multipart field carrying the photographed page.
const frameField = "frame"

// ErrorResponse is the JSON body of every failed request. Type is the
// application error category when one is known.
type ErrorResponse struct {
	Error   string `json:"error"`
	Type    string `json:"type,omitempty"`
	Message string `json:"message,omitempty"`
}

// ScanResponse is the JSON body of POST /scan.
type ScanResponse struct {
	Status       scanner.Status        `json:"status"`
	Corners      detection.Quad        `json:"corners"`
	CropFallback bool                  `json:"crop_fallback"`
	Mode         enhance.Mode          `json:"mode"`
	Tone         imaging.ToneResult    `json:"tone"`
	TimingsMS    map[string]int64      `json:"timings_ms"`
	Text         string                `json:"text,omitempty"`
	Language     string                `json:"language,omitempty"`
	OCRSkipped   bool                  `json:"ocr_skipped,omitempty"`
	OCRError     string                `json:"ocr_error,omitempty"`
	Accuracy     *ocr.Accuracy         `json:"accuracy,omitempty"`
	Image        *imaging.EncodedImage `json:"image"`
}

// NewHandler returns the HTTP API:
//
//	GET  /health          liveness and version
//	POST /scan            scan an uploaded frame
//	POST /export/:format  scan and render a frame, or render supplied text
func NewHandler(service *scanner.Service, cfg *config.Config) http.Handler {
	r := gin.New()

	r.Use(
		gin.Recovery(),
		requestLogger(),
		requestSizeLimiter(cfg.MaxUploadBytes),
		errorHandler(),
	)

	r.GET("/health", healthCheck)
	r.POST("/scan", scanDocument(service, cfg))
	r.POST("/export/:format", exportDocument(service, cfg))

	return r
}

func scanDocument(service *scanner.Service, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		req, err := scanRequestFromQuery(c)
		if err != nil {
			respondError(c, err)
			return
		}

		mode := service.Pipeline().Options().Mode
		if m := c.Query("mode"); m != "" {
			if mode, err = enhance.ParseMode(m); err != nil {
				respondError(c, apperrors.NewValidationError("invalid mode", err))
				return
			}
		}
		format := c.DefaultQuery("format", "png")
		if _, _, err := imaging.ParseFormat(format); err != nil {
			respondError(c, apperrors.NewValidationError("invalid format", err))
			return
		}

		scan, ocrErr, err := scanUpload(ctx, c, service, req)
		if err != nil {
			respondError(c, err)
			return
		}

		page := scan.Page
		if mode != service.Pipeline().Options().Mode {
			if page, err = enhance.Apply(scan.Rectified, mode); err != nil {
				respondError(c, apperrors.NewInternalError("enhancement failed", err))
				return
			}
		}
		img, err := imaging.EncodeBase64(page, format)
		if err != nil {
			respondError(c, apperrors.NewInternalError("cannot encode page", err))
			return
		}

		c.JSON(http.StatusOK, ScanResponse{
			Status:       scan.Status,
			Corners:      scan.Corners,
			CropFallback: scan.CropFallback,
			Mode:         mode,
			Tone:         scan.Tone,
			TimingsMS:    scan.Timings.Milliseconds(),
			Text:         scan.Text,
			Language:     scan.Language,
			OCRSkipped:   scan.OCRSkipped,
			OCRError:     ocrErr,
			Accuracy:     scan.Accuracy,
			Image:        img,
		})
	}
}

func exportDocument(service *scanner.Service, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		format := c.Param("format")
		if _, err := export.New(format, nil, ""); err != nil {
			respondError(c, err)
			return
		}

		text := c.PostForm("text")
		textFormat := isTextFormat(format)

		var page *imaging.Frame
		if !textFormat || text == "" {
			req := scanner.ScanRequest{
				OCR:      textFormat,
				Language: c.Query("lang"),
			}
			scan, ocrErr, err := scanUpload(ctx, c, service, req)
			if err != nil {
				respondError(c, err)
				return
			}
			if textFormat && ocrErr != "" {
				respondError(c, apperrors.NewRecognitionError(ocrErr, nil))
				return
			}
			page, text = scan.Page, scan.Text
		}

		artifact, err := export.New(format, page, text)
		if err != nil {
			respondError(c, err)
			return
		}
		doc, err := export.Render(artifact)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
		c.Data(http.StatusOK, doc.MimeType, doc.Data)
	}
}

// scanUpload decodes the uploaded frame and scans it. A recognition failure
// is not fatal: the scan is returned with the failure message.
func scanUpload(ctx context.Context, c *gin.Context, service *scanner.Service, req scanner.ScanRequest) (*scanner.Scan, string, error) {
	data, err := readUpload(c)
	if err != nil {
		return nil, "", err
	}

	frame, err := scanner.BytesSource{Data: data}.Capture(ctx)
	if err != nil {
		return nil, "", err
	}

	scan, err := service.Scan(ctx, frame, req)
	if err != nil {
		if scan != nil && apperrors.IsType(err, apperrors.ErrorTypeRecognition) {
			return scan, err.Error(), nil
		}
		return nil, "", err
	}
	return scan, "", nil
}

func readUpload(c *gin.Context) ([]byte, error) {
	fh, err := c.FormFile(frameField)
	if err != nil {
		if isBodyTooLarge(err) {
			return nil, errBodyTooLarge
		}
		return nil, apperrors.NewValidationError(fmt.Sprintf("missing %q upload", frameField), err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.NewAcquisitionError("cannot open upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.NewAcquisitionError("cannot read upload", err)
	}
	return data, nil
}

func scanRequestFromQuery(c *gin.Context) (scanner.ScanRequest, error) {
	req := scanner.ScanRequest{
		Language:     c.Query("lang"),
		ExpectedText: c.Query("expected_text"),
	}
	if v := c.Query("ocr"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return req, apperrors.NewValidationError("ocr must be a boolean", err)
		}
		req.OCR = on
	}
	return req, nil
}

func isTextFormat(format string) bool {
	a, err := export.New(format, nil, "")
	if err != nil {
		return false
	}
	switch a.(type) {
	case export.PDFText, export.Word, export.PlainText:
		return true
	}
	return false
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions

// errBodyTooLarge marks uploads rejected by requestSizeLimiter.
var errBodyTooLarge = errors.New("request body too large")

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || errors.Is(err, errBodyTooLarge)
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			respondError(c, errBodyTooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
			"latency_ms": time.Since(start).Milliseconds(),
		}).Info("request handled")
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			respondError(c, c.Errors.Last().Err)
		}
	}
}

// determineStatusCode maps an error to the HTTP status returned to clients.
func determineStatusCode(err error) int {
	if isBodyTooLarge(err) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeAcquisition, apperrors.ErrorTypeDegenerateGeometry:
		return http.StatusUnprocessableEntity
	case apperrors.ErrorTypeRecognition:
		return http.StatusBadGateway
	case apperrors.ErrorTypeCancelled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	code := determineStatusCode(err)

	resp := ErrorResponse{
		Error:   http.StatusText(code),
		Message: err.Error(),
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		resp.Type = string(appErr.Type)
	}

	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, resp)
}
