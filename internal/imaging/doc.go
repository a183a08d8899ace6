// Package imaging provides the pixel-level stages of the document scanner.
//
// This package owns the Frame type that flows through the pipeline and the
// stages that operate directly on pixels: grayscale conversion, separable
// Gaussian blur, Canny edge detection, bounding-box cropping, encoding and
// paper tone measurement. Geometry (contours, quadrilaterals, homographies)
// lives in the detection and rectify packages.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Frames
//
// A Frame stores samples as float64 in the 0-255 range, interleaved by
// channel. Intensity frames have one channel, color frames have three or
// four (RGB or RGBA). Every stage returns a new Frame and leaves its input
// untouched, so a Frame is owned by whichever stage currently holds it and
// can be dropped as soon as the next stage returns.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Stage functions are
// stateless and can be called concurrently on different frames.
//
// # Error Handling
//
// Pixel stages have no error conditions: degenerate sizes (down to 1x1) are
// handled rather than rejected. Only decoding and encoding return errors.
package imaging
