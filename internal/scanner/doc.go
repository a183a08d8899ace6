// Package scanner turns a captured frame into a flat, enhanced page.
//
// # Pipeline
//
// A Pipeline runs the stages strictly in sequence:
//
//  1. grayscale and Gaussian blur
//  2. Canny edge detection
//  3. outer contour extraction
//  4. quadrilateral selection, falling back to the full frame
//  5. perspective rectification to the target size
//  6. enhancement
//
// Detection may run on a downscaled copy of the frame; the selected
// corners are mapped back before rectification, which always samples the
// full-resolution frame. When the corners cannot be rectified the
// bounding box of the corners is cropped and resized instead, so every
// successful run produces a target-sized page.
//
// # Sources and sessions
//
// A FrameSource supplies frames (a file, uploaded bytes, a camera). A
// Session offloads captures to a WorkerPool and keeps only the most
// recent one: starting a capture cancels the capture in flight, whose
// caller receives ErrSuperseded.
//
// # Thread Safety
//
// Pipeline and Service are safe for concurrent use. Runs never share
// buffers.
package scanner
