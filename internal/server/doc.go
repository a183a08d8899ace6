// Package server implements the MCP (Model Context Protocol) server for document scanning.
//
// This package provides a JSON-RPC 2.0 server that exposes the scanning pipeline
// through the MCP protocol. MCP clients hand it the path of a photographed page
// and get back a flat, enhanced page, its text, or an exported document.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Scanning:
//   - document_scan: Detect, rectify and enhance a page, optionally with OCR
//   - document_detect: Report the page outline without rectifying
//   - document_enhance: Enhance an image that is already flat
//
// Inspection:
//   - document_edges: Canny edge map used for detection
//   - document_text_regions: Find text-like areas in the edge map
//   - document_tone: Measure the paper color
//
// Text and Output:
//   - document_ocr: Recognize text in an image or a region of it
//   - document_export: Render a scan as PNG, JPEG, PDF, DOCX or plain text
//
// # Captures
//
// document_scan and document_export run through a single scanning session.
// A new capture cancels the one in flight; the superseded call fails with a
// cancelled error. Each tool call is bounded by the configured timeout.
//
// # Image Caching
//
// Decoded images are cached by path and reused across tool calls for the
// lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32602 for invalid arguments, -32000 for any other failure
//   - message: Human-readable error description
//   - data: the error type (acquisition_unavailable, recognition_failed,
//     cancelled, ...) and details
//
// A recognition failure during document_scan is not fatal: the page is
// returned with an ocr_error field.
//
// # Usage
//
//	srv := server.New(service, 0, 30*time.Second)
//	defer srv.Close()
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
