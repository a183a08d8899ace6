// Package ocr defines the OCR collaborator used by the scanner.
//
// The pipeline only depends on the Recognizer interface; the Tesseract
// implementation lives in the tesseract subpackage so that packages which
// never run OCR do not need the Tesseract C library to build.
//
// # Languages
//
// Recognizers take a Tesseract language code. The default is Portuguese
// ("por"); other codes work when their language data is installed:
//   - "eng" - English
//   - "spa" - Spanish
//   - "por+eng" - several languages at once
//
// # Accuracy Scoring
//
// Score compares recognized text against the expected transcription and
// reports character and word error rates, both based on Levenshtein edit
// distance. It is used by tests and by the document_ocr tool when the
// caller supplies expected text.
//
// # Error Handling
//
// Recognition failures are reported as recognition_failed application
// errors. A failed recognition never invalidates the scanned image.
package ocr
