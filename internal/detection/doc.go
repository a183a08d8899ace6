// Package detection finds the document outline in an edge map.
//
// The package turns a binary edge frame into closed polygons and picks the
// one most likely to be the page:
//
//  1. Edge dilation: a 3x3 dilation closes one-pixel gaps left by
//     non-maximum suppression at sharp corners.
//  2. Component labeling: 8-connected edge pixels are grouped; tiny groups
//     are discarded as noise.
//  3. Boundary tracing: each component's outer boundary is walked with
//     Moore-neighbour tracing.
//  4. Nesting: components lying inside another component's outline (text,
//     figures, stains on the page) are dropped.
//  5. Simplification: each outline is reduced with a closed-curve
//     Douglas-Peucker pass at 2% of its perimeter.
//  6. Selection: the largest simplified polygon with exactly four vertices
//     wins; otherwise the whole frame is used as the page.
//  7. Refinement: lines fitted to each side of the winning outline replace
//     the simplified corners and are pulled in past the dilated edge band
//     (see RefineCorners).
//
// The package also provides a text line heuristic used to tell blank pages
// from pages worth sending to OCR.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
//
// Traced outlines use pixel coordinates, so a polygon around a frame of
// size W x H spans at most (0,0)-(W-1,H-1). Refined corners and the
// fallback quadrilateral use continuous coordinates, where pixel i covers
// [i, i+1), so the whole frame is (0,0)-(W,H).
//
// # Corner Order
//
// Quadrilaterals are always reported as top-left, top-right, bottom-right,
// bottom-left (clockwise on screen). See OrderCorners.
package detection
