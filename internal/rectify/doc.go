// Package rectify maps a quadrilateral region of a frame onto an upright
// rectangle.
//
// A Homography is solved from the four ordered source corners to the target
// rectangle's corners (0,0), (W,0), (W,H), (0,H). Warp then walks every
// destination pixel centre, maps it back into the source through the
// inverse homography and samples bilinearly with edge clamping. Rows are
// processed in parallel.
//
// Quadrilaterals with coincident corners or three collinear corners have no
// projective transform; Solve and Warp report them as degenerate geometry
// errors so the caller can fall back to a bounding-box crop.
package rectify
