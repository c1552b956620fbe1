// Package mask provides the immutable binary mask used throughout the
// circularity pipeline.
//
// A Mask marks the pixels that belong to the segmented object with 1 and
// everything else with 0. Masks are never modified in place: every
// operation (crop, union, subtract, hole filling) returns a new Mask, so a
// mask handed to an estimator can be shared freely between goroutines.
//
// # Coordinate System
//
// Masks use the same convention as the imaging package:
//   - Origin (0, 0) at the top-left corner
//   - X increases rightward (columns)
//   - Y increases downward (rows)
//
// # Errors
//
//   - ErrInvalidSize: non-positive dimensions or a pixel buffer of the wrong length
//   - ErrSizeMismatch: combining two masks of different dimensions
//   - ErrEmptyMask: bounds requested for a mask with no set pixels
package mask
