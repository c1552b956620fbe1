// Package imaging provides the image-level operations of the circularity
// pipeline: loading, grayscale conversion, Canny edge extraction, radius
// measurement, cropping and diagnostic overlays.
//
// All operations work with standard Go image.Image types and use a
// coordinate system where (0,0) is at the top-left corner, X increases
// rightward, and Y increases downward. Images are treated as read-only;
// every function returns new data.
//
// # Edge Extraction
//
// DetectEdges is the first stage of automatic segmentation. It smooths the
// grayscale image with a Gaussian whose sigma is the caller's edge size and
// applies Canny hysteresis with a fixed high threshold tuned for 8-bit
// intensities. The resulting EdgeMap feeds the circle localizer in the
// detection package.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image operations
// are stateless and can be called concurrently.
//
// # Error Handling
//
// Functions return ErrInvalidImageShape for nil or empty images, and wrapped
// errors for coordinates outside the image and for file I/O failures.
package imaging
