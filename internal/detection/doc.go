// Package detection locates and segments a single roughly circular object
// in an image.
//
// # Automatic Segmentation
//
// HoughSeededWatershed chains the stages below. Each stage is exported so
// callers can inspect or replace it:
//
//  1. Edges: imaging.DetectEdges (Canny, sigma = edge size)
//  2. Circle: LocateCircle, a Hough transform restricted to the radius band
//     [r-w, r+w) in steps of DefaultRadiusStep
//  3. Seeds: BuildSeeds marks a filled disk of radius r-w/2 as inside and
//     everything beyond radius r+w/2 as outside
//  4. Growth: Watershed floods the morphological gradient of the image
//     from both seeds; the inside basin becomes the mask
//
// The caller supplies a rough radius and a tolerance. Overestimating the
// tolerance costs search time; underestimating it can miss the object.
//
// # Superpixels
//
// Superpixels partitions an image into compact regions of similar color
// (SLIC in CIE-Lab). The paint package builds masks from these regions by
// hand when the automatic pipeline is not good enough.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
package detection
