// Package estimate measures the circularity of a mask by estimating pi
// from it with Monte Carlo sampling.
//
// For a perfect disk inscribed in its bounding square the fraction of
// the square covered by the disk is pi/4, so four times the covered
// fraction approaches pi. Departures from 3.14159 measure how far the
// object is from circular.
//
// Two estimators are provided:
//
//   - Batch draws one random bit per pixel of the mask's bounding box and
//     counts how many set bits land on the mask.
//   - Simulation throws darts one at a time, recording the running
//     estimate after every trial until it comes within a criterion of pi
//     or a trial budget runs out.
//
// Both work on the mask's bounding box, so cropping a mask first does not
// change the result. Randomness always comes from a caller-supplied
// *rand.Rand; see NewRand.
package estimate
