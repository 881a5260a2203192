// Package vad finds speech in PCM audio with an energy heuristic.
//
// Each fixed-size frame is reduced to its RMS energy. A percentile of the
// energy distribution becomes the silence threshold, and runs of frames
// above it are collapsed into time-stamped regions bounded by a minimum and
// maximum duration. Regions can then be merged into larger groups sized for
// a transcription request.
//
// Everything in this package is synchronous and free of shared state.
package vad
