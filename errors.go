// errors.go defines public error types for the admrender package.

package admrender

import "errors"

// Configuration errors. Configure returns one of these and never panics;
// a configuration failure is fatal to the Renderer instance.
var (
	// ErrUnsupportedLayout indicates the requested output layout is not
	// one of the supported loudspeaker beds or Binaural.
	ErrUnsupportedLayout = errors.New("admrender: unsupported output layout")

	// ErrBadHOAOrder indicates hoaOrder was outside {0,1,2,3}.
	ErrBadHOAOrder = errors.New("admrender: HOA order must be 0, 1, 2, or 3")

	// ErrHRTFUnavailable indicates the HRTF provider is nil or returned no
	// data for a direction required at configuration time (binaural
	// output only).
	ErrHRTFUnavailable = errors.New("admrender: HRTF provider unavailable or incomplete")

	// ErrInvalidSampleRate indicates an unsupported sample rate.
	ErrInvalidSampleRate = errors.New("admrender: invalid sample rate")

	// ErrInvalidMaxBlockSize indicates maxBlockSize was not positive.
	ErrInvalidMaxBlockSize = errors.New("admrender: maxBlockSize must be positive")
)

// Runtime warnings. These are never returned as errors from the per-frame
// API — the frame path is infallible by contract — but are
// passed to the configured diagnostic logger and the offending
// contribution is dropped from the frame.
var (
	// WarnSkippedTrack indicates an AddX call referenced a track index not
	// declared in StreamInfo at Configure time, or used an unsupported
	// HOA normalisation.
	WarnSkippedTrack = errors.New("admrender: skipped track (undeclared or unsupported)")

	// WarnBlockOverrun indicates nSamples+offset exceeded the configured
	// maxBlockSize; the block was clipped to the max.
	WarnBlockOverrun = errors.New("admrender: block size exceeds configured maximum")

	// WarnUnknownOrientation indicates SetHeadOrientation was called while
	// the renderer is not configured for Binaural output.
	WarnUnknownOrientation = errors.New("admrender: head orientation set on non-binaural renderer")
)
