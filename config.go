package admrender

import (
	"github.com/charmbracelet/log"

	"github.com/thesyncim/admrender/hrtf"
	"github.com/thesyncim/admrender/layout"
)

// ContentType is the ADM role declared for one input track.
type ContentType int

const (
	TypeObjects ContentType = iota
	TypeDirectSpeakers
	TypeHOA
	TypeBinaural

	// TypeMatrix is declared for completeness of the ADM role set; the
	// renderer does not support Matrix content and drops such tracks.
	TypeMatrix
)

// OutputBinaural selects two-channel binaural output instead of a
// loudspeaker bed.
const OutputBinaural = "binaural"

// StreamInfo declares, per input track, its content role. Tracks not
// declared here are dropped at render time with a warning.
type StreamInfo struct {
	TypeDefinition []ContentType
}

// NumTracks returns the declared track count.
func (s StreamInfo) NumTracks() int { return len(s.TypeDefinition) }

// Config carries everything Configure needs. OutputLayout is one of the
// layout catalog names ("0+2+0", "0+4+0", "0+5+0", "2+5+0", "0+7+0") or
// OutputBinaural.
type Config struct {
	OutputLayout string
	HOAOrder     int
	SampleRate   int
	MaxBlockSize int
	StreamInfo   StreamInfo

	// HRTF supplies impulse responses for binaural output; ignored for
	// loudspeaker beds, required for OutputBinaural.
	HRTF hrtf.Provider

	// ReproductionScreen drives screen scaling and screen edge lock.
	// The zero value (Present == false) disables both.
	ReproductionScreen layout.Screen

	// FadeTimeMilliSec is the cross-fade applied to head-orientation
	// changes and to the binaural DirectSpeaker encoders. Zero switches
	// instantly.
	FadeTimeMilliSec float64

	// Logger receives the runtime warnings of the per-frame path
	// (skipped tracks, block overruns). Nil discards them.
	Logger *log.Logger
}

func (c Config) validate() error {
	if c.OutputLayout != OutputBinaural && !layout.IsSupportedOutputLayout(c.OutputLayout) {
		return ErrUnsupportedLayout
	}
	if c.HOAOrder < 0 || c.HOAOrder > 3 {
		return ErrBadHOAOrder
	}
	if c.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}
	if c.MaxBlockSize <= 0 {
		return ErrInvalidMaxBlockSize
	}
	if c.OutputLayout == OutputBinaural && c.HRTF == nil {
		return ErrHRTFUnavailable
	}
	return nil
}
