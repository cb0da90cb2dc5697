package admrender

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/thesyncim/admrender/ambisonic"
	"github.com/thesyncim/admrender/decorrelate"
	"github.com/thesyncim/admrender/gain"
	"github.com/thesyncim/admrender/interp"
	"github.com/thesyncim/admrender/layout"
	"github.com/thesyncim/admrender/types"
)

// Renderer is the per-frame rendering façade. Configure it once, then
// per frame call any number of AddObject / AddHoa / AddDirectSpeaker /
// AddBinaural (accumulating, order-independent), and finish the frame
// with GetRenderedAudio. The Renderer owns all DSP state; it is not
// safe for concurrent use, but independent instances are.
type Renderer struct {
	cfg        Config
	logger     *log.Logger
	configured bool

	outputLayout layout.Layout // bed layout, or HOA pseudo-layout for binaural
	isBinaural   bool
	nOutput      int

	objectCalc        *gain.Calculator
	directSpeakerCalc *gain.DirectSpeakerCalc
	decorrelator      *decorrelate.Decorrelator

	allrad       *ambisonic.AllRAD
	rotator      *ambisonic.Rotator
	binauralizer *ambisonic.Binauralizer
	hoaAudioOut  *ambisonic.BFormat

	// Per-object state, keyed by position in the objectTracks list.
	objectTracks   map[int]int // track index -> object slot
	interpDirect   []*interp.GainInterp
	interpDiffuse  []*interp.GainInterp
	objectMetadata []types.ObjectMetadata
	metadataValid  []bool

	// Binaural DirectSpeaker encoders, keyed by track index.
	dsEncoders map[int]*ambisonic.Encoder

	// scattering is the Householder matrix applied to binaural diffuse
	// coefficient vectors before interpolation.
	scattering [][]float64

	// Beds, allocated at Configure, zeroed after every frame.
	speakerOut        [][]float64
	objectBedDirect   [][]float64 // nOutput wide, or HOA-component wide for binaural
	objectBedDiffuse  [][]float64
	mapNoLFEToLFE     []int
	gainsScratch      []float64
	directScratch     []float64
	diffuseScratch    []float64
	directFullScratch []float64
	diffuseFull       []float64
}

// NewRenderer returns an unconfigured renderer; Configure must succeed
// before any per-frame call.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Configure validates cfg and allocates every buffer and filter the
// per-frame path will use. Any failure is fatal to this instance
// (per-frame calls on an unconfigured renderer are no-ops).
func (r *Renderer) Configure(cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	r.cfg = cfg
	r.logger = cfg.Logger
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	r.isBinaural = cfg.OutputLayout == OutputBinaural

	if r.isBinaural {
		r.outputLayout = layout.HOALayout(cfg.HOAOrder)
		r.outputLayout.Screen = cfg.ReproductionScreen
		r.nOutput = 2

		r.objectCalc = gain.NewAmbisonicCalculator(cfg.HOAOrder, cfg.ReproductionScreen)
		r.rotator = ambisonic.NewRotator(cfg.HOAOrder, cfg.SampleRate, cfg.MaxBlockSize, cfg.FadeTimeMilliSec)
		bin, ok := ambisonic.NewBinauralizer(cfg.HOAOrder, cfg.SampleRate, cfg.MaxBlockSize, cfg.HRTF)
		if !ok {
			return ErrHRTFUnavailable
		}
		r.binauralizer = bin

		nCh := len(r.outputLayout.Channels)
		r.scattering = make([][]float64, nCh)
		for i := range r.scattering {
			r.scattering[i] = make([]float64, nCh)
			for j := range r.scattering[i] {
				if i == j {
					r.scattering[i][j] = (float64(nCh) - 2) / float64(nCh)
				} else {
					r.scattering[i][j] = -2 / float64(nCh)
				}
			}
		}
	} else {
		l, _ := layout.ForName(cfg.OutputLayout)
		l.Screen = cfg.ReproductionScreen
		r.outputLayout = l
		r.nOutput = len(l.Channels)

		r.objectCalc = gain.NewCalculator(l)
		r.directSpeakerCalc = gain.NewDirectSpeakerCalc(l)
		r.allrad = ambisonic.NewAllRAD(cfg.HOAOrder, l, cfg.SampleRate, cfg.MaxBlockSize, true)
	}

	r.decorrelator = decorrelate.New(r.outputLayout.ChannelNames(), cfg.MaxBlockSize)
	r.hoaAudioOut = ambisonic.NewBFormat(cfg.HOAOrder, cfg.MaxBlockSize)

	r.objectTracks = make(map[int]int)
	r.dsEncoders = make(map[int]*ambisonic.Encoder)
	r.interpDirect = nil
	r.interpDiffuse = nil
	r.objectMetadata = nil
	r.metadataValid = nil

	nGain := r.objectCalc.NumChannels()
	nBed := len(r.outputLayout.Channels)
	for track, td := range cfg.StreamInfo.TypeDefinition {
		switch td {
		case TypeObjects:
			slot := len(r.interpDirect)
			r.objectTracks[track] = slot
			r.interpDirect = append(r.interpDirect, interp.NewGainInterp(nBed))
			r.interpDiffuse = append(r.interpDiffuse, interp.NewGainInterp(nBed))
			r.objectMetadata = append(r.objectMetadata, types.ObjectMetadata{})
			r.metadataValid = append(r.metadataValid, false)
		case TypeDirectSpeakers:
			if r.isBinaural {
				r.dsEncoders[track] = ambisonic.NewEncoder(cfg.HOAOrder, cfg.SampleRate, cfg.FadeTimeMilliSec)
			}
		}
	}

	r.speakerOut = newBed(r.nOutput, cfg.MaxBlockSize)
	r.objectBedDirect = newBed(nBed, cfg.MaxBlockSize)
	r.objectBedDiffuse = newBed(nBed, cfg.MaxBlockSize)

	r.mapNoLFEToLFE = r.mapNoLFEToLFE[:0]
	for i, ch := range r.outputLayout.Channels {
		if !ch.IsLFE {
			r.mapNoLFEToLFE = append(r.mapNoLFEToLFE, i)
		}
	}

	r.gainsScratch = make([]float64, nBed)
	r.directScratch = make([]float64, nGain)
	r.diffuseScratch = make([]float64, nGain)
	r.directFullScratch = make([]float64, nBed)
	r.diffuseFull = make([]float64, nBed)

	r.configured = true
	return nil
}

func newBed(nCh, nSamples int) [][]float64 {
	bed := make([][]float64, nCh)
	for i := range bed {
		bed[i] = make([]float64, nSamples)
	}
	return bed
}

// GetSpeakerCount returns the number of output channels GetRenderedAudio
// fills: 2 for stereo and binaural, otherwise the bed's channel count.
func (r *Renderer) GetSpeakerCount() int { return r.nOutput }

// clampBlock validates n+offset against the configured maximum,
// logging and clipping on overrun.
func (r *Renderer) clampBlock(n, offset int) int {
	if n+offset <= r.cfg.MaxBlockSize {
		return n
	}
	r.logger.Warn(WarnBlockOverrun.Error(), "n", n, "offset", offset, "max", r.cfg.MaxBlockSize)
	n = r.cfg.MaxBlockSize - offset
	if n < 0 {
		return 0
	}
	return n
}

// AddObject spatialises a mono Object track and accumulates it into the
// frame's direct and diffuse beds. The gain vector is recomputed only
// when the metadata differs from the previous block's for this track.
func (r *Renderer) AddObject(in []float64, n int, md types.ObjectMetadata, offset int) {
	if !r.configured {
		return
	}
	n = r.clampBlock(n, offset)

	slot, ok := r.objectTracks[md.TrackIndex]
	if !ok {
		r.logger.Warn(WarnSkippedTrack.Error(), "track", md.TrackIndex, "reason", "not declared as Objects")
		return
	}

	if !r.metadataValid[slot] || !md.Equal(r.objectMetadata[slot]) {
		r.objectMetadata[slot] = md
		r.metadataValid[slot] = true

		r.objectCalc.CalculateGains(md, r.directScratch, r.diffuseScratch)

		if r.isBinaural {
			// Scatter the diffuse coefficients across components so the
			// decorrelators excite the whole soundfield.
			for i := range r.diffuseFull {
				var s float64
				for j, g := range r.diffuseScratch {
					s += r.scattering[i][j] * g
				}
				r.diffuseFull[i] = s
			}
			copy(r.directFullScratch, r.directScratch)
		} else {
			// Leave gaps for LFE channels, which objects never excite.
			for i := range r.directFullScratch {
				r.directFullScratch[i] = 0
				r.diffuseFull[i] = 0
			}
			for i, g := range r.directScratch {
				r.directFullScratch[r.mapNoLFEToLFE[i]] = g
			}
			for i, g := range r.diffuseScratch {
				r.diffuseFull[r.mapNoLFEToLFE[i]] = g
			}
		}

		interpLength := md.BlockLength
		if md.JumpPosition {
			interpLength = md.InterpLength
		}
		r.interpDirect[slot].SetGainVector(r.directFullScratch, interpLength)
		r.interpDiffuse[slot].SetGainVector(r.diffuseFull, interpLength)
	}

	r.interpDirect[slot].ProcessAccumul(in, r.objectBedDirect, n, offset)
	r.interpDiffuse[slot].ProcessAccumul(in, r.objectBedDiffuse, n, offset)
}

// AddHoa accumulates an SN3D/ACN Ambisonic sub-mix into the frame's
// Ambisonic bed. Any normalisation other than SN3D drops the
// contribution with a warning.
func (r *Renderer) AddHoa(in [][]float64, n int, md types.HoaMetadata, offset int) {
	if !r.configured {
		return
	}
	n = r.clampBlock(n, offset)

	if md.Normalization != types.HoaNormSN3D {
		r.logger.Warn(WarnSkippedTrack.Error(), "reason", "unsupported HOA normalisation", "normalization", string(md.Normalization))
		return
	}
	maxACN := r.hoaAudioOut.ChannelCount()
	for i := range md.Orders {
		track := -1
		if i < len(md.TrackIndices) {
			track = md.TrackIndices[i]
		}
		if track < 0 || track >= r.cfg.StreamInfo.NumTracks() || r.cfg.StreamInfo.TypeDefinition[track] != TypeHOA {
			r.logger.Warn(WarnSkippedTrack.Error(), "track", track, "reason", "not declared as HOA")
			continue
		}
		acn := types.ACNIndex(md.Orders[i], md.Degrees[i])
		if acn < 0 || acn >= maxACN {
			r.logger.Warn(WarnSkippedTrack.Error(), "reason", "HOA component beyond configured order", "order", md.Orders[i], "degree", md.Degrees[i])
			continue
		}
		r.hoaAudioOut.AddStream(in[i], acn, n, offset)
	}
}

// AddDirectSpeaker routes or pans a DirectSpeaker track and accumulates
// it into the frame.
func (r *Renderer) AddDirectSpeaker(in []float64, n int, md types.DirectSpeakerMetadata, offset int) {
	if !r.configured {
		return
	}
	n = r.clampBlock(n, offset)

	if r.isBinaural {
		enc, ok := r.dsEncoders[md.TrackIndex]
		if !ok {
			r.logger.Warn(WarnSkippedTrack.Error(), "track", md.TrackIndex, "reason", "not declared as DirectSpeakers")
			return
		}
		pos, found := layout.SpeakerPositions[gain.NominalSpeakerLabel(md.SpeakerLabel)]
		if !found {
			pos = layout.PolarPosition{
				Azimuth:   md.PolarPosition.Azimuth,
				Elevation: md.PolarPosition.Elevation,
				Distance:  md.PolarPosition.Distance,
			}
		}
		enc.SetPosition(layout.DegToRad(pos.Azimuth), layout.DegToRad(pos.Elevation))
		enc.ProcessAccumul(in, r.hoaAudioOut, n, offset)
		return
	}

	if md.TrackIndex < 0 || md.TrackIndex >= r.cfg.StreamInfo.NumTracks() ||
		r.cfg.StreamInfo.TypeDefinition[md.TrackIndex] != TypeDirectSpeakers {
		r.logger.Warn(WarnSkippedTrack.Error(), "track", md.TrackIndex, "reason", "not declared as DirectSpeakers")
		return
	}
	r.directSpeakerCalc.CalculateGains(md, r.gainsScratch)
	for ch, g := range r.gainsScratch {
		if g == 0 {
			continue
		}
		out := r.speakerOut[ch]
		for i := 0; i < n; i++ {
			out[i+offset] += in[i] * g
		}
	}
}

// AddBinaural accumulates a pre-rendered ear pair into the output; it
// is honoured only when the output is binaural.
func (r *Renderer) AddBinaural(in [2][]float64, n int, offset int) {
	if !r.configured || !r.isBinaural {
		return
	}
	n = r.clampBlock(n, offset)
	for ear := 0; ear < 2; ear++ {
		out := r.speakerOut[ear]
		for i := 0; i < n; i++ {
			out[i+offset] += in[ear][i]
		}
	}
}

// SetHeadOrientation queues a head rotation (radians) for the next
// frame's binaural decode, cross-faded over the configured fade time.
// Calling it again with the same value starts no new fade. On a
// non-binaural renderer it only logs a warning.
func (r *Renderer) SetHeadOrientation(yaw, pitch, roll float64) {
	if !r.configured {
		return
	}
	if !r.isBinaural {
		r.logger.Warn(WarnUnknownOrientation.Error())
		return
	}
	r.rotator.SetOrientation(ambisonic.Orientation{Yaw: yaw, Pitch: pitch, Roll: roll})
}

// GetRenderedAudio finalises the frame: the object beds run through the
// decorrelator, the Ambisonic bed is decoded (AllRAD or rotated and
// binauralised), everything is summed into out, and all internal beds
// are zeroed for the next frame. out must hold GetSpeakerCount() slices
// of at least n samples.
func (r *Renderer) GetRenderedAudio(out [][]float64, n int) {
	if !r.configured {
		return
	}
	n = r.clampBlock(n, 0)

	for ch := 0; ch < r.nOutput; ch++ {
		for i := 0; i < n; i++ {
			out[ch][i] = 0
		}
	}

	r.decorrelator.Process(r.objectBedDirect, r.objectBedDiffuse, n)

	if r.isBinaural {
		for acn := 0; acn < r.hoaAudioOut.ChannelCount(); acn++ {
			r.hoaAudioOut.AddStream(r.objectBedDirect[acn], acn, n, 0)
			r.hoaAudioOut.AddStream(r.objectBedDiffuse[acn], acn, n, 0)
		}
		r.rotator.Process(r.hoaAudioOut, n)
		r.binauralizer.Process(r.hoaAudioOut, n, out[0], out[1])
		for ear := 0; ear < 2; ear++ {
			dst := out[ear]
			src := r.speakerOut[ear]
			for i := 0; i < n; i++ {
				dst[i] += src[i]
			}
		}
	} else {
		r.allrad.Process(r.hoaAudioOut, n, out)
		for ch := 0; ch < r.nOutput; ch++ {
			dst := out[ch]
			a, b, c := r.speakerOut[ch], r.objectBedDirect[ch], r.objectBedDiffuse[ch]
			for i := 0; i < n; i++ {
				dst[i] += a[i] + b[i] + c[i]
			}
		}
	}

	r.zeroBeds()
}

func (r *Renderer) zeroBeds() {
	r.hoaAudioOut.Zero()
	for _, bed := range [][][]float64{r.speakerOut, r.objectBedDirect, r.objectBedDiffuse} {
		for _, ch := range bed {
			for i := range ch {
				ch[i] = 0
			}
		}
	}
}

// Reset zeroes all DSP state: beds, decorrelator delay lines,
// interpolators, rotation fades, and the metadata cache.
func (r *Renderer) Reset() {
	if !r.configured {
		return
	}
	r.zeroBeds()
	r.decorrelator.Reset()
	for i := range r.interpDirect {
		r.interpDirect[i].Reset()
		r.interpDiffuse[i].Reset()
		r.metadataValid[i] = false
	}
	for _, enc := range r.dsEncoders {
		enc.Reset()
	}
	if r.isBinaural {
		r.rotator.Reset()
		r.binauralizer.Reset()
	} else {
		r.allrad.Reset()
	}
}
