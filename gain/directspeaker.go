package gain

import (
	"strconv"
	"strings"

	"github.com/thesyncim/admrender/layout"
	"github.com/thesyncim/admrender/panner"
	"github.com/thesyncim/admrender/types"
)

// DirectSpeakerCalc computes the gain vector routing one DirectSpeaker
// track into the output layout, per BS.2127-0 section 8: LFE detection,
// ITU mapping rules, label matching, screen edge lock, within-bounds
// search, and finally a point-source panner fallback.
type DirectSpeakerCalc struct {
	layout layout.Layout // with LFE, in output order
	psp    *panner.GainCalc

	screenEdgeLock *ScreenEdgeLockHandler
}

// NewDirectSpeakerCalc builds a DirectSpeaker gain calculator for the
// given output layout (including its LFE channels).
func NewDirectSpeakerCalc(outLayout layout.Layout) *DirectSpeakerCalc {
	return &DirectSpeakerCalc{
		layout:         outLayout,
		psp:            panner.NewGainCalc(outLayout.WithoutLFE()),
		screenEdgeLock: NewScreenEdgeLockHandler(outLayout.Screen),
	}
}

// NominalSpeakerLabel strips a urn:itu:bs:2051:X:speaker: prefix from a
// speaker label and renames legacy LFE labels per sec. 8.3.
func NominalSpeakerLabel(label string) string {
	if tokens := strings.Split(label, ":"); len(tokens) == 7 {
		if tokens[0] == "urn" && tokens[1] == "itu" && tokens[2] == "bs" && tokens[3] == "2051" && tokens[5] == "speaker" {
			if _, err := strconv.Atoi(tokens[4]); err == nil {
				label = tokens[6]
			}
		}
	}
	switch label {
	case "LFE", "LFEL":
		return "LFE1"
	case "LFER":
		return "LFE2"
	}
	return label
}

// IsLFE reports whether a DirectSpeaker track is an LFE channel: a
// declared low-pass at or below 200 Hz, or an LFE nominal label
// (sec. 8.2).
func IsLFE(md types.DirectSpeakerMetadata) bool {
	if md.ChannelFrequency.HasLowPass && md.ChannelFrequency.LowPass <= 200 {
		return true
	}
	return layout.IsLFELabel(NominalSpeakerLabel(md.SpeakerLabel))
}

// CalculateGains computes the output gain vector (len = output channel
// count, LFE included) for one DirectSpeaker block.
func (c *DirectSpeakerCalc) CalculateGains(md types.DirectSpeakerMetadata, gains []float64) {
	for i := range gains {
		gains[i] = 0
	}

	isLFETrack := IsLFE(md)
	label := NominalSpeakerLabel(md.SpeakerLabel)

	// Mapping rules resolve first (sec. 8.4): the track's pack format
	// names the authoring layout, and a rule folding label from that
	// layout onto this output layout wins outright.
	if md.AudioPackFormatID != "" {
		if inputLayout, ok := layout.PackTable[md.AudioPackFormatID]; ok {
			if rule := c.findMappingRule(label, inputLayout); rule != nil {
				for name, g := range rule.Gains {
					if idx := c.layout.IndexOf(name); idx >= 0 {
						gains[idx] = g
					}
				}
				return
			}
		}
	}

	// Direct label match against the output layout (sec. 8.5 step 1),
	// requiring the LFE flags to agree.
	if idx := c.layout.IndexOf(label); idx >= 0 && c.layout.Channels[idx].IsLFE == isLFETrack {
		gains[idx] = 1
		return
	}

	direction := layout.PolarPosition{
		Azimuth:   md.PolarPosition.Azimuth,
		Elevation: md.PolarPosition.Elevation,
		Distance:  md.PolarPosition.Distance,
	}
	pos := c.screenEdgeLock.HandleVector(direction.Cartesian(), md.ScreenEdgeLock)
	direction = pos.Polar()

	if isLFETrack {
		if idx := c.layout.IndexOf("LFE1"); idx >= 0 {
			gains[idx] = 1
		}
		return
	}

	if idx := c.findClosestWithinBounds(direction, md.PolarPosition.Bounds); idx >= 0 {
		gains[idx] = 1
		return
	}

	pspGains := c.psp.CalculateGains(direction)
	i := 0
	for ch := range gains {
		if !c.layout.Channels[ch].IsLFE {
			gains[ch] = pspGains[i]
			i++
		}
	}
}

// findMappingRule returns the first rule that applies: label matches,
// input and output layout names match, and every speaker the rule's
// gains name exists in the output layout.
func (c *DirectSpeakerCalc) findMappingRule(label, inputLayout string) *layout.MappingRule {
	for i := range layout.MappingRules {
		r := &layout.MappingRules[i]
		if r.SpeakerLabel != label || r.InputLayout != inputLayout || r.OutputLayout != c.layout.Name {
			continue
		}
		allPresent := true
		for name := range r.Gains {
			if c.layout.IndexOf(name) < 0 {
				allPresent = false
				break
			}
		}
		if allPresent {
			return r
		}
	}
	return nil
}

// findClosestWithinBounds searches the output layout for a real
// loudspeaker within the declared bounds around direction, returning
// its index or -1 (sec. 8.5). Ambiguous closest matches return -1 so
// the caller falls through to the point-source panner.
func (c *DirectSpeakerCalc) findClosestWithinBounds(direction layout.PolarPosition, bounds []types.PolarBounds) int {
	const tol = 1e-5

	minAz, maxAz := direction.Azimuth, direction.Azimuth
	minEl, maxEl := direction.Elevation, direction.Elevation
	minDist, maxDist := direction.Distance, direction.Distance
	if len(bounds) > 0 {
		minAz, maxAz = bounds[0].MinAzimuth, bounds[0].MaxAzimuth
		minEl, maxEl = bounds[0].MinElevation, bounds[0].MaxElevation
		minDist, maxDist = bounds[0].MinDistance, bounds[0].MaxDistance
	}

	var within []int
	for i, ch := range c.layout.Channels {
		if ch.IsLFE {
			continue
		}
		sp := ch.PolarNominal
		if (layout.InsideAngleRange(sp.Azimuth, minAz, maxAz, tol) || sp.Elevation > 90-tol) &&
			sp.Elevation <= maxEl+tol && sp.Elevation >= minEl-tol &&
			sp.Distance <= maxDist+tol && sp.Distance >= minDist-tol {
			within = append(within, i)
		}
	}
	switch len(within) {
	case 0:
		return -1
	case 1:
		return within[0]
	}

	target := direction.Cartesian()
	best, bestDist, ties := -1, 0.0, 0
	for _, idx := range within {
		d := c.layout.Channels[idx].PolarNominal.Cartesian().Sub(target).Norm()
		switch {
		case best < 0 || d < bestDist:
			best, bestDist, ties = idx, d, 1
		case d == bestDist:
			ties++
		}
	}
	if ties > 1 {
		return -1
	}
	return best
}
