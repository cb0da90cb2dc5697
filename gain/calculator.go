package gain

import (
	"math"

	"github.com/thesyncim/admrender/adm"
	"github.com/thesyncim/admrender/ambisonic"
	"github.com/thesyncim/admrender/extent"
	"github.com/thesyncim/admrender/layout"
	"github.com/thesyncim/admrender/panner"
	"github.com/thesyncim/admrender/types"
)

// Calculator computes the direct and diffuse gain vectors for one
// Object metadata block, running the pipeline of BS.2127-0 sec. 7.3 in
// order: metadata-to-polar conversion, screen scaling, screen edge
// lock, channel lock, divergence, polar extent, zone exclusion, overall
// gain, and the direct/diffuse split. The loudspeaker variant produces
// per-speaker gains; the Ambisonic variant (NewAmbisonicCalculator)
// produces encoding coefficients for the binaural path and skips zone
// exclusion, which has no meaning for a soundfield.
type Calculator struct {
	nCh int
	hoa bool

	extentPanner   *extent.PolarExtentHandler
	screenScale    *ScreenScaleHandler
	screenEdgeLock *ScreenEdgeLockHandler
	channelLock    *ChannelLockHandler
	zoneExclusion  *ZoneExclusionHandler

	gains    []float64
	posGains [3][]float64
}

// NewCalculator builds a gain calculator for the given output layout
// (LFE channels are stripped internally; gain vectors cover the non-LFE
// channels in layout order). The layout's Screen drives screen scaling
// and edge locking.
func NewCalculator(outLayout layout.Layout) *Calculator {
	noLFE := outLayout.WithoutLFE()
	pc := panner.NewGainCalc(noLFE)
	c := &Calculator{
		nCh:            pc.NumChannels(),
		extentPanner:   extent.NewPolarExtentHandler(pc),
		screenScale:    NewScreenScaleHandler(outLayout.Screen),
		screenEdgeLock: NewScreenEdgeLockHandler(outLayout.Screen),
		channelLock:    NewChannelLockHandler(noLFE),
		zoneExclusion:  NewZoneExclusionHandler(noLFE),
	}
	c.init()
	return c
}

// NewAmbisonicCalculator builds the soundfield gain calculator used for
// binaural output: gain vectors are SN3D encoding coefficients of
// length (order+1)^2. repScreen drives screen scaling and edge locking;
// channel lock and zone exclusion are identities with no loudspeakers
// to lock to or exclude.
func NewAmbisonicCalculator(order int, repScreen layout.Screen) *Calculator {
	ep := ambisonic.NewExtentPanner(order)
	c := &Calculator{
		nCh:            ep.NumChannels(),
		hoa:            true,
		extentPanner:   ep,
		screenScale:    NewScreenScaleHandler(repScreen),
		screenEdgeLock: NewScreenEdgeLockHandler(repScreen),
	}
	c.init()
	return c
}

func (c *Calculator) init() {
	c.gains = make([]float64, c.nCh)
	for i := range c.posGains {
		c.posGains[i] = make([]float64, c.nCh)
	}
}

// NumChannels returns the length of the gain vectors CalculateGains
// produces.
func (c *Calculator) NumChannels() int { return c.nCh }

// CalculateGains computes the direct and diffuse gain vectors for md,
// writing into direct and diffuse (both len NumChannels()).
func (c *Calculator) CalculateGains(md types.ObjectMetadata, direct, diffuse []float64) {
	md = adm.ToPolar(md)

	position := md.PolarPosition.Cartesian()
	position = c.screenScale.Handle(position, md.ScreenRef, md.ReferenceScreen)
	position = c.screenEdgeLock.HandleVector(position, md.ScreenEdgeLock)
	if !c.hoa {
		position = c.channelLock.Handle(md.ChannelLock, position)
	}

	positions, posGains := divergedPositionsAndGains(md.ObjectDivergence, position.Polar())

	for i, p := range positions {
		c.extentPanner.Handle(p, md.Width, md.Height, md.Depth, c.posGains[i])
	}

	if c.hoa {
		// Amplitude summation keeps component polarity intact.
		for i := 0; i < c.nCh; i++ {
			var g float64
			for j := range positions {
				g += posGains[j] * c.posGains[j][i]
			}
			c.gains[i] = g
		}
	} else {
		// Power summation over the diverged sources.
		for i := 0; i < c.nCh; i++ {
			var g float64
			for j := range positions {
				g += posGains[j] * c.posGains[j][i] * c.posGains[j][i]
			}
			c.gains[i] = math.Sqrt(g)
		}
		c.zoneExclusion.Handle(md.ZoneExclusionPolar, c.gains)
	}

	directCoeff := math.Sqrt(1 - md.Diffuse)
	diffuseCoeff := math.Sqrt(md.Diffuse)
	for i, g := range c.gains {
		g *= md.Gain
		direct[i] = g * directCoeff
		diffuse[i] = g * diffuseCoeff
	}
}
