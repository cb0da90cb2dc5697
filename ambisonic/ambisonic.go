// Package ambisonic implements the renderer's higher-order Ambisonic
// core: SN3D/ACN encoding up to third order, soundfield rotation with
// cross-faded orientation changes, the psychoacoustic max-rE shelf
// filters, the AllRAD loudspeaker decoder, and the HRTF-convolving
// binaural decoder.
package ambisonic

import "errors"

// MaxOrder is the highest Ambisonic order supported.
const MaxOrder = 3

// ErrBadOrder indicates an Ambisonic order outside {0, 1, 2, 3}.
var ErrBadOrder = errors.New("ambisonic: order must be between 0 and 3")

// ChannelCount returns the number of Ambisonic components for a full
// 3-D soundfield of the given order: (order+1)^2.
func ChannelCount(order int) int {
	return (order + 1) * (order + 1)
}

// OrderForChannelCount returns the Ambisonic order whose full 3-D
// component count equals n, or -1 when n is not of the form (k+1)^2
// with k <= MaxOrder.
func OrderForChannelCount(n int) int {
	for order := 0; order <= MaxOrder; order++ {
		if ChannelCount(order) == n {
			return order
		}
	}
	return -1
}

// ComponentOrder returns the order a given ACN component index belongs
// to: floor(sqrt(acn)).
func ComponentOrder(acn int) int {
	order := 0
	for (order+1)*(order+1) <= acn {
		order++
	}
	return order
}
