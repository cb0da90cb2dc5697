// Package admrender implements an object-based spatial-audio renderer
// conforming to Rec. ITU-R BS.2127.
//
// It consumes a multi-track audio stream whose tracks are tagged with one
// of four content roles — Object, DirectSpeaker, HOA, and Binaural — and
// produces a fixed-layout output: a standard loudspeaker bed (stereo, quad,
// 5.x, 7.x) or two-channel binaural.
//
// # Content roles
//
//   - Object: a mono source with a time-varying 3-D trajectory and extent.
//   - DirectSpeaker: a pre-mixed loudspeaker channel, routed or re-panned.
//   - HOA: a higher-order Ambisonic sub-mix up to third order.
//   - Binaural: a pair of pre-rendered ears, passed straight through.
//
// # Pipeline
//
// Each block of input samples flows through the point-source panner and
// its region handlers, the polar-extent spreader, the gain calculator
// (channel-lock, divergence, zone-exclusion, screen-scaling/edge-lock),
// the gain interpolator, and — for non-binaural output — the decorrelator.
// Binaural output additionally runs the Ambisonic encode/rotate/decode
// path and HRTF convolution. See Renderer for the per-frame API.
//
// Parsing ADM XML, audio file I/O, and HRTF database loading are external
// concerns; this package only consumes already-decoded PCM and metadata.
package admrender
