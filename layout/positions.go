package layout

// SpeakerPositions is the BS.2094 nominal polar position table, keyed by
// speaker label (e.g. "M+030", "U-135", "LFE1"). It is immutable after
// package initialisation.
var SpeakerPositions = map[string]PolarPosition{
	"M+030": {Azimuth: 30, Elevation: 0, Distance: 1},
	"M-030": {Azimuth: -30, Elevation: 0, Distance: 1},
	"M+000": {Azimuth: 0, Elevation: 0, Distance: 1},
	"LFE":   {Azimuth: 0, Elevation: -30, Distance: 1},
	"M+110": {Azimuth: 110, Elevation: 0, Distance: 1},
	"M-110": {Azimuth: -110, Elevation: 0, Distance: 1},
	"M+022": {Azimuth: 22.5, Elevation: 0, Distance: 1},
	"M-022": {Azimuth: -22.5, Elevation: 0, Distance: 1},
	"M+180": {Azimuth: 180, Elevation: 0, Distance: 1},
	"M+090": {Azimuth: 90, Elevation: 0, Distance: 1},
	"M-090": {Azimuth: -90, Elevation: 0, Distance: 1},
	"T+000": {Azimuth: 0, Elevation: 90, Distance: 1},
	"U+030": {Azimuth: 30, Elevation: 30, Distance: 1},
	"U+000": {Azimuth: 0, Elevation: 30, Distance: 1},
	"U-030": {Azimuth: -30, Elevation: 30, Distance: 1},
	"U+110": {Azimuth: 110, Elevation: 30, Distance: 1},
	"U+180": {Azimuth: 180, Elevation: 30, Distance: 1},
	"U-110": {Azimuth: -110, Elevation: 30, Distance: 1},
	"U+090": {Azimuth: 90, Elevation: 30, Distance: 1},
	"U-090": {Azimuth: -90, Elevation: 30, Distance: 1},
	"B+000": {Azimuth: 0, Elevation: -30, Distance: 1},
	"B+045": {Azimuth: 45, Elevation: -30, Distance: 1},
	"B-045": {Azimuth: -45, Elevation: -30, Distance: 1},
	"B+060": {Azimuth: 60, Elevation: -30, Distance: 1},
	"B-060": {Azimuth: -60, Elevation: -30, Distance: 1},

	"M+135_Diff": {Azimuth: 135, Elevation: 0, Distance: 1},
	"M-135_Diff": {Azimuth: -135, Elevation: 0, Distance: 1},

	"M+135": {Azimuth: 135, Elevation: 0, Distance: 1},
	"M-135": {Azimuth: -135, Elevation: 0, Distance: 1},
	"U+135": {Azimuth: 135, Elevation: 30, Distance: 1},
	"U-135": {Azimuth: -135, Elevation: 30, Distance: 1},

	"LFE1": {Azimuth: 45, Elevation: -30, Distance: 1},
	"LFE2": {Azimuth: -45, Elevation: -30, Distance: 1},

	"U+045": {Azimuth: 45, Elevation: 0, Distance: 1},
	"U-045": {Azimuth: -45, Elevation: 0, Distance: 1},

	"M+SC": {Azimuth: 25, Elevation: 0, Distance: 1},
	"M-SC": {Azimuth: -25, Elevation: 0, Distance: 1},

	"M+045": {Azimuth: 45, Elevation: 0, Distance: 1},
	"M-045": {Azimuth: -45, Elevation: 0, Distance: 1},

	"UH+180": {Azimuth: 180, Elevation: 45, Distance: 1},
}

// IsLFELabel reports whether a nominal speaker label names an LFE
// channel, per Rec. ITU-R BS.2127-0 sec. 8.2.
func IsLFELabel(label string) bool {
	return label == "LFE1" || label == "LFE2" || label == "LFE"
}

// PackTable maps ITU audioPackFormatID strings to their nominal
// authoring-layout name. A pack's name need not
// itself be a layout this renderer can output directly — DirectSpeaker
// mapping rules (MappingRules) key off it to describe how one
// authoring layout folds down onto a supported output Layout.
var PackTable = map[string]string{
	"AP_00010001": "0+2+0",
	"AP_00010002": "0+5+0",
	"AP_00010003": "2+5+0",
	"AP_00010004": "9+10+3",
	"AP_00010005": "0+7+0",
	"AP_00010006": "0+4+0",
}
