package layout

// MappingRule is a DirectSpeaker downmix rule: when a track's normalised
// speaker label matches SpeakerLabel and the input authoring layout
// (resolved from the track's audioPackFormatID via PackTable) and the
// renderer's output layout match InputLayout/OutputLayout, the rule's
// Gains apply directly instead of falling through to direct routing or
// bounds search (Rec. ITU-R BS.2127-0 sec. 8.4).
type MappingRule struct {
	SpeakerLabel string
	InputLayout  string
	OutputLayout string
	Gains        map[string]float64
}

// MappingRules is the (illustrative, non-exhaustive) table of ITU
// downmix rules wired into the DirectSpeaker gain calculator. The full
// ITU Annex table is large external data outside this renderer's scope;
// these entries cover the renderer's supported output layouts for the
// speaker labels that commonly require folding (height/rear positions not
// present in a smaller output bed).
var MappingRules = []MappingRule{
	{
		SpeakerLabel: "U+180",
		InputLayout:  "9+10+3",
		OutputLayout: "2+5+0",
		Gains:        map[string]float64{"U+030": 1 / sqrt2, "U-030": 1 / sqrt2},
	},
	{
		SpeakerLabel: "U+180",
		InputLayout:  "9+10+3",
		OutputLayout: "0+7+0",
		Gains:        map[string]float64{"M+135": 1 / sqrt2, "M-135": 1 / sqrt2},
	},
	{
		SpeakerLabel: "M+180",
		InputLayout:  "9+10+3",
		OutputLayout: "0+5+0",
		Gains:        map[string]float64{"M+110": 1 / sqrt2, "M-110": 1 / sqrt2},
	},
}

const sqrt2 = 1.4142135623730951

// FindMappingRule returns the first matching rule for the given
// normalised speaker label, input pack layout name, and output layout
// name, or nil if none applies.
func FindMappingRule(speakerLabel, inputLayout, outputLayout string) *MappingRule {
	for i := range MappingRules {
		r := &MappingRules[i]
		if r.SpeakerLabel == speakerLabel && r.InputLayout == inputLayout && r.OutputLayout == outputLayout {
			return r
		}
	}
	return nil
}
