// Command admrender-demo renders a small YAML-described ADM scene of
// test-tone objects through the renderer and writes the result as raw
// interleaved float32 PCM, printing per-channel levels. It exists to
// exercise the library end to end without any audio-file tooling.
package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	admrender "github.com/thesyncim/admrender"
	"github.com/thesyncim/admrender/layout"
	"github.com/thesyncim/admrender/types"
)

type sceneSource struct {
	Type      string  `yaml:"type"` // "object" or "directspeaker"
	Azimuth   float64 `yaml:"azimuth"`
	Elevation float64 `yaml:"elevation"`
	Distance  float64 `yaml:"distance"`
	Gain      float64 `yaml:"gain"`
	Diffuse   float64 `yaml:"diffuse"`
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	Frequency float64 `yaml:"frequency"`
	Label     string  `yaml:"label"` // directspeaker only
}

type scene struct {
	OutputLayout string        `yaml:"outputLayout"`
	SampleRate   int           `yaml:"sampleRate"`
	BlockSize    int           `yaml:"blockSize"`
	Seconds      float64       `yaml:"seconds"`
	Sources      []sceneSource `yaml:"sources"`
}

func defaultScene() scene {
	return scene{
		OutputLayout: "0+5+0",
		SampleRate:   48000,
		BlockSize:    512,
		Seconds:      1,
		Sources: []sceneSource{
			{Type: "object", Azimuth: 30, Distance: 1, Gain: 1, Frequency: 440},
		},
	}
}

func main() {
	var (
		scenePath = pflag.StringP("scene", "s", "", "YAML scene description (built-in demo scene if empty)")
		outPath   = pflag.StringP("out", "o", "", "write raw interleaved float32 PCM here")
		verbose   = pflag.BoolP("verbose", "v", false, "debug logging")
	)
	pflag.Parse()

	logger := log.New(os.Stderr)
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	sc := defaultScene()
	if *scenePath != "" {
		data, err := os.ReadFile(*scenePath)
		if err != nil {
			logger.Fatal("reading scene", "err", err)
		}
		if err := yaml.Unmarshal(data, &sc); err != nil {
			logger.Fatal("parsing scene", "err", err)
		}
	}

	if err := run(sc, *outPath, logger); err != nil {
		logger.Fatal("rendering", "err", err)
	}
}

func run(sc scene, outPath string, logger *log.Logger) error {
	info := admrender.StreamInfo{}
	for _, src := range sc.Sources {
		switch src.Type {
		case "directspeaker":
			info.TypeDefinition = append(info.TypeDefinition, admrender.TypeDirectSpeakers)
		default:
			info.TypeDefinition = append(info.TypeDefinition, admrender.TypeObjects)
		}
	}

	r := admrender.NewRenderer()
	err := r.Configure(admrender.Config{
		OutputLayout: sc.OutputLayout,
		SampleRate:   sc.SampleRate,
		MaxBlockSize: sc.BlockSize,
		StreamInfo:   info,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	nOut := r.GetSpeakerCount()
	out := make([][]float64, nOut)
	for i := range out {
		out[i] = make([]float64, sc.BlockSize)
	}
	mono := make([]float64, sc.BlockSize)

	var sink *os.File
	if outPath != "" {
		sink, err = os.Create(outPath)
		if err != nil {
			return err
		}
		defer sink.Close()
	}

	totalBlocks := int(sc.Seconds * float64(sc.SampleRate) / float64(sc.BlockSize))
	rms := make([]float64, nOut)
	sampleIdx := 0
	for block := 0; block < totalBlocks; block++ {
		for trackIdx, src := range sc.Sources {
			for i := range mono {
				mono[i] = 0.25 * math.Sin(2*math.Pi*src.Frequency*float64(sampleIdx+i)/float64(sc.SampleRate))
			}
			switch src.Type {
			case "directspeaker":
				r.AddDirectSpeaker(mono, sc.BlockSize, types.DirectSpeakerMetadata{
					TrackIndex:   trackIdx,
					SpeakerLabel: src.Label,
					PolarPosition: types.DirectSpeakerPolarPosition{
						Azimuth: src.Azimuth, Elevation: src.Elevation, Distance: src.Distance,
					},
				}, 0)
			default:
				r.AddObject(mono, sc.BlockSize, types.ObjectMetadata{
					TrackIndex: trackIdx,
					PolarPosition: layout.PolarPosition{
						Azimuth: src.Azimuth, Elevation: src.Elevation, Distance: src.Distance,
					},
					Gain:        src.Gain,
					Diffuse:     src.Diffuse,
					Width:       src.Width,
					Height:      src.Height,
					ChannelLock: types.NoChannelLock,
					BlockLength: sc.BlockSize,
				}, 0)
			}
		}

		r.GetRenderedAudio(out, sc.BlockSize)
		sampleIdx += sc.BlockSize

		for ch := 0; ch < nOut; ch++ {
			for _, v := range out[ch][:sc.BlockSize] {
				rms[ch] += v * v
			}
		}
		if sink != nil {
			if err := writeInterleaved(sink, out, sc.BlockSize); err != nil {
				return err
			}
		}
	}

	total := float64(totalBlocks * sc.BlockSize)
	for ch := 0; ch < nOut; ch++ {
		level := math.Sqrt(rms[ch] / total)
		fmt.Printf("channel %d: %.2f dBFS RMS\n", ch, 20*math.Log10(math.Max(level, 1e-10)))
	}
	return nil
}

func writeInterleaved(f *os.File, out [][]float64, n int) error {
	buf := make([]byte, 4*len(out))
	for i := 0; i < n; i++ {
		for ch := range out {
			binary.LittleEndian.PutUint32(buf[4*ch:], math.Float32bits(float32(out[ch][i])))
		}
		if _, err := f.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
