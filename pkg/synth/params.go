package synth

import "github.com/palaceaudio/tapegrain/pkg/framework/param"

// Parameter IDs. The numbering is stable so saved states remain valid.
const (
	ParamPosition uint32 = iota
	ParamGrainSize
	ParamDensity
	ParamPitch
	ParamSpray
	ParamPanSpread
	ParamGrainAttack
	ParamGrainRelease
	ParamCropStart
	ParamCropEnd
	ParamSampleGain
	ParamVoiceAttack
	ParamVoiceDecay
	ParamVoiceSustain
	ParamVoiceRelease
	ParamLFORate
	ParamLFOWaveform
	ParamLFOAmount
	ParamDelayTime
	ParamDelayFeedback
	ParamFlutter
	ParamHiss
	ParamDamage
	ParamTapeLife
	ParamFeedback
	ParamOutput

	numParams
)

// NewParameterRegistry builds the full parameter set with plain-value
// ranges and defaults.
func NewParameterRegistry() *param.Registry {
	r := param.NewRegistry()
	r.Add(
		param.New(ParamPosition, "Position").Range(0, 1).Default(0).Build(),
		param.New(ParamGrainSize, "Grain Size").Range(10, 2000).Default(100).Unit("ms").Build(),
		param.New(ParamDensity, "Density").Range(1, 200).Default(10).Unit("grains/s").Build(),
		param.New(ParamPitch, "Pitch").Range(-48, 48).Default(0).Unit("st").Build(),
		param.New(ParamSpray, "Spray").Range(0, 100).Default(0).Unit("%").Build(),
		param.New(ParamPanSpread, "Pan Spread").Range(0, 100).Default(50).Unit("%").Build(),
		param.New(ParamGrainAttack, "Grain Attack").Range(0, 100).Default(25).Unit("%").Build(),
		param.New(ParamGrainRelease, "Grain Release").Range(0, 100).Default(25).Unit("%").Build(),
		param.New(ParamCropStart, "Crop Start").Range(0, 1).Default(0).Build(),
		param.New(ParamCropEnd, "Crop End").Range(0, 1).Default(1).Build(),
		param.New(ParamSampleGain, "Sample Gain").Range(-24, 24).Default(0).Unit("dB").Build(),
		param.New(ParamVoiceAttack, "Attack").Range(0, 5000).Default(10).Unit("ms").Build(),
		param.New(ParamVoiceDecay, "Decay").Range(0, 5000).Default(100).Unit("ms").Build(),
		param.New(ParamVoiceSustain, "Sustain").Range(0, 100).Default(80).Unit("%").Build(),
		param.New(ParamVoiceRelease, "Release").Range(0, 10000).Default(300).Unit("ms").Build(),
		param.New(ParamLFORate, "LFO Rate").Range(0.01, 20).Default(1).Unit("Hz").Build(),
		param.New(ParamLFOWaveform, "LFO Waveform").Range(0, 4).Default(0).Steps(4).Build(),
		param.New(ParamLFOAmount, "LFO Amount").Range(0, 100).Default(50).Unit("%").Build(),
		param.New(ParamDelayTime, "Delay Time").Range(1, 2000).Default(300).Unit("ms").Build(),
		param.New(ParamDelayFeedback, "Delay Feedback").Range(0, 95).Default(0).Unit("%").Build(),
		param.New(ParamFlutter, "Flutter").Range(0, 100).Default(0).Unit("%").Build(),
		param.New(ParamHiss, "Hiss").Range(0, 100).Default(0).Unit("%").Build(),
		param.New(ParamDamage, "Tape Damage").Range(0, 100).Default(0).Unit("%").Build(),
		param.New(ParamTapeLife, "Tape Life").Range(25, 1000000).Default(1000).Unit("hits").Build(),
		param.New(ParamFeedback, "Feedback").Range(0, 100).Default(0).Unit("%").Build(),
		param.New(ParamOutput, "Output").Range(-60, 6).Default(0).Unit("dB").Build(),
	)
	return r
}

// modRange returns the peak plain-value excursion the LFO applies when
// routed to a parameter at full amount. Parameters without an entry
// cannot be modulated.
func modRange(id uint32) (float64, bool) {
	switch id {
	case ParamPosition:
		return 0.5, true
	case ParamGrainSize:
		return 500, true
	case ParamDensity:
		return 50, true
	case ParamPitch:
		return 12, true
	case ParamSpray:
		return 50, true
	case ParamPanSpread:
		return 50, true
	case ParamGrainAttack:
		return 25, true
	case ParamGrainRelease:
		return 25, true
	case ParamVoiceAttack:
		return 500, true
	case ParamVoiceDecay:
		return 500, true
	case ParamVoiceSustain:
		return 25, true
	case ParamVoiceRelease:
		return 1000, true
	default:
		return 0, false
	}
}
