// defaults.go - the SoundFont 2.01 spec's mandatory default instrument
// generators and modulators, seeded into every instrument zone before its
// own (and its global zone's) generators/modulators are merged in.

package sf2

// defaultGenerators seeds every instrument zone with the values the
// SoundFont 2.01 spec requires be present even when the file omits them.
func defaultGenerators() GeneratorMap {
	g := make(GeneratorMap, 18)
	g[GenInitialFilterFc] = int16(uint16(13500))
	g[GenDelayModLFO] = -12000
	g[GenDelayVibLFO] = -12000
	g[GenDelayModEnv] = -12000
	g[GenAttackModEnv] = -12000
	g[GenHoldModEnv] = -12000
	g[GenDecayModEnv] = -12000
	g[GenReleaseModEnv] = -12000
	g[GenDelayVolEnv] = -12000
	g[GenAttackVolEnv] = -12000
	g[GenHoldVolEnv] = -12000
	g[GenDecayVolEnv] = -12000
	g[GenReleaseVolEnv] = -12000
	g[GenKeyRange] = rangeAmount(0, 127)
	g[GenVelRange] = rangeAmount(0, 127)
	g[GenKeyNum] = -1
	g[GenVelocity] = -1
	g[GenScaleTuning] = int16(uint16(100))
	g[GenOverridingRootKey] = -1
	return g
}

func rangeAmount(lo, hi int8) int16 {
	return int16(uint16(uint8(lo)) | uint16(uint8(hi))<<8)
}

// defaultModulators returns the ten modulators the SoundFont 2.01 spec
// requires be present in every instrument, prior to any modulators the file
// itself supplies.
func defaultModulators() ModulatorMap {
	entries := []Modulator{
		{
			Key: ModulatorKey{
				Source:      ModulatorSource{Curve: CurveConcave, Direction: true, Bipolar: false, Domain: ControllerGeneral, Controller: srcNoteOnVelocity},
				Destination: GenInitialAttenuation,
				AmountSrc:   ModulatorSource{Curve: CurveLinear, Direction: false, Bipolar: false, Domain: ControllerGeneral, Controller: srcNone},
			},
			Amount: 960, Transform: TransformLinear,
		},
		{
			Key: ModulatorKey{
				Source:      ModulatorSource{Curve: CurveLinear, Direction: true, Bipolar: false, Domain: ControllerGeneral, Controller: srcNoteOnVelocity},
				Destination: GenInitialFilterFc,
				AmountSrc:   ModulatorSource{Curve: CurveSwitch, Direction: true, Bipolar: false, Domain: ControllerGeneral, Controller: srcNoteOnVelocity},
			},
			Amount: -2400, Transform: TransformLinear,
		},
		{
			Key: ModulatorKey{
				Source:      ModulatorSource{Curve: CurveLinear, Direction: false, Bipolar: false, Domain: ControllerGeneral, Controller: srcChannelPressure},
				Destination: GenVibLFOToPitch,
				AmountSrc:   ModulatorSource{Curve: CurveLinear, Direction: false, Bipolar: false, Domain: ControllerGeneral, Controller: srcNone},
			},
			Amount: 50, Transform: TransformLinear,
		},
		{
			Key: ModulatorKey{
				Source:      ModulatorSource{Curve: CurveLinear, Direction: false, Bipolar: false, Domain: ControllerMIDI, Controller: 1},
				Destination: GenVibLFOToPitch,
				AmountSrc:   ModulatorSource{Curve: CurveLinear, Direction: false, Bipolar: false, Domain: ControllerGeneral, Controller: srcNone},
			},
			Amount: 50, Transform: TransformLinear,
		},
		{
			Key: ModulatorKey{
				Source:      ModulatorSource{Curve: CurveConcave, Direction: true, Bipolar: false, Domain: ControllerMIDI, Controller: 7},
				Destination: GenInitialAttenuation,
				AmountSrc:   ModulatorSource{Curve: CurveLinear, Direction: false, Bipolar: false, Domain: ControllerGeneral, Controller: srcNone},
			},
			Amount: 960, Transform: TransformLinear,
		},
		{
			Key: ModulatorKey{
				Source:      ModulatorSource{Curve: CurveLinear, Direction: false, Bipolar: true, Domain: ControllerMIDI, Controller: 10},
				Destination: GenPan,
				AmountSrc:   ModulatorSource{Curve: CurveLinear, Direction: false, Bipolar: false, Domain: ControllerGeneral, Controller: srcNone},
			},
			Amount: 1000, Transform: TransformLinear,
		},
		{
			Key: ModulatorKey{
				Source:      ModulatorSource{Curve: CurveConcave, Direction: true, Bipolar: false, Domain: ControllerMIDI, Controller: 11},
				Destination: GenInitialAttenuation,
				AmountSrc:   ModulatorSource{Curve: CurveLinear, Direction: false, Bipolar: false, Domain: ControllerGeneral, Controller: srcNone},
			},
			Amount: 960, Transform: TransformLinear,
		},
		{
			Key: ModulatorKey{
				Source:      ModulatorSource{Curve: CurveLinear, Direction: false, Bipolar: false, Domain: ControllerMIDI, Controller: 91},
				Destination: GenReverbEffectsSend,
				AmountSrc:   ModulatorSource{Curve: CurveLinear, Direction: false, Bipolar: false, Domain: ControllerGeneral, Controller: srcNone},
			},
			Amount: 200, Transform: TransformLinear,
		},
		{
			Key: ModulatorKey{
				Source:      ModulatorSource{Curve: CurveLinear, Direction: false, Bipolar: false, Domain: ControllerMIDI, Controller: 93},
				Destination: GenChorusEffectsSend,
				AmountSrc:   ModulatorSource{Curve: CurveLinear, Direction: false, Bipolar: false, Domain: ControllerGeneral, Controller: srcNone},
			},
			Amount: 200, Transform: TransformLinear,
		},
		{
			Key: ModulatorKey{
				Source:      ModulatorSource{Curve: CurveLinear, Direction: false, Bipolar: true, Domain: ControllerGeneral, Controller: srcPitchWheel},
				Destination: GenFineTune,
				AmountSrc:   ModulatorSource{Curve: CurveLinear, Direction: false, Bipolar: false, Domain: ControllerGeneral, Controller: srcPitchWheelSensitivity},
			},
			Amount: 12700, Transform: TransformLinear,
		},
	}

	m := make(ModulatorMap, len(entries))
	for _, mod := range entries {
		m.Add(mod)
	}
	return m
}

// General-controller-domain source indices (SoundFont 2.01 §8.2.1).
const (
	srcNone                  = 0
	srcNoteOnVelocity        = 2
	srcNoteOnKeyNumber       = 3
	srcPolyPressure          = 10
	srcChannelPressure       = 13
	srcPitchWheel            = 14
	srcPitchWheelSensitivity = 16
)
