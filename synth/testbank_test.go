package synth

import "github.com/waveform-audio/sf2synth/sf2"

// buildTestBank returns a minimal synthetic sf2.Bank with one preset that
// maps every key/velocity to a single 1-second sine-like ramp sample, for
// exercising Voice/VoiceCollection/Synthesizer without a real .sf2 file.
func buildTestBank(sampleRate int) *sf2.Bank {
	n := sampleRate
	wave := make([]float32, n)
	for i := range wave {
		wave[i] = float32(i%200-100) / 100
	}

	sample := sf2.SampleHeader{
		Name:          "test tone",
		Start:         0,
		End:           n,
		LoopStart:     10,
		LoopEnd:       n - 10,
		SampleRate:    sampleRate,
		OriginalPitch: 60,
		SampleType:    sf2.SampleMono,
	}

	instGens := sf2.GeneratorMap{
		sf2.GenSampleID:          0,
		sf2.GenSampleModes:       int16(1), // continuous loop
		sf2.GenOverridingRootKey: -1,
		sf2.GenScaleTuning:       100,
		// Near-instant delay/attack/hold/decay so tests reach the sustain
		// plateau within a block or two instead of the 1-second default a
		// zero-valued timecent generator would otherwise imply.
		sf2.GenDelayVolEnv:  -12000,
		sf2.GenAttackVolEnv: -12000,
		sf2.GenHoldVolEnv:   -12000,
		sf2.GenDecayVolEnv:  -12000,
		sf2.GenSustainVolEnv: 0, // full sustain (0 centibels of attenuation)
		sf2.GenReleaseVolEnv: -12000,
		sf2.GenDelayModEnv:  -12000,
		sf2.GenAttackModEnv: -12000,
		sf2.GenHoldModEnv:   -12000,
		sf2.GenDecayModEnv:  -12000,
		sf2.GenReleaseModEnv: -12000,
	}
	instZone := sf2.InstrumentZone{
		Zone: sf2.Zone{
			Keys:       sf2.Range{Lo: 0, Hi: 127},
			Velocities: sf2.Range{Lo: 0, Hi: 127},
			Generators: instGens,
			Modulators: sf2.ModulatorMap{},
		},
		SampleIndex: 0,
	}

	presetGens := sf2.GeneratorMap{sf2.GenInstrument: 0}
	presetZone := sf2.PresetZone{
		Zone: sf2.Zone{
			Keys:       sf2.Range{Lo: 0, Hi: 127},
			Velocities: sf2.Range{Lo: 0, Hi: 127},
			Generators: presetGens,
			Modulators: sf2.ModulatorMap{},
		},
		InstrumentIndex: 0,
	}

	preset := &sf2.Preset{Name: "test", Bank: 0, Number: 0, Zones: []sf2.PresetZone{presetZone}}

	return &sf2.Bank{
		Wavetable:   wave,
		Samples:     []sf2.SampleHeader{sample},
		Instruments: []sf2.Instrument{{Name: "test instrument", Zones: []sf2.InstrumentZone{instZone}}},
		Presets:     map[sf2.PresetID]*sf2.Preset{{Bank: 0, Number: 0}: preset},
	}
}

// buildExclusiveTestBank is like buildTestBank but its instrument zone
// also carries an exclusive class, for voice-stealing/reuse tests.
func buildExclusiveTestBank(sampleRate, exclusiveClass int) *sf2.Bank {
	bank := buildTestBank(sampleRate)
	bank.Instruments[0].Zones[0].Generators[sf2.GenExclusiveClass] = int16(exclusiveClass)
	return bank
}
