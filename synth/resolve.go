// resolve.go - SoundFont parameter resolution: (bank, preset, key,
// velocity) -> merged generators/modulators plus the sample(s) to play.

package synth

import "github.com/waveform-audio/sf2synth/sf2"

// SampleInfo is the merged result of resolving one channel (mono, or one
// side of a stereo pair) of a note.
type SampleInfo struct {
	Sample     *sf2.SampleHeader
	Generators sf2.GeneratorMap
	Modulators sf2.ModulatorMap
}

// KeyInfo is the full resolution result for a note-on: one sample channel
// if mono, two if stereo.
type KeyInfo struct {
	Stereo bool
	Left   SampleInfo
	Right  SampleInfo
}

// unsignedSumGenerators lists the generator types whose preset-zone and
// instrument-zone values are summed as unsigned 16-bit integers.
var unsignedSumGenerators = map[sf2.GeneratorType]bool{
	sf2.GenInitialFilterFc:    true,
	sf2.GenInitialFilterQ:     true,
	sf2.GenChorusEffectsSend:  true,
	sf2.GenReverbEffectsSend:  true,
	sf2.GenSustainModEnv:      true,
	sf2.GenSustainVolEnv:      true,
	sf2.GenInitialAttenuation: true,
	sf2.GenScaleTuning:        true,
}

// signedSumGenerators lists the generator types whose preset-zone and
// instrument-zone values are summed as signed 16-bit integers: envelope
// and LFO times, pitch/filter/volume cross-links, pan, tuning, and sample
// address offsets.
var signedSumGenerators = map[sf2.GeneratorType]bool{
	sf2.GenModLFOToPitch:                 true,
	sf2.GenVibLFOToPitch:                 true,
	sf2.GenModEnvToPitch:                 true,
	sf2.GenModLFOToFilterFc:              true,
	sf2.GenModEnvToFilterFc:              true,
	sf2.GenModLFOToVolume:                true,
	sf2.GenPan:                           true,
	sf2.GenCoarseTune:                    true,
	sf2.GenFineTune:                      true,
	sf2.GenStartAddrOffset:               true,
	sf2.GenEndAddrOffset:                 true,
	sf2.GenStartLoopAddrOffset:           true,
	sf2.GenEndLoopAddrOffset:             true,
	sf2.GenStartAddrCoarseOffset:         true,
	sf2.GenEndAddrCoarseOffset:           true,
	sf2.GenStartLoopAddrCoarseOffset:     true,
	sf2.GenEndLoopAddrCoarseOffset:       true,
	sf2.GenDelayModLFO:                   true,
	sf2.GenFreqModLFO:                    true,
	sf2.GenDelayVibLFO:                   true,
	sf2.GenFreqVibLFO:                    true,
	sf2.GenDelayModEnv:                   true,
	sf2.GenAttackModEnv:                  true,
	sf2.GenHoldModEnv:                    true,
	sf2.GenDecayModEnv:                   true,
	sf2.GenReleaseModEnv:                 true,
	sf2.GenKeyNumToModEnvHold:            true,
	sf2.GenKeyNumToModEnvDecay:           true,
	sf2.GenDelayVolEnv:                   true,
	sf2.GenAttackVolEnv:                  true,
	sf2.GenHoldVolEnv:                    true,
	sf2.GenDecayVolEnv:                   true,
	sf2.GenReleaseVolEnv:                 true,
	sf2.GenKeyNumToVolEnvHold:            true,
	sf2.GenKeyNumToVolEnvDecay:           true,
}

func findZone(zones []sf2.PresetZone, key, velocity uint8) (*sf2.PresetZone, bool) {
	for i := range zones {
		if zones[i].Keys.Contains(key) && zones[i].Velocities.Contains(velocity) {
			return &zones[i], true
		}
	}
	return nil, false
}

func findInstrumentZone(zones []sf2.InstrumentZone, key, velocity uint8, exclude int, haveExclude bool) (*sf2.InstrumentZone, bool) {
	for i := range zones {
		if haveExclude && zones[i].SampleIndex == exclude {
			continue
		}
		if zones[i].Keys.Contains(key) && zones[i].Velocities.Contains(velocity) {
			return &zones[i], true
		}
	}
	return nil, false
}

func mergeGeneratorMaps(instrument, preset sf2.GeneratorMap) sf2.GeneratorMap {
	merged := make(sf2.GeneratorMap, len(instrument)+len(preset))
	for k, v := range instrument {
		merged[k] = v
	}
	for k, presetVal := range preset {
		switch {
		case unsignedSumGenerators[k]:
			if existing, ok := merged[k]; ok {
				merged[k] = int16(uint16(existing) + uint16(presetVal))
			} else {
				merged[k] = presetVal
			}
		case signedSumGenerators[k]:
			if existing, ok := merged[k]; ok {
				merged[k] = existing + presetVal
			} else {
				merged[k] = presetVal
			}
		}
		// Every other preset-zone generator (ranges, sample/instrument
		// references, key/velocity overrides) is not preset-legal and is
		// dropped at merge.
	}
	return merged
}

func mergeModulatorMaps(instrument, preset sf2.ModulatorMap) sf2.ModulatorMap {
	merged := make(sf2.ModulatorMap, len(instrument)+len(preset))
	for _, m := range instrument {
		merged.Add(m)
	}
	for _, m := range preset {
		merged.Add(m)
	}
	return merged
}

func resolveSampleInfo(bank *sf2.Bank, instZone *sf2.InstrumentZone, presetZone *sf2.PresetZone) (SampleInfo, bool) {
	if instZone.SampleIndex < 0 || instZone.SampleIndex >= len(bank.Samples) {
		return SampleInfo{}, false
	}
	sample := &bank.Samples[instZone.SampleIndex]
	return SampleInfo{
		Sample:     sample,
		Generators: mergeGeneratorMaps(instZone.Generators, presetZone.Generators),
		Modulators: mergeModulatorMaps(instZone.Modulators, presetZone.Modulators),
	}, true
}

// resolveKey performs the full §4.9 resolution chain: preset zone lookup
// with GM fallback, instrument zone lookup, and mono/stereo sample
// pairing. ok is false when no zone in the preset (including its
// fallbacks) matches (key, velocity), in which case the note is dropped.
func resolveKey(bank *sf2.Bank, defaultPreset *sf2.Preset, presetBank, presetNumber uint16, key, velocity uint8) (KeyInfo, bool) {
	presetZone, ok := findPresetZoneWithFallback(bank, defaultPreset, presetBank, presetNumber, key, velocity)
	if !ok {
		return KeyInfo{}, false
	}

	instIndex := int(presetZone.Generators.AmountAsUnsigned(sf2.GenInstrument))
	if instIndex < 0 || instIndex >= len(bank.Instruments) {
		return KeyInfo{}, false
	}
	instrument := &bank.Instruments[instIndex]

	instZone, ok := findInstrumentZone(instrument.Zones, key, velocity, 0, false)
	if !ok {
		return KeyInfo{}, false
	}

	first, ok := resolveSampleInfo(bank, instZone, presetZone)
	if !ok {
		return KeyInfo{}, false
	}

	switch first.Sample.SampleType {
	case sf2.SampleLeft, sf2.SampleRight, sf2.SampleRomLeft, sf2.SampleRomRight:
		secondZone, ok := findInstrumentZone(instrument.Zones, key, velocity, instZone.SampleIndex, true)
		if !ok {
			// No paired channel found; degrade to mono rather than
			// dropping the note.
			return KeyInfo{Stereo: false, Left: first}, true
		}
		second, ok := resolveSampleInfo(bank, secondZone, presetZone)
		if !ok {
			return KeyInfo{Stereo: false, Left: first}, true
		}
		if isRightChannel(first.Sample.SampleType) {
			return KeyInfo{Stereo: true, Left: second, Right: first}, true
		}
		return KeyInfo{Stereo: true, Left: first, Right: second}, true
	default:
		return KeyInfo{Stereo: false, Left: first}, true
	}
}

func isRightChannel(t sf2.SampleType) bool {
	return t == sf2.SampleRight || t == sf2.SampleRomRight
}

func findPresetZoneWithFallback(bank *sf2.Bank, defaultPreset *sf2.Preset, presetBank, presetNumber uint16, key, velocity uint8) (*sf2.PresetZone, bool) {
	if p, ok := bank.Presets[sf2.PresetID{Bank: presetBank, Number: presetNumber}]; ok {
		if z, ok := findZone(p.Zones, key, velocity); ok {
			return z, true
		}
	}
	fallbackBank := uint16(0)
	if presetBank >= 128 {
		fallbackBank = 128
	}
	if p, ok := bank.Presets[sf2.PresetID{Bank: fallbackBank, Number: 0}]; ok {
		if z, ok := findZone(p.Zones, key, velocity); ok {
			return z, true
		}
	}
	if defaultPreset != nil {
		if z, ok := findZone(defaultPreset.Zones, key, velocity); ok {
			return z, true
		}
	}
	return nil, false
}
