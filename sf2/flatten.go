// flatten.go - global-zone merging for presets and instruments.
//
// Both phdr/pbag/pgen/pmod and inst/ibag/igen/imod follow the same shape:
// an array of parent records, each pointing at a contiguous run of bag
// records, each bag pointing at a contiguous run of generator/modulator
// records. A parent's *global* zone - if present - is the one zone in its
// run that carries no instrument/sample reference; its generators and
// modulators are merged into every other (local) zone of that same parent
// before the local zone is considered complete. The final bag/parent record
// in each array is a terminator used only to bound the previous record's
// range; it is never turned into an addressable zone.

package sf2

func zoneGenerators(bagIndex int, bags []rawBag, gens []rawGenerator) GeneratorMap {
	lo, hi := bags[bagIndex].GeneratorIndex, bags[bagIndex+1].GeneratorIndex
	m := make(GeneratorMap, hi-lo)
	for _, g := range gens[lo:hi] {
		m[GeneratorType(g.Oper)] = g.Amount
	}
	return m
}

func zoneModulators(bagIndex int, bags []rawBag, mods []rawModulator) ModulatorMap {
	lo, hi := bags[bagIndex].ModulatorIndex, bags[bagIndex+1].ModulatorIndex
	m := make(ModulatorMap, hi-lo)
	for _, raw := range mods[lo:hi] {
		m.Add(decodeModulator(raw))
	}
	return m
}

func decodeModulator(raw rawModulator) Modulator {
	return Modulator{
		Key: ModulatorKey{
			Source:      decodeModulatorSource(raw.SourceOper),
			Destination: GeneratorType(raw.DestOper),
			AmountSrc:   decodeModulatorSource(raw.AmountSourceOper),
		},
		Amount:    raw.Amount,
		Transform: ModulatorTransform(raw.TransformOper),
	}
}

func mergeGenerators(dst, src GeneratorMap) {
	for k, v := range src {
		dst[k] = v
	}
}

func mergeModulators(dst, src ModulatorMap) {
	for _, mod := range src {
		dst.Add(mod)
	}
}

// extractRange pulls a key/velocity range generator out of a zone's map,
// removing it and defaulting to the full [0,127] range when absent.
func extractRange(gens GeneratorMap, t GeneratorType) Range {
	if !gens.Has(t) {
		return fullRange
	}
	lo, hi := gens.AmountAsRange(t)
	delete(gens, t)
	return Range{Lo: lo, Hi: hi}
}

// buildPresetZones flattens phdr/pbag/pgen/pmod into the map of addressable
// presets. The final phdr record is the terminator and is not converted.
func buildPresetZones(headers []rawPresetHeader, bags []rawBag, gens []rawGenerator, mods []rawModulator) (map[PresetID]*Preset, error) {
	if len(headers) == 0 {
		return nil, nil
	}
	presets := make(map[PresetID]*Preset, len(headers)-1)

	for i := 0; i < len(headers)-1; i++ {
		hdr := headers[i]
		bagLo, bagHi := int(hdr.PresetBagNdx), int(headers[i+1].PresetBagNdx)

		var hasGlobal bool
		var globalGens GeneratorMap
		var globalMods ModulatorMap
		var zones []PresetZone

		for b := bagLo; b < bagHi; b++ {
			zoneGens := zoneGenerators(b, bags, gens)
			zoneMods := zoneModulators(b, bags, mods)

			if !zoneGens.Has(GenInstrument) {
				// First global zone wins; a SoundFont file has at most one.
				if !hasGlobal {
					hasGlobal = true
					globalGens = zoneGens
					globalMods = zoneMods
				}
				continue
			}

			merged := GeneratorMap{GenKeyRange: rangeAmount(0, 127), GenVelRange: rangeAmount(0, 127)}
			mergedMods := make(ModulatorMap)
			if hasGlobal {
				mergeGenerators(merged, globalGens)
				mergeModulators(mergedMods, globalMods)
			}
			mergeGenerators(merged, zoneGens)
			mergeModulators(mergedMods, zoneMods)

			zone := PresetZone{
				Zone: Zone{
					Keys:       extractRange(merged, GenKeyRange),
					Velocities: extractRange(merged, GenVelRange),
					Generators: merged,
					Modulators: mergedMods,
				},
				InstrumentIndex: int(merged.AmountAsUnsigned(GenInstrument)),
			}
			zones = append(zones, zone)
		}

		id := PresetID{Bank: hdr.Bank, Number: hdr.PresetNumber}
		presets[id] = &Preset{Name: cString(hdr.Name[:]), Bank: hdr.Bank, Number: hdr.PresetNumber, Zones: zones}
	}
	return presets, nil
}

// buildInstrumentZones flattens inst/ibag/igen/imod into the instrument
// list, addressed by index exactly as GenInstrument references them.
func buildInstrumentZones(headers []rawInstrument, bags []rawBag, gens []rawGenerator, mods []rawModulator) ([]Instrument, error) {
	if len(headers) == 0 {
		return nil, nil
	}
	instruments := make([]Instrument, 0, len(headers)-1)

	for i := 0; i < len(headers)-1; i++ {
		hdr := headers[i]
		bagLo, bagHi := int(hdr.BagNdx), int(headers[i+1].BagNdx)

		var hasGlobal bool
		var globalGens GeneratorMap
		var globalMods ModulatorMap
		var zones []InstrumentZone

		for b := bagLo; b < bagHi; b++ {
			zoneGens := zoneGenerators(b, bags, gens)
			zoneMods := zoneModulators(b, bags, mods)

			if !zoneGens.Has(GenSampleID) {
				if !hasGlobal {
					hasGlobal = true
					globalGens = zoneGens
					globalMods = zoneMods
				}
				continue
			}

			merged := defaultGenerators()
			mergedMods := defaultModulators()
			if hasGlobal {
				mergeGenerators(merged, globalGens)
				mergeModulators(mergedMods, globalMods)
			}
			mergeGenerators(merged, zoneGens)
			mergeModulators(mergedMods, zoneMods)

			zone := InstrumentZone{
				Zone: Zone{
					Keys:       extractRange(merged, GenKeyRange),
					Velocities: extractRange(merged, GenVelRange),
					Generators: merged,
					Modulators: mergedMods,
				},
				SampleIndex: int(merged.AmountAsUnsigned(GenSampleID)),
			}
			zones = append(zones, zone)
		}

		instruments = append(instruments, Instrument{Name: cString(hdr.Name[:]), Zones: zones})
	}
	return instruments, nil
}
