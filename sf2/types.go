// types.go - SoundFont 2.x domain types: generators, modulators, zones, presets

package sf2

// GeneratorType identifies one of the 60 generator kinds enumerated in the
// SoundFont 2.01 specification, section 8.1.3.
type GeneratorType uint16

const (
	GenStartAddrOffset          GeneratorType = 0
	GenEndAddrOffset            GeneratorType = 1
	GenStartLoopAddrOffset      GeneratorType = 2
	GenEndLoopAddrOffset        GeneratorType = 3
	GenStartAddrCoarseOffset    GeneratorType = 4
	GenModLFOToPitch            GeneratorType = 5
	GenVibLFOToPitch            GeneratorType = 6
	GenModEnvToPitch            GeneratorType = 7
	GenInitialFilterFc          GeneratorType = 8
	GenInitialFilterQ           GeneratorType = 9
	GenModLFOToFilterFc         GeneratorType = 10
	GenModEnvToFilterFc         GeneratorType = 11
	GenEndAddrCoarseOffset      GeneratorType = 12
	GenModLFOToVolume           GeneratorType = 13
	GenUnused1                  GeneratorType = 14
	GenChorusEffectsSend        GeneratorType = 15
	GenReverbEffectsSend        GeneratorType = 16
	GenPan                      GeneratorType = 17
	GenUnused2                  GeneratorType = 18
	GenUnused3                  GeneratorType = 19
	GenUnused4                  GeneratorType = 20
	GenDelayModLFO              GeneratorType = 21
	GenFreqModLFO               GeneratorType = 22
	GenDelayVibLFO              GeneratorType = 23
	GenFreqVibLFO               GeneratorType = 24
	GenDelayModEnv              GeneratorType = 25
	GenAttackModEnv             GeneratorType = 26
	GenHoldModEnv               GeneratorType = 27
	GenDecayModEnv              GeneratorType = 28
	GenSustainModEnv            GeneratorType = 29
	GenReleaseModEnv            GeneratorType = 30
	GenKeyNumToModEnvHold       GeneratorType = 31
	GenKeyNumToModEnvDecay      GeneratorType = 32
	GenDelayVolEnv              GeneratorType = 33
	GenAttackVolEnv             GeneratorType = 34
	GenHoldVolEnv               GeneratorType = 35
	GenDecayVolEnv              GeneratorType = 36
	GenSustainVolEnv            GeneratorType = 37
	GenReleaseVolEnv            GeneratorType = 38
	GenKeyNumToVolEnvHold       GeneratorType = 39
	GenKeyNumToVolEnvDecay      GeneratorType = 40
	GenInstrument               GeneratorType = 41
	GenReserved1                GeneratorType = 42
	GenKeyRange                 GeneratorType = 43
	GenVelRange                 GeneratorType = 44
	GenStartLoopAddrCoarseOffset GeneratorType = 45
	GenKeyNum                   GeneratorType = 46
	GenVelocity                 GeneratorType = 47
	GenInitialAttenuation       GeneratorType = 48
	GenReserved2                GeneratorType = 49
	GenEndLoopAddrCoarseOffset  GeneratorType = 50
	GenCoarseTune               GeneratorType = 51
	GenFineTune                 GeneratorType = 52
	GenSampleID                 GeneratorType = 53
	GenSampleModes              GeneratorType = 54
	GenReserved3                GeneratorType = 55
	GenScaleTuning              GeneratorType = 56
	GenExclusiveClass           GeneratorType = 57
	GenOverridingRootKey        GeneratorType = 58
	GenUnused5                  GeneratorType = 59
	GenEndOper                  GeneratorType = 60
)

// GeneratorMap is a finite mapping from generator type to a raw 16-bit amount.
// Interpretation (signed, unsigned, or a pair of signed bytes) is generator-
// type-directed at the use site rather than tagged at storage time - the
// reference SoundFont implementations do the same, since it avoids a
// three-variant sum type for what is, on the wire, always a single uint16.
type GeneratorMap map[GeneratorType]int16

// AmountAsUnsigned reinterprets a stored generator amount as unsigned.
func (g GeneratorMap) AmountAsUnsigned(t GeneratorType) uint16 {
	return uint16(g[t])
}

// AmountAsRange reinterprets a stored generator amount as a pair of signed
// byte range bounds {lo, hi}, as used by GenKeyRange and GenVelRange.
func (g GeneratorMap) AmountAsRange(t GeneratorType) (lo, hi int8) {
	v := uint16(g[t])
	return int8(v & 0xFF), int8(v >> 8)
}

// Has reports whether a generator is present in the map.
func (g GeneratorMap) Has(t GeneratorType) bool {
	_, ok := g[t]
	return ok
}

// ModulatorCurve is the transfer curve applied to a modulator's source value.
type ModulatorCurve uint8

const (
	CurveLinear ModulatorCurve = iota
	CurveConcave
	CurveConvex
	CurveSwitch
)

// ControllerDomain distinguishes general (velocity, key, etc.) controllers
// from MIDI continuous controllers as a modulator source.
type ControllerDomain uint8

const (
	ControllerGeneral ControllerDomain = iota
	ControllerMIDI
)

// ModulatorSource describes one input to a modulator: a curve, direction,
// polarity, and the controller it reads from.
type ModulatorSource struct {
	Curve      ModulatorCurve
	Direction  bool // true = max-to-min
	Bipolar    bool
	Domain     ControllerDomain
	Controller uint8
}

// decodeModulatorSource unpacks the 16-bit source-operator bitfield per the
// SoundFont 2.01 canonical layout: type<<10 | polarity<<9 | direction<<8 |
// controllerType<<7 | index (6:0). This is deliberately the spec's canonical
// layout rather than the reference-implementation's inconsistent bit 0x0080
// vs 0x0100 split between preset and instrument scope (see DESIGN.md).
func decodeModulatorSource(bits uint16) ModulatorSource {
	return ModulatorSource{
		Curve:      ModulatorCurve((bits >> 10) & 0x3F),
		Bipolar:    (bits & 0x0200) != 0,
		Direction:  (bits & 0x0100) != 0,
		Domain:     ControllerDomain((bits >> 7) & 0x01),
		Controller: uint8(bits & 0x7F),
	}
}

// ModulatorTransform is applied to a computed modulator value before it is
// added to the destination generator.
type ModulatorTransform uint16

const (
	TransformLinear ModulatorTransform = 0
	TransformAbs    ModulatorTransform = 2
)

// ModulatorKey identifies a modulator's identity for merge purposes: two
// modulators with the same key at different scopes (instrument vs preset)
// have their amounts added together rather than one replacing the other.
type ModulatorKey struct {
	Source      ModulatorSource
	Destination GeneratorType
	AmountSrc   ModulatorSource
}

// Modulator maps a source (and optional secondary amount source) to a
// destination generator with a signed amount and transform.
type Modulator struct {
	Key       ModulatorKey
	Amount    int16
	Transform ModulatorTransform
}

// ModulatorMap collects modulators by identity so the merge in §4.9 can find
// and sum matching entries in O(1).
type ModulatorMap map[ModulatorKey]Modulator

func (m ModulatorMap) Add(mod Modulator) {
	if existing, ok := m[mod.Key]; ok {
		existing.Amount += mod.Amount
		m[mod.Key] = existing
		return
	}
	m[mod.Key] = mod
}

// SampleType classifies a sample header's channel role.
type SampleType uint16

const (
	SampleMono      SampleType = 1
	SampleRight     SampleType = 2
	SampleLeft      SampleType = 4
	SampleLinked    SampleType = 8
	SampleRomMono   SampleType = 0x8001
	SampleRomRight  SampleType = 0x8002
	SampleRomLeft   SampleType = 0x8004
	SampleRomLinked SampleType = 0x8008
)

// LoopMode is the SoundFont sample-modes generator's decoded value.
type LoopMode uint8

const (
	LoopModeNone          LoopMode = 0
	LoopModeContinuous    LoopMode = 1
	LoopModeUnusedReserved LoopMode = 2
	LoopModeUntilRelease  LoopMode = 3
)

// SampleHeader is the resolved per-sample descriptor: indices into the
// wavetable buffer plus loop points, native rate, and tuning metadata.
type SampleHeader struct {
	Name             string
	Start            int
	End              int
	LoopStart        int
	LoopEnd          int
	SampleRate       int
	OriginalPitch    uint8
	PitchCorrection  int8
	SampleType       SampleType
	SampleLink       int // index into Bank.Samples, valid for linked stereo pairs
}

// Range bounds a zone's applicability in (key, velocity)
// space. Bounds are inclusive; Lo/Hi are the raw signed int8 values decoded
// from the generator amount, so a negative Lo is representable (and simply
// unreachable by any real MIDI key or velocity, both of which are >= 0).
type Range struct {
	Lo int8
	Hi int8
}

// Contains reports whether v falls within [Lo, Hi] when interpreted as an
// unsigned MIDI value in 0..127.
func (r Range) Contains(v uint8) bool {
	if r.Lo < 0 {
		return int8(v) >= r.Lo && int8(v) <= r.Hi && v <= 127
	}
	return int8(v) >= r.Lo && int8(v) <= r.Hi
}

// fullRange is the default all-inclusive range for a zone that has no explicit
// key/velocity range generator.
var fullRange = Range{Lo: 0, Hi: 127}

// Zone is a rectangle in (key, velocity) space with attached generators and
// modulators. Global zones are flattened into their siblings at load time
// (see flatten.go / §4.9) so every Zone that survives into a Preset or
// Instrument is addressable: it carries a Instrument/SampleID reference.
type Zone struct {
	Keys        Range
	Velocities  Range
	Generators  GeneratorMap
	Modulators  ModulatorMap
}

// PresetZone is a Zone whose Generators include GenInstrument.
type PresetZone struct {
	Zone
	InstrumentIndex int
}

// InstrumentZone is a Zone whose Generators include GenSampleID.
type InstrumentZone struct {
	Zone
	SampleIndex int
}

// Preset is one (bank, number) addressable patch.
type Preset struct {
	Name   string
	Bank   uint16
	Number uint16
	Zones  []PresetZone
}

// PresetID is the lexicographic (bank, number) key used to address presets.
// Being a plain comparable struct used directly as a Go map key sidesteps
// the reference implementation's inconsistent operator< entirely.
type PresetID struct {
	Bank   uint16
	Number uint16
}

// Instrument is a named collection of instrument zones, addressed by index
// from a preset zone's GenInstrument generator.
type Instrument struct {
	Name  string
	Zones []InstrumentZone
}

// Bank is the fully decoded, load-time-flattened SoundFont: everything the
// synth package needs to resolve (bank, preset, key, velocity) tuples and
// synthesize audio, with no remaining reference to raw RIFF chunk layout.
type Bank struct {
	Info        Info
	Wavetable   []float32
	Samples     []SampleHeader
	Instruments []Instrument
	Presets     map[PresetID]*Preset
}

// Info carries the SoundFont bank's textual metadata (from the INFO LIST
// chunk). None of these fields are consumed by the synthesis engine; they
// are surfaced for callers that want to display bank provenance.
type Info struct {
	Name           string
	Engine         string
	ProductName    string
	Copyright      string
	Comment        string
	SoftwareUsed   string
	SoundFontVersionMajor uint16
	SoundFontVersionMinor uint16
}
