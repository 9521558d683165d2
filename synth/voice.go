// voice.go - one polyphonic note: one or two sampler tracks, each with its
// own envelopes, LFOs and filter, mixed down to a panned stereo pair.

package synth

import (
	"math"

	"github.com/waveform-audio/sf2synth/sf2"
)

// VoiceState is the coarse lifecycle stage of a Voice.
type VoiceState int

const (
	VoicePlaying VoiceState = iota
	VoiceReleaseRequested
	VoiceReleased
)

// clickAvoidanceFraction is the fraction of a second (1/500 s) a
// ReleaseRequested voice must have sounded before release actually begins,
// avoiding an audible click on ultra-short notes.
const clickAvoidanceFraction = 500

// track owns one sample channel's full synthesis chain: sampler, volume
// and modulation envelopes, vibrato/modulation LFOs, and a filter.
type track struct {
	volEnv *VolumeEnvelope
	modEnv *ModulationEnvelope
	vibLFO *LFO
	modLFO *LFO
	sampler *sampler
	filter  *BiQuadFilter
	block   []float32

	noteGain float64

	cutoff, resonance, smoothedCutoff float64

	vibLfoToPitch, modLfoToPitch, modEnvToPitch float64
	modLfoToCutoff, modEnvToCutoff              float64
	modLfoToVolumeDB                            float64
	dynamicCutoff, dynamicVolume                bool

	instrumentPan          float64
	reverbSend, chorusSend float64

	currentMixGain float64
}

func newTrack(sampleRate, blockSize int) *track {
	return &track{
		volEnv:  NewVolumeEnvelope(sampleRate),
		modEnv:  NewModulationEnvelope(sampleRate),
		vibLFO:  NewLFO(sampleRate, blockSize),
		modLFO:  NewLFO(sampleRate, blockSize),
		sampler: &sampler{},
		filter:  NewBiQuadFilter(sampleRate),
		block:   make([]float32, blockSize),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func timecentsToSeconds(tc float64) float64 { return math.Pow(2, tc/1200) }
func absoluteCentsToHz(cents float64) float64 { return 8.176 * math.Pow(2, cents/1200) }

func (t *track) start(info SampleInfo, wavetable []float32, key, velocity uint8) {
	g := info.Generators

	var noteGain float64
	if velocity > 0 {
		initialAtten := float64(g.AmountAsUnsigned(sf2.GenInitialAttenuation))
		initialFilterQ := float64(g.AmountAsUnsigned(sf2.GenInitialFilterQ))
		dB := -20*math.Log10(127/float64(velocity)) - 0.1*0.1*initialAtten - 0.5*0.1*initialFilterQ
		noteGain = math.Pow(10, dB/20)
	}

	cutoff := absoluteCentsToHz(float64(g.AmountAsUnsigned(sf2.GenInitialFilterFc)))
	resonance := math.Pow(10, float64(g.AmountAsUnsigned(sf2.GenInitialFilterQ))/200)

	t.vibLfoToPitch = 0.01 * float64(g[sf2.GenVibLFOToPitch])
	t.modLfoToPitch = 0.01 * float64(g[sf2.GenModLFOToPitch])
	t.modEnvToPitch = 0.01 * float64(g[sf2.GenModEnvToPitch])
	t.modLfoToCutoff = float64(g[sf2.GenModLFOToFilterFc])
	t.modEnvToCutoff = float64(g[sf2.GenModEnvToFilterFc])
	t.modLfoToVolumeDB = 0.1 * float64(g[sf2.GenModLFOToVolume])
	t.dynamicCutoff = t.modLfoToCutoff != 0 || t.modEnvToCutoff != 0
	t.dynamicVolume = t.modLfoToVolumeDB > 0.05

	t.instrumentPan = clamp(0.1*float64(g[sf2.GenPan]), -50, 50)
	t.reverbSend = 0.001 * float64(g.AmountAsUnsigned(sf2.GenReverbEffectsSend))
	t.chorusSend = 0.001 * float64(g.AmountAsUnsigned(sf2.GenChorusEffectsSend))

	keyOffset := float64(60 - int(key))

	delayVol := timecentsToSeconds(float64(g[sf2.GenDelayVolEnv]))
	attackVol := timecentsToSeconds(float64(g[sf2.GenAttackVolEnv]))
	holdVol := timecentsToSeconds(float64(g[sf2.GenHoldVolEnv])) *
		math.Pow(2, float64(g[sf2.GenKeyNumToVolEnvHold])*keyOffset/1200)
	decayVol := timecentsToSeconds(float64(g[sf2.GenDecayVolEnv])) *
		math.Pow(2, float64(g[sf2.GenKeyNumToVolEnvDecay])*keyOffset/1200)
	sustainVol := math.Pow(10, -float64(g.AmountAsUnsigned(sf2.GenSustainVolEnv))/200)
	releaseVol := math.Max(timecentsToSeconds(float64(g[sf2.GenReleaseVolEnv])), 0.01)

	delayMod := timecentsToSeconds(float64(g[sf2.GenDelayModEnv]))
	attackMod := timecentsToSeconds(float64(g[sf2.GenAttackModEnv])) * (145 - float64(velocity)) / 144
	holdMod := timecentsToSeconds(float64(g[sf2.GenHoldModEnv])) *
		math.Pow(2, float64(g[sf2.GenKeyNumToModEnvHold])*keyOffset/1200)
	decayMod := timecentsToSeconds(float64(g[sf2.GenDecayModEnv])) *
		math.Pow(2, float64(g[sf2.GenKeyNumToModEnvDecay])*keyOffset/1200)
	sustainMod := 1 - float64(g.AmountAsUnsigned(sf2.GenSustainModEnv))/100
	releaseMod := timecentsToSeconds(float64(g[sf2.GenReleaseModEnv]))

	modLfoDelay := timecentsToSeconds(float64(g[sf2.GenDelayModLFO]))
	modLfoFreq := absoluteCentsToHz(float64(g[sf2.GenFreqModLFO]))
	vibLfoDelay := timecentsToSeconds(float64(g[sf2.GenDelayVibLFO]))
	vibLfoFreq := absoluteCentsToHz(float64(g[sf2.GenFreqVibLFO]))

	rootKey := int(info.Sample.OriginalPitch)
	if overriding := g[sf2.GenOverridingRootKey]; overriding >= 0 {
		rootKey = int(overriding)
	}
	fineTune := float64(g[sf2.GenFineTune]) + float64(info.Sample.PitchCorrection)
	coarseTune := float64(g[sf2.GenCoarseTune])
	scaleTuning := float64(g.AmountAsUnsigned(sf2.GenScaleTuning))
	mode := loopMode(g.AmountAsUnsigned(sf2.GenSampleModes) & 0x3)

	t.sampler.start(wavetable, info.Sample.Start, info.Sample.End, info.Sample.LoopStart, info.Sample.LoopEnd,
		info.Sample.SampleRate, rootKey, mode, coarseTune, fineTune, scaleTuning)

	t.filter.Reset()
	t.filter.SetLowPass(cutoff, resonance)
	t.cutoff, t.resonance, t.smoothedCutoff = cutoff, resonance, cutoff

	t.volEnv.Start(delayVol, attackVol, holdVol, decayVol, sustainVol, releaseVol)
	t.modEnv.Start(delayMod, attackMod, holdMod, decayMod, sustainMod, releaseMod)
	t.vibLFO.Start(vibLfoDelay, vibLfoFreq)
	t.modLFO.Start(modLfoDelay, modLfoFreq)

	t.noteGain = noteGain
	t.currentMixGain = 0
}

func (t *track) release() {
	t.volEnv.Release()
	t.modEnv.Release()
	t.sampler.release()
}

// silence zeroes a track's output so a dead track stops contributing to
// the mix without disturbing a still-live sibling track in a stereo voice.
func (t *track) silence() {
	for i := range t.block {
		t.block[i] = 0
	}
	t.currentMixGain = 0
}

// processTrack advances one block and reports whether the track is still
// producing audio.
func (t *track) processTrack(ch *Channel, key uint8, outputSampleRate int) bool {
	if !t.volEnv.Process(len(t.block)) {
		t.silence()
		return false
	}
	t.modEnv.Process(len(t.block))
	t.vibLFO.Process()
	t.modLFO.Process()

	pitchShift := (0.01*ch.Modulation()+t.vibLfoToPitch)*t.vibLFO.Value() +
		t.modLfoToPitch*t.modLFO.Value() +
		t.modEnvToPitch*t.modEnv.Value() +
		ch.Tune() +
		ch.PitchBend()*ch.PitchBendRange()

	if !t.sampler.process(t.block, float64(key)+pitchShift, outputSampleRate) {
		t.silence()
		return false
	}

	if t.dynamicCutoff {
		cents := t.modLfoToCutoff*t.modLFO.Value() + t.modEnvToCutoff*t.modEnv.Value()
		newCutoff := math.Pow(2, cents/1200) * t.cutoff
		t.smoothedCutoff = clamp(newCutoff, 0.5*t.smoothedCutoff, 2*t.smoothedCutoff)
		t.filter.SetLowPass(t.smoothedCutoff, t.resonance)
	}
	t.filter.Process(t.block)

	channelGain := math.Pow(10, ch.VolumeDB()/20) * ch.Expression()
	mixGain := t.noteGain * channelGain * t.volEnv.Value()
	if t.dynamicVolume {
		mixGain *= math.Pow(10, t.modLfoToVolumeDB*t.modLFO.Value()/20)
	}
	t.currentMixGain = mixGain
	return true
}

// Voice is a single polyphonic note: up to two tracks, a shared
// lifecycle, and the panned output gain pair fed to the mixdown.
type Voice struct {
	sampleRate, blockSize int
	sendsEnabled          bool

	left, right *track
	stereo      bool

	state          VoiceState
	voiceLength    int64
	exclusiveClass int
	channel        int
	key            uint8
	velocity       uint8

	reverbSend, chorusSend float64

	previousLeftGain, currentLeftGain   float64
	previousRightGain, currentRightGain float64
}

// NewVoice constructs an idle voice for the given output configuration.
// sendsEnabled mirrors Config.ReverbAndChorusEnabled: when false, the voice
// never reports a nonzero reverb/chorus send.
func NewVoice(sampleRate, blockSize int, sendsEnabled bool) *Voice {
	return &Voice{
		sampleRate:   sampleRate,
		blockSize:    blockSize,
		sendsEnabled: sendsEnabled,
		left:         newTrack(sampleRate, blockSize),
		right:        newTrack(sampleRate, blockSize),
		state:        VoiceReleased,
	}
}

// Start (re)initializes the voice from a resolved KeyInfo, ready to play.
func (v *Voice) Start(info KeyInfo, wavetable []float32, channel int, key, velocity uint8, exclusiveClass int) {
	v.left.start(info.Left, wavetable, key, velocity)
	v.stereo = info.Stereo
	if v.stereo {
		v.right.start(info.Right, wavetable, key, velocity)
	}

	v.state = VoicePlaying
	v.voiceLength = 0
	v.exclusiveClass = exclusiveClass
	v.channel = channel
	v.key = key
	v.velocity = velocity

	v.previousLeftGain, v.currentLeftGain = 0, 0
	v.previousRightGain, v.currentRightGain = 0, 0
}

// End requests release; the transition to Released is deferred until the
// click-avoidance gate has passed (see Process).
func (v *Voice) End() {
	if v.state == VoicePlaying {
		v.state = VoiceReleaseRequested
	}
}

// Kill forces both tracks silent so the voice is reclaimed on the next
// process call, bypassing envelope release entirely.
func (v *Voice) Kill() {
	v.left.noteGain = 0
	v.right.noteGain = 0
}

// Channel, Key, ExclusiveClass, VoiceLength expose the identity fields the
// voice collection needs for exclusive-class reuse.
func (v *Voice) Channel() int          { return v.channel }
func (v *Voice) Key() uint8            { return v.key }
func (v *Voice) ExclusiveClass() int   { return v.exclusiveClass }
func (v *Voice) VoiceLength() int64    { return v.voiceLength }
func (v *Voice) State() VoiceState     { return v.state }

// BlockLeft and BlockRight are the raw (unpanned) filtered sample blocks
// for each track. BlockRight is only meaningful when Stereo() is true.
func (v *Voice) BlockLeft() []float32  { return v.left.block }
func (v *Voice) BlockRight() []float32 { return v.right.block }
func (v *Voice) Stereo() bool          { return v.stereo }

// PreviousLeftGain, CurrentLeftGain, PreviousRightGain, CurrentRightGain
// are the panned output gains the renderer ramps between across a block.
func (v *Voice) PreviousLeftGain() float64  { return v.previousLeftGain }
func (v *Voice) CurrentLeftGain() float64   { return v.currentLeftGain }
func (v *Voice) PreviousRightGain() float64 { return v.previousRightGain }
func (v *Voice) CurrentRightGain() float64  { return v.currentRightGain }

// ReverbSend and ChorusSend are the clamped 0..1 send levels for this
// voice's current block.
func (v *Voice) ReverbSend() float64 { return v.reverbSend }
func (v *Voice) ChorusSend() float64 { return v.chorusSend }

// Process advances the voice by one block. It returns false once the
// voice has become fully silent and should be reclaimed by the pool.
func (v *Voice) Process(ch *Channel) bool {
	if v.left.noteGain < nonAudible && (!v.stereo || v.right.noteGain < nonAudible) {
		return false
	}

	if v.voiceLength >= int64(v.sampleRate/clickAvoidanceFraction) &&
		v.state == VoiceReleaseRequested && !ch.Sustain() {
		v.left.release()
		if v.stereo {
			v.right.release()
		}
		v.state = VoiceReleased
	}

	v.previousLeftGain, v.previousRightGain = v.currentLeftGain, v.currentRightGain

	leftOK := v.left.processTrack(ch, v.key, v.sampleRate)
	rightOK := false
	if v.stereo {
		rightOK = v.right.processTrack(ch, v.key, v.sampleRate)
	}
	if !leftOK && (!v.stereo || !rightOK) {
		return false
	}

	v.applyPanning(ch)
	v.updateSends(ch)

	if v.voiceLength == 0 {
		v.previousLeftGain, v.previousRightGain = v.currentLeftGain, v.currentRightGain
	}

	v.voiceLength += int64(v.blockSize)
	return true
}

// applyPanning implements the constant-power pan law, expanding a mono
// voice's single source into two output gains, or scaling each stereo
// track's own gain toward its output side.
func (v *Voice) applyPanning(ch *Channel) {
	leftPan := clamp(ch.Pan()+v.left.instrumentPan, -50, 50)
	rightPan := leftPan
	if v.stereo {
		rightPan = clamp(ch.Pan()+v.right.instrumentPan, -50, 50)
	}

	rightMix := v.left.currentMixGain
	if v.stereo {
		rightMix = v.right.currentMixGain
	}

	if math.Abs(ch.Pan()+v.left.instrumentPan) >= 50 {
		v.currentLeftGain = v.left.currentMixGain
	} else {
		angle := (math.Pi / 2) / 50 * leftPan
		factor := 1 + (math.Sqrt2-1)*math.Cos(angle)
		v.currentLeftGain = v.left.currentMixGain * (50 - leftPan) / 100 * factor
	}

	if math.Abs(ch.Pan()+v.right.instrumentPan) >= 50 && v.stereo {
		v.currentRightGain = rightMix
	} else {
		angle := (math.Pi / 2) / 50 * rightPan
		factor := 1 + (math.Sqrt2-1)*math.Cos(angle)
		v.currentRightGain = rightMix * (50 + rightPan) / 100 * factor
	}
}

// updateSends averages each track's instrument-level send contribution
// (for stereo voices) and adds the channel's own send controllers.
func (v *Voice) updateSends(ch *Channel) {
	if !v.sendsEnabled {
		v.reverbSend, v.chorusSend = 0, 0
		return
	}
	reverb := v.left.reverbSend
	chorus := v.left.chorusSend
	if v.stereo {
		reverb = (v.left.reverbSend + v.right.reverbSend) / 2
		chorus = (v.left.chorusSend + v.right.chorusSend) / 2
	}
	v.reverbSend = clamp(ch.ReverbSend()+reverb, 0, 1)
	v.chorusSend = clamp(ch.ChorusSend()+chorus, 0, 1)
}

// Priority reports the voice's stealing priority: the maximum volume
// envelope priority across active tracks, or 0 if fully silent.
func (v *Voice) Priority() float64 {
	if v.left.noteGain < nonAudible && (!v.stereo || v.right.noteGain < nonAudible) {
		return 0
	}
	p := v.left.volEnv.Priority()
	if v.stereo {
		if rp := v.right.volEnv.Priority(); rp > p {
			p = rp
		}
	}
	return p
}
