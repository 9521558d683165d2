// envelope_volume.go - six-stage DAHDSR envelope in linear gain units,
// exponential decay/release, exposing a priority used for voice stealing.

package synth

import "math"

// envelopeStage is shared between VolumeEnvelope and ModulationEnvelope;
// both step through the same six phases even though decay/release differ
// in shape between the two.
type envelopeStage int

const (
	stageDelay envelopeStage = iota
	stageAttack
	stageHold
	stageDecay
	stageRelease
)

// nonAudible is the linear gain floor below which a voice is considered
// silent and reclaimable.
const nonAudible = 0.001

// timeDecayConstant approximates the -80 dB decay time constant used by
// the exponential decay/release ramps: ln(10^4).
const timeDecayConstant = 9.226

// VolumeEnvelope drives a voice's overall loudness through delay, attack,
// hold, decay, sustain and release.
type VolumeEnvelope struct {
	sampleRate int

	delay, attack, hold, decay, release float64
	sustain                             float64

	decayStart   float64
	releaseStart float64
	releaseLevel float64

	samplesElapsed int64
	stage          envelopeStage
	value          float64
}

// NewVolumeEnvelope constructs an envelope driven at the given output
// sample rate.
func NewVolumeEnvelope(sampleRate int) *VolumeEnvelope {
	return &VolumeEnvelope{sampleRate: sampleRate}
}

// Start begins the envelope from Delay with the given stage durations (in
// seconds) and sustain level (linear gain, 0..1).
func (e *VolumeEnvelope) Start(delay, attack, hold, decay, sustain, release float64) {
	e.delay, e.attack, e.hold, e.decay, e.release = delay, attack, hold, decay, release
	e.sustain = sustain
	e.decayStart = delay + attack + hold
	e.samplesElapsed = 0
	e.stage = stageDelay
	e.value = 0
}

// Release transitions the envelope into its release phase, capturing the
// value it had reached so release ramps down from there rather than from 1.
func (e *VolumeEnvelope) Release() {
	if e.stage == stageRelease {
		return
	}
	e.stage = stageRelease
	e.releaseStart = e.currentTime()
	e.releaseLevel = e.value
}

func (e *VolumeEnvelope) currentTime() float64 {
	return float64(e.samplesElapsed) / float64(e.sampleRate)
}

// Value returns the envelope's current linear gain.
func (e *VolumeEnvelope) Value() float64 { return e.value }

// Stage exposes the current phase, used only by tests that assert on
// transition boundaries.
func (e *VolumeEnvelope) Stage() envelopeStage { return e.stage }

// Priority feeds voice stealing: Delay=3, Attack=3-value, Hold=2,
// Decay=1+value, Release=value. Higher survives longer.
func (e *VolumeEnvelope) Priority() float64 {
	switch e.stage {
	case stageDelay:
		return 3
	case stageAttack:
		return 3 - e.value
	case stageHold:
		return 2
	case stageDecay:
		return 1 + e.value
	default: // stageRelease
		return e.value
	}
}

// Process advances the envelope by n samples and recomputes its value. It
// returns false only when the envelope is in Decay or Release and has
// fallen to or below the non-audible floor; it always returns true in
// Delay, Attack, and Hold.
func (e *VolumeEnvelope) Process(n int) bool {
	e.samplesElapsed += int64(n)
	t := e.currentTime()

	if e.stage == stageDelay && t >= e.delay {
		e.stage = stageAttack
	}
	if e.stage == stageAttack && t >= e.delay+e.attack {
		e.stage = stageHold
	}
	if e.stage == stageHold && t >= e.decayStart {
		e.stage = stageDecay
	}

	switch e.stage {
	case stageDelay:
		e.value = 0
	case stageAttack:
		e.value = (1 / e.attack) * (t - e.delay)
	case stageHold:
		e.value = 1
	case stageDecay:
		decaySlope := -timeDecayConstant / e.decay
		e.value = math.Max(math.Exp(decaySlope*(t-e.decayStart)), e.sustain)
		if e.value <= nonAudible {
			return false
		}
	case stageRelease:
		releaseSlope := -timeDecayConstant / e.release
		e.value = e.releaseLevel * math.Exp(releaseSlope*(t-e.releaseStart))
		if e.value <= nonAudible {
			return false
		}
	}
	return true
}
