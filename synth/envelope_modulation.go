// envelope_modulation.go - the same six-stage DAHDSR shape as
// VolumeEnvelope, but with linear (not exponential) decay and release
// ramps, and no priority output.

package synth

import "math"

// ModulationEnvelope drives pitch/filter/volume cross-link modulation
// depth over a note's lifetime.
type ModulationEnvelope struct {
	sampleRate int

	delay, attack, hold, decay, release float64
	sustain                             float64

	decayStart, decayEnd     float64
	releaseStart, releaseEnd float64
	releaseLevel             float64

	samplesElapsed int64
	stage          envelopeStage
	value          float64
}

// NewModulationEnvelope constructs an envelope driven at the given output
// sample rate.
func NewModulationEnvelope(sampleRate int) *ModulationEnvelope {
	return &ModulationEnvelope{sampleRate: sampleRate}
}

// Start begins the envelope from Delay with the given stage durations (in
// seconds) and sustain level (0..1, fraction of full depth remaining).
func (e *ModulationEnvelope) Start(delay, attack, hold, decay, sustain, release float64) {
	e.delay, e.attack, e.hold, e.decay, e.release = delay, attack, hold, decay, release
	e.sustain = sustain
	e.decayStart = delay + attack + hold
	e.decayEnd = e.decayStart + decay
	e.samplesElapsed = 0
	e.stage = stageDelay
	e.value = 0
}

func (e *ModulationEnvelope) Release() {
	if e.stage == stageRelease {
		return
	}
	e.stage = stageRelease
	e.releaseStart = e.currentTime()
	e.releaseEnd = e.releaseStart + e.release
	e.releaseLevel = e.value
}

func (e *ModulationEnvelope) currentTime() float64 {
	return float64(e.samplesElapsed) / float64(e.sampleRate)
}

// Value returns the envelope's current depth, 0..1.
func (e *ModulationEnvelope) Value() float64 { return e.value }

// Stage exposes the current phase, used only by tests that assert on
// transition boundaries.
func (e *ModulationEnvelope) Stage() envelopeStage { return e.stage }

// Process advances the envelope by n samples. It returns false only when
// in Decay or Release and the value has fallen to/below the non-audible
// floor (Decay/0 respectively); always true in Delay, Attack, and Hold.
func (e *ModulationEnvelope) Process(n int) bool {
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
		decaySlope := 1 / e.decay
		e.value = math.Max(decaySlope*(e.decayEnd-t), e.sustain)
		if e.value <= nonAudible {
			return false
		}
	case stageRelease:
		releaseSlope := 1 / e.release
		e.value = math.Max(e.releaseLevel*releaseSlope*(e.releaseEnd-t), 0)
		if e.value <= nonAudible {
			return false
		}
	}
	return true
}
