// lfo.go - triangle-wave low-frequency oscillator with delay, updated once
// per rendered block.

package synth

import "math"

// lfoFreezeThreshold is the frequency below which an LFO is considered
// stopped rather than merely slow.
const lfoFreezeThreshold = 0.001

// LFO is a delayed triangle oscillator producing values in [-1, 1].
type LFO struct {
	sampleRate int
	blockSize  int

	delay  float64
	period float64
	frozen bool

	elapsed float64
	value   float64
}

// NewLFO constructs an LFO advanced by blockSize samples per Process call
// at the given output sample rate.
func NewLFO(sampleRate, blockSize int) *LFO {
	return &LFO{sampleRate: sampleRate, blockSize: blockSize}
}

// Start sets the delay (seconds) and frequency (Hz) and resets phase.
func (l *LFO) Start(delay, frequency float64) {
	l.delay = delay
	l.elapsed = 0
	l.value = 0
	if frequency <= lfoFreezeThreshold {
		l.frozen = true
		l.period = 0
		return
	}
	l.frozen = false
	l.period = 1 / frequency
}

// Process advances the LFO by one block.
func (l *LFO) Process() {
	if l.frozen {
		return
	}
	l.elapsed += float64(l.blockSize) / float64(l.sampleRate)
	if l.elapsed < l.delay {
		l.value = 0
		return
	}
	phase := math.Mod(l.elapsed-l.delay, l.period) / l.period
	switch {
	case phase < 0.25:
		l.value = 4 * phase
	case phase < 0.75:
		l.value = 4 * (0.5 - phase)
	default:
		l.value = 4 * (phase - 1)
	}
}

// Value returns the LFO's current output, [-1, 1].
func (l *LFO) Value() float64 { return l.value }
