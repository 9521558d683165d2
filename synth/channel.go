// channel.go - per-channel MIDI controller state, resolving 14-bit and
// 7-bit controller values into the continuous floats the voice math needs.

package synth

import "math"

const (
	defaultVolume14     = 100 << 7
	defaultPan14        = 64 << 7
	defaultExpression14 = 127 << 7
	defaultPitchRange14 = 2 << 7
	defaultFineTune14   = 8192
	defaultReverbSend7  = 40
	defaultChorusSend7  = 0
)

// rpnParameter identifies which registered parameter Data Entry currently
// targets.
type rpnParameter uint16

const (
	rpnPitchBendRange rpnParameter = 0
	rpnFineTune       rpnParameter = 1
	rpnCoarseTune     rpnParameter = 2
	rpnNone           rpnParameter = 0x3FFF
)

// Channel holds one MIDI channel's controller state.
type Channel struct {
	Bank       uint8
	Preset     uint8
	Percussion bool

	modulation14  uint16
	volume14      uint16
	pan14         uint16
	expression14  uint16
	pitchRange14  uint16
	fineTune14    uint16
	coarseTune    float64 // semitones, from RPN 2 data entry
	reverbSend7   uint8
	chorusSend7   uint8
	sustain       bool
	rpn           rpnParameter
	pitchBendNorm float64 // -1..1
}

// NewChannel constructs a channel with the documented defaults.
func NewChannel(percussion bool) *Channel {
	c := &Channel{Percussion: percussion}
	c.Reset()
	return c
}

// Reset restores every field to its documented default.
func (c *Channel) Reset() {
	if c.Percussion {
		c.Bank = 128
	} else {
		c.Bank = 0
	}
	c.Preset = 0
	c.modulation14 = 0
	c.volume14 = defaultVolume14
	c.pan14 = defaultPan14
	c.expression14 = defaultExpression14
	c.pitchRange14 = defaultPitchRange14
	c.fineTune14 = defaultFineTune14
	c.coarseTune = 0
	c.reverbSend7 = defaultReverbSend7
	c.chorusSend7 = defaultChorusSend7
	c.sustain = false
	c.rpn = rpnNone
	c.pitchBendNorm = 0
}

// ResetControllers clears modulation, expression, sustain, RPN selection
// and pitch bend, preserving bank, preset, volume, pan, sends and tuning.
func (c *Channel) ResetControllers() {
	c.modulation14 = 0
	c.expression14 = defaultExpression14
	c.sustain = false
	c.rpn = rpnNone
	c.pitchBendNorm = 0
}

func packCoarseFine(existing uint16, coarse bool, value byte) uint16 {
	if coarse {
		return (existing & 0x7F) | (uint16(value&0x7F) << 7)
	}
	return (existing &^ 0x7F) | uint16(value&0x7F)
}

// HandleControlChange applies a Control Change message's effect to channel
// state. controller 120/121/123 are global actions the Synthesizer must
// still act on (all-sound-off, reset-all, all-notes-off); this method
// updates local state for them where relevant (121) and otherwise leaves
// dispatch to the caller.
func (c *Channel) HandleControlChange(controller, value byte) {
	switch controller {
	case 0:
		c.Bank = value
	case 1:
		c.modulation14 = packCoarseFine(c.modulation14, true, value)
	case 33:
		c.modulation14 = packCoarseFine(c.modulation14, false, value)
	case 6:
		c.applyDataEntry(true, value)
	case 38:
		c.applyDataEntry(false, value)
	case 7:
		c.volume14 = packCoarseFine(c.volume14, true, value)
	case 39:
		c.volume14 = packCoarseFine(c.volume14, false, value)
	case 10:
		c.pan14 = packCoarseFine(c.pan14, true, value)
	case 42:
		c.pan14 = packCoarseFine(c.pan14, false, value)
	case 11:
		c.expression14 = packCoarseFine(c.expression14, true, value)
	case 43:
		c.expression14 = packCoarseFine(c.expression14, false, value)
	case 64:
		c.sustain = value >= 64
	case 91:
		c.reverbSend7 = value & 0x7F
	case 93:
		c.chorusSend7 = value & 0x7F
	case 100:
		c.rpn = rpnParameter(packCoarseFine(uint16(c.rpn), false, value))
	case 101:
		c.rpn = rpnParameter(packCoarseFine(uint16(c.rpn), true, value))
	case 121:
		c.ResetControllers()
	}
}

func (c *Channel) applyDataEntry(coarse bool, value byte) {
	switch c.rpn {
	case rpnPitchBendRange:
		c.pitchRange14 = packCoarseFine(c.pitchRange14, coarse, value)
	case rpnFineTune:
		c.fineTune14 = packCoarseFine(c.fineTune14, coarse, value)
	case rpnCoarseTune:
		if coarse {
			c.coarseTune = float64(int8(value&0x7F)) - 64
		}
	}
}

// SetPitchBend applies a Pitch Bend message's two 7-bit data bytes.
func (c *Channel) SetPitchBend(lsb, msb byte) {
	raw := int(lsb&0x7F) | int(msb&0x7F)<<7
	c.pitchBendNorm = float64(raw-8192) / 8192
}

// Sustain reports whether the sustain pedal is currently held.
func (c *Channel) Sustain() bool { return c.sustain }

// Modulation returns the modulation wheel's depth in cents-equivalent
// units (0..50), per the wheel-to-vibrato-depth mapping.
func (c *Channel) Modulation() float64 {
	return 50.0 / 16383.0 * float64(c.modulation14)
}

// VolumeDB returns channel volume as a decibel offset.
func (c *Channel) VolumeDB() float64 {
	v := float64(c.volume14)
	if v <= 0 {
		return math.Inf(-1)
	}
	return 40 * math.Log10(v/16383.0)
}

// Expression returns the expression controller as a linear 0..1 gain.
func (c *Channel) Expression() float64 {
	return float64(c.expression14) / 16383.0
}

// Pan returns the channel pan position in -50..50.
func (c *Channel) Pan() float64 {
	return 100.0/16383.0*float64(c.pan14) - 50
}

// ReverbSend returns the reverb send level, 0..1.
func (c *Channel) ReverbSend() float64 { return float64(c.reverbSend7) / 127.0 }

// ChorusSend returns the chorus send level, 0..1.
func (c *Channel) ChorusSend() float64 { return float64(c.chorusSend7) / 127.0 }

// PitchBendRange returns the pitch-bend range in semitones.
func (c *Channel) PitchBendRange() float64 {
	return float64(c.pitchRange14>>7) + 0.01*float64(c.pitchRange14&0x7F)
}

// PitchBend returns the normalized pitch bend, -1..1, scaled by
// PitchBendRange when applied to pitch.
func (c *Channel) PitchBend() float64 { return c.pitchBendNorm }

// Tune returns the channel's static tuning offset in semitones (coarse
// tune plus fine tune, centered on fineTune14 == 8192).
func (c *Channel) Tune() float64 {
	return c.coarseTune + (float64(c.fineTune14)-8192)/8192
}
