// synthesizer.go - top-level MIDI-to-audio engine: channel state, voice
// pool, and the block-rendering ring buffer.

package synth

import (
	"math"

	"github.com/waveform-audio/sf2synth/sf2"
)

const channelCount = 16

// Synthesizer is a complete polyphonic MIDI synthesis engine bound to one
// loaded SoundFont bank.
type Synthesizer struct {
	config Config

	bank          *sf2.Bank
	defaultPreset *sf2.Preset

	channels []*Channel
	voices   *VoiceCollection

	masterVolume float64 // linear gain

	blockLeft, blockRight []float32
	blockMono             []float32
	blocksOffset          int
	nbRenderedSamples     int64
}

// New constructs a Synthesizer from validated configuration. bank may be
// nil; the engine remains in a "no bank" state where note-on has no effect
// until LoadSoundFont is called.
func New(cfg Config, bank *sf2.Bank) (*Synthesizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Synthesizer{
		config:       cfg,
		channels:     make([]*Channel, channelCount),
		voices:       NewVoiceCollection(cfg.MaximumPolyphony, cfg.SampleRate, cfg.BlockSize, cfg.ReverbAndChorusEnabled),
		masterVolume: 1,
		blockLeft:    make([]float32, cfg.BlockSize),
		blockRight:   make([]float32, cfg.BlockSize),
		blockMono:    make([]float32, cfg.BlockSize),
		blocksOffset: cfg.BlockSize,
	}
	for i := range s.channels {
		s.channels[i] = NewChannel(i == 9)
	}
	if bank != nil {
		if err := s.LoadSoundFont(bank); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// LoadSoundFont installs a decoded bank, selecting its first preset (by
// map iteration is nondeterministic in Go, so the lowest (bank, number) is
// used instead) as the GM fallback-of-last-resort. It returns ErrNoBank if
// bank is nil.
func (s *Synthesizer) LoadSoundFont(bank *sf2.Bank) error {
	if bank == nil {
		return ErrNoBank
	}
	s.bank = bank
	s.defaultPreset = nil
	for id, p := range bank.Presets {
		if s.defaultPreset == nil {
			s.defaultPreset = p
			continue
		}
		cur := sf2.PresetID{Bank: s.defaultPreset.Bank, Number: s.defaultPreset.Number}
		if id.Bank < cur.Bank || (id.Bank == cur.Bank && id.Number < cur.Number) {
			s.defaultPreset = p
		}
	}
	return nil
}

// HasBank reports whether a SoundFont bank is currently loaded.
func (s *Synthesizer) HasBank() bool { return s.bank != nil }

// ProcessMIDIMessage dispatches a channel-voice or channel-mode MIDI
// message by its status byte's command nibble. It returns false only when
// channel is out of range.
func (s *Synthesizer) ProcessMIDIMessage(channel int, command, data1, data2 byte) bool {
	if channel < 0 || channel >= channelCount {
		return false
	}
	switch command & 0xF0 {
	case 0x80:
		s.NoteOff(channel, data1)
	case 0x90:
		s.NoteOn(channel, data1, data2)
	case 0xB0:
		s.controlChange(channel, data1, data2)
	case 0xC0:
		s.channels[channel].Preset = data1
	case 0xE0:
		s.channels[channel].SetPitchBend(data1, data2)
	}
	return true
}

func (s *Synthesizer) controlChange(channel int, controller, value byte) {
	switch controller {
	case 120:
		s.AllNotesOff(channel, true)
	case 123:
		s.AllNotesOff(channel, false)
	default:
		s.channels[channel].HandleControlChange(controller, value)
	}
}

// NoteOn starts a note. A velocity of 0 is routed to NoteOff, per the MIDI
// running-status convention. If no bank is loaded, or no zone (including
// the GM fallback chain) matches, the note is silently dropped.
func (s *Synthesizer) NoteOn(channel int, key, velocity uint8) {
	if velocity == 0 {
		s.NoteOff(channel, key)
		return
	}
	if s.bank == nil {
		return
	}
	ch := s.channels[channel]
	info, ok := resolveKey(s.bank, s.defaultPreset, uint16(ch.Bank), uint16(ch.Preset), key, velocity)
	if !ok {
		return
	}
	exclusiveClass := 0
	if info.Left.Generators.Has(sf2.GenExclusiveClass) {
		exclusiveClass = int(info.Left.Generators.AmountAsUnsigned(sf2.GenExclusiveClass))
	}
	v := s.voices.Request(channel, exclusiveClass)
	v.Start(info, s.bank.Wavetable, channel, key, velocity, exclusiveClass)
}

// NoteOff releases every active voice on the given channel and key.
func (s *Synthesizer) NoteOff(channel int, key uint8) {
	s.voices.EndChannel(channel, key)
}

// AllNotesOff silences a channel. immediate=true kills voices outright
// (all-sound-off); immediate=false requests ordinary release (all-notes-off).
func (s *Synthesizer) AllNotesOff(channel int, immediate bool) {
	if immediate {
		for _, v := range s.voices.Active() {
			if v.Channel() == channel {
				v.Kill()
			}
		}
		return
	}
	s.voices.EndAllOnChannel(channel)
}

// ResetAllControllers resets controller state on every channel.
func (s *Synthesizer) ResetAllControllers() {
	for _, ch := range s.channels {
		ch.ResetControllers()
	}
}

// ResetControllers resets controller state on one channel.
func (s *Synthesizer) ResetControllers(channel int) {
	if channel < 0 || channel >= channelCount {
		return
	}
	s.channels[channel].ResetControllers()
}

// ConfigureChannel sets a channel's bank/preset directly. It returns false
// if no bank is loaded or the (bank, preset) pair does not exist.
func (s *Synthesizer) ConfigureChannel(channel int, bank, preset uint8) bool {
	if channel < 0 || channel >= channelCount || s.bank == nil {
		return false
	}
	if _, ok := s.bank.Presets[sf2.PresetID{Bank: uint16(bank), Number: uint16(preset)}]; !ok {
		return false
	}
	s.channels[channel].Bank = bank
	s.channels[channel].Preset = preset
	return true
}

// SetMasterVolume sets the master output level in decibels.
func (s *Synthesizer) SetMasterVolume(db float64) { s.masterVolume = math.Pow(10, db/20) }

// MasterVolume returns the master output level in decibels.
func (s *Synthesizer) MasterVolume() float64 { return 20 * math.Log10(s.masterVolume) }

// Reset clears all voices and channel state and zeroes the render clock.
func (s *Synthesizer) Reset() {
	s.voices.Clear()
	for _, ch := range s.channels {
		ch.Reset()
	}
	s.nbRenderedSamples = 0
	s.blocksOffset = s.config.BlockSize
}

// RenderedSamples returns the total number of samples rendered since
// construction or the last Reset.
func (s *Synthesizer) RenderedSamples() int64 { return s.nbRenderedSamples }

// RenderStereo fills left and right with n samples each, rendering fresh
// blocks internally as its one-block ring buffer is exhausted.
func (s *Synthesizer) RenderStereo(left, right []float32, n int) {
	written := 0
	for written < n {
		if s.blocksOffset == s.config.BlockSize {
			s.renderBlockStereo()
			s.blocksOffset = 0
		}
		count := s.config.BlockSize - s.blocksOffset
		if remaining := n - written; count > remaining {
			count = remaining
		}
		copy(left[written:written+count], s.blockLeft[s.blocksOffset:s.blocksOffset+count])
		copy(right[written:written+count], s.blockRight[s.blocksOffset:s.blocksOffset+count])
		s.blocksOffset += count
		written += count
	}
	s.nbRenderedSamples += int64(n)
}

// RenderMono fills out with n samples from its own single-channel block
// render: a stereo voice's left and right pan gains are summed into the
// mono buffer, and a mono voice contributes only its left-side pan gain.
func (s *Synthesizer) RenderMono(out []float32, n int) {
	written := 0
	for written < n {
		if s.blocksOffset == s.config.BlockSize {
			s.renderBlockMono()
			s.blocksOffset = 0
		}
		count := s.config.BlockSize - s.blocksOffset
		if remaining := n - written; count > remaining {
			count = remaining
		}
		copy(out[written:written+count], s.blockMono[s.blocksOffset:s.blocksOffset+count])
		s.blocksOffset += count
		written += count
	}
	s.nbRenderedSamples += int64(n)
}

func (s *Synthesizer) renderBlockStereo() {
	s.voices.Process(s.channels)

	for i := range s.blockLeft {
		s.blockLeft[i] = 0
		s.blockRight[i] = 0
	}

	for _, v := range s.voices.Active() {
		prevL := v.PreviousLeftGain() * s.masterVolume
		curL := v.CurrentLeftGain() * s.masterVolume
		prevR := v.PreviousRightGain() * s.masterVolume
		curR := v.CurrentRightGain() * s.masterVolume

		writeBlock(prevL, curL, v.BlockLeft(), s.blockLeft)
		if v.Stereo() {
			writeBlock(prevR, curR, v.BlockRight(), s.blockRight)
		} else {
			writeBlock(prevR, curR, v.BlockLeft(), s.blockRight)
		}
	}
}

// renderBlockMono advances every voice by one block and mixes them into a
// single-channel buffer: a stereo voice's left and right sides are both
// summed in at unity (no averaging), while a mono voice contributes only
// its left-side pan gain, matching a dedicated mono output rather than a
// downmix of the stereo pair.
func (s *Synthesizer) renderBlockMono() {
	s.voices.Process(s.channels)

	for i := range s.blockMono {
		s.blockMono[i] = 0
	}

	for _, v := range s.voices.Active() {
		prevL := v.PreviousLeftGain() * s.masterVolume
		curL := v.CurrentLeftGain() * s.masterVolume
		writeBlock(prevL, curL, v.BlockLeft(), s.blockMono)

		if v.Stereo() {
			prevR := v.PreviousRightGain() * s.masterVolume
			curR := v.CurrentRightGain() * s.masterVolume
			writeBlock(prevR, curR, v.BlockRight(), s.blockMono)
		}
	}
}

// writeBlock mixes gain·src into dst, ramping gain linearly from prev to
// cur across the block unless the change is negligible.
func writeBlock(prev, cur float64, src []float32, dst []float32) {
	if math.Max(prev, cur) < nonAudible {
		return
	}
	if math.Abs(cur-prev) < 1e-3 {
		g := float32(cur)
		for i, x := range src {
			dst[i] += g * x
		}
		return
	}
	step := (cur - prev) / float64(len(src))
	gain := prev
	for i, x := range src {
		dst[i] += float32(gain) * x
		gain += step
	}
}
