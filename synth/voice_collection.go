// voice_collection.go - fixed-capacity voice pool with exclusive-class
// reuse and priority-based stealing.

package synth

// VoiceCollection manages a fixed-size pool of voices, handing them out on
// note-on and reclaiming them once silent or stolen.
type VoiceCollection struct {
	voices []*Voice
	active int
}

// NewVoiceCollection preallocates capacity voices for the given output
// configuration.
func NewVoiceCollection(capacity, sampleRate, blockSize int, sendsEnabled bool) *VoiceCollection {
	vc := &VoiceCollection{voices: make([]*Voice, capacity)}
	for i := range vc.voices {
		vc.voices[i] = NewVoice(sampleRate, blockSize, sendsEnabled)
	}
	return vc
}

// Active returns the currently active (playing or released-but-live)
// voices, in pool order.
func (vc *VoiceCollection) Active() []*Voice { return vc.voices[:vc.active] }

// Request returns a voice ready to Start a new note on the given channel.
// If exclusiveClass is non-zero and another active voice on the same
// channel already occupies that class, it is killed and reused in place
// (so the new note replaces it without stealing a second slot). Otherwise
// an idle pool slot is used if one remains, or the lowest-priority voice
// (oldest on ties) is stolen.
func (vc *VoiceCollection) Request(channel, exclusiveClass int) *Voice {
	if exclusiveClass != 0 {
		for _, v := range vc.Active() {
			if v.Channel() == channel && v.ExclusiveClass() == exclusiveClass {
				v.Kill()
				return v
			}
		}
	}

	if vc.active < len(vc.voices) {
		v := vc.voices[vc.active]
		vc.active++
		return v
	}

	return vc.steal()
}

// steal picks the active voice with the lowest priority, breaking ties in
// favor of the oldest (largest VoiceLength), and kills it for reuse.
func (vc *VoiceCollection) steal() *Voice {
	victim := vc.voices[0]
	for _, v := range vc.voices[1:vc.active] {
		if v.Priority() < victim.Priority() ||
			(v.Priority() == victim.Priority() && v.VoiceLength() > victim.VoiceLength()) {
			victim = v
		}
	}
	victim.Kill()
	return victim
}

// Process advances every active voice by one block, compacting dead
// voices out of the active range. Compaction is not order-preserving: a
// dead slot is filled by swapping in the last active voice.
func (vc *VoiceCollection) Process(channels []*Channel) {
	i := 0
	for i < vc.active {
		v := vc.voices[i]
		if v.Process(channels[v.Channel()]) {
			i++
			continue
		}
		vc.active--
		vc.voices[i], vc.voices[vc.active] = vc.voices[vc.active], vc.voices[i]
	}
}

// Clear silences every voice immediately, without honoring release.
func (vc *VoiceCollection) Clear() {
	for i := 0; i < vc.active; i++ {
		vc.voices[i].Kill()
	}
	vc.active = 0
}

// EndChannel requests release on every active, still-playing voice on the
// given channel and key (used by note-off).
func (vc *VoiceCollection) EndChannel(channel int, key uint8) {
	for _, v := range vc.Active() {
		if v.Channel() == channel && v.Key() == key && v.State() == VoicePlaying {
			v.End()
		}
	}
}

// EndAllOnChannel requests release on every active voice on the given
// channel (used by all-notes-off).
func (vc *VoiceCollection) EndAllOnChannel(channel int) {
	for _, v := range vc.Active() {
		if v.Channel() == channel && v.State() == VoicePlaying {
			v.End()
		}
	}
}
