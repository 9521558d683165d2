package synth

import "testing"

func TestVoiceStartAndProcessProducesAudio(t *testing.T) {
	const sampleRate, blockSize = 22050, 64
	bank := buildTestBank(sampleRate)
	ch := NewChannel(false)

	info, ok := resolveKey(bank, nil, 0, 0, 60, 100)
	if !ok {
		t.Fatal("resolveKey failed to resolve (0,0,60,100)")
	}

	v := NewVoice(sampleRate, blockSize, true)
	v.Start(info, bank.Wavetable, 0, 60, 100, 0)

	if !v.Process(ch) {
		t.Fatal("expected voice to still be active after first block")
	}
	silent := true
	for _, s := range v.BlockLeft() {
		if s != 0 {
			silent = false
			break
		}
	}
	if silent {
		t.Error("expected non-silent output from an active voice")
	}
	if v.Priority() <= 0 {
		t.Error("expected a positive priority for a freshly started voice")
	}
}

func TestVoiceEndTransitionsToReleaseAfterClickGate(t *testing.T) {
	const sampleRate, blockSize = 22050, 64
	bank := buildTestBank(sampleRate)
	ch := NewChannel(false)

	info, ok := resolveKey(bank, nil, 0, 0, 60, 100)
	if !ok {
		t.Fatal("resolveKey failed")
	}
	v := NewVoice(sampleRate, blockSize, true)
	v.Start(info, bank.Wavetable, 0, 60, 100, 0)
	v.End()

	if v.State() != VoiceReleaseRequested {
		t.Fatalf("expected ReleaseRequested immediately after End, got %v", v.State())
	}

	gate := sampleRate / clickAvoidanceFraction
	for v.VoiceLength() < int64(gate)+int64(blockSize) {
		if !v.Process(ch) {
			t.Fatal("voice died before release gate elapsed")
		}
	}
	if v.State() != VoiceReleased {
		t.Fatalf("expected Released once the click-avoidance gate has passed, got %v", v.State())
	}
}

func TestVoiceKillSilencesImmediately(t *testing.T) {
	const sampleRate, blockSize = 22050, 64
	bank := buildTestBank(sampleRate)
	ch := NewChannel(false)

	info, ok := resolveKey(bank, nil, 0, 0, 60, 100)
	if !ok {
		t.Fatal("resolveKey failed")
	}
	v := NewVoice(sampleRate, blockSize, true)
	v.Start(info, bank.Wavetable, 0, 60, 100, 0)
	v.Kill()

	if v.Process(ch) {
		t.Error("expected a killed voice to report inactive on the next Process call")
	}
}

func TestVoicePriorityZeroWhenSilent(t *testing.T) {
	v := NewVoice(22050, 64, true)
	if p := v.Priority(); p != 0 {
		t.Errorf("expected priority 0 for an idle voice, got %v", p)
	}
}

func TestVoiceSendsDisabledReportsZero(t *testing.T) {
	const sampleRate, blockSize = 22050, 64
	bank := buildTestBank(sampleRate)
	ch := NewChannel(false)
	ch.HandleControlChange(91, 127) // channel reverb send maxed

	info, ok := resolveKey(bank, nil, 0, 0, 60, 100)
	if !ok {
		t.Fatal("resolveKey failed")
	}
	v := NewVoice(sampleRate, blockSize, false)
	v.Start(info, bank.Wavetable, 0, 60, 100, 0)
	v.Process(ch)

	if v.ReverbSend() != 0 || v.ChorusSend() != 0 {
		t.Errorf("expected sends disabled by config to report zero, got reverb=%v chorus=%v", v.ReverbSend(), v.ChorusSend())
	}
}
