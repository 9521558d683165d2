package synth

import "testing"

func TestVoiceCollectionRequestBumpAllocatesUntilFull(t *testing.T) {
	const sampleRate, blockSize = 22050, 64
	bank := buildTestBank(sampleRate)
	info, ok := resolveKey(bank, nil, 0, 0, 60, 100)
	if !ok {
		t.Fatal("resolveKey failed")
	}

	vc := NewVoiceCollection(4, sampleRate, blockSize, true)
	seen := map[*Voice]bool{}
	for i := 0; i < 4; i++ {
		v := vc.Request(0, 0)
		if seen[v] {
			t.Fatalf("request %d returned an already-issued voice before pool exhaustion", i)
		}
		seen[v] = true
		v.Start(info, bank.Wavetable, 0, uint8(60+i), 100, 0)
	}
	if len(vc.Active()) != 4 {
		t.Fatalf("expected 4 active voices, got %d", len(vc.Active()))
	}
}

func TestVoiceCollectionReusesReleasedVoiceSlotNotSustainingOne(t *testing.T) {
	const sampleRate, blockSize = 22050, 64
	bank := buildTestBank(sampleRate)
	ch := NewChannel(false)

	vc := NewVoiceCollection(2, sampleRate, blockSize, true)
	info, ok := resolveKey(bank, nil, 0, 0, 60, 100)
	if !ok {
		t.Fatal("resolveKey failed")
	}

	first := vc.Request(0, 0)
	first.Start(info, bank.Wavetable, 0, 60, 100, 0)
	first.End() // drop toward release, lowering its priority relative to a fresh voice

	second := vc.Request(0, 0)
	second.Start(info, bank.Wavetable, 0, 61, 100, 0)

	// Advance well past the click-avoidance gate so first has genuinely
	// entered (and likely finished) release, while second stays sustained.
	// Whether first dies and its slot is bump-reused, or survives long
	// enough to be the lowest-priority steal target, the identity checks
	// below hold either way.
	gate := sampleRate/clickAvoidanceFraction + 4*blockSize
	for i := 0; i < gate/blockSize+2; i++ {
		vc.Process([]*Channel{ch})
	}

	third := vc.Request(0, 0) // pool is full (or was, before first died): reuses first's slot
	if third != first {
		t.Error("expected the released/lower-priority voice's slot to be reused, not the sustaining one")
	}
	if third == second {
		t.Error("must not disturb the higher-priority sustaining voice")
	}
}

func TestVoiceCollectionExclusiveClassReusesInPlace(t *testing.T) {
	const sampleRate, blockSize = 22050, 64
	bank := buildExclusiveTestBank(sampleRate, 5)
	info, ok := resolveKey(bank, nil, 0, 0, 60, 100)
	if !ok {
		t.Fatal("resolveKey failed")
	}

	vc := NewVoiceCollection(8, sampleRate, blockSize, true)
	first := vc.Request(0, 5)
	first.Start(info, bank.Wavetable, 0, 60, 100, 5)

	second := vc.Request(0, 5)
	if second != first {
		t.Error("expected exclusive-class request on the same channel to reuse the existing voice")
	}
	if len(vc.Active()) != 1 {
		t.Errorf("exclusive-class reuse must not grow the active pool, got %d active", len(vc.Active()))
	}
}

func TestVoiceCollectionProcessCompactsDeadVoices(t *testing.T) {
	const sampleRate, blockSize = 22050, 64
	bank := buildTestBank(sampleRate)
	info, ok := resolveKey(bank, nil, 0, 0, 60, 100)
	if !ok {
		t.Fatal("resolveKey failed")
	}
	ch := NewChannel(false)
	vc := NewVoiceCollection(4, sampleRate, blockSize, true)

	v := vc.Request(0, 0)
	v.Start(info, bank.Wavetable, 0, 60, 100, 0)
	v.Kill()

	vc.Process([]*Channel{ch})
	if len(vc.Active()) != 0 {
		t.Errorf("expected the killed voice to be compacted out, got %d active", len(vc.Active()))
	}
}

func TestVoiceCollectionClearSilencesAll(t *testing.T) {
	const sampleRate, blockSize = 22050, 64
	bank := buildTestBank(sampleRate)
	info, ok := resolveKey(bank, nil, 0, 0, 60, 100)
	if !ok {
		t.Fatal("resolveKey failed")
	}

	vc := NewVoiceCollection(4, sampleRate, blockSize, true)
	for i := 0; i < 3; i++ {
		v := vc.Request(0, 0)
		v.Start(info, bank.Wavetable, 0, uint8(60+i), 100, 0)
	}
	vc.Clear()
	if len(vc.Active()) != 0 {
		t.Errorf("expected Clear to empty the active pool, got %d", len(vc.Active()))
	}
}
