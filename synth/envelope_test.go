package synth

import "testing"

func approxEqual(a, b, eps float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

func TestModulationEnvelopeReferenceTrace(t *testing.T) {
	env := NewModulationEnvelope(22050)
	env.Start(0.01, 0.02, 0.015, 0.2, 0.5, 0.1)

	want := []float64{
		0.0000, 0.0000, 0.0000, 0.0805, 0.2256, 0.3707, 0.5159, 0.6610, 0.8061, 0.9512,
		1.0000, 1.0000, 1.0000, 1.0000, 1.0000, 0.9928, 0.9783, 0.9638, 0.9493, 0.9348,
		0.9202, 0.9057, 0.8912, 0.8767, 0.8622, 0.8477, 0.8332, 0.8187, 0.8041, 0.7896,
	}

	for i, w := range want {
		env.Process(64)
		if got := env.Value(); !approxEqual(got, w, 0.0002) {
			t.Errorf("block %d: value = %.4f, want %.4f", i, got, w)
		}
	}

	env.Release()
	first := env.Process(64)
	if !first {
		t.Fatalf("expected Process to return true immediately after release")
	}
	if got := env.Value(); !approxEqual(got, 0.7667, 0.0002) {
		t.Errorf("first post-release value = %.4f, want 0.7667", got)
	}

	last := env.Value()
	blocks := 0
	for env.Process(64) {
		v := env.Value()
		if v > last+1e-9 {
			t.Fatalf("release value increased: %.6f then %.6f", last, v)
		}
		last = v
		blocks++
		if blocks > 1000 {
			t.Fatal("release never reached the non-audible floor")
		}
	}
	if got := env.Value(); got > nonAudible {
		t.Errorf("value at exhaustion = %.4f, want <= %.4f", got, nonAudible)
	}
}

func TestVolumeEnvelopeReferenceTrace(t *testing.T) {
	env := NewVolumeEnvelope(22050)
	env.Start(0.01, 0.02, 0.015, 0.2, 0.5, 0.1)

	want := []float64{
		0.0000, 0.0000, 0.0000, 0.0805, 0.2256, 0.3707, 0.5159, 0.6610, 0.8061, 0.9512,
		1, 1, 1, 1, 1,
	}
	for i, w := range want {
		env.Process(64)
		if got := env.Value(); !approxEqual(got, w, 0.0002) {
			t.Errorf("block %d: value = %.4f, want %.4f", i, got, w)
		}
	}

	// Priority in Delay/Attack/Hold is exactly 3, 3-value, 2.
	env2 := NewVolumeEnvelope(22050)
	env2.Start(0.01, 0.02, 0.015, 0.2, 0.5, 0.1)
	env2.Process(64)
	env2.Process(64)
	env2.Process(64)
	if got := env2.Priority(); !approxEqual(got, 3, 1e-9) {
		t.Errorf("priority in delay = %v, want 3", got)
	}

	// Decay approaches, then holds at, the sustain floor.
	env3 := NewVolumeEnvelope(22050)
	env3.Start(0.01, 0.02, 0.015, 0.2, 0.5, 0.1)
	for i := 0; i < 200; i++ {
		env3.Process(64)
	}
	if got := env3.Value(); !approxEqual(got, 0.5, 0.001) {
		t.Errorf("sustained value = %.4f, want ~0.5", got)
	}
	if got := env3.Priority(); !approxEqual(got, 1.5, 0.001) {
		t.Errorf("sustained priority = %.4f, want ~1.5", got)
	}

	// Release ramps down exponentially from the captured level and
	// eventually reaches the non-audible floor.
	env3.Release()
	first := env3.Value()
	last := first
	blocks := 0
	for env3.Process(64) {
		v := env3.Value()
		if v > last+1e-9 {
			t.Fatalf("release value increased: %.6f then %.6f", last, v)
		}
		last = v
		blocks++
		if blocks > 2000 {
			t.Fatal("release never reached the non-audible floor")
		}
	}
	if got := env3.Value(); got > nonAudible {
		t.Errorf("value at exhaustion = %.4f, want <= %.4f", got, nonAudible)
	}
	if got := env3.Priority(); !approxEqual(got, env3.Value(), 1e-9) {
		t.Errorf("release priority = %.4f, want value %.4f", got, env3.Value())
	}
}

func TestVolumeEnvelopeDecayNonAudibleKeepsSustaining(t *testing.T) {
	// A sustain level above the non-audible floor must never cause
	// Process to return false during Decay.
	env := NewVolumeEnvelope(22050)
	env.Start(0.0, 0.0, 0.0, 0.05, 0.3, 0.1)
	for i := 0; i < 500; i++ {
		if !env.Process(64) {
			t.Fatalf("Process returned false at block %d despite audible sustain", i)
		}
	}
}
