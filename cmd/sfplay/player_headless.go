//go:build headless

package main

import "github.com/waveform-audio/sf2synth/synth"

// otoPlayer is a no-op stand-in for environments without audio output
// (CI, containers), matching the shape of the real oto-backed player.
type otoPlayer struct {
	engine *synth.Synthesizer
}

func newOtoPlayer(sampleRate int) (*otoPlayer, error) { return &otoPlayer{}, nil }

func (p *otoPlayer) setup(engine *synth.Synthesizer) { p.engine = engine }

func (p *otoPlayer) Start() {}

func (p *otoPlayer) Close() {}
