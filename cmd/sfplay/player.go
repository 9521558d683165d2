//go:build !headless

// player.go - oto v3 audio output, pulling rendered samples from a
// synth.Synthesizer instead of the teacher's ring-buffer sound chip.

package main

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/oto/v3"

	"github.com/waveform-audio/sf2synth/synth"
)

// otoPlayer streams a Synthesizer's mono output through oto.
type otoPlayer struct {
	ctx    *oto.Context
	player *oto.Player

	engine    atomic.Pointer[synth.Synthesizer]
	sampleBuf []float32

	started bool
	mutex   sync.Mutex
}

func newOtoPlayer(sampleRate int) (*otoPlayer, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	})
	if err != nil {
		return nil, err
	}
	<-ready
	return &otoPlayer{ctx: ctx}, nil
}

func (p *otoPlayer) setup(engine *synth.Synthesizer) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.engine.Store(engine)
	p.player = p.ctx.NewPlayer(p)
	p.sampleBuf = make([]float32, 4096)
}

// Read implements io.Reader for oto.Player, rendering mono float32 samples
// on demand from the installed Synthesizer.
func (p *otoPlayer) Read(dst []byte) (int, error) {
	engine := p.engine.Load()
	if engine == nil {
		for i := range dst {
			dst[i] = 0
		}
		return len(dst), nil
	}

	numSamples := len(dst) / 4
	if len(p.sampleBuf) < numSamples {
		p.sampleBuf = make([]float32, numSamples)
	}
	samples := p.sampleBuf[:numSamples]
	engine.RenderMono(samples, numSamples)

	copy(dst, (*[1 << 30]byte)(unsafe.Pointer(&samples[0]))[:len(dst)])
	return len(dst), nil
}

func (p *otoPlayer) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if !p.started && p.player != nil {
		p.player.Play()
		p.started = true
	}
}

func (p *otoPlayer) Close() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.player != nil {
		p.player.Close()
		p.player = nil
	}
	p.started = false
}
