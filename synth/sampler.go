// sampler.go - pitch-scaled linear-interpolation playback of one wavetable
// region, with loop-mode handling.

package synth

import "math"

// loopMode mirrors sf2.LoopMode as a package-local type, so the sampler
// itself does not depend on the sf2 package.
type loopMode uint8

const (
	loopNone          loopMode = 0
	loopContinuous    loopMode = 1
	loopUnusedReserve loopMode = 2
	loopUntilRelease  loopMode = 3
)

// sampler reads a fixed region of the shared wavetable buffer, advancing at
// a caller-supplied pitch each block.
type sampler struct {
	buffer     []float32
	startIndex int
	end        int
	loopStart  int
	loopEnd    int
	sampleRate int
	rootKey    int

	coarseTune  float64 // semitones
	fineTune    float64 // cents
	scaleTuning float64 // percent, 100 = normal

	currentIndex float64
	looping      bool
	mode         loopMode
}

func (s *sampler) start(buffer []float32, sampleStart, sampleEnd, loopStart, loopEnd, sampleRate, rootKey int, mode loopMode, coarseTune, fineTune, scaleTuning float64) {
	s.buffer = buffer
	s.startIndex = sampleStart
	s.end = sampleEnd
	s.loopStart = loopStart
	s.loopEnd = loopEnd
	s.sampleRate = sampleRate
	s.rootKey = rootKey
	s.mode = mode
	s.coarseTune = coarseTune
	s.fineTune = fineTune
	s.scaleTuning = scaleTuning
	s.looping = mode != loopNone
	s.currentIndex = float64(sampleStart)
}

func (s *sampler) release() {
	if s.mode == loopUntilRelease {
		s.looping = false
	}
}

// process fills dest with n samples read at the given output pitch (a MIDI
// key number, possibly fractional after pitch-bend/LFO/envelope
// contributions have been added by the caller). It returns false once an
// unlooped sampler has exhausted its region, having zero-filled the
// remainder of dest on the block where exhaustion occurs.
func (s *sampler) process(dest []float32, pitch float64, outputSampleRate int) bool {
	pitchChange := (s.scaleTuning/100)*(pitch-float64(s.rootKey)) + s.coarseTune + s.fineTune/100
	pitchRatio := (float64(s.sampleRate) / float64(outputSampleRate)) * math.Pow(2, pitchChange/12)

	for i := range dest {
		idx := int(math.Floor(s.currentIndex))
		if !s.looping && idx >= s.end {
			for j := i; j < len(dest); j++ {
				dest[j] = 0
			}
			return false
		}

		frac := float32(s.currentIndex - float64(idx))
		x1 := s.sampleAt(idx)
		x2 := s.sampleAt(idx + 1)
		dest[i] = x1 + frac*(x2-x1)

		s.currentIndex += pitchRatio
		if s.looping && s.currentIndex >= float64(s.loopEnd) {
			s.currentIndex -= float64(s.loopEnd - s.loopStart)
		}
	}
	return true
}

func (s *sampler) sampleAt(idx int) float32 {
	if s.looping && idx >= s.loopEnd {
		idx -= s.loopEnd - s.loopStart
	}
	if idx < 0 || idx >= len(s.buffer) {
		return 0
	}
	return s.buffer[idx]
}
