// config.go - engine configuration and construction-time validation

package synth

import "fmt"

// Config is the engine's immutable construction-time configuration.
type Config struct {
	// SampleRate is the output sample rate in Hz, 16000..192000.
	SampleRate int
	// BlockSize is the number of samples advanced per internal render
	// step, 8..1024. Default 64.
	BlockSize int
	// MaximumPolyphony bounds the voice pool, 8..256. Default 64.
	MaximumPolyphony int
	// ReverbAndChorusEnabled controls whether per-voice send levels are
	// tracked at all; the effects themselves are external.
	ReverbAndChorusEnabled bool
}

// DefaultConfig returns the engine's documented defaults with the given
// sample rate.
func DefaultConfig(sampleRate int) Config {
	return Config{
		SampleRate:             sampleRate,
		BlockSize:              64,
		MaximumPolyphony:       64,
		ReverbAndChorusEnabled: true,
	}
}

// Validate reports a non-nil error if any field is out of its documented
// range. It is called once, at engine construction.
func (c Config) Validate() error {
	if c.SampleRate < 16000 || c.SampleRate > 192000 {
		return fmt.Errorf("%w: sample rate %d not in [16000, 192000]", ErrInvalidConfig, c.SampleRate)
	}
	if c.BlockSize < 8 || c.BlockSize > 1024 {
		return fmt.Errorf("%w: block size %d not in [8, 1024]", ErrInvalidConfig, c.BlockSize)
	}
	if c.MaximumPolyphony < 8 || c.MaximumPolyphony > 256 {
		return fmt.Errorf("%w: maximum polyphony %d not in [8, 256]", ErrInvalidConfig, c.MaximumPolyphony)
	}
	return nil
}
