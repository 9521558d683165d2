// errors.go - the synth package's small error taxonomy. Runtime operations
// are infallible once construction succeeds (they degrade to no-ops); only
// construction and loading return errors, matching the teacher's
// audio_backend_alsa.go convention of plain fmt.Errorf/%w wrapping with no
// third-party error library.

package synth

import "errors"

// ErrInvalidConfig is returned by New when a Config field is out of range.
var ErrInvalidConfig = errors.New("synth: invalid configuration")

// ErrNoBank is returned by LoadSoundFont when it is passed a nil bank.
var ErrNoBank = errors.New("synth: no soundfont bank loaded")
