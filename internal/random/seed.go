// Package random picks run seeds. Sampling itself is deterministic and never
// reads from this package; only a run started without a seed does.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// NewSeed returns a non-zero seed read from crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	for {
		if _, err := crand.Read(b[:]); err != nil {
			return 0, fmt.Errorf("read random seed: %w", err)
		}
		if seed := int64(binary.LittleEndian.Uint64(b[:])); seed != 0 {
			return seed, nil
		}
	}
}

// Resolve returns seed unchanged when it is set. A zero seed is replaced by
// a fresh one and generated reports true.
func Resolve(seed int64) (resolved int64, generated bool, err error) {
	if seed != 0 {
		return seed, false, nil
	}
	seed, err = NewSeed()
	if err != nil {
		return 0, false, err
	}
	return seed, true, nil
}
