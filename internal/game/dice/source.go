package dice

import (
	cryptorand "crypto/rand"
	"math/big"
	"math/rand"
)

// Source is the randomness provider for dice rolls.
//
// The core is single-threaded by design; Sources are not required to be
// safe for concurrent use. The host must serialise calls per encounter.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// seededSource implements Source with a deterministic PRNG.
//
// Invariant: for a fixed seed and a fixed sequence of Intn calls, every
// returned value is bit-identical across runs and process restarts. This is
// the foundation for replay-safe event sourcing.
type seededSource struct {
	rng *rand.Rand
}

// NewSeededSource returns a deterministic Source for the given seed.
func NewSeededSource(seed int64) Source {
	return &seededSource{rng: rand.New(rand.NewSource(seed))}
}

// Intn returns a deterministic value in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" otherwise.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	return s.rng.Intn(n)
}

// cryptoSource implements Source using crypto/rand. It is not replayable and
// must never back an encounter whose rolls are persisted to an event log; it
// exists for throwaway contexts such as ad-hoc table rolls.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := cryptorand.Int(cryptorand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}
