// Package seed provides explicit seed derivation for the deterministic
// pipeline stages. Every stage derives its own sub-seed from the caller's
// seed plus a stage label, so stages never share an ambient random source
// and each one is independently reproducible.
package seed

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math/rand/v2"
	"strconv"
)

// separator keeps ("ab","c") and ("a","bc") from deriving the same sub-seed.
const separator = 0x1f

// Seed is an opaque caller-supplied reproducibility token.
type Seed string

// Synthesize produces a fresh seed for exploratory calls where the caller
// supplied none. The seed must be reported back to the caller so the run can
// be reproduced later.
func Synthesize() Seed {
	var buf [16]byte
	for i := range buf {
		buf[i] = byte(rand.Uint32())
	}
	return Seed(hex.EncodeToString(buf[:]))
}

// Derive computes the deterministic sub-seed for a stage and index. Same
// parent, stage, and index always derive the same sub-seed; any difference in
// any of the three produces an unrelated one.
func Derive(parent Seed, stage string, index int) Seed {
	h := sha256.New()
	h.Write([]byte(parent))
	h.Write([]byte{separator})
	h.Write([]byte(stage))
	h.Write([]byte{separator})
	h.Write([]byte(strconv.Itoa(index)))
	return Seed(hex.EncodeToString(h.Sum(nil)))
}

// Source builds a deterministic random source from a seed. The full seed
// string feeds a SHA-256 digest whose first 16 bytes become the PCG state, so
// textually distinct seeds map to distinct streams.
func Source(s Seed) *rand.Rand {
	digest := sha256.Sum256([]byte(s))
	hi := binary.BigEndian.Uint64(digest[0:8])
	lo := binary.BigEndian.Uint64(digest[8:16])
	return rand.New(rand.NewPCG(hi, lo))
}
