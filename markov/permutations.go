package markov

import (
	"encoding/binary"
	"math/bits"

	"github.com/markovforge/markovforge/errext"
)

// Permutations is the prefix-sum table P[0..maxLength] of spec.md §3:
// P[0] = 0, P[L] = P[L-1] + product(T[0..L)). P[L]-P[L-1] is the number of
// length-L candidates.
type Permutations struct {
	p []uint64 // indices 0..maxLength inclusive
}

// At returns P[l].
func (p *Permutations) At(l int) uint64 { return p.p[l] }

// Bytes marshals the full prefix-sum table as the (maxLength+2) x u64
// device buffer of spec.md §6 (spec.md §4.10): P[0..maxLength] followed by
// one trailing zero u64.
func (p *Permutations) Bytes() []byte {
	buf := make([]byte, (len(p.p)+1)*8)
	for i, v := range p.p {
		binary.LittleEndian.PutUint64(buf[i*8:], v)
	}
	return buf
}

// BuildPermutations computes the prefix-sum table for lengths up to
// maxLength, given per-position thresholds. It fails with
// errext.ThresholdOverflow if any partial product or prefix sum would
// overflow uint64.
func BuildPermutations(th *Thresholds, maxLength int) (*Permutations, error) {
	p := make([]uint64, maxLength+1)
	var product uint64 = 1
	for l := 1; l <= maxLength; l++ {
		t := uint64(th.At(l - 1))
		if t == 0 {
			product = 0
		} else if product != 0 {
			hi, lo := bits.Mul64(product, t)
			if hi != 0 {
				return nil, overflowErr()
			}
			product = lo
		}
		sum, carry := bits.Add64(p[l-1], product, 0)
		if carry != 0 {
			return nil, overflowErr()
		}
		p[l] = sum
	}
	return &Permutations{p: p}, nil
}

func overflowErr() error {
	return errext.New(errext.ThresholdOverflow, "cumulative candidate count overflows uint64").
		WithHint("use smaller thresholds or a narrower length range")
}
