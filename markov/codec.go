package markov

import "sort"

// Codec converts indices of the dense 64-bit global index space into
// candidate strings, per spec.md §4.4; there is no string -> index
// direction. The map index -> candidate is a bijection on
// [Range()) for a fixed (Table, Thresholds, Permutations, minLength,
// maxLength).
type Codec struct {
	table     *Table
	th        *Thresholds
	perm      *Permutations
	minLength int
	maxLength int
}

// NewCodec builds a Codec over the given length range [minLength, maxLength].
func NewCodec(table *Table, th *Thresholds, perm *Permutations, minLength, maxLength int) *Codec {
	return &Codec{table: table, th: th, perm: perm, minLength: minLength, maxLength: maxLength}
}

// Range returns the half-open global index range [lo, hi) this codec
// enumerates: lo = P[minLength-1], hi = P[maxLength].
func (c *Codec) Range() (lo, hi uint64) {
	return c.perm.At(c.minLength - 1), c.perm.At(c.maxLength)
}

// MaxLength returns the longest candidate length this codec can produce,
// for sizing a device's candidate buffer entries.
func (c *Codec) MaxLength() int { return c.maxLength }

// lengthOf returns the candidate length L such that P[L-1] <= g < P[L],
// searching only over [minLength, maxLength] since that is the codec's
// valid domain.
func (c *Codec) lengthOf(g uint64) int {
	lo, hi := c.minLength, c.maxLength
	// sort.Search finds the smallest L in [lo, hi] with P[L] > g.
	l := lo + sort.Search(hi-lo+1, func(i int) bool {
		return c.perm.At(lo+i) > g
	})
	return l
}

// Decode converts a global index into its candidate string, writing into
// dst (grown as needed) and returning the resulting slice.
//
// Procedure (spec.md §4.4): find the candidate length L from the global
// index via the permutation prefix sum, then walk positions 0..L-1 emitting
// M[p][last][k] where k = i mod T[p] and last starts at 0, independent of
// any previously decoded candidate (this fixes the spec's open question in
// favor of sharding-safe, index-only determinism).
func (c *Codec) Decode(dst []byte, g uint64) []byte {
	l := c.lengthOf(g)
	if cap(dst) < l {
		dst = make([]byte, l)
	} else {
		dst = dst[:l]
	}
	i := g - c.perm.At(l-1)
	var last byte
	for p := 0; p < l; p++ {
		t := uint64(c.th.At(p))
		k := int(i % t)
		i /= t
		ch := c.table.At(p, last, k)
		dst[p] = ch
		last = ch
	}
	return dst
}

// DecodeString is a convenience wrapper around Decode that returns a string.
func (c *Codec) DecodeString(g uint64) string {
	return string(c.Decode(nil, g))
}
