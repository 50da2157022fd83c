// Package device defines the device-visible buffer layouts of spec.md §3/§6
// and the Device interface that a concrete compute backend implements. This
// package is the external-collaborator boundary: the kernel source itself is
// out of scope (spec.md §1), but the byte layout every kernel must agree on
// is specified here as concrete Go types.
package device

// CandidateBuffer is the gws x (maxLength+1) flat buffer of spec.md §6: each
// entry is length-prefixed, [length][bytes...], padded to entryWidth.
type CandidateBuffer struct {
	data       []byte
	entryWidth int // maxLength + 1
	count      int // gws
}

// NewCandidateBuffer allocates a buffer for `count` candidates of at most
// maxLength bytes each.
func NewCandidateBuffer(count, maxLength int) *CandidateBuffer {
	width := maxLength + 1
	return &CandidateBuffer{
		data:       make([]byte, count*width),
		entryWidth: width,
		count:      count,
	}
}

// Count returns gws, the number of candidate slots.
func (b *CandidateBuffer) Count() int { return b.count }

// EntryWidth returns maxLength+1.
func (b *CandidateBuffer) EntryWidth() int { return b.entryWidth }

// Flat returns the raw row-major buffer.
func (b *CandidateBuffer) Flat() []byte { return b.data }

// Set writes candidate i as a length-prefixed entry.
func (b *CandidateBuffer) Set(i int, candidate []byte) {
	off := i * b.entryWidth
	b.data[off] = byte(len(candidate))
	copy(b.data[off+1:off+b.entryWidth], candidate)
}

// Get reads back candidate i's bytes (length-prefixed slice trimmed to its
// declared length; a length of 0 means the slot is empty).
func (b *CandidateBuffer) Get(i int) []byte {
	off := i * b.entryWidth
	length := int(b.data[off])
	return b.data[off+1 : off+1+length]
}

// ThresholdsBuffer is the maxLength x u32 buffer of spec.md §6.
type ThresholdsBuffer []uint32

// NewThresholdsBuffer flattens a Thresholds-shaped accessor into a
// device-ready u32 array. Callers in markov pass th.At(p) for p in
// [0, maxLength).
func NewThresholdsBuffer(at func(p int) int, maxLength int) ThresholdsBuffer {
	buf := make(ThresholdsBuffer, maxLength)
	for p := 0; p < maxLength; p++ {
		buf[p] = uint32(at(p))
	}
	return buf
}

// PermutationsBuffer is the (maxLength+2) x u64 buffer of spec.md §6.
type PermutationsBuffer []uint64
