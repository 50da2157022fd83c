// Package dictionary builds the flat, device-consumable open-addressed
// bucket table described in spec.md §3/§4.6, and provides the host-side
// view of the match protocol in §4.7.
package dictionary

import (
	"math/bits"

	"github.com/markovforge/markovforge/errext"
)

const (
	// maxEntryWidth is the hard ceiling on S = max_word_length + 2: the
	// length byte is a single byte (u8), so S must fit in 256.
	maxEntryWidth = 256
	lenOffset     = 0
	flagOffset    = 1
	wordOffset    = 2
)

// Index is the flat row-major bucket table of spec.md §3: R rows, E entries
// per row, S bytes per entry. Entry layout: byte 0 = word length (0 = empty,
// also terminates the row scan), byte 1 = match flag, bytes 2..2+length =
// the word.
type Index struct {
	data []byte
	rows int // R
	ents int // E
	size int // S

	// wordAt maps a word to its entry's flat offset, kept only on the host
	// build side. Match and the CPU reference device do not read it (they
	// scan the bucket row); a real GPU device never sees this map, only
	// the flat R*E*S buffer.
	wordAt map[string]int
}

// NewIndex builds a dictionary index from a wordlist, using the djb2 hash of
// spec.md §3 and the given maximum load factor (entries-per-bucket target
// before growing R).
//
// Failure modes: an empty wordlist returns errext.EmptyDictionary; any word
// whose length pushes S = max_word_length+2 past 256 returns
// errext.WordTooLong.
func NewIndex(words []string, maxLoadFactor float64) (*Index, error) {
	n := 0
	maxWordLen := 0
	for _, w := range words {
		if w == "" {
			continue
		}
		n++
		if len(w) > maxWordLen {
			maxWordLen = len(w)
		}
	}
	if n == 0 {
		return nil, errext.New(errext.EmptyDictionary, "dictionary has no insertable lines")
	}
	size := maxWordLen + 2
	if size > maxEntryWidth {
		return nil, errext.New(errext.WordTooLong, "longest word makes an entry wider than 256 bytes")
	}

	rows := bucketCount(n, maxLoadFactor)
	buckets := make([][]string, rows)
	for _, w := range words {
		if w == "" {
			continue
		}
		b := int(Hash([]byte(w)) % uint32(rows))
		buckets[b] = append(buckets[b], w)
	}

	ents := 0
	for _, b := range buckets {
		if len(b) > ents {
			ents = len(b)
		}
	}
	if ents == 0 {
		ents = 1
	}

	idx := &Index{
		data:   make([]byte, rows*ents*size),
		rows:   rows,
		ents:   ents,
		size:   size,
		wordAt: make(map[string]int, n),
	}
	for b, ws := range buckets {
		for slot, w := range ws {
			off := (b*ents + slot) * size
			idx.data[off+lenOffset] = byte(len(w))
			idx.data[off+flagOffset] = 0
			copy(idx.data[off+wordOffset:], w)
			idx.wordAt[w] = off
		}
	}
	return idx, nil
}

// bucketCount picks R as the smallest power of two strictly greater than
// n/loadFactor, so the observed load n/R stays below loadFactor.
func bucketCount(n int, loadFactor float64) int {
	target := int(float64(n)/loadFactor) + 1
	if target < 1 {
		target = 1
	}
	bitlen := bits.Len(uint(target - 1))
	return 1 << bitlen
}

// Dims returns R, E, S.
func (idx *Index) Dims() (rows, ents, size int) { return idx.rows, idx.ents, idx.size }

// Flat returns the raw row-major buffer, for copying into a device buffer.
func (idx *Index) Flat() []byte { return idx.data }

// Bucket returns the row a word hashes to.
func (idx *Index) Bucket(word []byte) int {
	return int(Hash(word) % uint32(idx.rows))
}

// Hash is the djb2 variant of spec.md §3: seed 5381,
// h = (h<<5) + h + c, unsigned 32-bit.
func Hash(word []byte) uint32 {
	h := uint32(5381)
	for _, c := range word {
		h = (h << 5) + h + uint32(c)
	}
	return h
}

// Entries reports the total number of slots (R*E), for iterating flags.
func (idx *Index) Entries() int { return idx.rows * idx.ents }

// EntryAt returns the length, flag, and word bytes stored at flat entry e.
func (idx *Index) EntryAt(e int) (length int, flag byte, word []byte) {
	off := e * idx.size
	length = int(idx.data[off+lenOffset])
	flag = idx.data[off+flagOffset]
	word = idx.data[off+wordOffset : off+wordOffset+length]
	return
}

// SetFlag sets the match flag at flat entry e to 1. Flags are monotonic:
// callers should never need to clear a flag once set (spec.md §4.7, §8).
func (idx *Index) SetFlag(e int) {
	idx.data[e*idx.size+flagOffset] = 1
}

// MergeFlags ORs another index's flag column into this one. Used by the
// coordinator to fold a per-device replica's flags back into the canonical
// host copy (spec.md §4.8): "if any device has flag=1 for that entry, mark
// it found in the canonical host copy".
func (idx *Index) MergeFlags(other *Index) {
	for e := 0; e < idx.Entries(); e++ {
		off := e * idx.size
		if other.data[off+flagOffset] != 0 {
			idx.data[off+flagOffset] = 1
		}
	}
}

// Found returns every word whose match flag is set.
func (idx *Index) Found() []string {
	var out []string
	for e := 0; e < idx.Entries(); e++ {
		length, flag, word := idx.EntryAt(e)
		if length != 0 && flag != 0 {
			out = append(out, string(word))
		}
	}
	return out
}

// Clone makes a deep copy of the index, for per-device buffer replicas.
func (idx *Index) Clone() *Index {
	data := make([]byte, len(idx.data))
	copy(data, idx.data)
	return &Index{data: data, rows: idx.rows, ents: idx.ents, size: idx.size, wordAt: idx.wordAt}
}
