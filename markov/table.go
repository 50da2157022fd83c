package markov

import (
	"sort"

	"github.com/markovforge/markovforge/mask"
)

// maskBoost is added to a successor's probability when it satisfies the
// mask at its position. 65536 exceeds the largest possible 16-bit observed
// count, so a mask-satisfying successor always outranks every
// mask-violating successor while keeping their relative statistical order
// (spec.md §4.3 step 2).
const maskBoost = 65536

// Table is the dense Markov lookup M[p][b][k] of spec.md §3: the k-th most
// likely successor byte at position p given that position p-1 held byte b.
// Row p=0 is identical for every b (the initial-position row).
type Table struct {
	data      []byte // flat, row-major: p*256*tmax + b*tmax + k
	maxLength int
	tmax      int
}

// At returns M[p][b][k].
func (t *Table) At(p int, b byte, k int) byte {
	return t.data[p*256*t.tmax+int(b)*t.tmax+k]
}

// TMax returns the row width the table was built with.
func (t *Table) TMax() int { return t.tmax }

// Flat returns the raw row-major buffer, for copying into a device buffer.
func (t *Table) Flat() []byte { return t.data }

type sortElement struct {
	next        byte
	probability uint32
}

// less implements the total order of spec.md §4.3 step 3: valid successors
// (next >= 32) precede invalid ones; among invalid successors, larger next
// comes first; among valid successors, larger probability comes first,
// ties broken by larger next.
func less(a, b sortElement) bool {
	aValid := a.next >= 32
	bValid := b.next >= 32
	if aValid != bValid {
		return aValid // valid sorts before invalid
	}
	if !aValid {
		return a.next > b.next
	}
	if a.probability != b.probability {
		return a.probability > b.probability
	}
	return a.next > b.next
}

// BuildTable builds the dense Markov table from statistics, a mask, and
// clamped thresholds, per spec.md §4.3.
func BuildTable(stats *Stats, m *mask.Mask, th *Thresholds, maxLength int) *Table {
	tmax := th.Max()
	t := &Table{
		data:      make([]byte, maxLength*256*tmax),
		maxLength: maxLength,
		tmax:      tmax,
	}

	row := make([]sortElement, 256)
	for p := 0; p < maxLength; p++ {
		if p == 0 {
			rankRow(stats, m, 0, 0, row)
			writeRow(t, 0, 0, row, tmax)
			for b := 1; b < 256; b++ {
				copy(t.data[p*256*tmax+b*tmax:p*256*tmax+b*tmax+tmax], t.data[p*256*tmax:p*256*tmax+tmax])
			}
			continue
		}
		for b := 0; b < 256; b++ {
			rankRow(stats, m, p, byte(b), row)
			writeRow(t, p, byte(b), row, tmax)
		}
	}
	return t
}

func rankRow(stats *Stats, m *mask.Mask, p int, b byte, row []sortElement) {
	for next := 0; next < 256; next++ {
		prob := uint32(stats.Count(p, b, byte(next)))
		if m.Satisfy(p, byte(next)) {
			prob += maskBoost
		}
		row[next] = sortElement{next: byte(next), probability: prob}
	}
	sort.SliceStable(row, func(i, j int) bool { return less(row[i], row[j]) })
}

func writeRow(t *Table, p int, b byte, row []sortElement, tmax int) {
	base := p*256*tmax + int(b)*tmax
	for k := 0; k < tmax; k++ {
		t.data[base+k] = row[k].next
	}
}
