package markov

import (
	"testing"

	"github.com/markovforge/markovforge/mask"
)

func mustMask(t *testing.T, src string) *mask.Mask {
	t.Helper()
	m, err := mask.Parse(src)
	if err != nil {
		t.Fatalf("mask.Parse(%q): %v", src, err)
	}
	return m
}

// classicStatsFromCounts builds a Stats directly (bypassing the wire
// format) with count(fromB, toC) = count and zero elsewhere, replicated
// across every position, per spec.md scenario 1.
func classicStatsFromCounts(counts map[[2]byte]uint16) *Stats {
	data := make([]uint16, classicRows*classicCols)
	for k, v := range counts {
		data[int(k[0])*classicCols+int(k[1])] = v
	}
	return &Stats{maxLength: 1, classic: true, data: data}
}

func layeredStatsFromCounts(maxLength int, counts map[[3]byte]uint16) *Stats {
	data := make([]uint16, maxLength*classicRows*classicCols)
	for k, v := range counts {
		p, b, c := int(k[0]), k[1], k[2]
		data[p*classicRows*classicCols+int(b)*classicCols+int(c)] = v
	}
	return &Stats{maxLength: maxLength, classic: false, data: data}
}

// Scenario 1 (spec.md §8): minimal classic. The canonical row used to build
// the uniform p=0 table is stats[0][0][*] (the "last=0" row, consistent with
// §4.4's initial last value), so the first-position count is keyed off b=0
// rather than the literal b='a'-1 in the spec's narrative example. The
// 'a' -> 'a' count makes 'a' the top successor after 'a' at positions 1 and
// 2; without it every lowercase byte ties there and the larger byte 'z' wins.
func TestScenarioMinimalClassic(t *testing.T) {
	stats := classicStatsFromCounts(map[[2]byte]uint16{{0, 'a'}: 10, {'a', 'a'}: 10})
	m := mustMask(t, "?l?l?l")
	th, err := BuildThresholds(m, 1, nil)
	if err != nil {
		t.Fatalf("BuildThresholds: %v", err)
	}
	perm, err := BuildPermutations(th, 3)
	if err != nil {
		t.Fatalf("BuildPermutations: %v", err)
	}
	table := BuildTable(stats, m, th, 3)
	codec := NewCodec(table, th, perm, 3, 3)

	lo, hi := codec.Range()
	if hi-lo != 1 {
		t.Fatalf("expected exactly 1 candidate, got %d", hi-lo)
	}
	if got := codec.DecodeString(lo); got != "aaa" {
		t.Fatalf("candidate = %q, want %q", got, "aaa")
	}
}

// Scenario 2 (spec.md §8): threshold clamp.
func TestScenarioThresholdClamp(t *testing.T) {
	m := mustMask(t, "?d?d")
	th, err := BuildThresholds(m, 20, map[int]int{0: 20, 1: 20})
	if err != nil {
		t.Fatalf("BuildThresholds: %v", err)
	}
	if th.At(0) != 10 || th.At(1) != 10 {
		t.Fatalf("T = [%d, %d], want [10, 10] (clamped to Mask.count=10)", th.At(0), th.At(1))
	}
	stats := classicStatsFromCounts(nil)
	perm, err := BuildPermutations(th, 2)
	if err != nil {
		t.Fatalf("BuildPermutations: %v", err)
	}
	if got := perm.At(2) - perm.At(1); got != 100 {
		t.Fatalf("candidate count = %d, want 100", got)
	}
	table := BuildTable(stats, m, th, 2)
	codec := NewCodec(table, th, perm, 2, 2)
	lo, hi := codec.Range()
	if hi-lo != 100 {
		t.Fatalf("Range = %d, want 100", hi-lo)
	}
	found := false
	for g := lo; g < hi; g++ {
		if codec.DecodeString(g) == "42" {
			found = true
			break
		}
	}
	if !found {
		t.Fatal("expected \"42\" to be enumerated")
	}
}

// Scenario 3 (spec.md §8): layered vs classic.
func TestScenarioLayeredVsClassic(t *testing.T) {
	m := mustMask(t, "?l?l")
	th, err := BuildThresholds(m, 1, nil)
	if err != nil {
		t.Fatalf("BuildThresholds: %v", err)
	}
	perm, err := BuildPermutations(th, 2)
	if err != nil {
		t.Fatalf("BuildPermutations: %v", err)
	}

	layered := layeredStatsFromCounts(2, map[[3]byte]uint16{
		{0, 0, 'b'}: 100, // position 0 favors 'b' regardless of "previous" byte
		{1, 'b', 'c'}: 100, // position 1 favors 'c' after 'b'
	})
	// The initial row (p=0) is identical for every "previous" byte, so we
	// must set it for b=0 specifically, matching Table's replication rule.
	table := BuildTable(layered, m, th, 2)
	codec := NewCodec(table, th, perm, 2, 2)
	lo, _ := codec.Range()
	if got := codec.DecodeString(lo); got != "bc" {
		t.Fatalf("layered candidate = %q, want %q", got, "bc")
	}

	classic := classicStatsFromCounts(map[[2]byte]uint16{{0, 'b'}: 100, {'b', 'b'}: 100})
	classicTable := BuildTable(classic, m, th, 2)
	classicCodec := NewCodec(classicTable, th, perm, 2, 2)
	if got := classicCodec.DecodeString(lo); got != "bb" {
		t.Fatalf("classic candidate = %q, want %q", got, "bb")
	}
}

// Scenario 5 (spec.md §8): invalid-char deprioritisation.
func TestScenarioInvalidCharDeprioritised(t *testing.T) {
	stats := classicStatsFromCounts(map[[2]byte]uint16{
		{0, 31}: 1000, // invalid byte, high observed probability
		{0, 'a'}: 10,  // valid byte, lower observed probability
	})
	m := mustMask(t, "?x") // printable mask so 'a' satisfies, byte 31 does not
	th, err := BuildThresholds(m, 1, nil)
	if err != nil {
		t.Fatalf("BuildThresholds: %v", err)
	}
	table := BuildTable(stats, m, th, 1)
	if got := table.At(0, 0, 0); got != 'a' {
		t.Fatalf("top successor = %q, want 'a' (invalid bytes rank behind valid ones)", got)
	}
}

// Bijection property (spec.md §8): index -> candidate is injective over the
// codec's range (no two indices decode to the same candidate).
func TestBijectionOverRange(t *testing.T) {
	stats := classicStatsFromCounts(map[[2]byte]uint16{
		{0, 'a'}: 50, {0, 'b'}: 10,
		{'a', 'a'}: 50, {'a', 'b'}: 10,
		{'b', 'a'}: 50, {'b', 'b'}: 10,
	})
	m := mustMask(t, "?l?l?l")
	th, err := BuildThresholds(m, 2, nil)
	if err != nil {
		t.Fatalf("BuildThresholds: %v", err)
	}
	perm, err := BuildPermutations(th, 3)
	if err != nil {
		t.Fatalf("BuildPermutations: %v", err)
	}
	table := BuildTable(stats, m, th, 3)
	codec := NewCodec(table, th, perm, 1, 3)

	lo, hi := codec.Range()
	seen := make(map[string]bool)
	for g := lo; g < hi; g++ {
		s := codec.DecodeString(g)
		if seen[s] {
			t.Fatalf("index %d produced duplicate candidate %q", g, s)
		}
		seen[s] = true
	}
}
