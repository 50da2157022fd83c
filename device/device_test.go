package device

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/markovforge/markovforge/dictionary"
	"github.com/markovforge/markovforge/mask"
	"github.com/markovforge/markovforge/markov"
)

// minimalClassicStatsFile builds a wire-format statistics file (spec.md
// §4.2) with an all-zero classic payload, so byte order within a row falls
// back to the tie-break rule (largest valid byte wins).
func minimalClassicStatsFile(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("hdr")
	buf.WriteByte(0x03)
	buf.WriteByte(1)
	payload := make([]byte, 256*256*2)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	buf.Write(lenBuf[:])
	buf.Write(payload)
	return &buf
}

func buildTestCodec(t *testing.T) *markov.Codec {
	t.Helper()
	m, err := mask.Parse("?d?d")
	if err != nil {
		t.Fatalf("mask.Parse: %v", err)
	}
	th, err := markov.BuildThresholds(m, 20, nil)
	if err != nil {
		t.Fatalf("BuildThresholds: %v", err)
	}
	perm, err := markov.BuildPermutations(th, 2)
	if err != nil {
		t.Fatalf("BuildPermutations: %v", err)
	}
	stats, err := markov.ReadStats(minimalClassicStatsFile(t), markov.ModelClassic, 2)
	if err != nil {
		t.Fatalf("ReadStats: %v", err)
	}
	table := markov.BuildTable(stats, m, th, 2)
	return markov.NewCodec(table, th, perm, 2, 2)
}

func TestCandidateBufferRoundTrip(t *testing.T) {
	buf := NewCandidateBuffer(4, 8)
	buf.Set(0, []byte("ab"))
	buf.Set(1, []byte(""))
	buf.Set(2, []byte("longword"))

	if got := string(buf.Get(0)); got != "ab" {
		t.Fatalf("Get(0) = %q, want %q", got, "ab")
	}
	if got := buf.Get(1); len(got) != 0 {
		t.Fatalf("Get(1) = %q, want empty", got)
	}
	if got := string(buf.Get(2)); got != "longword" {
		t.Fatalf("Get(2) = %q, want %q", got, "longword")
	}
}

func TestCPUDeviceGenerateThenMatch(t *testing.T) {
	codec := buildTestCodec(t)
	lo, hi := codec.Range()
	if hi-lo != 100 {
		t.Fatalf("range = %d, want 100", hi-lo)
	}

	idx, err := dictionary.NewIndex([]string{"42"}, 0.75)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	dev := NewCPUDevice(CPUDeviceInfo)
	buf := NewCandidateBuffer(int(hi-lo), 2)
	if err := dev.Generate(buf, codec, lo); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := dev.Match(buf, idx); err != nil {
		t.Fatalf("Match: %v", err)
	}

	found := idx.Found()
	if len(found) != 1 || found[0] != "42" {
		t.Fatalf("Found() = %v, want [42]", found)
	}
}

func TestGeneratePastRangeLeavesEmptySlots(t *testing.T) {
	codec := buildTestCodec(t)
	lo, hi := codec.Range()
	dev := NewCPUDevice(CPUDeviceInfo)

	// Ask for more slots than remain in range.
	buf := NewCandidateBuffer(int(hi-lo)+5, 2)
	if err := dev.Generate(buf, codec, lo); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i := int(hi - lo); i < buf.Count(); i++ {
		if len(buf.Get(i)) != 0 {
			t.Fatalf("slot %d past range should be empty, got %q", i, buf.Get(i))
		}
	}
}

func TestEnumerateReportsCPUReference(t *testing.T) {
	infos := Enumerate()
	if len(infos) != 1 || infos[0].Name != "cpu-reference" {
		t.Fatalf("Enumerate() = %v, want exactly one cpu-reference entry", infos)
	}
}
