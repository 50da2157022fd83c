package markov

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildStatsFile assembles a minimal statistics file: an arbitrary header
// terminated by ETX, followed by one record of the given type and payload.
func buildStatsFile(header string, recType byte, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(header)
	buf.WriteByte(0x03)
	buf.WriteByte(recType)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	buf.Write(lenBuf[:])
	buf.Write(payload)
	return buf.Bytes()
}

func classicPayloadWithCount(fromB, toC byte, count uint16) []byte {
	payload := make([]byte, classicRows*classicCols*bytesPerCount)
	idx := (int(fromB)*classicCols + int(toC)) * 2
	binary.BigEndian.PutUint16(payload[idx:idx+2], count)
	return payload
}

func TestReadStatsClassic(t *testing.T) {
	payload := classicPayloadWithCount('a'-1, 'a', 10)
	file := buildStatsFile("*", 1, payload)

	stats, err := ReadStats(bytes.NewReader(file), ModelClassic, 3)
	if err != nil {
		t.Fatalf("ReadStats: %v", err)
	}
	if got := stats.Count(0, 'a'-1, 'a'); got != 10 {
		t.Fatalf("Count = %d, want 10", got)
	}
	// Classic replicates across every position.
	if got := stats.Count(2, 'a'-1, 'a'); got != 10 {
		t.Fatalf("replicated Count = %d, want 10", got)
	}
}

func TestReadStatsModelNotFound(t *testing.T) {
	file := buildStatsFile("hdr", 1, classicPayloadWithCount('a', 'b', 1))
	if _, err := ReadStats(bytes.NewReader(file), ModelLayered, 2); err == nil {
		t.Fatal("expected ModelNotFound error")
	}
}

func TestReadStatsSkipsNonMatchingRecords(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(buildStatsFile("hdr", 2, classicPayloadWithCount('x', 'y', 5)))
	// second record, classic, appended directly after the first (no new header)
	var lenBuf [4]byte
	classicPayload := classicPayloadWithCount('a', 'b', 7)
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(classicPayload)))
	buf.WriteByte(1)
	buf.Write(lenBuf[:])
	buf.Write(classicPayload)

	stats, err := ReadStats(bytes.NewReader(buf.Bytes()), ModelClassic, 1)
	if err != nil {
		t.Fatalf("ReadStats: %v", err)
	}
	if got := stats.Count(0, 'a', 'b'); got != 7 {
		t.Fatalf("Count = %d, want 7", got)
	}
}

func TestReadStatsTruncatedHeader(t *testing.T) {
	if _, err := ReadStats(bytes.NewReader([]byte("no terminator here")), ModelClassic, 1); err == nil {
		t.Fatal("expected error for missing ETX")
	}
}
