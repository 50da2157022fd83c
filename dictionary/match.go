package dictionary

import "bytes"

// Match implements the host-side view of the match protocol (spec.md §4.7):
// hash the candidate, scan its bucket row for an equal-length, byte-equal
// entry, and set its flag on the first hit. A zero-length entry terminates
// the row scan early (the row is packed from the front, so an empty slot
// means every later slot in the row is also empty).
//
// Returns whether the candidate matched a dictionary word. This is the same
// procedure a generate/match kernel runs per-candidate on a device; the CPU
// reference device (package device) calls it directly, and an OpenCL device
// runs an equivalent kernel against a copy of the same flat buffer.
func Match(idx *Index, candidate []byte) bool {
	row := idx.Bucket(candidate)
	base := row * idx.ents
	for slot := 0; slot < idx.ents; slot++ {
		e := base + slot
		length, _, word := idx.EntryAt(e)
		if length == 0 {
			return false
		}
		if length == len(candidate) && bytes.Equal(word, candidate) {
			idx.SetFlag(e)
			return true
		}
	}
	return false
}
