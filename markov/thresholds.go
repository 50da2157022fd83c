package markov

import (
	"encoding/binary"

	"github.com/markovforge/markovforge/errext"
	"github.com/markovforge/markovforge/mask"
)

// Thresholds holds T[p], the number of top-ranked successor bytes
// considered at position p, for every position up to mask.MaxPassLength.
// Each T[p] is clamped to mask.Count(p) after any global/per-position
// override is applied (spec.md §3).
type Thresholds struct {
	t   [mask.MaxPassLength]int
	max int
}

// At returns T[p].
func (th *Thresholds) At(p int) int { return th.t[p] }

// Max returns T_max, the largest threshold across all positions.
func (th *Thresholds) Max() int { return th.max }

// Bytes marshals T[0..maxLength) as the maxLength x u32 device buffer of
// spec.md §6, so a Device implementation can copy it without re-deriving
// the layout (spec.md §4.10).
func (th *Thresholds) Bytes(maxLength int) []byte {
	buf := make([]byte, maxLength*4)
	for p := 0; p < maxLength; p++ {
		binary.LittleEndian.PutUint32(buf[p*4:], uint32(th.At(p)))
	}
	return buf
}

// BuildThresholds combines a global default and per-position overrides with
// the mask's accepted-byte counts to produce clamped Thresholds.
//
// overrides maps position -> raw threshold; positions absent from overrides
// use global. Every resulting T[p] is clamped to m.Count(p).
func BuildThresholds(m *mask.Mask, global int, overrides map[int]int) (*Thresholds, error) {
	if global <= 0 {
		return nil, errext.New(errext.UsageError, "global threshold must be positive")
	}
	th := &Thresholds{}
	for p := 0; p < mask.MaxPassLength; p++ {
		raw := global
		if v, ok := overrides[p]; ok {
			if v <= 0 {
				return nil, errext.New(errext.UsageError, "per-position threshold must be positive")
			}
			raw = v
		}
		count := m.Count(p)
		if raw > count {
			raw = count
		}
		th.t[p] = raw
		if raw > th.max {
			th.max = raw
		}
	}
	return th, nil
}
