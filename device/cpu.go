package device

import (
	"github.com/markovforge/markovforge/dictionary"
	"github.com/markovforge/markovforge/markov"
)

// CPUDeviceInfo is the fixed identity of the pure-Go reference backend.
var CPUDeviceInfo = Info{Platform: 0, Index: 0, Name: "cpu-reference"}

// CPUDevice is a pure-Go implementation of the generate/match kernel
// contract (spec.md §4.4, §4.7). It exists so the CLI has a working,
// GPU-free fallback and so the coordinator's tests don't depend on an
// OpenCL SDK (spec.md §4.11).
type CPUDevice struct {
	info Info
}

// NewCPUDevice returns a reference device. info lets the coordinator
// distinguish multiple logical CPU "devices" in sharded-equivalence tests.
func NewCPUDevice(info Info) *CPUDevice {
	return &CPUDevice{info: info}
}

func (d *CPUDevice) Info() Info { return d.info }

// Generate decodes global indices [start, start+buf.Count()) in order,
// skipping indices past codec's Range()'s hi (spec.md §4.5: the last
// reservation window is truncated, so a device may be asked to fill fewer
// slots than buf.Count()).
func (d *CPUDevice) Generate(buf *CandidateBuffer, codec *markov.Codec, start uint64) error {
	_, hi := codec.Range()
	scratch := make([]byte, 0, 64)
	for i := 0; i < buf.Count(); i++ {
		g := start + uint64(i)
		if g >= hi {
			buf.Set(i, nil)
			continue
		}
		scratch = codec.Decode(scratch[:0], g)
		buf.Set(i, scratch)
	}
	return nil
}

// Match runs dictionary.Match against every non-empty candidate slot.
func (d *CPUDevice) Match(buf *CandidateBuffer, idx *dictionary.Index) error {
	for i := 0; i < buf.Count(); i++ {
		candidate := buf.Get(i)
		if len(candidate) == 0 {
			continue
		}
		dictionary.Match(idx, candidate)
	}
	return nil
}

func (d *CPUDevice) Close() error { return nil }
