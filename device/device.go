package device

import (
	"github.com/markovforge/markovforge/dictionary"
	"github.com/markovforge/markovforge/markov"
)

// Info identifies one enumerable compute device, for `--list-platforms`
// (spec.md §6, §4.12).
type Info struct {
	Platform int
	Index    int
	Name     string
}

// Device is the external-collaborator boundary of spec.md §1/§6: a compute
// backend that can run the generate and match kernels against buffers laid
// out per spec.md §3/§6. The kernel source itself is out of scope; this
// interface only fixes the host-visible contract.
type Device interface {
	// Info returns this device's platform/index/name.
	Info() Info

	// Generate fills buf with buf.Count() candidates starting at global
	// index start, using codec to decode each index (spec.md §4.4).
	Generate(buf *CandidateBuffer, codec *markov.Codec, start uint64) error

	// Match runs the match kernel contract of spec.md §4.7 against every
	// populated entry of buf, setting flags in idx.
	Match(buf *CandidateBuffer, idx *dictionary.Index) error

	// Close releases any resources (queues, programs, buffers) the device
	// holds. Safe to call multiple times.
	Close() error
}

// Enumerate lists the CPU reference backend, which is always available.
// A build linking in device/opencl appends its own platforms/devices
// separately (cmd/markovforge does this under the opencl build tag), so
// `--list-platforms` works without any GPU backend compiled in.
func Enumerate() []Info {
	return []Info{CPUDeviceInfo}
}
