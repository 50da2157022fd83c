package markovforge_test

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/markovforge/markovforge/coordinator"
	"github.com/markovforge/markovforge/device"
	"github.com/markovforge/markovforge/dictionary"
	"github.com/markovforge/markovforge/mask"
	"github.com/markovforge/markovforge/markov"
)

func Example() {
	var statsFile bytes.Buffer
	statsFile.WriteString("hdr")
	statsFile.WriteByte(0x03)
	statsFile.WriteByte(byte(markov.ModelClassic))
	payload := make([]byte, 256*256*2)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	statsFile.Write(lenBuf[:])
	statsFile.Write(payload)

	m, _ := mask.Parse("?d?d")
	th, _ := markov.BuildThresholds(m, 20, nil)
	perm, _ := markov.BuildPermutations(th, 2)
	stats, _ := markov.ReadStats(&statsFile, markov.ModelClassic, 2)
	table := markov.BuildTable(stats, m, th, 2)
	codec := markov.NewCodec(table, th, perm, 2, 2)

	idx, _ := dictionary.NewIndex([]string{"42"}, 1.0)

	result, _ := coordinator.Run(coordinator.Config{
		Codec: codec,
		Dict:  idx,
		GWS:   16,
	}, []device.Device{device.NewCPUDevice(device.CPUDeviceInfo)})

	fmt.Println(result.Found)
	// Output:
	// [42]
}
