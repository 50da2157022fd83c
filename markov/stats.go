package markov

import (
	"encoding/binary"
	"io"

	"github.com/markovforge/markovforge/errext"
)

// Model selects which positional statistics table to read from a stats file.
type Model uint8

const (
	// ModelClassic is a single 256x256 transition matrix replicated across
	// every position.
	ModelClassic Model = 1
	// ModelLayered is a maxLength x 256 x 256 table, one matrix per position.
	ModelLayered Model = 2
)

// ParseModel maps the -M/--model CLI value to a Model.
func ParseModel(s string) (Model, error) {
	switch s {
	case "classic":
		return ModelClassic, nil
	case "layered":
		return ModelLayered, nil
	default:
		return 0, errext.New(errext.UsageError, "unknown model "+s+" (want classic or layered)")
	}
}

const (
	recordHeaderETX = 0x03
	classicRows     = 256
	classicCols     = 256
	bytesPerCount   = 2
)

// Stats is the positional bigram table loaded from a statistics file
// payload, in host byte order. Count(p, b, c) returns the observed count
// of transition b -> c at position p.
type Stats struct {
	maxLength int
	classic   bool
	data      []uint16 // flat [p][b][c], or [b][c] when classic
}

// Count returns the observed transition count for b -> c at position p.
// For a classic model the same 256x256 matrix is used at every position.
func (s *Stats) Count(p int, b, c byte) uint16 {
	if s.classic {
		return s.data[int(b)*classicCols+int(c)]
	}
	if p >= s.maxLength {
		p = s.maxLength - 1
	}
	return s.data[p*classicRows*classicCols+int(b)*classicCols+int(c)]
}

// MaxLength returns the number of distinct positional rows kept from the
// payload (1 for classic, the requested maxLength for layered).
func (s *Stats) MaxLength() int { return s.maxLength }

// ReadStats scans a statistics file for the record matching model and
// returns its payload, converted to host byte order.
//
// Wire format (spec.md §4.2, §6): a header of arbitrary bytes terminated
// by ETX (0x03), followed by records of {u8 type, u32be length, payload}.
// maxLength is the fewest positional rows a layered payload must declare
// (fewer is MalformedStats); only its first maxLength rows are kept. It does
// not affect a classic payload.
func ReadStats(r io.Reader, model Model, maxLength int) (*Stats, error) {
	br := bufReader{r: r}
	if err := skipHeader(&br); err != nil {
		return nil, err
	}
	for {
		recType, length, err := readRecordHeader(&br)
		if err == io.EOF {
			return nil, errext.New(errext.ModelNotFound, "no record for selected model in statistics file")
		}
		if err != nil {
			return nil, err
		}
		if Model(recType) != model {
			if err := br.discard(int(length)); err != nil {
				return nil, errext.Wrap(errext.MalformedStats, err, "truncated record payload")
			}
			continue
		}
		payload := make([]byte, length)
		if _, err := io.ReadFull(br.r, payload); err != nil {
			return nil, errext.Wrap(errext.MalformedStats, err, "truncated record payload")
		}
		return decodePayload(model, payload, maxLength)
	}
}

func decodePayload(model Model, payload []byte, maxLength int) (*Stats, error) {
	switch model {
	case ModelClassic:
		want := classicRows * classicCols * bytesPerCount
		if len(payload) != want {
			return nil, errext.New(errext.MalformedStats, "classic payload has wrong length")
		}
		data := make([]uint16, classicRows*classicCols)
		for i := range data {
			data[i] = binary.BigEndian.Uint16(payload[i*2 : i*2+2])
		}
		return &Stats{maxLength: 1, classic: true, data: data}, nil
	case ModelLayered:
		rowBytes := classicRows * classicCols * bytesPerCount
		if len(payload)%rowBytes != 0 {
			return nil, errext.New(errext.MalformedStats, "layered payload is not a multiple of one position's row size")
		}
		rows := len(payload) / rowBytes
		if rows < maxLength {
			return nil, errext.New(errext.MalformedStats, "layered payload has fewer positional rows than requested length")
		}
		data := make([]uint16, maxLength*classicRows*classicCols)
		for i := range data {
			data[i] = binary.BigEndian.Uint16(payload[i*2 : i*2+2])
		}
		return &Stats{maxLength: maxLength, classic: false, data: data}, nil
	default:
		return nil, errext.New(errext.UsageError, "unknown model")
	}
}

// bufReader is a tiny byte-at-a-time reader used for header scanning; it
// keeps ReadStats free of a bufio dependency for the (small) header scan
// while still reading record payloads directly from r.
type bufReader struct {
	r io.Reader
}

func (b *bufReader) readByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(b.r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (b *bufReader) discard(n int) error {
	_, err := io.CopyN(io.Discard, b.r, int64(n))
	return err
}

func skipHeader(b *bufReader) error {
	for {
		c, err := b.readByte()
		if err == io.EOF {
			return errext.New(errext.MalformedStats, "statistics file has no header terminator (0x03)")
		}
		if err != nil {
			return errext.Wrap(errext.MalformedStats, err, "reading header")
		}
		if c == recordHeaderETX {
			return nil
		}
	}
}

func readRecordHeader(b *bufReader) (recType byte, length uint32, err error) {
	recType, err = b.readByte()
	if err != nil {
		return 0, 0, err
	}
	var lenBuf [4]byte
	if _, err := io.ReadFull(b.r, lenBuf[:]); err != nil {
		return 0, 0, errext.Wrap(errext.MalformedStats, err, "truncated record length")
	}
	return recType, binary.BigEndian.Uint32(lenBuf[:]), nil
}
