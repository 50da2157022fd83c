package errext

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(MalformedStats, cause, "truncated record")

	require.True(t, errors.Is(err, cause), "expected Unwrap to expose cause")
	assert.Equal(t, 2, err.ExitCode())
}

func TestWithHint(t *testing.T) {
	err := New(ThresholdOverflow, "permutation count overflows uint64").
		WithHint("use smaller thresholds or a narrower length range")

	var h HasHint = err
	assert.NotEmpty(t, h.Hint())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "usage error", UsageError.String())
}
