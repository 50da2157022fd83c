package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDevicesPlatformOnly(t *testing.T) {
	spec, err := ParseDevices("0")
	require.NoError(t, err)
	assert.Equal(t, 0, spec.Platform)
	assert.Empty(t, spec.Devices)
}

func TestParseDevicesWithList(t *testing.T) {
	spec, err := ParseDevices("1:0,2,3")
	require.NoError(t, err)
	assert.Equal(t, 1, spec.Platform)
	assert.Equal(t, []int{0, 2, 3}, spec.Devices)
}

func TestParseThresholdsGlobalAndOverrides(t *testing.T) {
	spec, err := ParseThresholds("20:20,20")
	require.NoError(t, err)
	assert.Equal(t, 20, spec.Global)
	assert.Equal(t, map[int]int{0: 20, 1: 20}, spec.Overrides)
}

func TestParseLengthRange(t *testing.T) {
	lr, err := ParseLengthRange("2:2")
	require.NoError(t, err)
	assert.Equal(t, LengthRange{Min: 2, Max: 2}, lr)

	_, err = ParseLengthRange("bad")
	assert.Error(t, err)
}

func TestValidateRejectsMissingRequiredFlags(t *testing.T) {
	o := Defaults()
	assert.Error(t, o.Validate(), "missing -s/--statistics and -d/--dictionary")

	o.Statistics = "stats.bin"
	o.Dictionary = "words.txt"
	assert.NoError(t, o.Validate())
}

func TestValidateRejectsBadLengthRange(t *testing.T) {
	o := Defaults()
	o.Statistics = "stats.bin"
	o.Dictionary = "words.txt"

	o.Length = LengthRange{Min: 10, Max: 5}
	assert.Error(t, o.Validate(), "min > max")

	o.Length = LengthRange{Min: 1, Max: 65}
	assert.Error(t, o.Validate(), "max > 64")
}
