// Package config holds the CLI-facing option struct, its validation, and the
// small typed parsers for the compound flag syntaxes of spec.md §6
// (`-D/--devices`, `-t/--thresholds`, `-l/--length`), so coordinator and
// markov never parse CLI syntax directly.
package config

import (
	"strconv"
	"strings"

	"github.com/markovforge/markovforge/errext"
	"github.com/markovforge/markovforge/mask"
)

// Options mirrors the flag table of spec.md §6.
type Options struct {
	Verbose       bool
	ListPlatforms bool
	Devices       DeviceSpec
	GWS           int
	Dictionary    string
	LoadFactor    float64
	Print         bool
	Statistics    string
	Thresholds    ThresholdSpec
	Length        LengthRange
	Mask          string
	Model         string
}

// Defaults returns the flag defaults of spec.md §6.
func Defaults() Options {
	return Options{
		Devices:    DeviceSpec{Platform: 0},
		GWS:        1_024_000,
		LoadFactor: 1.0,
		Thresholds: ThresholdSpec{Global: 5},
		Length:     LengthRange{Min: 1, Max: 50},
		Mask:       strings.Repeat("?x", mask.MaxPassLength),
		Model:      "classic",
	}
}

// Validate checks option combinations that a CLI flag parser can't catch on
// its own (spec.md §6, §7 UsageError).
func (o Options) Validate() error {
	if o.Statistics == "" {
		return errext.New(errext.UsageError, "-s/--statistics is required")
	}
	if o.Dictionary == "" {
		return errext.New(errext.UsageError, "-d/--dictionary is required")
	}
	if o.Length.Min < 1 || o.Length.Max > mask.MaxPassLength || o.Length.Min > o.Length.Max {
		return errext.New(errext.UsageError, "length range must satisfy 1 <= min <= max <= 64")
	}
	if o.GWS <= 0 {
		return errext.New(errext.UsageError, "-g/--gws must be positive")
	}
	if o.LoadFactor <= 0 {
		return errext.New(errext.UsageError, "--load-factor must be positive")
	}
	if o.Model != "classic" && o.Model != "layered" {
		return errext.New(errext.UsageError, "-M/--model must be classic or layered")
	}
	return nil
}

// DeviceSpec is the parsed form of `-D/--devices plat[:dev[,dev]]`.
type DeviceSpec struct {
	Platform int
	Devices  []int // empty means "every device on the platform"
}

// ParseDevices parses "plat[:dev[,dev...]]".
func ParseDevices(s string) (DeviceSpec, error) {
	platPart, devPart, hasDev := strings.Cut(s, ":")
	plat, err := strconv.Atoi(platPart)
	if err != nil {
		return DeviceSpec{}, errext.New(errext.UsageError, "invalid platform index in -D/--devices: "+s)
	}
	spec := DeviceSpec{Platform: plat}
	if !hasDev {
		return spec, nil
	}
	for _, part := range strings.Split(devPart, ",") {
		d, err := strconv.Atoi(part)
		if err != nil {
			return DeviceSpec{}, errext.New(errext.UsageError, "invalid device index in -D/--devices: "+s)
		}
		spec.Devices = append(spec.Devices, d)
	}
	return spec, nil
}

// ThresholdSpec is the parsed form of `-t/--thresholds glob[:p0,p1,...]`.
type ThresholdSpec struct {
	Global    int
	Overrides map[int]int // position -> raw threshold
}

// ParseThresholds parses "glob[:p0,p1,...]" into a global default and
// per-position overrides, positions numbered from 0.
func ParseThresholds(s string) (ThresholdSpec, error) {
	globPart, overridePart, hasOverride := strings.Cut(s, ":")
	global, err := strconv.Atoi(globPart)
	if err != nil || global <= 0 {
		return ThresholdSpec{}, errext.New(errext.UsageError, "invalid global threshold in -t/--thresholds: "+s)
	}
	spec := ThresholdSpec{Global: global}
	if !hasOverride {
		return spec, nil
	}
	spec.Overrides = make(map[int]int)
	for i, part := range strings.Split(overridePart, ",") {
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil || v <= 0 {
			return ThresholdSpec{}, errext.New(errext.UsageError, "invalid per-position threshold in -t/--thresholds: "+s)
		}
		spec.Overrides[i] = v
	}
	return spec, nil
}

// LengthRange is the parsed form of `-l/--length min:max`.
type LengthRange struct {
	Min, Max int
}

// ParseLengthRange parses "min:max".
func ParseLengthRange(s string) (LengthRange, error) {
	minPart, maxPart, ok := strings.Cut(s, ":")
	if !ok {
		return LengthRange{}, errext.New(errext.UsageError, "invalid -l/--length, want min:max: "+s)
	}
	min, err1 := strconv.Atoi(minPart)
	max, err2 := strconv.Atoi(maxPart)
	if err1 != nil || err2 != nil {
		return LengthRange{}, errext.New(errext.UsageError, "invalid -l/--length, want min:max: "+s)
	}
	return LengthRange{Min: min, Max: max}, nil
}
