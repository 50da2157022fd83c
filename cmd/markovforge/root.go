package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/markovforge/markovforge/config"
	"github.com/markovforge/markovforge/coordinator"
	"github.com/markovforge/markovforge/device"
	"github.com/markovforge/markovforge/dictionary"
	"github.com/markovforge/markovforge/errext"
	"github.com/markovforge/markovforge/mask"
	"github.com/markovforge/markovforge/markov"
)

// exitError carries the process exit code a failed run should use, letting
// main map it without re-inspecting the error chain.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}
func (e *exitError) Unwrap() error { return e.err }

func newRootCommand(gs *globalState) *cobra.Command {
	opts := config.Defaults()
	var (
		devicesFlag    string
		thresholdsFlag string
		lengthFlag     string
		listPlatforms  bool
	)

	cmd := &cobra.Command{
		Use:           "markovforge",
		Short:         "GPU-accelerated password candidate generator and dictionary matcher",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Verbose {
				gs.logger.SetLevel(logrus.DebugLevel)
			}
			if listPlatforms {
				printPlatforms(gs)
				return &exitError{code: 1, err: nil}
			}

			devSpec, err := config.ParseDevices(devicesFlag)
			if err != nil {
				return err
			}
			opts.Devices = devSpec

			thSpec, err := config.ParseThresholds(thresholdsFlag)
			if err != nil {
				return err
			}
			opts.Thresholds = thSpec

			lr, err := config.ParseLengthRange(lengthFlag)
			if err != nil {
				return err
			}
			opts.Length = lr

			if err := opts.Validate(); err != nil {
				return err
			}
			return run(gs, opts)
		},
	}

	var flags *pflag.FlagSet = cmd.Flags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.BoolVar(&listPlatforms, "list-platforms", false, "enumerate compute platforms/devices, exit 1")
	flags.StringVarP(&devicesFlag, "devices", "D", "0", "platform index and optional device indices: plat[:dev[,dev]]")
	flags.IntVarP(&opts.GWS, "gws", "g", opts.GWS, "global work size per device")
	flags.StringVarP(&opts.Dictionary, "dictionary", "d", "", "wordlist, one entry per line (required)")
	flags.Float64Var(&opts.LoadFactor, "load-factor", opts.LoadFactor, "max hash-table load factor")
	flags.BoolVarP(&opts.Print, "print", "p", false, "print plaintexts of recovered entries")
	flags.StringVarP(&opts.Statistics, "statistics", "s", "", "Markov statistics file (required)")
	flags.StringVarP(&thresholdsFlag, "thresholds", "t", "5", "per-position character budgets: glob[:p0,p1,...]")
	flags.StringVarP(&lengthFlag, "length", "l", "1:50", "length range: min:max")
	flags.StringVarP(&opts.Mask, "mask", "m", opts.Mask, "mask, syntax per the positional predicate grammar")
	flags.StringVarP(&opts.Model, "model", "M", opts.Model, "Markov model type: classic|layered")

	return cmd
}

// extraPlatforms is populated by an opencl-tagged build to contribute real
// GPU platforms/devices alongside the always-available CPU reference.
var extraPlatforms func() []device.Info

func printPlatforms(gs *globalState) {
	infos := device.Enumerate()
	if extraPlatforms != nil {
		infos = append(infos, extraPlatforms()...)
	}
	for _, info := range infos {
		fmt.Fprintf(gs.stdout, "[%d:%d] %s\n", info.Platform, info.Index, info.Name)
	}
}

func run(gs *globalState, opts config.Options) error {
	statsFile, err := gs.fs.Open(opts.Statistics)
	if err != nil {
		return errext.Wrap(errext.MissingFile, err, "opening statistics file")
	}
	defer statsFile.Close()

	model, err := markov.ParseModel(opts.Model)
	if err != nil {
		return err
	}
	stats, err := markov.ReadStats(statsFile, model, opts.Length.Max)
	if err != nil {
		return err
	}

	m, err := mask.Parse(opts.Mask)
	if err != nil {
		return err
	}
	th, err := markov.BuildThresholds(m, opts.Thresholds.Global, opts.Thresholds.Overrides)
	if err != nil {
		return err
	}
	perm, err := markov.BuildPermutations(th, opts.Length.Max)
	if err != nil {
		return err
	}
	table := markov.BuildTable(stats, m, th, opts.Length.Max)
	codec := markov.NewCodec(table, th, perm, opts.Length.Min, opts.Length.Max)

	words, err := readWordlist(gs, opts.Dictionary)
	if err != nil {
		return err
	}
	idx, err := dictionary.NewIndex(words, opts.LoadFactor)
	if err != nil {
		return err
	}

	devices := devicesFromSpec(opts.Devices)
	cfg := coordinator.Config{Codec: codec, Dict: idx, GWS: opts.GWS, Logger: gs.logger}
	result, err := coordinator.Run(cfg, devices)
	if err != nil {
		return err
	}

	fmt.Fprintf(gs.stdout, "matches: %d\n", len(result.Found))
	if opts.Print {
		for _, w := range result.Found {
			fmt.Fprintln(gs.stdout, w)
		}
	}
	return nil
}

func readWordlist(gs *globalState, path string) ([]string, error) {
	f, err := gs.fs.Open(path)
	if err != nil {
		return nil, errext.Wrap(errext.MissingFile, err, "opening dictionary file")
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errext.Wrap(errext.MissingFile, err, "reading dictionary file")
	}
	return words, nil
}

// devicesFromSpec builds the CPU reference backend's logical workers for a
// parsed device spec. A build linking device/opencl would instead resolve
// real platform/device indices here; the default build always has exactly
// one physical backend, so a requested device list becomes that many
// logical CPU workers, matching the sharded-equivalence guarantee of
// spec.md §8.
func devicesFromSpec(spec config.DeviceSpec) []device.Device {
	n := len(spec.Devices)
	if n == 0 {
		n = 1
	}
	devs := make([]device.Device, n)
	for i := 0; i < n; i++ {
		devs[i] = device.NewCPUDevice(device.Info{Platform: spec.Platform, Index: i, Name: "cpu-reference"})
	}
	return devs
}
