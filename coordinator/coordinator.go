// Package coordinator drives one worker per selected device through the
// double-kernel (generate -> match) pipeline of spec.md §4.8, reserving
// index ranges from a shared counter and aggregating results once every
// worker has finished.
package coordinator

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/markovforge/markovforge/device"
	"github.com/markovforge/markovforge/dictionary"
	"github.com/markovforge/markovforge/errext"
	"github.com/markovforge/markovforge/markov"
	"github.com/markovforge/markovforge/reservation"
)

// Config bundles everything a Run needs beyond the device list: the codec
// that turns indices into candidates, the dictionary index to match
// against, the global work size per device, and a logger.
type Config struct {
	Codec  *markov.Codec
	Dict   *dictionary.Index
	GWS    int
	Logger logrus.FieldLogger
}

// Result is the outcome of one coordinator run.
type Result struct {
	Found []string
}

// Run launches one goroutine per device, each looping generate/match
// against its own reservation-issued index ranges, then merges every
// device's match flags back into cfg.Dict (spec.md §4.8).
//
// A device error aborts every sibling worker once it finishes its current
// batch, and no further reservation is handed out (spec.md §5): the failing
// worker's error is returned once all
// workers have joined; workers that were already mid-batch still finish
// that batch and contribute their partial matches.
func Run(cfg Config, devices []device.Device) (Result, error) {
	if cfg.GWS <= 0 {
		return Result{}, errext.New(errext.UsageError, "global work size must be positive")
	}
	lo, hi := cfg.Codec.Range()
	resSize := uint64(10_000) * uint64(cfg.GWS)
	res := reservation.New(lo, hi, resSize)

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	replicas := make([]*dictionary.Index, len(devices))
	for i := range devices {
		replicas[i] = cfg.Dict.Clone()
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		firstErr error
	)
	for i, dev := range devices {
		wg.Add(1)
		go func(dev device.Device, dict *dictionary.Index) {
			defer wg.Done()
			if err := worker(dev, cfg.Codec, dict, res, cfg.GWS, logger); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				res.Abort()
			}
		}(dev, replicas[i])
	}
	wg.Wait()

	for _, r := range replicas {
		cfg.Dict.MergeFlags(r)
	}

	return Result{Found: cfg.Dict.Found()}, firstErr
}

// worker runs the per-device loop of spec.md §4.8: reserve a range, walk it
// in gws-sized steps issuing generate then match against a local buffer,
// and request a new reservation once the local range is exhausted.
func worker(dev device.Device, codec *markov.Codec, dict *dictionary.Index, res *reservation.Reservation, gws int, logger logrus.FieldLogger) error {
	buf := device.NewCandidateBuffer(gws, codecMaxLength(codec))
	log := logger.WithField("device", dev.Info().Name)

	for {
		start, stop, ok := res.Reserve()
		if !ok {
			log.Debug("reservation exhausted, worker done")
			return nil
		}
		log.WithFields(logrus.Fields{"start": start, "stop": stop}).Debug("reserved range")

		for local := start; local < stop; local += uint64(gws) {
			if err := dev.Generate(buf, codec, local); err != nil {
				return errext.Wrap(errext.DeviceError, err, "generate kernel failed")
			}
			if err := dev.Match(buf, dict); err != nil {
				return errext.Wrap(errext.DeviceError, err, "match kernel failed")
			}
			if res.Aborted() {
				return nil
			}
		}
	}
}

// codecMaxLength recovers the longest candidate length a codec can produce,
// for sizing a device's candidate buffer entries.
func codecMaxLength(codec *markov.Codec) int {
	return codec.MaxLength()
}
