// Package markovforge generates password candidates from a positional
// Markov model and tests them against a precomputed dictionary index.
//
// # Overview
//
// Candidates are enumerated in a deterministic order derived from
// per-position character frequency statistics and a user-supplied mask, and
// dispatched to one or more compute devices for matching against a target
// wordlist. The core pieces live in their own packages:
//
//   - mask: parses a mask string into per-position byte predicates.
//   - markov: reads statistics, builds the dense Markov table, and decodes
//     64-bit global indices into candidate strings.
//   - dictionary: builds the flat open-addressed bucket table a device
//     worker scans per candidate.
//   - reservation: hands out disjoint index ranges to concurrent workers.
//   - device: the generate/match kernel contract, plus a pure-Go reference
//     implementation and device enumeration.
//   - coordinator: runs one worker per selected device through the
//     generate/match pipeline and aggregates matches.
//
// # When to Use
//
// Any workload that wants to enumerate password candidates in a
// statistically-informed order rather than raw brute force, and test them
// against a dictionary without leaving the matching logic to ad hoc string
// comparisons: the dictionary index and Markov table are both designed to
// be copied wholesale into device buffers.
//
// # When Not to Use
//
// This package does not compute or compare cryptographic hashes (matching
// is plaintext-to-plaintext, per the matcher's Non-goals), does not retrain
// the Markov model from observed data, and keeps no resumable checkpoint
// across runs. A workload needing any of those should build on top of, not
// within, this package.
//
// # Basic Usage
//
//	m, _ := mask.Parse("?l?l?l?d?d")
//	th, _ := markov.BuildThresholds(m, 5, nil)
//	perm, _ := markov.BuildPermutations(th, 5)
//	stats, _ := markov.ReadStats(statsFile, markov.ModelClassic, 5)
//	table := markov.BuildTable(stats, m, th, 5)
//	codec := markov.NewCodec(table, th, perm, 1, 5)
//
//	idx, _ := dictionary.NewIndex(words, 1.0)
//	result, _ := coordinator.Run(coordinator.Config{
//		Codec: codec, Dict: idx, GWS: 1024,
//	}, []device.Device{device.NewCPUDevice(device.CPUDeviceInfo)})
//
// # Performance Characteristics
//
// Table build is O(max_length * 256 * 256 log 256); candidate decoding is
// O(length) per candidate with no branching on statistics, since the table
// lookup already encodes the mask/probability ranking. Matching is O(1)
// expected per candidate against the dictionary's bucket table.
package markovforge
