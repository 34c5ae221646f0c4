// Package sim provides the memoized Monte Carlo sampler and frequency reducer
// used to draw outcome histograms for dice expressions.
package sim

import (
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/cory-johannsen/dicetray/internal/game/dice"
)

// DefaultSampleCount is the number of trials RunSimulation draws per expression.
const DefaultSampleCount = 50000

// SampleSet is an ordered sequence of simulated totals, one per trial.
type SampleSet []int

type sampleKey struct {
	expr string
	n    int
}

// Simulator draws SampleSets and FrequencyTables for dice expressions and
// memoizes both for its lifetime. Entries are never evicted.
//
// Invariant: a returned SampleSet or FrequencyTable must not be mutated by callers;
// later calls with the same key return the same backing array.
type Simulator struct {
	src         dice.Source
	sampleCount int
	logger      *zap.Logger

	mu      sync.Mutex
	samples map[sampleKey]SampleSet
	tables  map[string]FrequencyTable
	group   singleflight.Group
}

// NewSimulator creates a Simulator drawing from src.
// sampleCount <= 0 selects DefaultSampleCount.
//
// Precondition: src and logger must be non-nil.
func NewSimulator(src dice.Source, sampleCount int, logger *zap.Logger) *Simulator {
	if sampleCount <= 0 {
		sampleCount = DefaultSampleCount
	}
	return &Simulator{
		src:         src,
		sampleCount: sampleCount,
		logger:      logger,
		samples:     make(map[sampleKey]SampleSet),
		tables:      make(map[string]FrequencyTable),
	}
}

// SampleCount returns the trial count used by RunSimulation.
func (s *Simulator) SampleCount() int {
	return s.sampleCount
}

// Simulate returns n simulated totals for expr.
//
// A multi-portion expression simulates every portion independently with n
// trials and sums the per-portion SampleSets index by index. A single portion
// draws n independent evaluations of its term.
//
// Postcondition: len(result) == max(n, 0); repeated calls with the same
// (expr, n) return the cached SampleSet.
func (s *Simulator) Simulate(expr string, n int) SampleSet {
	if n <= 0 {
		return SampleSet{}
	}
	key := sampleKey{expr: expr, n: n}

	s.mu.Lock()
	cached, ok := s.samples[key]
	s.mu.Unlock()
	if ok {
		return cached
	}

	v, _, _ := s.group.Do("simulate\x00"+expr+"\x00"+strconv.Itoa(n), func() (interface{}, error) {
		s.mu.Lock()
		if cached, ok := s.samples[key]; ok {
			s.mu.Unlock()
			return cached, nil
		}
		s.mu.Unlock()

		start := time.Now()
		samples := s.simulate(expr, n)
		s.logger.Debug("simulation computed",
			zap.String("expression", expr),
			zap.Int("samples", n),
			zap.Duration("elapsed", time.Since(start)),
		)

		s.mu.Lock()
		s.samples[key] = samples
		s.mu.Unlock()
		return samples, nil
	})
	return v.(SampleSet)
}

// simulate draws without consulting the memo so that repeated portions such
// as "1d6+1d6" are sampled independently.
func (s *Simulator) simulate(expr string, n int) SampleSet {
	portions := dice.Portions(expr)
	if len(portions) > 1 {
		total := make(SampleSet, n)
		for _, p := range portions {
			part := s.simulate(p, n)
			for i, v := range part {
				total[i] += v
			}
		}
		return total
	}

	term := dice.ParseTerm(portions[0])
	samples := make(SampleSet, n)
	for i := range samples {
		samples[i] = dice.EvalTerm(term, s.src)
	}
	return samples
}

// RunSimulation simulates expr with SampleCount trials and reduces the result
// to a FrequencyTable ordered by ascending total.
//
// Postcondition: result.Samples() == s.SampleCount(); the table is memoized
// by expr alone.
func (s *Simulator) RunSimulation(expr string) FrequencyTable {
	s.mu.Lock()
	cached, ok := s.tables[expr]
	s.mu.Unlock()
	if ok {
		return cached
	}

	v, _, _ := s.group.Do("frequency\x00"+expr, func() (interface{}, error) {
		s.mu.Lock()
		if cached, ok := s.tables[expr]; ok {
			s.mu.Unlock()
			return cached, nil
		}
		s.mu.Unlock()

		table := Tabulate(s.Simulate(expr, s.sampleCount))
		s.logger.Debug("frequency table computed",
			zap.String("expression", expr),
			zap.Int("buckets", len(table)),
		)

		s.mu.Lock()
		s.tables[expr] = table
		s.mu.Unlock()
		return table, nil
	})
	return v.(FrequencyTable)
}
