package sim

import (
	"maps"
	"slices"
)

// Bucket is one row of a FrequencyTable.
type Bucket struct {
	Total int
	Count int
}

// FrequencyTable maps observed totals to occurrence counts, ordered by ascending Total.
type FrequencyTable []Bucket

// Tabulate counts the occurrences of every distinct total in samples.
//
// Postcondition: result is sorted by ascending Total; the Counts sum to len(samples).
func Tabulate(samples SampleSet) FrequencyTable {
	counts := make(map[int]int)
	for _, v := range samples {
		counts[v]++
	}
	table := make(FrequencyTable, 0, len(counts))
	for _, total := range slices.Sorted(maps.Keys(counts)) {
		table = append(table, Bucket{Total: total, Count: counts[total]})
	}
	return table
}

// Samples returns the sum of all bucket counts.
func (f FrequencyTable) Samples() int {
	n := 0
	for _, b := range f {
		n += b.Count
	}
	return n
}

// Min returns the smallest observed total, or 0 for an empty table.
func (f FrequencyTable) Min() int {
	if len(f) == 0 {
		return 0
	}
	return f[0].Total
}

// Max returns the largest observed total, or 0 for an empty table.
func (f FrequencyTable) Max() int {
	if len(f) == 0 {
		return 0
	}
	return f[len(f)-1].Total
}

// MaxCount returns the largest bucket count.
func (f FrequencyTable) MaxCount() int {
	m := 0
	for _, b := range f {
		m = max(m, b.Count)
	}
	return m
}

// Mean returns the sample mean, or 0 for an empty table.
func (f FrequencyTable) Mean() float64 {
	n := f.Samples()
	if n == 0 {
		return 0
	}
	sum := 0
	for _, b := range f {
		sum += b.Total * b.Count
	}
	return float64(sum) / float64(n)
}

// Percent returns the share of samples that landed on total, in [0, 100].
func (f FrequencyTable) Percent(total int) float64 {
	n := f.Samples()
	if n == 0 {
		return 0
	}
	i, found := slices.BinarySearchFunc(f, total, func(b Bucket, t int) int { return b.Total - t })
	if !found {
		return 0
	}
	return 100 * float64(f[i].Count) / float64(n)
}
