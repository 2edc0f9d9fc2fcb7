package model

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// SampleSet holds the posterior samples of one parameter for one model and
// one event. It is immutable: accessors return copies.
type SampleSet struct {
	values  []float64
	dropped int
}

// NewSampleSet copies xs, dropping NaN and infinite values.
func NewSampleSet(xs []float64) SampleSet {
	values := make([]float64, 0, len(xs))
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		values = append(values, x)
	}
	return SampleSet{
		values:  values,
		dropped: len(xs) - len(values),
	}
}

func (s SampleSet) Len() int {
	return len(s.values)
}

func (s SampleSet) IsEmpty() bool {
	return len(s.values) == 0
}

// Dropped is the number of non-finite input values discarded on load.
func (s SampleSet) Dropped() int {
	return s.dropped
}

func (s SampleSet) Values() []float64 {
	res := make([]float64, len(s.values))
	copy(res, s.values)
	return res
}

func (s SampleSet) Sorted() []float64 {
	res := s.Values()
	sort.Float64s(res)
	return res
}

// IsDegenerate reports whether every sample has the same value.
func (s SampleSet) IsDegenerate() bool {
	if len(s.values) == 0 {
		return false
	}
	for _, v := range s.values[1:] {
		if v != s.values[0] {
			return false
		}
	}
	return true
}

// Fingerprint hashes the sorted values, so two sets holding the same
// multiset of samples share a fingerprint regardless of order.
func (s SampleSet) Fingerprint() uint64 {
	digest := xxhash.New()
	buf := make([]byte, 8)
	for _, v := range s.Sorted() {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
		_, _ = digest.Write(buf)
	}
	return digest.Sum64()
}
