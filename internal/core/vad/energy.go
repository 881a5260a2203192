package vad

import (
	"encoding/binary"
	"math"
	"sort"
)

// RMSEnergy returns the root-mean-square amplitude of one frame of raw PCM.
//
// sampleWidth is the size of one sample in bytes. 8-bit samples are unsigned
// and centered on 128; 16- and 32-bit samples are signed little-endian.
// Multi-channel frames are not de-interleaved: all samples are treated as one
// flat stream. Unsupported widths and empty frames yield 0.
func RMSEnergy(frame []byte, sampleWidth int) float64 {
	var sumSq float64
	var n int

	switch sampleWidth {
	case 1:
		for _, b := range frame {
			s := float64(int(b) - 128)
			sumSq += s * s
		}
		n = len(frame)
	case 2:
		n = len(frame) / 2
		for i := 0; i < n; i++ {
			s := float64(int16(binary.LittleEndian.Uint16(frame[i*2:])))
			sumSq += s * s
		}
	case 4:
		n = len(frame) / 4
		for i := 0; i < n; i++ {
			s := float64(int32(binary.LittleEndian.Uint32(frame[i*4:])))
			sumSq += s * s
		}
	default:
		return 0
	}

	if n == 0 {
		return 0
	}
	return math.Sqrt(sumSq / float64(n))
}

// Percentile returns the p-th percentile (0..1) of values using linear
// interpolation between the two closest order statistics. The input slice is
// not modified. An empty input yields 0.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	k := float64(len(sorted)-1) * p
	f := math.Floor(k)
	c := math.Ceil(k)
	if f == c {
		return sorted[int(k)]
	}

	// explicit conversions keep each product rounded on its own
	d0 := float64(sorted[int(f)] * (c - k))
	d1 := float64(sorted[int(c)] * (k - f))
	return d0 + d1
}
