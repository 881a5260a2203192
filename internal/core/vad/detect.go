package vad

import (
	"errors"
	"fmt"
	"io"
)

// ErrEmptyAudio is returned when a source holds no frames at all.
var ErrEmptyAudio = errors.New("audio contains no frames")

// PCMSource is a forward-only reader of interleaved PCM frames.
type PCMSource interface {
	SampleRate() int
	SampleWidth() int
	Channels() int
	TotalFrames() int64
	// ReadFrames returns up to n frames of raw bytes. It returns io.EOF once
	// the stream is exhausted.
	ReadFrames(n int) ([]byte, error)
}

// Region is a contiguous span of detected speech, in seconds.
type Region struct {
	Start float64
	End   float64
}

// Duration returns End - Start.
func (r Region) Duration() float64 {
	return r.End - r.Start
}

// DetectorOptions controls region detection.
type DetectorOptions struct {
	FrameWidth                int     // frames per analysis chunk
	MinRegionSize             float64 // seconds; shorter regions are dropped
	MaxRegionSize             float64 // seconds; longer runs are split
	EnergyThresholdPercentile float64 // 0..1
}

// DefaultDetectorOptions returns the stock detector settings.
func DefaultDetectorOptions() DetectorOptions {
	return DetectorOptions{
		FrameWidth:                4096,
		MinRegionSize:             0.5,
		MaxRegionSize:             6.0,
		EnergyThresholdPercentile: 0.2,
	}
}

func (o DetectorOptions) validate() error {
	if o.FrameWidth <= 0 {
		return fmt.Errorf("frame width must be positive, got %d", o.FrameWidth)
	}
	if o.EnergyThresholdPercentile < 0 || o.EnergyThresholdPercentile > 1 {
		return fmt.Errorf("energy threshold percentile must be within [0, 1], got %g", o.EnergyThresholdPercentile)
	}
	if o.MaxRegionSize <= 0 {
		return fmt.Errorf("max region size must be positive, got %g", o.MaxRegionSize)
	}
	return nil
}

// Energies reads src to the end in chunks of frameWidth frames and returns
// the RMS energy of each full chunk. A trailing partial chunk is discarded.
func Energies(src PCMSource, frameWidth int) ([]float64, error) {
	frameBytes := frameWidth * src.SampleWidth() * src.Channels()
	nChunks := src.TotalFrames() / int64(frameWidth)

	energies := make([]float64, 0, nChunks)
	for i := int64(0); i < nChunks; i++ {
		chunk, err := src.ReadFrames(frameWidth)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read chunk %d: %w", i, err)
		}
		if len(chunk) < frameBytes {
			break
		}
		energies = append(energies, RMSEnergy(chunk, src.SampleWidth()))
	}
	return energies, nil
}

// Detect returns the speech regions of src in chronological order.
//
// Audio shorter than one analysis chunk is returned as a single region
// covering the whole file. A source without any frames fails with
// ErrEmptyAudio.
func Detect(src PCMSource, opts DetectorOptions) ([]Region, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	rate := src.SampleRate()
	if rate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", rate)
	}

	total := src.TotalFrames()
	if total <= 0 {
		return nil, ErrEmptyAudio
	}
	totalDuration := float64(total) / float64(rate)

	energies, err := Energies(src, opts.FrameWidth)
	if err != nil {
		return nil, err
	}
	if len(energies) == 0 {
		return []Region{{Start: 0, End: totalDuration}}, nil
	}

	chunkDuration := float64(opts.FrameWidth) / float64(rate)
	return Scan(energies, chunkDuration, opts), nil
}

// Scan turns a sequence of per-chunk energies into regions. Chunks at or
// below the percentile threshold are silent. An open region is closed on
// silence or once it reaches MaxRegionSize; a non-silent chunk that closes
// an over-long region immediately opens the next one.
func Scan(energies []float64, chunkDuration float64, opts DetectorOptions) []Region {
	threshold := Percentile(energies, opts.EnergyThresholdPercentile)

	var (
		regions []Region
		open    bool
		start   float64
		elapsed float64
	)
	closeAt := func(end float64) {
		if end-start >= opts.MinRegionSize {
			regions = append(regions, Region{Start: start, End: end})
		}
		open = false
	}

	for _, e := range energies {
		silent := e <= threshold
		if open && (silent || elapsed-start >= opts.MaxRegionSize) {
			closeAt(elapsed)
		}
		if !open && !silent {
			start = elapsed
			open = true
		}
		elapsed += chunkDuration
	}
	if open {
		closeAt(elapsed)
	}
	return regions
}
