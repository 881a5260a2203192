package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/wav"
)

// Info describes the PCM layout of a WAV file.
type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Frames     int64
	Duration   time.Duration
}

// Seconds returns the duration in seconds.
func (i Info) Seconds() float64 {
	if i.SampleRate == 0 {
		return 0
	}
	return float64(i.Frames) / float64(i.SampleRate)
}

// WAVSource reads the PCM payload of a WAV file sequentially.
type WAVSource struct {
	file *os.File
	pcm  io.Reader
	info Info
}

// OpenWAV opens path and positions the reader at the start of its PCM data.
func OpenWAV(path string) (*WAVSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	decoder := wav.NewDecoder(file)
	decoder.ReadInfo()
	if err := decoder.Err(); err != nil {
		file.Close()
		return nil, fmt.Errorf("%s: %w: %v", path, ErrInvalidWAV, err)
	}
	if err := decoder.FwdToPCM(); err != nil {
		file.Close()
		return nil, fmt.Errorf("%s: failed to locate PCM data: %w", path, err)
	}
	if decoder.PCMChunk == nil {
		file.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidWAV)
	}

	channels := int(decoder.NumChans)
	bitDepth := int(decoder.BitDepth)
	if channels < 1 || bitDepth < 8 || bitDepth%8 != 0 {
		file.Close()
		return nil, fmt.Errorf("%s: %w: %d channels, %d bits", path, ErrInvalidWAV, channels, bitDepth)
	}

	size := int64(decoder.PCMChunk.Size)
	frameSize := int64(channels * bitDepth / 8)
	frames := size / frameSize
	if frames == 0 {
		file.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyAudio)
	}
	rate := int(decoder.SampleRate)

	info := Info{
		SampleRate: rate,
		Channels:   channels,
		BitDepth:   bitDepth,
		Frames:     frames,
	}
	if rate > 0 {
		info.Duration = time.Duration(float64(frames) / float64(rate) * float64(time.Second))
	}

	return &WAVSource{
		file: file,
		pcm:  io.LimitReader(decoder.PCMChunk.R, frames*frameSize),
		info: info,
	}, nil
}

// ReadInfo returns the header information of a WAV file.
func ReadInfo(path string) (Info, error) {
	src, err := OpenWAV(path)
	if err != nil {
		return Info{}, err
	}
	defer src.Close()
	return src.Info(), nil
}

func (s *WAVSource) Info() Info         { return s.info }
func (s *WAVSource) SampleRate() int    { return s.info.SampleRate }
func (s *WAVSource) SampleWidth() int   { return s.info.BitDepth / 8 }
func (s *WAVSource) Channels() int      { return s.info.Channels }
func (s *WAVSource) TotalFrames() int64 { return s.info.Frames }

// Duration returns the playing time of the PCM data.
func (s *WAVSource) Duration() time.Duration { return s.info.Duration }

// ReadFrames reads up to n frames. A short read at the end of the stream
// returns the remaining bytes; the call after that returns io.EOF.
func (s *WAVSource) ReadFrames(n int) ([]byte, error) {
	buf := make([]byte, n*s.Channels()*s.SampleWidth())
	read, err := io.ReadFull(s.pcm, buf)
	switch {
	case err == nil:
		return buf, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		return buf[:read], nil
	case errors.Is(err, io.EOF):
		return nil, io.EOF
	default:
		return nil, err
	}
}

// Skip discards n frames.
func (s *WAVSource) Skip(n int64) error {
	_, err := io.CopyN(io.Discard, s.pcm, n*int64(s.Channels()*s.SampleWidth()))
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Close closes the underlying file.
func (s *WAVSource) Close() error {
	return s.file.Close()
}
