package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV writes mono float32 samples in [-1, 1] as 16-bit PCM.
func WriteWAV(path string, samples []float32, sampleRate int) error {
	data := make([]int, len(samples))
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		data[i] = int(s * math.MaxInt16)
	}
	return writeInts(path, data, sampleRate, 16, 1)
}

func writeInts(path string, data []int, sampleRate, bitDepth, channels int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	encoder := wav.NewEncoder(file, sampleRate, bitDepth, channels, 1)
	buf := &goaudio.IntBuffer{
		Data:           data,
		Format:         &goaudio.Format{SampleRate: sampleRate, NumChannels: channels},
		SourceBitDepth: bitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		encoder.Close()
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := encoder.Close(); err != nil {
		file.Close()
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return file.Close()
}

// ExtractChunk copies the frames between start and end seconds of the WAV
// at src into a new WAV at dst with the same layout. Both bounds are
// truncated to whole milliseconds.
func ExtractChunk(src, dst string, start, end float64) error {
	in, err := OpenWAV(src)
	if err != nil {
		return err
	}
	defer in.Close()

	rate := int64(in.SampleRate())
	startMs := int64(math.Max(start, 0) * 1000)
	endMs := int64(end * 1000)
	first := startMs * rate / 1000
	last := min(endMs*rate/1000, in.TotalFrames())
	if last <= first {
		return fmt.Errorf("empty chunk %.3f-%.3f", start, end)
	}

	if err := in.Skip(first); err != nil {
		return fmt.Errorf("failed to seek to %.3f: %w", start, err)
	}
	raw, err := in.ReadFrames(int(last - first))
	if err != nil {
		return fmt.Errorf("failed to read chunk: %w", err)
	}

	data, err := decodeInts(raw, in.SampleWidth())
	if err != nil {
		return err
	}
	return writeInts(dst, data, in.SampleRate(), in.SampleWidth()*8, in.Channels())
}

// decodeInts expands raw little-endian PCM into the integer form the wav
// encoder expects.
func decodeInts(raw []byte, width int) ([]int, error) {
	switch width {
	case 1:
		out := make([]int, len(raw))
		for i, b := range raw {
			out[i] = int(b)
		}
		return out, nil
	case 2:
		out := make([]int, len(raw)/2)
		for i := range out {
			out[i] = int(int16(binary.LittleEndian.Uint16(raw[i*2:])))
		}
		return out, nil
	case 3:
		out := make([]int, len(raw)/3)
		for i := range out {
			v := int32(raw[i*3]) | int32(raw[i*3+1])<<8 | int32(raw[i*3+2])<<16
			out[i] = int(v<<8) >> 8
		}
		return out, nil
	case 4:
		out := make([]int, len(raw)/4)
		for i := range out {
			out[i] = int(int32(binary.LittleEndian.Uint32(raw[i*4:])))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported sample width %d", width)
	}
}
