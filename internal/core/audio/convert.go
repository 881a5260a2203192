package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"codeberg.org/gruf/go-ffmpreg/ffmpreg"
	"codeberg.org/gruf/go-ffmpreg/wasm"
	"github.com/hajimehoshi/go-mp3"
	"github.com/mewkiz/flac"
	"github.com/tetratelabs/wazero"

	"github.com/guiyumin/vsub/internal/logging"
)

// Convert decodes input into a 16-bit PCM WAV at output with the given
// sample rate and channel count.
//
// MP3 and FLAC are decoded in pure Go when a mono target is requested. WAV
// files already in the target layout are copied as is. Everything else goes
// through the embedded ffmpeg build.
func Convert(ctx context.Context, input, output string, sampleRate, channels int) error {
	log := logging.WithFile("audio", input)

	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("audio file not found: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(input))
	if !SupportedExtensions[ext] {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	if ext == ".wav" {
		if info, err := ReadInfo(input); err == nil &&
			info.SampleRate == sampleRate && info.Channels == channels && info.BitDepth == 16 {
			log.Debug().Msg("input already in target layout, copying")
			return copyFile(input, output)
		}
	}

	if channels == 1 && (ext == ".mp3" || ext == ".flac") {
		var (
			samples []float32
			srcRate int
			err     error
		)
		if ext == ".mp3" {
			samples, srcRate, err = readMP3Samples(input)
		} else {
			samples, srcRate, err = readFLACSamples(input)
		}
		if err == nil {
			log.Debug().Int("src_rate", srcRate).Int("samples", len(samples)).Msg("decoded in process")
			return WriteWAV(output, Resample(samples, srcRate, sampleRate), sampleRate)
		}
		log.Debug().Err(err).Msg("pure Go decode failed, falling back to ffmpeg")
	}

	log.Debug().Msg("converting with embedded ffmpeg")
	return convertWithFFmpeg(ctx, input, output, sampleRate, channels)
}

// readMP3Samples decodes an MP3 file into mono float32 samples.
func readMP3Samples(filePath string) ([]float32, int, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	decoder, err := mp3.NewDecoder(file)
	if err != nil {
		return nil, 0, err
	}

	sampleRate := decoder.SampleRate()
	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, 0, err
	}

	// go-mp3 always yields interleaved 16-bit stereo
	numSamples := len(data) / 4
	samples := make([]float32, numSamples)

	const maxInt16 = 32768.0
	for i := 0; i < numSamples; i++ {
		left := int16(data[i*4]) | int16(data[i*4+1])<<8
		right := int16(data[i*4+2]) | int16(data[i*4+3])<<8
		mono := (int32(left) + int32(right)) / 2
		samples[i] = float32(mono) / maxInt16
	}

	return samples, sampleRate, nil
}

// readFLACSamples decodes a FLAC file into mono float32 samples.
func readFLACSamples(filePath string) ([]float32, int, error) {
	stream, err := flac.Open(filePath)
	if err != nil {
		return nil, 0, err
	}
	defer stream.Close()

	sampleRate := int(stream.Info.SampleRate)
	nChannels := int(stream.Info.NChannels)
	maxVal := float32(int64(1) << (stream.Info.BitsPerSample - 1))

	var samples []float32
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}

		n := len(frame.Subframes[0].Samples)
		for i := 0; i < n; i++ {
			var mono int64
			for ch := 0; ch < nChannels; ch++ {
				mono += int64(frame.Subframes[ch].Samples[i])
			}
			mono /= int64(nChannels)
			samples = append(samples, float32(mono)/maxVal)
		}
	}

	return samples, sampleRate, nil
}

// convertWithFFmpeg runs the embedded ffmpeg WASM build. Only the input and
// output directories are visible to it.
func convertWithFFmpeg(ctx context.Context, inputPath, outputPath string, sampleRate, channels int) error {
	absInput, err := filepath.Abs(inputPath)
	if err != nil {
		return err
	}
	absOutput, err := filepath.Abs(outputPath)
	if err != nil {
		return err
	}

	inputDir := filepath.Dir(absInput)
	outputDir := filepath.Dir(absOutput)

	args := wasm.Args{
		Stderr: io.Discard,
		Stdout: io.Discard,
		Args: []string{
			"-i", absInput,
			"-vn",
			"-ar", strconv.Itoa(sampleRate),
			"-ac", strconv.Itoa(channels),
			"-c:a", "pcm_s16le",
			"-y",
			absOutput,
		},
		Config: func(cfg wazero.ModuleConfig) wazero.ModuleConfig {
			return cfg.WithFSConfig(wazero.NewFSConfig().
				WithDirMount(inputDir, inputDir).
				WithDirMount(outputDir, outputDir))
		},
	}

	rc, err := ffmpreg.Ffmpeg(ctx, args)
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	if rc != 0 {
		return fmt.Errorf("ffmpeg exited with code %d", rc)
	}

	return nil
}

// Resample converts samples from srcRate to dstRate with linear
// interpolation.
func Resample(samples []float32, srcRate, dstRate int) []float32 {
	if srcRate == dstRate || srcRate <= 0 || dstRate <= 0 {
		return samples
	}

	ratio := float64(srcRate) / float64(dstRate)
	newLen := int(float64(len(samples)) / ratio)
	resampled := make([]float32, newLen)

	for i := 0; i < newLen; i++ {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := float32(srcPos - float64(srcIdx))

		if srcIdx+1 < len(samples) {
			resampled[i] = samples[srcIdx]*(1-frac) + samples[srcIdx+1]*frac
		} else if srcIdx < len(samples) {
			resampled[i] = samples[srcIdx]
		}
	}

	return resampled
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
