package ai

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/guiyumin/vsub/internal/core/ai/transcriber"
	"github.com/guiyumin/vsub/internal/core/audio"
	"github.com/guiyumin/vsub/internal/core/config"
)

const testRate = 16000

// writeSpeechWAV writes 9s of mono audio: tone at 1-3s and 6-8s, silence
// elsewhere.
func writeSpeechWAV(t *testing.T, path string) {
	t.Helper()
	samples := make([]float32, 9*testRate)
	for i := range samples {
		sec := float64(i) / testRate
		if (sec >= 1 && sec < 3) || (sec >= 6 && sec < 8) {
			samples[i] = float32(0.5 * math.Sin(2*math.Pi*440*sec))
		}
	}
	require.NoError(t, audio.WriteWAV(path, samples, testRate))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.VAD.FrameWidth = 1600
	cfg.Audio.TempDir = t.TempDir()
	cfg.Concurrency = 2
	return cfg
}

type fakeTranscriber struct {
	texts map[string][]string          // by request label
	spans map[string][]transcriber.Span // by request label
	fail  map[string]bool
}

func (f *fakeTranscriber) Name() string { return "fake" }

func (f *fakeTranscriber) TranscribeTexts(_ context.Context, req transcriber.Request, _ int) ([]string, error) {
	if f.fail[req.Label] {
		return nil, errors.New("service unavailable")
	}
	return f.texts[req.Label], nil
}

func (f *fakeTranscriber) TranscribeSpans(_ context.Context, req transcriber.Request) ([]transcriber.Span, error) {
	if f.fail[req.Label] {
		return nil, errors.New("service unavailable")
	}
	return f.spans[req.Label], nil
}

type fakeTranslator struct{}

func (fakeTranslator) Name() string { return "fake" }

func (fakeTranslator) Translate(_ context.Context, texts []string, lang string) ([]string, error) {
	out := make([]string, len(texts))
	for i, s := range texts {
		out[i] = lang + ":" + s
	}
	return out, nil
}

type recordingObserver struct {
	mu      sync.Mutex
	started bool
	stages  []string
	done    int
	total   int
	err     error
	stopped bool
}

func (r *recordingObserver) Start() { r.started = true }

func (r *recordingObserver) SetStage(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, s)
}

func (r *recordingObserver) SetProgress(done, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = max(r.done, done)
	r.total = total
}

func (r *recordingObserver) Stop(err error) {
	r.stopped = true
	r.err = err
}

func helloWorld() *fakeTranscriber {
	return &fakeTranscriber{texts: map[string][]string{
		"chunk 1/2": {"hello"},
		"chunk 2/2": {"world"},
	}}
}

func TestProcessFileRegionTimestamps(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "talk.wav")
	writeSpeechWAV(t, input)

	obs := &recordingObserver{}
	p := newPipeline(testConfig(t), Options{Observe: func(string) Observer { return obs }}, helloWorld(), nil)

	res, err := p.ProcessFile(context.Background(), input, "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "talk.srt"), res.Output)
	require.Len(t, res.Regions, 2)
	require.Len(t, res.Groups, 2)
	require.InDelta(t, 4.0, res.SpeechDuration, 1e-6)
	require.Zero(t, res.FailedChunks)

	data, err := os.ReadFile(res.Output)
	require.NoError(t, err)
	require.Equal(t,
		"1\n00:00:01,000 --> 00:00:03,000\nhello\n\n2\n00:00:06,000 --> 00:00:08,000\nworld\n",
		string(data))

	require.True(t, obs.started)
	require.True(t, obs.stopped)
	require.NoError(t, obs.err)
	require.Equal(t, 2, obs.done)
	require.Equal(t, 2, obs.total)
	require.Contains(t, obs.stages, "transcribing")
}

func TestProcessFileModelTimestamps(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "talk.wav")
	writeSpeechWAV(t, input)

	cfg := testConfig(t)
	cfg.Transcription.Timestamps = config.TimestampsModel
	ft := &fakeTranscriber{spans: map[string][]transcriber.Span{
		"chunk 1/2": {{Start: 0.1, End: 1.0, Text: " first "}},
		"chunk 2/2": {{Start: 0, End: 0.5, Text: "second"}},
	}}
	p := newPipeline(cfg, Options{}, ft, nil)

	res, err := p.ProcessFile(context.Background(), input, filepath.Join(dir, "out", "talk.srt"))
	require.NoError(t, err)
	require.Len(t, res.Segments, 2)
	// Span times are moved by the group start, which sits on the 0.1s
	// analysis grid.
	require.InDelta(t, 1.1, res.Segments[0].Start, 1e-9)
	require.InDelta(t, 2.0, res.Segments[0].End, 1e-9)
	require.Equal(t, "first", res.Segments[0].Text)
	require.InDelta(t, 6.0, res.Segments[1].Start, 1e-9)
	require.InDelta(t, 6.5, res.Segments[1].End, 1e-9)
	require.Equal(t, res.Groups[1].Start, res.Segments[1].Start)
	require.FileExists(t, filepath.Join(dir, "out", "talk.srt"))
}

func TestProcessFileSkipsFailedChunks(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "talk.wav")
	writeSpeechWAV(t, input)

	ft := helloWorld()
	ft.fail = map[string]bool{"chunk 1/2": true}
	p := newPipeline(testConfig(t), Options{}, ft, nil)

	res, err := p.ProcessFile(context.Background(), input, "")
	require.NoError(t, err)
	require.Equal(t, 1, res.FailedChunks)
	require.Len(t, res.Segments, 1)
	require.Equal(t, "world", res.Segments[0].Text)

	ft.fail["chunk 2/2"] = true
	_, err = p.ProcessFile(context.Background(), input, "")
	require.Error(t, err)
}

func TestProcessFileNoSpeech(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "quiet.wav")
	require.NoError(t, audio.WriteWAV(input, make([]float32, 2*testRate), testRate))

	p := newPipeline(testConfig(t), Options{}, helloWorld(), nil)
	_, err := p.ProcessFile(context.Background(), input, "")
	require.ErrorIs(t, err, ErrNoSpeech)
	require.NoFileExists(t, filepath.Join(dir, "quiet.srt"))
}

func TestProcessFileRejectsUnsupportedInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(input, []byte("hi"), 0644))

	p := newPipeline(testConfig(t), Options{}, helloWorld(), nil)
	_, err := p.ProcessFile(context.Background(), input, "")
	require.ErrorIs(t, err, audio.ErrUnsupportedFormat)

	_, err = p.ProcessFile(context.Background(), filepath.Join(dir, "missing.wav"), "")
	require.Error(t, err)
}

func TestProcessFileBilingual(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "talk.wav")
	writeSpeechWAV(t, input)

	p := newPipeline(testConfig(t), Options{TargetLang: "fr", Bilingual: true}, helloWorld(), fakeTranslator{})
	res, err := p.ProcessFile(context.Background(), input, "")
	require.NoError(t, err)
	require.Equal(t, "<font color=\"#808080\">hello</font>\nfr:hello", res.Segments[0].Text)

	data, err := os.ReadFile(res.Output)
	require.NoError(t, err)
	require.Contains(t, string(data), "<font color=\"#808080\">world</font>\nfr:world\n")
}

func TestProcessFileFormats(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "talk.wav")
	writeSpeechWAV(t, input)

	cfg := testConfig(t)
	cfg.Subtitle.Format = config.FormatVTT
	p := newPipeline(cfg, Options{}, helloWorld(), nil)

	res, err := p.ProcessFile(context.Background(), input, "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "talk.vtt"), res.Output)
	data, err := os.ReadFile(res.Output)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "WEBVTT\n"))
	require.Contains(t, string(data), "00:00:01.000 --> 00:00:03.000")

	res, err = p.ProcessFile(context.Background(), input, filepath.Join(dir, "talk.md"))
	require.NoError(t, err)
	data, err = os.ReadFile(res.Output)
	require.NoError(t, err)
	require.Contains(t, string(data), "[00:06] world")
}

func TestManifestKeptWithTempFiles(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "talk.wav")
	writeSpeechWAV(t, input)

	cfg := testConfig(t)
	cfg.Audio.KeepTemp = true
	p := newPipeline(cfg, Options{}, helloWorld(), nil)

	_, err := p.ProcessFile(context.Background(), input, "")
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(cfg.Audio.TempDir, "vsub-*", "chunks"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	m, err := LoadManifest(matches[0])
	require.NoError(t, err)
	require.Equal(t, "vad", m.Strategy)
	require.Len(t, m.RunID, 36)
	require.True(t, strings.HasPrefix(m.SourceHash, "sha256:"))
	require.InDelta(t, 9.0, m.TotalDurSeconds, 1e-9)
	require.Len(t, m.Chunks, 2)
	require.Equal(t, 2, m.Count(ChunkTranscribed))
	require.Equal(t, 1, m.Chunks[0].Regions)
	require.FileExists(t, m.Chunks[1].FilePath)

	info, err := audio.ReadInfo(m.Chunks[0].FilePath)
	require.NoError(t, err)
	// Chunk bounds are truncated to whole milliseconds.
	require.InDelta(t, 2*testRate, info.Frames, 32)
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input, dir, format, want string
	}{
		{"/media/talk.mp3", "", "", "/media/talk.srt"},
		{"/media/talk.mp3", "/subs", "srt", "/subs/talk.srt"},
		{"/media/talk.final.mkv", "", "vtt", "/media/talk.final.vtt"},
		{"clip.wav", "", "md", "clip.md"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, filepath.FromSlash(tt.want), OutputPath(filepath.FromSlash(tt.input), filepath.FromSlash(tt.dir), tt.format))
		})
	}

	require.Equal(t, config.FormatVTT, formatFor("a.VTT", config.FormatSRT))
	require.Equal(t, config.FormatSRT, formatFor("a.srt", config.FormatVTT))
	require.Equal(t, config.FormatMarkdown, formatFor("a.txt", config.FormatMarkdown))
}

func TestExpandInputsAndBatch(t *testing.T) {
	dir := t.TempDir()
	writeSpeechWAV(t, filepath.Join(dir, "b.wav"))
	writeSpeechWAV(t, filepath.Join(dir, "a.wav"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0755))

	files, err := ExpandInputs([]string{dir})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "a.wav"), filepath.Join(dir, "b.wav")}, files)

	_, err = ExpandInputs([]string{filepath.Join(dir, "missing")})
	require.Error(t, err)

	quiet := filepath.Join(dir, "quiet.wav")
	require.NoError(t, audio.WriteWAV(quiet, make([]float32, testRate), testRate))

	outDir := filepath.Join(dir, "subs")
	p := newPipeline(testConfig(t), Options{}, helloWorld(), nil)
	res, err := p.ProcessBatch(context.Background(), append(files, quiet), outDir)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(outDir, "a.srt"), filepath.Join(outDir, "b.srt")}, res.Succeeded)
	require.Equal(t, []string{quiet}, res.Failed)
}

func TestWatchProcessesNewFiles(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "subs")
	writeSpeechWAV(t, filepath.Join(dir, "first.wav"))

	cfg := testConfig(t)
	cfg.Watch.IntervalSeconds = 1
	p := newPipeline(cfg, Options{}, helloWorld(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- p.Watch(ctx, dir, outDir) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(outDir, "first.srt"))
		return err == nil
	}, 10*time.Second, 50*time.Millisecond)

	part := filepath.Join(dir, "second.part")
	writeSpeechWAV(t, part)
	require.NoError(t, os.Rename(part, filepath.Join(dir, "second.wav")))
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(outDir, "second.srt"))
		return err == nil
	}, 10*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestAnalyze(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "talk.wav")
	writeSpeechWAV(t, input)

	cfg := testConfig(t)
	cfg.VAD.MaxGap = 5
	a, err := Analyze(context.Background(), cfg, input)
	require.NoError(t, err)
	require.InDelta(t, 9.0, a.Duration, 1e-9)
	require.Len(t, a.Regions, 2)
	require.Len(t, a.Groups, 1)
	require.Len(t, a.Groups[0].Regions, 2)
	require.InDelta(t, 4.0, a.SpeechDuration(), 1e-6)

	_, err = Analyze(context.Background(), cfg, filepath.Join(dir, "missing.wav"))
	require.Error(t, err)
}
