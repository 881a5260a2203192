package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/guiyumin/vsub/internal/core/config"
)

func TestApplyFlagsOnlyOverridesChangedFlags(t *testing.T) {
	t.Cleanup(func() { flags = pipelineFlags{} })

	cmd := &cobra.Command{Use: "test"}
	bindPipelineFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{
		"--format", "vtt",
		"-j", "8",
		"--overlap", "0.25",
		"-l", "ja",
		"-v",
	}))

	cfg := config.DefaultConfig()
	cfg.OutputDir = "/from/config"
	applyFlags(cmd, cfg)

	require.Equal(t, config.FormatVTT, cfg.Subtitle.Format)
	require.Equal(t, 8, cfg.Concurrency)
	require.Equal(t, 0.25, cfg.Subtitle.Overlap)
	require.Equal(t, "ja", cfg.Transcription.Language)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "/from/config", cfg.OutputDir)
	require.Equal(t, config.TimestampsVAD, cfg.Transcription.Timestamps)
	require.False(t, cfg.Audio.KeepTemp)
}

func TestBilingualRequiresTranslate(t *testing.T) {
	t.Cleanup(func() { flags = pipelineFlags{} })

	flags.bilingual = true
	_, err := newPipeline(config.DefaultConfig())
	require.ErrorContains(t, err, "--bilingual requires --translate")
}

func TestKeyListCoversEveryKey(t *testing.T) {
	list := keyList()
	for _, k := range config.Keys() {
		require.Contains(t, list, "  "+k+"\n")
	}
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"watch", "vad", "config", "init", "version"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		require.Equal(t, name, cmd.Name())
	}
}
