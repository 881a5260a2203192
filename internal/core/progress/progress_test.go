package progress

import (
	"bytes"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestFormatElapsed(t *testing.T) {
	require.Equal(t, "0s", formatElapsed(200*time.Millisecond))
	require.Equal(t, "42s", formatElapsed(42*time.Second))
	require.Equal(t, "3m07s", formatElapsed(3*time.Minute+7*time.Second))
}

func TestModelQuitsWhenFinished(t *testing.T) {
	st := newState()
	m := newModel("talk.mp3", "whisper-1", 0, st)

	st.setStage(StageTranscribing)
	st.setProgress(1, 4)
	view := m.View()
	require.Contains(t, view, "Transcribing speech...")
	require.Contains(t, view, "talk.mp3")
	require.Contains(t, view, "1/4")

	_, cmd := m.Update(tickMsg(time.Now()))
	require.NotNil(t, cmd)

	st.finish(nil)
	_, cmd = m.Update(tickMsg(time.Now()))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
	require.Contains(t, m.View(), "✓")

	st2 := newState()
	st2.finish(errors.New("boom"))
	require.Contains(t, newModel("x", "", 0, st2).View(), "boom")
}

func TestFitLabel(t *testing.T) {
	m := newModel("a-really-long-recording-name-from-the-archive.mp3", "", 45, newState())
	got := m.fitLabel()
	require.LessOrEqual(t, len([]rune(got)), 15)
	require.True(t, bytes.HasSuffix([]byte(got), []byte("…")))
}

func TestSpinnerWithoutTerminal(t *testing.T) {
	var out bytes.Buffer
	s := newSpinner("clip.wav", "", false, &out)

	s.Start()
	s.SetStage(StageDetecting)
	s.SetProgress(2, 2)
	s.Stop(nil)

	snap := s.state.get()
	require.True(t, snap.finished)
	require.Equal(t, StageDetecting, snap.stage)
	require.Equal(t, 1.0, snap.percent())
	require.Nil(t, s.program)
}
