package progress

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/guiyumin/vsub/internal/logging"
)

// Spinner reports the progress of one job. On a terminal it draws a
// bubbletea view on stderr; otherwise it emits a log line per stage.
type Spinner struct {
	label  string
	detail string
	tty    bool
	out    io.Writer
	state  *state
	log    zerolog.Logger

	program *tea.Program
	exited  chan struct{}
}

// New creates a Spinner for label. detail is shown under the header, e.g.
// the model name.
func New(label, detail string) *Spinner {
	fd := os.Stderr.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	return newSpinner(label, detail, tty, os.Stderr)
}

func newSpinner(label, detail string, tty bool, out io.Writer) *Spinner {
	return &Spinner{
		label:  label,
		detail: detail,
		tty:    tty,
		out:    out,
		state:  newState(),
		log:    logging.WithFile("progress", label),
	}
}

// Start begins rendering in the background.
func (s *Spinner) Start() {
	if !s.tty {
		s.log.Info().Msg("started")
		return
	}

	width := 0
	if f, ok := s.out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil {
			width = w
		}
	}

	s.exited = make(chan struct{})
	s.program = tea.NewProgram(
		newModel(s.label, s.detail, width, s.state),
		tea.WithOutput(s.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	go func() {
		defer close(s.exited)
		if _, err := s.program.Run(); err != nil {
			s.log.Debug().Err(err).Msg("progress view stopped")
		}
	}()
}

// SetStage records the current stage.
func (s *Spinner) SetStage(stage string) {
	s.state.setStage(stage)
	if !s.tty {
		s.log.Info().Str("stage", stage).Msg(stageText(stage))
	}
}

// SetProgress records how many of total units are finished.
func (s *Spinner) SetProgress(done, total int) {
	s.state.setProgress(done, total)
	if !s.tty {
		s.log.Debug().Int("done", done).Int("total", total).Msg("progress")
	}
}

// Stop marks the job finished and waits for the view to draw its last
// frame.
func (s *Spinner) Stop(err error) {
	s.state.finish(err)

	if s.program != nil {
		<-s.exited
		return
	}

	snap := s.state.get()
	if err != nil {
		s.log.Error().Err(err).Str("elapsed", formatElapsed(snap.elapsed)).Msg("failed")
		return
	}
	s.log.Info().Str("elapsed", formatElapsed(snap.elapsed)).Msg("done")
}
