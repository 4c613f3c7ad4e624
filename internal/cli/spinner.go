package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/sugiyama/pkg/observability"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner animates a status line on w while a layout runs. Registered as
// pipeline hooks it shows the phase that started last; nested graphs run
// their phases concurrently, so that is only an approximation of progress.
type spinner struct {
	observability.NoopPipelineHooks

	w        io.Writer
	message  string
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	stopped  chan struct{}

	mu    sync.Mutex
	phase string
	width int
}

// newSpinner creates a spinner that stops by itself when ctx is done.
func newSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &spinner{
		w:        w,
		message:  message,
		interval: spinnerInterval,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// OnPhaseStart records the running phase for the next frame.
func (s *spinner) OnPhaseStart(_ context.Context, phase string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = phase
}

// Start begins the animation.
func (s *spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				s.frame(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

func (s *spinner) frame(f string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text := s.message
	if s.phase != "" {
		text += " (" + s.phase + ")"
	}
	line := styleIconSpinner.Render(f) + " " + StyleDim.Render(text)
	// Pad over the rest of a longer previous frame.
	pad := max(0, s.width-len(text))
	fmt.Fprintf(s.w, "\r%s%s", line, strings.Repeat(" ", pad))
	s.width = len(text)
}

// Stop ends the animation and clears the line. It must follow Start.
func (s *spinner) Stop() {
	s.cancel()
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	<-s.stopped
	s.clearLine()
}

func (s *spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", max(s.width, len(s.message))+2))
}

// Cancelled reports whether the spinner's context is done. Stop cancels it
// as well.
func (s *spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}
