package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mattn/go-isatty"
)

// spinnerFrames is a dot running a loop of track.
var spinnerFrames = []string{"⠁", "⠂", "⠄", "⡀", "⢀", "⠠", "⠐", "⠈"}

const spinnerInterval = 80 * time.Millisecond

// Spinner shows a progress line on stderr while a step runs. It draws only
// when the output is a terminal; otherwise it stays silent so piped output
// and logs are not littered with carriage returns.
type Spinner struct {
	message string
	out     io.Writer
	live    bool
	start   time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	once     sync.Once
	byCaller atomic.Bool
	stopped  chan struct{}

	mu    sync.Mutex
	width int // length of the last line drawn
}

// newSpinner creates a spinner that runs until stopped.
func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext creates a spinner that also stops when ctx ends.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	return newSpinnerTo(ctx, os.Stderr, isatty.IsTerminal(os.Stderr.Fd()), message)
}

func newSpinnerTo(ctx context.Context, out io.Writer, live bool, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		out:     out,
		live:    live,
		ctx:     spinnerCtx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// Start begins the animation. Start must be called at most once.
func (s *Spinner) Start() {
	s.start = time.Now()
	go func() {
		defer close(s.stopped)
		if !s.live {
			<-s.ctx.Done()
			return
		}

		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

func (s *Spinner) draw(frame string) {
	elapsed := time.Since(s.start).Round(100 * time.Millisecond)
	line := fmt.Sprintf("%s %s %s", frame, s.message, elapsed)

	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s %s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message), StyleDim.Render(elapsed.String()))
	s.width = len([]rune(line))
}

// Stop ends the animation and clears the line. It is safe to call more than
// once and after the context has ended.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.byCaller.Store(s.ctx.Err() == nil)
		s.cancel()
		<-s.stopped
		s.clearLine()
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width))
	s.width = 0
}

// StopWithError stops the spinner and shows an error message, or a
// cancellation notice if the context ended first.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	if s.Cancelled() {
		printWarning("Cancelled")
		return
	}
	printError("%s", message)
}

// Cancelled reports whether the spinner's parent context ended, as opposed
// to the spinner being stopped by its caller.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil && !s.byCaller.Load()
}
