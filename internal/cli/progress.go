package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Spinner provides an animated spinner for indeterminate operations.
// In non-TTY mode it degrades to a single "message..." line.
type Spinner struct {
	message string
	writer  io.Writer
	active  bool
	done    chan struct{}
	mu      sync.Mutex
	frames  []string
	current int
}

// SpinnerFrames are the animation frames for the spinner.
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewSpinner creates a new spinner with the given message.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		writer:  os.Stderr,
		frames:  SpinnerFrames,
	}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	if !EnableColors() {
		fmt.Fprintf(s.writer, "%s...\n", s.message)
		return
	}

	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.spin()
}

func (s *Spinner) spin() {
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			frame := s.frames[s.current%len(s.frames)]
			s.current++
			fmt.Fprintf(s.writer, "\r%s %s", Highlight(frame), s.message)
			s.mu.Unlock()
		}
	}
}

// Stop ends the spinner, printing a final status line.
func (s *Spinner) Stop(success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !EnableColors() {
		return
	}
	if !s.active {
		return
	}
	s.active = false
	close(s.done)

	if success {
		fmt.Fprintf(s.writer, "\r%s %s\n", Done("✓"), s.message)
	} else {
		fmt.Fprintf(s.writer, "\r%s %s\n", Failed("✗"), s.message)
	}
}

// Steps prints numbered progress lines for a fixed sequence of steps, in the
// style "[2/5] Applying blog.0002_add_slug".
type Steps struct {
	total   int
	current int
	writer  io.Writer
}

// NewSteps creates a step printer for the given total.
func NewSteps(total int) *Steps {
	return &Steps{total: total, writer: os.Stdout}
}

// SetWriter redirects output, for tests.
func (s *Steps) SetWriter(w io.Writer) {
	s.writer = w
}

// Step prints the next step line.
func (s *Steps) Step(message string) {
	s.current++
	counter := fmt.Sprintf("[%d/%d]", s.current, s.total)
	fmt.Fprintf(s.writer, "%s %s\n", Highlight(counter), message)
}

// Done prints a completion line with the elapsed duration.
func (s *Steps) Done(message string, elapsed time.Duration) {
	fmt.Fprintf(s.writer, "%s %s %s\n", Done("✓"), message, Dim(elapsed.Round(time.Millisecond).String()))
}
