package formatter

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// Spinner animates a one-line progress indicator on w until stopped.
type Spinner struct {
	w       io.Writer
	message string
	style   spinner.Spinner

	once sync.Once
	stop chan struct{}
	done chan struct{}
}

func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:       w,
		message: message,
		style:   spinner.Dot,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start draws frames in the background. Stop must follow.
func (s *Spinner) Start() {
	go s.loop()
}

func (s *Spinner) loop() {
	defer close(s.done)
	ticker := time.NewTicker(s.style.FPS)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.stop:
			fmt.Fprint(s.w, "\r\033[K")
			return
		case <-ticker.C:
			glyph := s.style.Frames[frame%len(s.style.Frames)]
			fmt.Fprintf(s.w, "\r  %s %s", StylePurple.Render(glyph), Dim(s.message))
		}
	}
}

// Stop clears the line and waits for the animation to end. It is safe to
// call more than once.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}

// StartSpinner starts a spinner on w and returns its Stop.
func StartSpinner(w io.Writer, message string) func() {
	s := NewSpinner(w, message)
	s.Start()
	return s.Stop
}
