package style

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var frames = [...]string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧"}

// Spinner animates a status line on a TTY. On other writers it prints each
// distinct message once, so piped output reads as a plain transition log.
type Spinner struct {
	w     io.Writer
	isTTY bool
	done  chan struct{}
	wg    sync.WaitGroup

	mu   sync.Mutex
	msg  string
	once sync.Once
}

// StartSpinner begins displaying msg. Call Stop when the operation completes.
func StartSpinner(w io.Writer, msg string) *Spinner {
	s := &Spinner{w: w, done: make(chan struct{})}
	if f, ok := w.(*os.File); ok {
		s.isTTY = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	s.SetMessage(msg)
	if !s.isTTY {
		return s
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			s.mu.Lock()
			fmt.Fprintf(s.w, "\r\033[K%s %s", Dim.Render(frames[i%len(frames)]), s.msg)
			s.mu.Unlock()
			select {
			case <-s.done:
				fmt.Fprintf(s.w, "\r\033[K")
				return
			case <-ticker.C:
			}
		}
	}()
	return s
}

// SetMessage replaces the spinner text. Non-TTY writers get a new line only
// when the text changes.
func (s *Spinner) SetMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg == s.msg {
		return
	}
	s.msg = msg
	if !s.isTTY {
		fmt.Fprintf(s.w, "%s\n", msg)
	}
}

// Stop ends the animation and clears the line. Safe to call twice.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
}
