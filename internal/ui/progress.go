package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Spinner represents an animated spinner for long operations
type Spinner struct {
	frames  []string
	current int
	message string
	stop    chan bool
	stopped bool
	mu      sync.Mutex
}

// NewSpinner creates a new spinner
func NewSpinner(message string) *Spinner {
	return &Spinner{
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		current: 0,
		message: message,
		stop:    make(chan bool),
	}
}

// Start begins the spinner animation
func (s *Spinner) Start() {
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.mu.Lock()
				if !s.stopped {
					fmt.Printf("\r%s %s %s",
						ColorProgress(s.frames[s.current]),
						s.message,
						strings.Repeat(" ", 20), // Clear extra characters
					)
					s.current = (s.current + 1) % len(s.frames)
				}
				s.mu.Unlock()
			}
		}
	}()
}

// Stop stops the spinner
func (s *Spinner) Stop(success bool, message string) {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	close(s.stop)

	// Clear line and print final status
	fmt.Print("\r\033[K")

	if success {
		fmt.Printf("%s %s\n", ColorSuccess("✓"), message)
	} else {
		fmt.Printf("%s %s\n", ColorError("✗"), message)
	}
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", minutes, seconds)
}
