package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// historySize bounds the in-memory log kept for inspection.
const historySize = 256

// Entry is one logged line.
type Entry struct {
	Time     time.Time
	Category string
	Message  string
}

var (
	file    *os.File
	out     io.Writer
	mu      sync.Mutex
	enabled bool

	history []Entry

	samplers = make(map[string]*rate.Sometimes)
)

// Enable starts debug logging to ~/.config/go-haptics/debug.log
func Enable() error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}

	homeDir, _ := os.UserHomeDir()
	dir := filepath.Join(homeDir, ".config", "go-haptics")
	os.MkdirAll(dir, 0755)

	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	file = f
	out = f
	enabled = true

	// Write directly (can't call Log - we hold the mutex)
	writeLine(time.Now(), "debug", "=== Debug logging started ===")

	return nil
}

// SetOutput sends log lines to w instead of the debug file.
// A nil writer turns output off; history is kept either way.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	enabled = w != nil
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	out = nil
	enabled = false
}

// Log writes a message to the debug log and records it in the history.
func Log(category, format string, args ...any) {
	now := time.Now()
	msg := fmt.Sprintf(format, args...)

	mu.Lock()
	defer mu.Unlock()

	history = append(history, Entry{Time: now, Category: category, Message: msg})
	if len(history) > historySize {
		history = history[len(history)-historySize:]
	}

	if !enabled || out == nil {
		return
	}
	writeLine(now, category, msg)
}

func writeLine(ts time.Time, category, msg string) {
	fmt.Fprintf(out, "[%s] %-10s %s\n", ts.Format("15:04:05.000"), category, msg)
	if file != nil && out == file {
		file.Sync() // flush immediately so we see logs even on crash
	}
}

// History returns a copy of the most recent log entries, oldest first.
func History() []Entry {
	mu.Lock()
	defer mu.Unlock()
	h := make([]Entry, len(history))
	copy(h, history)
	return h
}

// ClearHistory drops the in-memory history.
func ClearHistory() {
	mu.Lock()
	defer mu.Unlock()
	history = nil
}

// LogEvery logs only the first of every n calls with the same category and
// format (use for high-frequency events like individual pulses).
func LogEvery(n int, category, format string, args ...any) {
	key := category + format

	mu.Lock()
	s, ok := samplers[key]
	if !ok {
		s = &rate.Sometimes{Every: n}
		samplers[key] = s
	}
	mu.Unlock()

	s.Do(func() {
		Log(category, format+" (every %d)", append(args, n)...)
	})
}
