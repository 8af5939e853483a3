package wal_manager

import (
	"bufio"
	"log/slog"
	"os"
	"sync"
	"time"
)

const (
	// DefaultWriteDelay is how often a delayed script is flushed.
	DefaultWriteDelay = time.Second
	bufferSize        = 64 * 1024
)

// ScriptWriter appends statements to the script of a database. The file
// is held under an exclusive lock for as long as it is open.
type ScriptWriter struct {
	path string
	file *os.File
	buf  *bufio.Writer
	size int64

	// lastSession is the session of the last line written; a line from
	// another session gets a channel marker.
	lastSession int

	writeDelay bool
	stop       chan struct{}
	wg         sync.WaitGroup

	mu  sync.Mutex
	log *slog.Logger
}

// Options configure a ScriptWriter.
type Options struct {
	// WriteDelay buffers lines and flushes them every Interval instead of
	// after each line.
	WriteDelay bool
	Interval   time.Duration
}

// Line is one statement read back from a script.
type Line struct {
	Number    int
	SessionID int
	SQL       string
}
