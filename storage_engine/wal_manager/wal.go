package wal_manager

import (
	"time"

	"SharpHSQL/dberror"
	"SharpHSQL/logging"
)

// Script file
//
//	────────────────────────────────────────────
//	| statement \n | /*C3*/statement \n | ...   |
//	────────────────────────────────────────────
//
// One statement per line. A line written for a different session than the
// line before it starts with the channel marker /*C<session>*/; lines without
// a marker belong to the session of the last marker, session 0 at the start
// of the file.

// OpenScript opens the script at path for appending, creating it if needed.
func OpenScript(path string, opts Options) (*ScriptWriter, error) {
	file, size, err := openScriptFile(path)
	if err != nil {
		return nil, err
	}

	w := &ScriptWriter{
		path:       path,
		file:       file,
		buf:        newBuffer(file),
		size:       size,
		writeDelay: opts.WriteDelay,
		log:        logging.WithComponent("script").With("path", path),
	}
	if size > 0 {
		// unknown session for the lines already there
		w.lastSession = -1
	}
	if w.writeDelay {
		interval := opts.Interval
		if interval <= 0 {
			interval = DefaultWriteDelay
		}
		w.startFlusher(interval)
	}
	w.log.Debug("script opened", "size", size, "write_delay", w.writeDelay)
	return w, nil
}

// Write appends one statement on behalf of a session.
func (w *ScriptWriter) Write(sessionID int, sql string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return dberror.Invalid("script %s is closed", w.path)
	}
	line := EncodeLine(sessionID, sql, sessionID != w.lastSession)
	w.lastSession = sessionID
	return w.append(line)
}

// Flush hands buffered lines to the operating system.
func (w *ScriptWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

// Sync flushes and fsyncs the script.
func (w *ScriptWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	return w.syncLocked()
}

// Size is the length of the script including buffered lines.
func (w *ScriptWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

func (w *ScriptWriter) Path() string { return w.path }

// SetWriteDelay switches between buffered and line-by-line flushing.
func (w *ScriptWriter) SetWriteDelay(on bool, interval time.Duration) error {
	w.stopFlusher()

	w.mu.Lock()
	w.writeDelay = on
	err := w.flushLocked()
	w.mu.Unlock()

	if on {
		if interval <= 0 {
			interval = DefaultWriteDelay
		}
		w.startFlusher(interval)
	}
	return err
}

// Close stops the flusher, syncs and closes the script, releasing the lock.
func (w *ScriptWriter) Close() error {
	w.stopFlusher()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.syncLocked()
	_ = unlockFile(w.file)
	if cerr := w.file.Close(); err == nil && cerr != nil {
		err = dberror.IO(cerr, "close", w.path)
	}
	w.file = nil
	w.buf = nil
	return err
}

// Abandon closes the script without flushing buffered lines, as a crash
// would.
func (w *ScriptWriter) Abandon() error {
	w.stopFlusher()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	_ = unlockFile(w.file)
	err := w.file.Close()
	w.file = nil
	w.buf = nil
	return err
}

// startFlusher runs the write-delay flusher. It checks for a stop request
// once per tick, so a line is never cut short.
func (w *ScriptWriter) startFlusher(interval time.Duration) {
	stop := make(chan struct{})
	w.stop = stop
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := w.Flush(); err != nil {
					w.log.Warn("delayed script flush failed", "error", err)
				}
			}
		}
	}()
}

func (w *ScriptWriter) stopFlusher() {
	if w.stop == nil {
		return
	}
	close(w.stop)
	w.wg.Wait()
	w.stop = nil
}
