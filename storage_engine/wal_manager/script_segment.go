package wal_manager

import (
	"bufio"
	"bytes"
	"os"

	"SharpHSQL/dberror"
)

/*
Low level handling of the script file.

openScriptFile opens the file for appending and takes the exclusive lock.
A last line left without its newline by a crash is cut off first, so new
lines start on a line of their own. Nothing written is durable before sync; flush only hands buffered lines to
the operating system.
*/

func openScriptFile(path string) (*os.File, int64, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, 0, dberror.IO(err, "open", path)
	}
	if err := lockFile(file); err != nil {
		file.Close()
		return nil, 0, dberror.AlreadyInUse(path, err)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, dberror.IO(err, "stat", path)
	}
	size, err := dropPartialLine(file, stat.Size())
	if err != nil {
		file.Close()
		return nil, 0, dberror.IO(err, "truncate", path)
	}
	return file, size, nil
}

func dropPartialLine(f *os.File, size int64) (int64, error) {
	buf := make([]byte, 4096)
	end := size
	for end > 0 {
		n := min(int64(len(buf)), end)
		if _, err := f.ReadAt(buf[:n], end-n); err != nil {
			return size, err
		}
		if i := bytes.LastIndexByte(buf[:n], '\n'); i >= 0 {
			end = end - n + int64(i) + 1
			break
		}
		end -= n
	}
	if end == size {
		return size, nil
	}
	return end, f.Truncate(end)
}

// append writes one encoded line; the caller holds w.mu.
func (w *ScriptWriter) append(line string) error {
	n, err := w.buf.WriteString(line)
	w.size += int64(n)
	if err != nil {
		return dberror.IO(err, "write", w.path)
	}
	if !w.writeDelay {
		return w.flushLocked()
	}
	return nil
}

func (w *ScriptWriter) flushLocked() error {
	if w.buf == nil {
		return nil
	}
	if err := w.buf.Flush(); err != nil {
		return dberror.IO(err, "flush", w.path)
	}
	return nil
}

func (w *ScriptWriter) syncLocked() error {
	if err := w.flushLocked(); err != nil {
		return err
	}
	if err := w.file.Sync(); err != nil {
		return dberror.IO(err, "sync", w.path)
	}
	return nil
}

func newBuffer(f *os.File) *bufio.Writer {
	return bufio.NewWriterSize(f, bufferSize)
}

// InUse reports whether another holder has the script at path locked. A
// missing script is not in use.
func InUse(path string) (bool, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, dberror.IO(err, "open", path)
	}
	defer f.Close()

	if err := lockFile(f); err != nil {
		return true, nil
	}
	_ = unlockFile(f)
	return false, nil
}
