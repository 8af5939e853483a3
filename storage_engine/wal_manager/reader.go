package wal_manager

import (
	"bufio"
	"io"
	"os"
	"strings"

	"SharpHSQL/dberror"
	"SharpHSQL/logging"

	"github.com/cockroachdb/errors"
)

// ReadScript calls fn for every statement of the script at path, with the
// session each belongs to. A missing script reads as empty. A last line
// without its newline was cut short by a crash and is skipped.
func ReadScript(path string, fn func(Line) error) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return dberror.IO(err, "open", path)
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, bufferSize)
	session := 0
	for n := 1; ; n++ {
		text, err := r.ReadString('\n')
		if err == io.EOF {
			if text != "" {
				logging.WithComponent("script").Warn("skipping incomplete last line",
					"path", path, "line", n)
			}
			return nil
		}
		if err != nil {
			return dberror.IO(err, "read", path)
		}

		text = strings.TrimRight(text, "\r\n")
		if id, sql, ok := ParseMarker(text); ok {
			session = id
			text = sql
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if err := fn(Line{Number: n, SessionID: session, SQL: text}); err != nil {
			return errors.Wrapf(err, "script %s line %d", path, n)
		}
	}
}
