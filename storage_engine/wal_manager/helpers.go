package wal_manager

import (
	"strconv"
	"strings"
)

const (
	markerPrefix = "/*C"
	markerSuffix = "*/"
)

// EncodeLine renders a script line, with a channel marker if asked.
func EncodeLine(sessionID int, sql string, marker bool) string {
	if !marker {
		return sql + "\n"
	}
	return markerPrefix + strconv.Itoa(sessionID) + markerSuffix + sql + "\n"
}

// ParseMarker splits a channel marker off line. ok is false when the line
// has none.
func ParseMarker(line string) (sessionID int, sql string, ok bool) {
	if !strings.HasPrefix(line, markerPrefix) {
		return 0, line, false
	}
	end := strings.Index(line, markerSuffix)
	if end < len(markerPrefix) {
		return 0, line, false
	}
	id, err := strconv.Atoi(line[len(markerPrefix):end])
	if err != nil {
		return 0, line, false
	}
	return id, line[end+len(markerSuffix):], true
}
