package diskmanager

import (
	"encoding/binary"
	"io"
	"os"

	"SharpHSQL/dberror"
)

/*
The disk manager owns the OS handle of the data file and nothing else.
It reads and writes raw bytes at record offsets; what the bytes mean is the
cache's business.

Data file
────────────────────────────────────────────────
| freePos (4) | record | record | ... | freePos→
────────────────────────────────────────────────
*/

// OpenDataFile opens or creates the data file at path.
func OpenDataFile(path string, readOnly bool) (*DataFile, error) {
	flag := os.O_RDWR | os.O_CREATE
	if readOnly {
		flag = os.O_RDONLY
	}
	file, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return nil, dberror.IO(err, "open", path)
	}
	return &DataFile{path: path, file: file, readOnly: readOnly}, nil
}

func (d *DataFile) Path() string { return d.path }

// ReadFreePos returns the persisted next free offset, or InitialFreePos for
// an empty file.
func (d *DataFile) ReadFreePos() (int32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	stat, err := d.file.Stat()
	if err != nil {
		return 0, dberror.IO(err, "stat", d.path)
	}
	if stat.Size() < int64(InitialFreePos) {
		return InitialFreePos, nil
	}

	var header [4]byte
	if _, err := d.file.ReadAt(header[:], 0); err != nil {
		return 0, dberror.IO(err, "read header of", d.path)
	}
	pos := int32(binary.BigEndian.Uint32(header[:]))
	if pos < InitialFreePos {
		return 0, dberror.Corrupted("data file %s: free position %d", d.path, pos)
	}
	return pos, nil
}

func (d *DataFile) WriteFreePos(pos int32) error {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(pos))
	return d.WriteAt(0, header[:])
}

// ReadRecord reads the length-prefixed record starting at pos. The returned
// slice includes the length field.
func (d *DataFile) ReadRecord(pos int32) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var head [4]byte
	if _, err := d.file.ReadAt(head[:], int64(pos)); err != nil {
		if err == io.EOF {
			return nil, dberror.Corrupted("record at %d lies beyond end of %s", pos, d.path)
		}
		return nil, dberror.IO(err, "read", d.path)
	}
	size := int32(binary.BigEndian.Uint32(head[:]))
	if size < 8 || size > maxRecordSize {
		return nil, dberror.Corrupted("record at %d has size %d", pos, size)
	}

	buf := make([]byte, size)
	if _, err := d.file.ReadAt(buf, int64(pos)); err != nil {
		if err == io.EOF {
			return nil, dberror.Corrupted("record at %d truncated", pos)
		}
		return nil, dberror.IO(err, "read", d.path)
	}
	return buf, nil
}

func (d *DataFile) WriteAt(pos int32, b []byte) error {
	if d.readOnly {
		return dberror.IO(os.ErrPermission, "write read-only", d.path)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.file.WriteAt(b, int64(pos)); err != nil {
		return dberror.IO(err, "write", d.path)
	}
	return nil
}

func (d *DataFile) Size() (int64, error) {
	stat, err := d.file.Stat()
	if err != nil {
		return 0, dberror.IO(err, "stat", d.path)
	}
	return stat.Size(), nil
}

func (d *DataFile) Sync() error {
	if d.readOnly {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.file.Sync(); err != nil {
		return dberror.IO(err, "sync", d.path)
	}
	return nil
}

func (d *DataFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	if err != nil {
		return dberror.IO(err, "close", d.path)
	}
	return nil
}
