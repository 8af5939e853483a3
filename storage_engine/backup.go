package storageengine

import (
	"encoding/hex"
	"io"
	"os"

	"SharpHSQL/dberror"

	"github.com/cockroachdb/errors"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
)

/*
The backup is the data file as it was at the last checkpoint, optionally xz
compressed. Its BLAKE3 checksum, taken over the uncompressed bytes, is kept
in the properties and checked before a restore.
*/

// writeBackup copies the data file to the pending backup and returns the
// checksum of the copied bytes.
func (l *Log) writeBackup() (string, error) {
	src, err := os.Open(l.dataPath())
	if os.IsNotExist(err) {
		src = nil
	} else if err != nil {
		return "", dberror.IO(err, "open", l.dataPath())
	}
	if src != nil {
		defer src.Close()
	}

	h := blake3.New()
	target := l.backupPath() + newSuffix
	err = writeFileSync(target, func(f *os.File) error {
		var dst io.Writer = f
		var zw *xz.Writer
		if l.props.BackupCompression == CompressionXZ {
			w, err := xz.NewWriter(f)
			if err != nil {
				return errors.Wrap(err, "failed to create xz writer")
			}
			zw, dst = w, w
		}
		if src != nil {
			if _, err := io.Copy(io.MultiWriter(dst, h), src); err != nil {
				return dberror.IO(err, "copy to", target)
			}
		}
		if zw != nil {
			if err := zw.Close(); err != nil {
				return dberror.IO(err, "compress", target)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// restoreBackup replaces the data file with the backup. Without a backup
// the data file is deleted: nothing in it was checkpointed.
func (l *Log) restoreBackup() error {
	if !exists(l.backupPath()) {
		l.log.Info("no backup, discarding data file")
		return removeIfExists(l.dataPath())
	}

	src, err := os.Open(l.backupPath())
	if err != nil {
		return dberror.IO(err, "open", l.backupPath())
	}
	defer src.Close()

	var in io.Reader = src
	if l.props.BackupCompression == CompressionXZ {
		zr, err := xz.NewReader(src)
		if err != nil {
			return dberror.Corrupted("backup %s: %v", l.backupPath(), err)
		}
		in = zr
	}

	h := blake3.New()
	tmp := l.dataPath() + ".restore"
	err = writeFileSync(tmp, func(f *os.File) error {
		if _, err := io.Copy(io.MultiWriter(f, h), in); err != nil {
			return dberror.Corrupted("backup %s: %v", l.backupPath(), err)
		}
		return nil
	})
	if err != nil {
		_ = removeIfExists(tmp)
		return err
	}

	if sum := hex.EncodeToString(h.Sum(nil)); l.props.BackupChecksum != "" && sum != l.props.BackupChecksum {
		_ = removeIfExists(tmp)
		return dberror.Corrupted("backup %s: checksum %s, expected %s", l.backupPath(), sum, l.props.BackupChecksum)
	}
	if err := os.Rename(tmp, l.dataPath()); err != nil {
		return dberror.IO(err, "rename", tmp)
	}
	l.log.Info("data file restored from backup")
	return nil
}
