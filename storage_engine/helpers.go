package storageengine

import (
	"os"
	"path/filepath"

	"SharpHSQL/dberror"
)

const newSuffix = ".new"

func (l *Log) scriptPath() string { return filepath.Join(l.dir, l.props.LogFile) }
func (l *Log) dataPath() string   { return filepath.Join(l.dir, l.props.DataFile) }
func (l *Log) backupPath() string { return filepath.Join(l.dir, l.props.Backup) }

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return dberror.IO(err, "delete", path)
	}
	return nil
}

// promote renames path+".new" over path if it exists.
func promote(path string) error {
	if !exists(path + newSuffix) {
		return nil
	}
	if err := os.Rename(path+newSuffix, path); err != nil {
		return dberror.IO(err, "rename", path+newSuffix)
	}
	return nil
}

// writeFileSync writes a file through f and fsyncs it.
func writeFileSync(path string, write func(f *os.File) error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return dberror.IO(err, "create", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return dberror.IO(err, "sync", path)
	}
	if err := f.Close(); err != nil {
		return dberror.IO(err, "close", path)
	}
	return nil
}
