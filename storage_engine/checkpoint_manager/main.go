package checkpoint

import (
	"os"
	"path/filepath"

	"SharpHSQL/dberror"
	"SharpHSQL/logging"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

/*
The properties file records where a database's files are and whether the
last session ended cleanly. The Modified flag moves no -> yes on open,
yes -> yes-new-files once a checkpoint's replacement files are complete, and
back to no after they are renamed into place; Open reads it to decide what
recovery is needed.
*/

func NewCheckpointManager(dbPath string) *CheckpointManager {
	return &CheckpointManager{propertiesPath: dbPath + ".properties"}
}

func (cm *CheckpointManager) Path() string { return cm.propertiesPath }

// Exists reports whether the properties file is present.
func (cm *CheckpointManager) Exists() bool {
	_, err := os.Stat(cm.propertiesPath)
	return err == nil
}

// Defaults returns the properties of a new database with base name name.
func Defaults(name, id string) *Properties {
	return &Properties{
		LogFile:           name + ".script",
		DataFile:          name + ".data",
		Backup:            name + ".backup",
		Version:           Version,
		Modified:          ModifiedNo,
		DatabaseID:        id,
		CacheScale:        14,
		WriteDelay:        true,
		LogSizeMB:         200,
		BackupCompression: "none",
	}
}

// Save atomically replaces the properties file.
func (cm *CheckpointManager) Save(p *Properties) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	data, err := yaml.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "failed to marshal properties")
	}

	// write temp, fsync, rename over the real file, fsync the directory
	tempPath := cm.propertiesPath + ".tmp"
	f, err := os.OpenFile(tempPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return dberror.IO(err, "create", tempPath)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return dberror.IO(err, "write", tempPath)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return dberror.IO(err, "sync", tempPath)
	}
	if err := f.Close(); err != nil {
		return dberror.IO(err, "close", tempPath)
	}
	if err := os.Rename(tempPath, cm.propertiesPath); err != nil {
		return dberror.IO(err, "rename", tempPath)
	}
	SyncDir(filepath.Dir(cm.propertiesPath))

	logging.WithComponent("properties").Debug("properties saved", "modified", p.Modified)
	return nil
}

// Load reads the properties file.
func (cm *CheckpointManager) Load() (*Properties, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	data, err := os.ReadFile(cm.propertiesPath)
	if err != nil {
		return nil, dberror.IO(err, "read", cm.propertiesPath)
	}
	var p Properties
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, dberror.Corrupted("properties %s: %v", cm.propertiesPath, err)
	}
	switch p.Modified {
	case ModifiedNo, ModifiedYes, ModifiedYesNewFiles:
	default:
		return nil, dberror.Corrupted("properties %s: unknown Modified value %q", cm.propertiesPath, p.Modified)
	}
	return &p, nil
}

// SetModified saves p with a new durability flag.
func (cm *CheckpointManager) SetModified(p *Properties, m Modified) error {
	p.Modified = m
	return cm.Save(p)
}

// Delete removes the properties file.
func (cm *CheckpointManager) Delete() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if err := os.Remove(cm.propertiesPath); err != nil && !os.IsNotExist(err) {
		return dberror.IO(err, "delete", cm.propertiesPath)
	}
	return nil
}

// SyncDir makes a rename in dir durable. Failures are ignored, not every
// platform can sync a directory.
func SyncDir(dir string) {
	d, err := os.Open(dir)
	if err == nil {
		_ = d.Sync()
		d.Close()
	}
}
