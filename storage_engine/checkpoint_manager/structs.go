package checkpoint

import "sync"

// Modified is the durability flag of a database.
type Modified string

const (
	// ModifiedNo: clean shutdown, the data file matches the script.
	ModifiedNo Modified = "no"
	// ModifiedYes: the script may be ahead of the data file.
	ModifiedYes Modified = "yes"
	// ModifiedYesNewFiles: a checkpoint wrote the new script and backup
	// but has not renamed them into place yet.
	ModifiedYesNewFiles Modified = "yes-new-files"
)

const Version = "1.7.0"

// CheckpointManager owns the properties file of a database.
type CheckpointManager struct {
	propertiesPath string
	mu             sync.RWMutex
}

// Properties is the content of the properties file. File names are
// relative to the directory holding it.
type Properties struct {
	LogFile           string   `yaml:"LogFile"`
	DataFile          string   `yaml:"DataFile"`
	Backup            string   `yaml:"Backup"`
	Version           string   `yaml:"Version"`
	ReadOnly          bool     `yaml:"ReadOnly"`
	Modified          Modified `yaml:"Modified"`
	DatabaseID        string   `yaml:"DatabaseID"`
	CacheScale        int      `yaml:"CacheScale"`
	WriteDelay        bool     `yaml:"WriteDelay"`
	LogSizeMB         int      `yaml:"LogSizeMB"`
	BackupCompression string   `yaml:"BackupCompression"`
	BackupChecksum    string   `yaml:"BackupChecksum,omitempty"` // hex BLAKE3 of the uncompressed backup
}
