package diskmanager

import (
	"os"
	"sync"
)

// ############################################# DATA FILE #############################################

// InitialFreePos is the offset of the first record; bytes [0,4) hold the
// next free offset.
const InitialFreePos int32 = 4

// maxRecordSize guards against reading a garbage length as a huge buffer.
const maxRecordSize = 1 << 28

// DataFile is the offset-addressed file holding cached table rows.
type DataFile struct {
	path     string
	file     *os.File
	readOnly bool
	mu       sync.Mutex
}
