package cache

import (
	"log/slog"

	diskmanager "SharpHSQL/storage_engine/disk_manager"
	"SharpHSQL/types"

	"github.com/dgraph-io/ristretto/v2"
)

// ############################################# CACHE #############################################

const (
	DefaultScale  = 14   // 2^14 = 16384 hash slots
	freeListLimit = 1024 // free-list is reset, not grown, past this
	writerLength  = 1000 // dirty rows written per cleanup pass
	sampleWidth   = 6    // rows compared per eviction choice
	minFreeBlock  = 8    // smaller remainders are swallowed by the row
)

// Cache is the page table of the data file: resident rows keyed by offset,
// the free-list of reclaimed blocks and the eviction policy. One Cache is
// shared by all cached tables of a database.
type Cache struct {
	path     string
	cfg      Config
	file     *diskmanager.DataFile
	blocks   *ristretto.Cache[uint64, []byte] // serialized records, may be nil
	readOnly bool

	// buckets[pos&mask] is the first row of a run of the resident ring whose
	// positions share that hash.
	buckets      []*Row
	mask         int32
	maxCacheSize int
	cacheSize    int
	first        *Row // rotating eviction cursor

	freeRoot  *freeBlock
	freeCount int
	freePos   int32

	accessClock int64

	stats Stats
	log   *slog.Logger

	// evicted is called for every row leaving the directory through CleanUp.
	evicted func(r *Row, written bool)
}

type Config struct {
	Scale           int   // log2 of the hash table size
	BlockCacheBytes int64 // 0 disables the record byte cache
}

type freeBlock struct {
	pos    int32
	length int32
	next   *freeBlock
}

// Stats returns cache statistics
type Stats struct {
	Resident   int
	Capacity   int
	Threshold  int
	FreeBlocks int
	FreePos    int32
	Hits       uint64
	Misses     uint64
	BlockHits  uint64
	Evictions  uint64
	Writes     uint64
}

// ############################################# ROWS #############################################

// Owner describes the table a row belongs to; it is what the cache needs to
// turn record bytes back into a row.
type Owner interface {
	Name() string
	ColumnTypes() []types.ColumnType
	IndexCount() int
}

// Row is the unit of persistence: column values plus one tree node per
// index of the owning table.
type Row struct {
	data  []any
	owner Owner
	cache *Cache // nil for memory tables

	pos        int32 // 0 while the row has no place in the data file
	size       int32
	changed    bool
	queued     bool // collected for write-back by a running cleanup
	lastAccess int64

	next, prev *Row // resident ring

	firstNode *Node
}

// ############################################# NODES #############################################

type nodeState uint8

const (
	nodeActive nodeState = iota
	nodeDeleted
)

// link is either an in-memory handle (pos == 0) or the data file offset of
// the row holding the target node.
type link struct {
	pos int32
	mem *Node
}

// Node is one AVL node of one index. The nodes of a row are chained through
// nextNode in index order.
type Node struct {
	row     *Row
	index   int
	balance int
	state   nodeState

	left, right, parent link

	nextNode *Node
}
