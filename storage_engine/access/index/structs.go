package index

import (
	"log/slog"

	"SharpHSQL/storage_engine/cache"
	"SharpHSQL/types"
)

// cleanUpInterval is how many Next steps pass between cache cleanups.
const cleanUpInterval = 128

// Index is an AVL tree over a tuple of columns of one table. Its nodes live
// in the rows: node number id of every row belongs to this index.
type Index struct {
	name    string
	id      int
	columns []int              // visible columns followed by primary key tie-breakers
	types   []types.ColumnType // one per entry of columns
	visible int
	unique  bool

	root  *cache.Node
	steps int // Next calls since the last cleanup hook

	log *slog.Logger
}

// Iterator walks an index in key order starting from a seek position.
type Iterator struct {
	idx  *Index
	node *cache.Node
	err  error
}
