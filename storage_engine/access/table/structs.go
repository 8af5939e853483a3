package table

import (
	"log/slog"

	"SharpHSQL/storage_engine/access/index"
	"SharpHSQL/storage_engine/cache"
	"SharpHSQL/types"
)

// HiddenColumn names the identity column added to tables declared without
// a primary key. It is never shown or written to the script.
const HiddenColumn = "SYSTEM_ID"

// Table is the row store of one table: its columns, its indexes and, for
// cached tables, the cache its rows are paged through.
type Table struct {
	schema   types.TableSchema
	colTypes []types.ColumnType // declared columns plus the hidden identity, if any
	visible  int
	hidden   bool // rows carry a trailing identity column

	indexes   []*index.Index
	indexDefs []types.IndexDef // declared indexes, in order, the primary one excluded
	cache     *cache.Cache     // nil for memory tables

	identity int64 // next hidden identity value

	log *slog.Logger
}

// Session is what a table needs from the acting session: undo bookkeeping
// and the statement log.
type Session interface {
	AddInsert(t *Table, data []any)
	AddDelete(t *Table, data []any)
	Log(stmt string) error
}
