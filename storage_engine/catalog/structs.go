package catalog

import (
	"SharpHSQL/storage_engine/access/table"
)

// CatalogManager is the ordered set of tables of a database. Order is
// creation order, which is also the order the script recreates them in.
type CatalogManager struct {
	tables []*table.Table
	byName map[string]*table.Table
}
