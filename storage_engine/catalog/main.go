package catalog

import (
	"bufio"
	"io"
	"strings"

	"SharpHSQL/dberror"
	"SharpHSQL/storage_engine/access/table"
	"SharpHSQL/types"
)

/*
Catalog manager holds the tables of the open database and writes the
checkpoint script that recreates them: every definition first, then the
rows of memory tables and, for cached tables, the line that reattaches
their index roots in the data file.
*/

func NewCatalogManager() *CatalogManager {
	return &CatalogManager{byName: make(map[string]*table.Table)}
}

func key(name string) string { return strings.ToUpper(name) }

func (cm *CatalogManager) TableExists(name string) bool {
	_, ok := cm.byName[key(name)]
	return ok
}

func (cm *CatalogManager) GetTable(name string) (*table.Table, error) {
	t, ok := cm.byName[key(name)]
	if !ok {
		return nil, dberror.NotFound("table", name)
	}
	return t, nil
}

// RegisterNewTable adds t at the end of the table order.
func (cm *CatalogManager) RegisterNewTable(t *table.Table) error {
	if cm.TableExists(t.Name()) {
		return dberror.Invalid("table %s already exists", t.Name())
	}
	cm.tables = append(cm.tables, t)
	cm.byName[key(t.Name())] = t
	return nil
}

// ReplaceTable swaps in a rebuilt table, keeping its place in the order.
func (cm *CatalogManager) ReplaceTable(old, t *table.Table) {
	for i, x := range cm.tables {
		if x == old {
			cm.tables[i] = t
		}
	}
	cm.byName[key(t.Name())] = t
}

func (cm *CatalogManager) UnregisterTable(name string) error {
	t, err := cm.GetTable(name)
	if err != nil {
		return err
	}
	delete(cm.byName, key(name))
	for i, x := range cm.tables {
		if x == t {
			cm.tables = append(cm.tables[:i], cm.tables[i+1:]...)
			break
		}
	}
	return nil
}

// Tables returns the tables in creation order.
func (cm *CatalogManager) Tables() []*table.Table { return cm.tables }

// TableForIndex finds the table owning the named index.
func (cm *CatalogManager) TableForIndex(name string) *table.Table {
	for _, t := range cm.tables {
		if t.GetIndex(name) != nil {
			return t
		}
	}
	return nil
}

// Reset forgets every table.
func (cm *CatalogManager) Reset() {
	cm.tables = nil
	cm.byName = make(map[string]*table.Table)
}

// WriteScript writes the statements recreating the database. With compact
// the rows of cached tables are written as INSERTs too, so the data file
// can be rebuilt from scratch.
func (cm *CatalogManager) WriteScript(w io.Writer, compact bool) error {
	bw := bufio.NewWriter(w)
	line := func(s string) error {
		_, err := bw.WriteString(s + "\n")
		return err
	}

	for _, t := range cm.tables {
		if err := line(t.CreateStatement()); err != nil {
			return err
		}
		for _, s := range t.IndexStatements() {
			if err := line(s); err != nil {
				return err
			}
		}
	}

	for _, t := range cm.tables {
		if t.IsCached() && !compact {
			if err := line("SET TABLE " + t.Name() + " INDEX " + types.Quote(t.IndexRoots())); err != nil {
				return err
			}
			continue
		}
		err := t.ForEach(func(data []any) error {
			return line(t.InsertStatement(data))
		})
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}
