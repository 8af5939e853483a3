package executor

import (
	"SharpHSQL/storage_engine/cache"
	checkpoint "SharpHSQL/storage_engine/checkpoint_manager"
)

// Stats is a snapshot of the storage state of a database.
type Stats struct {
	Tables     int
	Cache      cache.Stats
	DataBytes  int64
	Properties checkpoint.Properties
}

func (db *Database) Path() string { return db.path }

// Tables returns the table names in creation order.
func (db *Database) Tables() []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	names := make([]string, 0, len(db.catalog.Tables()))
	for _, t := range db.catalog.Tables() {
		names = append(names, t.Name())
	}
	return names
}

func (db *Database) Stats() (Stats, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	st := Stats{
		Tables:     len(db.catalog.Tables()),
		Properties: db.log.Properties(),
	}
	if db.log.Cache != nil {
		st.Cache = db.log.Cache.Stats()
		size, err := db.log.Cache.FileSize()
		if err != nil {
			return st, err
		}
		st.DataBytes = size
	}
	return st, nil
}

// CheckIndexes verifies the order, links and balance of every index.
func (db *Database) CheckIndexes() ([]IndexReport, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []IndexReport
	for _, t := range db.catalog.Tables() {
		for _, idx := range t.Indexes() {
			n, h, err := idx.Check()
			if err != nil {
				return out, err
			}
			out = append(out, IndexReport{
				Table:  t.Name(),
				Index:  idx.Name(),
				Rows:   n,
				Height: h,
				Cached: t.IsCached(),
			})
		}
	}
	return out, nil
}
