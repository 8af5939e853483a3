// Inspect the indexes and files of a database.
// Usage: go run ./cmd/inspect_idx <database path>
// Example: go run ./cmd/inspect_idx databases/demp/demp
package main

import (
	"fmt"
	"os"

	"SharpHSQL/logging"
	executor "SharpHSQL/query_executor"
	storageengine "SharpHSQL/storage_engine"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
)

var CLI struct {
	DB       string `arg:"" help:"Database path: directory plus base name of its files."`
	ReadOnly bool   `name:"read-only" help:"Do not recover or write; fails if the database needs recovery."`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("inspect_idx"),
		kong.Description("Check every index of a database and print storage statistics"),
		kong.UsageOnError(),
	)
	logging.Init(logging.Config{Level: logging.LevelWarn})

	if err := inspect(CLI.DB, CLI.ReadOnly); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func inspect(path string, readOnly bool) error {
	if _, err := os.Stat(path + ".properties"); err != nil {
		return fmt.Errorf("no database at %s: %w", path, err)
	}
	cfg := storageengine.DefaultConfig()
	cfg.ReadOnly = readOnly
	db, err := executor.Open(path, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	st, err := db.Stats()
	if err != nil {
		return err
	}
	p := st.Properties
	fmt.Printf("Database %s (id %s, version %s)\n", path, p.DatabaseID, p.Version)
	fmt.Printf("  data file:   %s, next free offset %s\n",
		humanize.IBytes(uint64(st.DataBytes)), humanize.Comma(int64(st.Cache.FreePos)))
	fmt.Printf("  row cache:   %d resident of %d (cleanup at %d), %d free blocks\n",
		st.Cache.Resident, st.Cache.Capacity, st.Cache.Threshold, st.Cache.FreeBlocks)
	fmt.Printf("  cache hits:  %s rows, %s blocks, %s misses\n",
		humanize.Comma(int64(st.Cache.Hits)), humanize.Comma(int64(st.Cache.BlockHits)), humanize.Comma(int64(st.Cache.Misses)))
	fmt.Printf("  write delay: %v, backup: %s\n", p.WriteDelay, p.BackupCompression)

	reports, err := db.CheckIndexes()
	if err != nil {
		return err
	}
	fmt.Printf("\n%-20s| %-24s| %-10s| %-7s| %s\n", "TABLE", "INDEX", "ROWS", "HEIGHT", "STORAGE")
	for _, r := range reports {
		storage := "memory"
		if r.Cached {
			storage = "cached"
		}
		fmt.Printf("%-20s| %-24s| %-10s| %-7d| %s\n", r.Table, r.Index, humanize.Comma(int64(r.Rows)), r.Height, storage)
	}
	fmt.Println("\nAll indexes are ordered and balanced.")
	return nil
}
