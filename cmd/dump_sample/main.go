// dump_sample runs the seed, reopens the database, dumps its script and
// checks its indexes, writing all output to cmd/sample_run_output.txt.
// Run from repo root: go run ./cmd/dump_sample
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
)

var CLI struct {
	DB     string `name:"db" default:"databases/demp/demp" help:"Database path used for the sample."`
	Output string `name:"output" short:"o" default:"cmd/sample_run_output.txt" help:"File the run is written to."`
	Rows   int    `name:"rows" default:"1000" help:"Rows passed to the seed."`
	Crash  bool   `name:"crash" help:"Let the seed stop without a checkpoint so inspection runs recovery."`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("dump_sample"),
		kong.Description("Run the seed and inspect the resulting database"),
		kong.UsageOnError(),
	)

	root := repoRoot()
	outPath := CLI.Output
	// If run from cmd/dump_sample, output next to binary
	if _, err := os.Stat(filepath.Join(root, "cmd")); os.IsNotExist(err) {
		outPath = filepath.Base(outPath)
	}

	f, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create output file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	// Clean previous run so seed starts fresh
	os.RemoveAll(filepath.Dir(filepath.Join(root, CLI.DB)))

	// 1) Run seed: capture stdout/stderr to file
	fmt.Fprintln(f, "========== SEED (create tables, inserts, selects) ==========")
	seedArgs := []string{"run", "./cmd/seed", "--db", CLI.DB, "--rows", fmt.Sprint(CLI.Rows)}
	if CLI.Crash {
		seedArgs = append(seedArgs, "--crash")
	}
	runTo(f, root, seedArgs...)

	// 2) Files left by the seed
	fmt.Fprintln(f, "\n========== FILES ==========")
	for _, ext := range []string{".properties", ".script", ".data", ".backup"} {
		path := filepath.Join(root, CLI.DB+ext)
		st, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(f, "%-12s missing\n", ext)
			continue
		}
		fmt.Fprintf(f, "%-12s %s\n", ext, humanize.Bytes(uint64(st.Size())))
	}

	// 3) Head of the script
	fmt.Fprintln(f, "\n========== SCRIPT (first 20 lines) ==========")
	if err := headTo(f, filepath.Join(root, CLI.DB+".script"), 20); err != nil {
		fmt.Fprintf(f, "script error: %v\n", err)
	}

	// 4) Check every index, recovering first if the seed crashed
	fmt.Fprintln(f, "\n========== INSPECT ==========")
	runTo(f, root, "run", "./cmd/inspect_idx", CLI.DB)

	fmt.Printf("Output written to %s\n", outPath)
}

func runTo(f *os.File, dir string, args ...string) {
	cmd := exec.Command("go", args...)
	cmd.Stdout = f
	cmd.Stderr = f
	cmd.Dir = dir
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(f, "%s exited with error: %v\n", args[1], err)
	}
}

func headTo(f *os.File, path string, n int) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()
	sc := bufio.NewScanner(in)
	for i := 0; i < n && sc.Scan(); i++ {
		fmt.Fprintln(f, sc.Text())
	}
	return sc.Err()
}

func repoRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
