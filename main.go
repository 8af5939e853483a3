package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"SharpHSQL/logging"
	executor "SharpHSQL/query_executor"
	storageengine "SharpHSQL/storage_engine"

	"github.com/alecthomas/kong"
)

var CLI struct {
	DB           string `name:"db" default:"databases/demo/demo" help:"Database path: directory plus base name of its files."`
	ReadOnly     bool   `name:"read-only" help:"Open without writing anything."`
	CacheScale   int    `name:"cache-scale" default:"14" help:"Row cache size as a power of two, for new databases."`
	NoWriteDelay bool   `name:"no-write-delay" help:"Flush the script after every statement."`
	LogLevel     string `name:"log-level" default:"warn" enum:"debug,info,warn,error" help:"Log verbosity."`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("sharphsql"),
		kong.Description("Interactive shell for a SharpHSQL database"),
		kong.UsageOnError(),
	)
	logging.Init(logging.Config{Level: logging.ParseLevel(CLI.LogLevel)})

	cfg := storageengine.DefaultConfig()
	cfg.ReadOnly = CLI.ReadOnly
	cfg.CacheScale = CLI.CacheScale
	cfg.WriteDelay = !CLI.NoWriteDelay

	db, err := executor.Open(CLI.DB, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	session, err := db.Connect()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	scanner := bufio.NewScanner(os.Stdin)
	// REPL
	for {
		fmt.Print("db> ")

		if !scanner.Scan() { // Ctrl+D pressed
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(line, "exit") {
			break
		}
		if line == "" {
			continue
		}

		res, err := session.Execute(line)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		res.Print(os.Stdout)
		if strings.HasPrefix(strings.ToUpper(line), "SHUTDOWN") {
			return
		}
	}

	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
