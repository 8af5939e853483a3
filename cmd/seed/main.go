// Seed program: creates a database with a few tables and sample rows.
// Run: go run ./cmd/seed
// Then inspect: go run ./cmd/inspect_idx databases/demp/demp
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"SharpHSQL/logging"
	executor "SharpHSQL/query_executor"
	storageengine "SharpHSQL/storage_engine"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
)

var CLI struct {
	DB    string `name:"db" default:"databases/demp/demp" help:"Database path: directory plus base name of its files."`
	Rows  int    `name:"rows" default:"1000" help:"Rows generated into the enrollments table."`
	Crash bool   `name:"crash" help:"Stop without a checkpoint, leaving recovery to the next open."`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("seed"),
		kong.Description("Create a sample database"),
		kong.UsageOnError(),
	)
	logging.Init(logging.Config{Level: logging.LevelInfo})

	if err := os.MkdirAll(filepath.Dir(CLI.DB), 0755); err != nil {
		log.Fatalf("mkdir: %v", err)
	}
	cfg := storageengine.DefaultConfig()
	cfg.WriteDelay = false
	db, err := executor.Open(CLI.DB, cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	session, err := db.Connect()
	if err != nil {
		log.Fatalf("connect: %v", err)
	}

	run := func(sql string) *executor.Result {
		res, err := session.Execute(sql)
		if err != nil {
			log.Fatalf("execute %q: %v", sql, err)
		}
		return res
	}

	fmt.Println("Creating tables...")

	// Table 1: students (id PK, name, age), kept in memory
	run("CREATE TABLE students (id VARCHAR PRIMARY KEY, name VARCHAR NOT NULL, age INTEGER)")
	run("INSERT INTO students VALUES ('S001', 'Alice', 20)")
	run("INSERT INTO students VALUES ('S002', 'Bob', 21)")
	run("INSERT INTO students VALUES ('S003', 'Carol', 19)")

	// Table 2: courses (code PK, title)
	run("CREATE TABLE courses (code VARCHAR PRIMARY KEY, title VARCHAR)")
	run("INSERT INTO courses VALUES ('CS101', 'Intro to CS')")
	run("INSERT INTO courses VALUES ('CS201', 'Data Structures')")
	run("INSERT INTO courses VALUES ('MA101', 'Calculus')")

	// Table 3: enrollments, cached in the data file, no primary key
	run("CREATE CACHED TABLE enrollments (student VARCHAR, course VARCHAR, grade DOUBLE)")
	run("CREATE INDEX idx_enroll_student ON enrollments (student)")
	students := []string{"S001", "S002", "S003"}
	courses := []string{"CS101", "CS201", "MA101"}
	run("SET AUTOCOMMIT FALSE")
	for i := 0; i < CLI.Rows; i++ {
		run(fmt.Sprintf("INSERT INTO enrollments VALUES ('%s', '%s', %d.5)",
			students[i%len(students)], courses[(i/len(students))%len(courses)], i%4))
	}
	run("COMMIT")
	run("SET AUTOCOMMIT TRUE")

	fmt.Println("\nstudents:")
	run("SELECT * FROM students").Print(os.Stdout)
	fmt.Println("\nenrollments of S002 in CS201:")
	res := run("SELECT * FROM enrollments WHERE student = 'S002' AND course = 'CS201'")
	fmt.Printf("%d rows\n", len(res.Rows))

	st, err := db.Stats()
	if err != nil {
		log.Fatalf("stats: %v", err)
	}
	fmt.Printf("\n%d tables, data file %s, %d rows resident\n",
		st.Tables, humanize.Bytes(uint64(st.DataBytes)), st.Cache.Resident)

	if CLI.Crash {
		if err := db.Shutdown(); err != nil {
			log.Fatalf("shutdown: %v", err)
		}
		fmt.Println("Stopped without checkpoint.")
		return
	}
	if err := db.Close(); err != nil {
		log.Fatalf("close: %v", err)
	}
	fmt.Println("Done.")
}
