package main

import (
	"flag"
	"fmt"
	"os"

	"notes-app/config"
	"notes-app/server"

	"github.com/umakantv/go-utils/db/migrations"
)

func main() {
	fs := flag.NewFlagSet("notes-app", flag.ExitOnError)
	commandFlag := fs.String("command", "start", "Command to run modules")
	nameFlag := fs.String("name", "", "Migration name (alphanum+underscore only)")
	dirFlag := fs.String("dir", ".", "Target directory for the new .sql file (e.g. ./database/migrations/sqlite3)")

	// config registers its own flags (-port, -db, ...) on the same set
	cfg, err := config.Load(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	if *commandFlag == "" {
		fmt.Println("Usage: go run main.go --command <command-name> [... other options]")
		os.Exit(1)
	}

	switch *commandFlag {
	case "start":
		server.StartServer(cfg)
	case "create-migration":
		migrations.CreateMigration(nameFlag, dirFlag)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", *commandFlag)
		os.Exit(1)
	}
}
