package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ivansvit/upgraded-blog/service"
)

// CliVersion is reported by the version command.
const CliVersion = "1.0.0"

var exit = os.Exit

func main() {
	RealMain()
}

// RealMain dispatches os.Args to the version command or the service commands.
func RealMain() {
	if len(os.Args) < 2 {
		printHelp()
		exit(1)
		return
	}

	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "version":
		fmt.Printf("upgraded-blog version %s\n", CliVersion)
	case "serve", "init", "seed", "backup", "restore", "clean", "help":
		args := append([]string{cmd}, os.Args[2:]...)
		if code := service.HandleCommand(args); code != 0 {
			exit(code)
		}
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printHelp()
		exit(1)
	}
}

func printHelp() {
	helpText := `Usage: upgraded-blog <command> [options]
Commands:
  help                           Display this help message.
  version                        Show version information.
  serve [--port <port>]          Run the blog service.
  init                           Create the database schema.
  seed [options]                 Fill the database with demo content.
  backup                         Back up the database and the session store.
  restore <file>                 Restore the database from a backup.
  clean                          Remove the local database and sessions.
`
	fmt.Println(helpText)
}
