// cmd/hydro/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"hydro/cmd/hydro/commands"
)

const VERSION = "0.1.0"

// Build variables - GitCommit can be set during build with ldflags;
// BuildDate is computed when the process starts
var (
	BuildDate = time.Now().Format("2006-01-02")
	GitCommit = "unknown"
)

// Command aliases mapping
var commandAliases = map[string]string{
	"r": "run",
	"d": "debug",
	"b": "build",
	"g": "graph",
	"m": "metrics",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
		args[0] = alias
	}

	if cmd == "--help" || cmd == "-h" || cmd == "help" {
		if len(args) > 1 {
			showCommandHelp(args[1])
		} else {
			showUsage()
		}
		return
	}

	if cmd == "--version" || cmd == "-v" || cmd == "version" {
		showVersion()
		return
	}

	switch cmd {
	case "run":
		if err := commands.RunCommand(args[1:]); err != nil {
			log.Fatalf("Error: %v", err)
		}
	case "debug":
		if err := commands.DebugCommand(args[1:]); err != nil {
			log.Fatalf("Error: %v", err)
		}
	case "build":
		if err := commands.BuildCommand(args[1:]); err != nil {
			log.Fatalf("Error: %v", err)
		}
	case "graph":
		if err := commands.GraphCommand(args[1:]); err != nil {
			log.Fatalf("Error: %v", err)
		}
	case "metrics":
		if err := commands.MetricsCommand(args[1:]); err != nil {
			log.Fatalf("Error: %v", err)
		}
	default:
		suggestCommand(cmd)
	}
}

func showUsage() {
	fmt.Println("Hydro - stack-based bytecode VM and textual assembler")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  hydro run <file.h2o>                    Run a program                (alias: r)")
	fmt.Println("  hydro debug <file.h2o> [--listen ADDR]   Run under the interactive     (alias: d)")
	fmt.Println("                                           debugger, or serve it remotely")
	fmt.Println("  hydro build <file.h2o> [--format F] [-o OUT]")
	fmt.Println("                                           Serialize the resolved module (alias: b)")
	fmt.Println("                                           F is 'binary' (default) or 'source'")
	fmt.Println("  hydro graph <file.h2o>                   Print the import graph as DOT (alias: g)")
	fmt.Println("  hydro metrics <db> <fingerprint> <name>  Print a metric's history      (alias: m)")
	fmt.Println()
	fmt.Println("Help:")
	fmt.Println("  hydro help <command>      Show detailed help for a command")
	fmt.Println("  hydro --version           Show version info")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  hydro run program.h2o")
	fmt.Println("  hydro debug program.h2o")
	fmt.Println("  hydro debug program.h2o --listen localhost:9009")
	fmt.Println("  hydro build program.h2o --format source")
	fmt.Println("  hydro graph program.h2o > deps.dot")
}

func showVersion() {
	fmt.Printf("Hydro %s\n", VERSION)
	fmt.Printf("Build Date: %s\n", BuildDate)
	if gitCmd, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output(); err == nil {
		GitCommit = strings.TrimSpace(string(gitCmd))
	}
	if GitCommit != "unknown" {
		fmt.Printf("Git Commit: %s\n", GitCommit)
	}
}

func suggestCommand(cmd string) {
	allCommands := []string{"run", "debug", "build", "graph", "metrics", "help", "version"}

	fmt.Fprintf(os.Stderr, "Error: Unknown command '%s'\n", cmd)

	suggestions := findSimilarCommands(cmd, allCommands, 3)
	if len(suggestions) > 0 {
		fmt.Fprintf(os.Stderr, "\nDid you mean one of these?\n")
		for _, suggestion := range suggestions {
			alias := ""
			for a, fullCmd := range commandAliases {
				if fullCmd == suggestion {
					alias = fmt.Sprintf(" (alias: %s)", a)
					break
				}
			}
			fmt.Fprintf(os.Stderr, "  hydro %s%s\n", suggestion, alias)
		}
	}

	fmt.Fprintf(os.Stderr, "\nRun 'hydro help' to see all available commands\n")
	os.Exit(1)
}

func findSimilarCommands(input string, commands []string, maxDistance int) []string {
	var similar []string
	for _, cmd := range commands {
		if levenshteinDistance(input, cmd) <= maxDistance {
			similar = append(similar, cmd)
		}
	}
	return similar
}

func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			matrix[i][j] = minInt(
				matrix[i-1][j]+1,
				matrix[i][j-1]+1,
				matrix[i-1][j-1]+cost,
			)
		}
	}
	return matrix[len(s1)][len(s2)]
}

func minInt(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}

func showCommandHelp(command string) {
	if alias, ok := commandAliases[command]; ok {
		command = alias
	}

	help := map[string]string{
		"run": `hydro run - Execute a Hydro program

USAGE:
  hydro run <file.h2o>
  hydro r <file.h2o>              # Using alias

DESCRIPTION:
  Resolves the file's 'using' imports relative to its own directory, then
  calls the top-level module's main function with one default argument:
  an Unsigned32 literal 69 named funnyNumber. Prints the returned value,
  if any, to standard output.

EXAMPLES:
  hydro run program.h2o`,

		"debug": `hydro debug - Run a Hydro program under the interactive debugger

USAGE:
  hydro debug <file.h2o> [--listen ADDR]
  hydro d <file.h2o>               # Using alias

DESCRIPTION:
  As 'run', but the console opens before the first instruction executes.
  Type 'help' at the (hydro) prompt for the command list. With --listen,
  the session is instead served over WebSocket at ADDR/debug so a remote
  client drives the same console protocol. With --metrics-db PATH, the
  session's collected timing samples are appended to a sqlite database
  readable back with 'hydro metrics'.

EXAMPLES:
  hydro debug program.h2o
  hydro debug program.h2o --listen localhost:9009
  hydro debug program.h2o --metrics-db timings.db`,

		"build": `hydro build - Serialize a resolved module tree

USAGE:
  hydro build <file.h2o> [--format binary|source] [-o OUT]
  hydro b <file.h2o>               # Using alias

DESCRIPTION:
  Resolves the file and its dependency tree, then emits either a compact
  binary bundle (default) or a re-printed textual rendering. Without -o,
  the bundle is written to standard output; with -o, it is written to
  OUT and a content hash is printed.

EXAMPLES:
  hydro build program.h2o -o program.h2ob
  hydro build program.h2o --format source`,

		"graph": `hydro graph - Render a module's import graph

USAGE:
  hydro graph <file.h2o>
  hydro g <file.h2o>               # Using alias

DESCRIPTION:
  Resolves the file's dependency tree and prints it as a Graphviz DOT
  document. Refuses with a nonzero exit if the tree contains an import
  cycle.

EXAMPLES:
  hydro graph program.h2o > deps.dot`,

		"metrics": `hydro metrics - Print a recorded metric's history

USAGE:
  hydro metrics <db> <fingerprint> <name>
  hydro m <db> <fingerprint> <name>  # Using alias

DESCRIPTION:
  Reads a sqlite database previously populated by a debug session's
  metrics store and prints every recorded sample for one
  (fingerprint, name) pair, oldest first.`,
	}

	if text, ok := help[command]; ok {
		fmt.Println(text)
		return
	}
	fmt.Printf("No detailed help available for '%s'\n", command)
	showUsage()
}
