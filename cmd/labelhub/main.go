// cmd/labelhub/main.go
package main

import (
	cmd "github.com/boxworks/labelhub/internal/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main starts the labelhub CLI application by delegating to the cobra root
// command defined in the labelhub package.
func main() {
	cmd.SetVersionInfo(version, commit, date)
	cmd.Execute()
}
