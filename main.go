// ABOUTME: Entry point for the nightchorus soundscape player
// ABOUTME: Hands off to the cobra command tree
package main

import (
	"os"

	"github.com/harperreed/nightchorus/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
