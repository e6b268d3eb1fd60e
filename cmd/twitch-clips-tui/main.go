package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/handiism/twitch-clips/internal/tui"
)

func main() {
	envFlag := flag.String("env", ".env", "Path to the settings file")
	flag.Parse()

	if err := tui.Run(*envFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
