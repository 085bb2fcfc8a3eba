package main

import (
	"io"
	"log"
	"os"
)

func main() {
	if os.Getenv("SCREENWATCH_DEBUG") != "" {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	root := newReportCommand()
	root.Use = "screenwatch"
	root.Short = "ScreenWatch reads macOS Screen Time data and reports per-app usage."

	root.AddCommand(newSyncCommand())
	root.AddCommand(newServeCommand())
	root.AddCommand(newVersionCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
