package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/screenwatch/screenwatch/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println("screenwatch " + version.String())
		},
	}
}
