package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/formworks/bindery"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of bindery",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bindery version %s\n", strings.TrimSpace(bindery.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
