package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/formworks/bindery"
	"github.com/formworks/bindery/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "bindery",
	Short: "Bindery evaluates widget bindings and runs page actions",
	Long:  `Bindery is a sandboxed expression and action runtime for visually built pages. It evaluates {{ }} bindings against a page context and executes the actions declared in a project file.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("project", "f", "bindery.yaml", "Project file with context and action definitions")
}

// loadRuntime builds a Runtime from the --project flag. A missing default
// project file yields an empty runtime; a missing explicit one is an error.
func loadRuntime(cmd *cobra.Command) (*bindery.Runtime, *cli.Project, error) {
	path, _ := cmd.Flags().GetString("project")

	project, err := cli.LoadProject(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("project") {
			return bindery.New(), nil, nil
		}
		return nil, nil, err
	}

	rt := bindery.New()
	if err := project.Apply(rt); err != nil {
		return nil, nil, err
	}
	return rt, project, nil
}
