package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/formworks/bindery/internal/presentation"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <action-id> [action-id...]",
	Short: "Run one or more actions as a chain",
	Long:  `Runs the named actions sequentially, stopping at the first failure, and prints a report. With no arguments every action in the project file runs in declaration order.`,
	Run: func(cmd *cobra.Command, args []string) {
		rt, project, err := loadRuntime(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		ids := args
		if len(ids) == 0 {
			if project == nil {
				fmt.Println("Error: no actions given and no project file found.")
				os.Exit(1)
			}
			ids = project.ActionIDs()
		}

		results := rt.RunActionChain(cmd.Context(), ids, nil)

		jsonMode, _ := cmd.Flags().GetBool("json")
		if jsonMode {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(results); err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
		} else {
			reports := make([]presentation.RunReport, len(ids))
			for i, id := range ids {
				reports[i] = presentation.RunReport{ID: id}
				if i < len(results) {
					reports[i].Result = results[i]
				}
			}
			fmt.Print(presentation.Render(reports))

			ok := len(results) == len(ids) && (len(results) == 0 || results[len(results)-1].Success)
			fmt.Println(presentation.StatusLine(ok, fmt.Sprintf("%d of %d actions succeeded", succeeded(reports), len(ids))))
		}

		if len(results) < len(ids) || (len(results) > 0 && !results[len(results)-1].Success) {
			os.Exit(1)
		}
	},
}

func succeeded(reports []presentation.RunReport) int {
	n := 0
	for _, r := range reports {
		if r.Result.Success {
			n++
		}
	}
	return n
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("json", false, "Print raw results as JSON")
}
