package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// evalCmd represents the eval command
var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate an expression against the project context",
	Long:  `Evaluates a single expression (or a full template with --template) against the context declared in the project file and prints the result.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rt, _, err := loadRuntime(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		asTemplate, _ := cmd.Flags().GetBool("template")
		if asTemplate {
			rendered, err := rt.EvaluateTemplateStrict(args[0])
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(rendered)
			return
		}

		value, err := rt.EvaluateStrict(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		out, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			fmt.Printf("%v\n", value)
			return
		}
		fmt.Println(string(out))
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().BoolP("template", "t", false, "Treat the argument as a template with {{ }} markers")
}
