package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/DragonRuins/hubdoc/internal/model"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a document",
	Long:  `Parse a document file and check it against the editor schema.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		registry, err := currentRegistry()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		content, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		doc, warnings, err := readDocument(registry.Schema(), args[0], content)
		for _, warning := range warnings {
			color.Yellow("warning: %s", warning)
		}
		if err != nil {
			color.Red("invalid: %v", err)
			os.Exit(1)
		}
		if err := doc.Check(); err != nil {
			color.Red("invalid: %v", err)
			os.Exit(1)
		}
		color.Green("%s is valid (%d nodes, %d position tokens)", args[0], countNodes(doc), doc.ContentSize())
	},
}

func countNodes(n *model.Node) int {
	count := 1
	for _, child := range n.Content.Children() {
		count += countNodes(child)
	}
	return count
}
