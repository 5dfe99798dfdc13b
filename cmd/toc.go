package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DragonRuins/hubdoc/internal/toc"
)

func init() {
	rootCmd.AddCommand(tocCmd)
}

var tocCmd = &cobra.Command{
	Use:   "toc <file>",
	Short: "Print the table of contents",
	Long:  `Extract the outline of a document: headings of level 1 to 3 with their anchors.`,
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
		doc, _, err := readDocument(registry.Schema(), args[0], content)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		entries := toc.Scan(doc)
		if len(entries) == 0 {
			fmt.Println("no headings")
			return
		}
		for _, entry := range entries {
			fmt.Printf("%s- %s (#%s)\n", strings.Repeat("  ", entry.Level-1), entry.Text, entry.ID)
		}
	},
}
