package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/DragonRuins/hubdoc/internal/htmlconv"
	"github.com/DragonRuins/hubdoc/internal/mdconv"
	"github.com/DragonRuins/hubdoc/internal/model"
	"github.com/DragonRuins/hubdoc/pkg/logging"
)

var convertTo string
var convertOut string

func init() {
	convertCmd.Flags().StringVarP(&convertTo, "to", "t", "json", "output format: json, html, or md")
	convertCmd.Flags().StringVarP(&convertOut, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert a document between formats",
	Long:  `Convert between the editor's JSON documents, Markdown, and HTML.`,
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
		content, meta := stripFrontMatter(content)
		if meta.Title != "" {
			logging.CurrentLogger().Infof("front matter: title=%q tags=%v", meta.Title, meta.Tags)
		}

		doc, warnings, err := readDocument(registry.Schema(), args[0], content)
		for _, warning := range warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		var out []byte
		switch convertTo {
		case "json":
			out, err = model.ToJSON(doc)
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
		case "html":
			out = []byte(htmlconv.Render(doc))
		case "md", "markdown":
			out = []byte(mdconv.Export(doc))
		default:
			fmt.Printf("unsupported output format %q\n", convertTo)
			os.Exit(1)
		}

		if convertOut == "" {
			fmt.Println(strings.TrimRight(string(out), "\n"))
			return
		}
		if err := os.WriteFile(convertOut, out, 0644); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

// frontMatter is the YAML metadata block Markdown articles may start with.
type frontMatter struct {
	Title string   `yaml:"title"`
	Tags  []string `yaml:"tags"`
}

// stripFrontMatter removes a leading "---" YAML block and returns its parsed
// content. Malformed front matter is left in place for the converter to deal
// with.
func stripFrontMatter(content []byte) ([]byte, frontMatter) {
	var meta frontMatter
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return content, meta
	}
	rest := content[4:]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return content, meta
	}
	block := rest[:end]
	if err := yaml.Unmarshal(block, &meta); err != nil {
		return content, frontMatter{}
	}
	body := rest[end+4:]
	return bytes.TrimLeft(body, "\n"), meta
}
