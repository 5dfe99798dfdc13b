package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DragonRuins/hubdoc/pkg/logging"
)

var verboseInfo bool
var verboseDebug bool
var verboseTrace bool

var rootCmd = &cobra.Command{
	Use:   "hubdoc",
	Short: "hubdoc works with rich article documents",
	Long:  `Validate, convert, and inspect the JSON documents produced by the hub's rich editor.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Enable verbose output. The most verbose level wins when multiple flags are passed.
		if verboseInfo {
			logging.CurrentLogger().SetVerboseLevel(logging.VerboseInfo)
		}
		if verboseDebug {
			logging.CurrentLogger().SetVerboseLevel(logging.VerboseDebug)
		}
		if verboseTrace {
			logging.CurrentLogger().SetVerboseLevel(logging.VerboseTrace)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseInfo, "verbose", "v", false, "enable verbose info output")
	rootCmd.PersistentFlags().BoolVar(&verboseDebug, "verbose-debug", false, "enable verbose debug output")
	rootCmd.PersistentFlags().BoolVar(&verboseTrace, "verbose-trace", false, "enable verbose trace output")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
