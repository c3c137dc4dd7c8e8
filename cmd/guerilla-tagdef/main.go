package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

var verbose bool

func main() {
	var rootCmd = &cobra.Command{
		Use:     "guerilla-tagdef",
		Short:   "Recovers tag-group schema definitions from guerilla.exe",
		Long:    "Extracts the Halo tag-group schema embedded in the guerilla tag editor executable and emits it as JSON",
		Version: version,
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("guerilla-tagdef version %s\n", version)
		},
	}

	var dumpCmd = &cobra.Command{
		Use:   "dump <exe> <out.json>",
		Short: "Dump the tag-group schema to a JSON file",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			if err := runDump(args[0], args[1], verbose); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print a tabular group/field summary to stdout")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dumpCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
