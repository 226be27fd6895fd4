// Carlinkd runs the CarPlay/Android Auto adapter engine.
//
// It talks to a Carlinkit-style USB dongle, drives the pairing and
// session lifecycle, and exposes the decoded video, audio, and metadata
// streams to host surfaces over a local WebSocket bridge.
//
// Usage:
//
//	carlinkd run [flags]
//
// See 'carlinkd run --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/autokit/carlink/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "carlinkd",
	Short: "CarPlay/Android Auto adapter engine",
	Long: `Carlinkd drives a Carlinkit-style USB adapter: it opens the dongle,
walks the phone through wireless pairing, and streams the mirrored
session to host surfaces over a local WebSocket bridge.

Configuration lives in a YAML file under the platform config directory;
see 'carlinkd config path'. Command-line flags override the file for a
single run without rewriting it.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Full())
	},
}
